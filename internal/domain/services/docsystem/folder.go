package docsystem

import (
	"context"

	"dossier/internal/domain/models/docsystem"
)

// FolderService performs structural changes to an account's folder tree.
// Every method requires a caller identity in ctx. Mutations take the logical
// view path to revalidate once they finish.
type FolderService interface {
	// CreateFolder creates a folder under req.ParentID (nil = root)
	CreateFolder(ctx context.Context, req *CreateFolderRequest) (*docsystem.Folder, error)

	// GetFolder retrieves a folder with its computed path
	GetFolder(ctx context.Context, id string) (*docsystem.Folder, error)

	// UpdateFolder renames, re-shares and/or moves a folder
	UpdateFolder(ctx context.Context, id string, req *UpdateFolderRequest) (*docsystem.Folder, error)

	// MoveFolder reparents a folder after rejecting self-moves and cycles
	MoveFolder(ctx context.Context, id string, targetID *string, path string) (*docsystem.Folder, error)

	// DeleteFolder deletes a folder with all descendant folders, files and blobs
	DeleteFolder(ctx context.Context, id, path string) error

	// BulkMoveFolders moves each folder, skipping invalid moves, and returns
	// how many were moved
	BulkMoveFolders(ctx context.Context, ids []string, targetID *string, path string) (int, error)

	// BulkDeleteFolders deletes every folder, or none if any is protected
	BulkDeleteFolders(ctx context.Context, ids []string, path string) error

	// ListChildren lists folders and files directly under parentID (nil = root)
	ListChildren(ctx context.Context, parentID *string) (*docsystem.Contents, error)

	// GetBreadcrumbs returns the ancestor chain from the root down to the folder
	GetBreadcrumbs(ctx context.Context, id string) ([]docsystem.Folder, error)
}

// CreateFolderRequest represents a folder creation request
type CreateFolderRequest struct {
	Name     string  `json:"name"`
	ParentID *string `json:"parent_id,omitempty"` // nil = root
	IsSystem bool    `json:"-"`
	Path     string  `json:"path,omitempty"`
}

// UpdateFolderRequest represents a folder update request. Parent is
// tri-state: absent (no move), null (move to root) or an id.
type UpdateFolderRequest struct {
	Name   *string        `json:"name,omitempty"`
	Users  *[]string      `json:"users,omitempty"`
	Parent OptionalParent `json:"-"` // handlers map httputil.OptionalID here
	Path   string         `json:"path,omitempty"`
}

// OptionalParent distinguishes an absent parent field from an explicit null.
type OptionalParent struct {
	Present bool
	Value   *string
}
