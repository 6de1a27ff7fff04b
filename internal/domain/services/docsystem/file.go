package docsystem

import (
	"context"
	"io"

	"dossier/internal/domain/models/docsystem"
)

// FileService manages file records and their blobs.
type FileService interface {
	// UploadFile stores the blob first and the record second
	UploadFile(ctx context.Context, req *UploadFileRequest) (*docsystem.File, error)

	// GetFile retrieves a file with a fetchable URL
	GetFile(ctx context.Context, id string) (*docsystem.File, error)

	// UpdateFile renames (keeping the extension) and/or re-shares a file
	UpdateFile(ctx context.Context, id string, req *UpdateFileRequest) (*docsystem.File, error)

	// MoveFile reassigns the file's folder (nil = root)
	MoveFile(ctx context.Context, id string, targetID *string, path string) (*docsystem.File, error)

	// DeleteFile deletes the blob then the record
	DeleteFile(ctx context.Context, id, path string) error

	// BulkMoveFiles moves each file, skipping missing ones, and returns how
	// many were moved
	BulkMoveFiles(ctx context.Context, ids []string, targetID *string, path string) (int, error)

	// BulkDeleteFiles deletes every file, or none if any is protected
	BulkDeleteFiles(ctx context.Context, ids []string, path string) error

	// ListFiles searches the caller's visible files
	ListFiles(ctx context.Context, query *ListFilesQuery) ([]docsystem.File, error)

	// GetUsage sums storage per file type for the caller's account
	GetUsage(ctx context.Context) (*docsystem.Usage, error)
}

// UploadFileRequest represents an upload
type UploadFileRequest struct {
	Name        string
	FolderID    *string
	Size        int64
	ContentType string
	Content     io.Reader
	Path        string
}

// UpdateFileRequest represents a rename and/or share
type UpdateFileRequest struct {
	Name   *string        `json:"name,omitempty"`
	Users  *[]string      `json:"users,omitempty"`
	Folder OptionalParent `json:"-"` // handlers map httputil.OptionalID here
	Path   string         `json:"path,omitempty"`
}

// ListFilesQuery represents a file search
type ListFilesQuery struct {
	Types  []string `json:"types,omitempty"`
	Search string   `json:"search,omitempty"`
	Sort   string   `json:"sort,omitempty"` // "field-asc" | "field-desc"
	Limit  int      `json:"limit,omitempty"`
}
