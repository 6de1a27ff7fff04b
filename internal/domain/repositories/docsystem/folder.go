package docsystem

import (
	"context"

	"dossier/internal/domain/models/docsystem"
)

// FolderRepository defines data access operations for folders.
// Implementations never enforce tree invariants; callers do.
type FolderRepository interface {
	// Create stores a new folder and assigns its ID and timestamps
	Create(ctx context.Context, folder *docsystem.Folder) error

	// GetByID retrieves a folder by ID, returning domain.ErrNotFound if absent
	GetByID(ctx context.Context, id string) (*docsystem.Folder, error)

	// Update writes name, parent, users and updated_at
	Update(ctx context.Context, folder *docsystem.Folder) error

	// Delete removes a single folder record (children are not touched)
	Delete(ctx context.Context, id string) error

	// List returns folders matching the filter
	List(ctx context.Context, filter FolderFilter) ([]docsystem.Folder, error)

	// ExistingIDs returns the subset of ids that still exist in the account
	ExistingIDs(ctx context.Context, accountID string, ids []string) (map[string]bool, error)
}
