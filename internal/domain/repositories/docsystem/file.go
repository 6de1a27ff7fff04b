package docsystem

import (
	"context"

	"dossier/internal/domain/models/docsystem"
)

// FileRepository defines data access operations for file records.
type FileRepository interface {
	// Create stores a new file record and assigns its ID and timestamps
	Create(ctx context.Context, file *docsystem.File) error

	// GetByID retrieves a file by ID, returning domain.ErrNotFound if absent
	GetByID(ctx context.Context, id string) (*docsystem.File, error)

	// Update writes name, folder, users and updated_at
	Update(ctx context.Context, file *docsystem.File) error

	// Delete removes a file record (the blob is not touched)
	Delete(ctx context.Context, id string) error

	// List returns files matching the filter
	List(ctx context.Context, filter FileFilter) ([]docsystem.File, error)
}
