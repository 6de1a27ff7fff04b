package services

import (
	"context"

	"dossier/internal/domain/models"
	"dossier/internal/domain/models/docsystem"
)

// ResourceAuthorizer checks if a caller can access resources.
// Services call the authorizer after loading a record and before acting on it.
type ResourceAuthorizer interface {
	// CanAccessFolder checks if the caller can see and change a folder
	CanAccessFolder(ctx context.Context, id models.Identity, folder *docsystem.Folder) error

	// CanAccessFile checks if the caller can see and change a file
	CanAccessFile(ctx context.Context, id models.Identity, file *docsystem.File) error
}
