package auth

import (
	"context"
	"fmt"

	"dossier/internal/domain"
	"dossier/internal/domain/models"
	"dossier/internal/domain/models/docsystem"
)

// OwnerBasedAuthorizer implements ResourceAuthorizer using ownership and
// sharing. A caller can access a record inside their account if they own it
// or its share list contains their email.
type OwnerBasedAuthorizer struct{}

// NewOwnerBasedAuthorizer creates a new ownership-based authorizer
func NewOwnerBasedAuthorizer() *OwnerBasedAuthorizer {
	return &OwnerBasedAuthorizer{}
}

// CanAccessFolder checks account, ownership and sharing for a folder
func (a *OwnerBasedAuthorizer) CanAccessFolder(ctx context.Context, id models.Identity, folder *docsystem.Folder) error {
	if folder.AccountID != id.AccountID {
		return fmt.Errorf("access denied to folder %s: %w", folder.ID, domain.ErrForbidden)
	}
	if folder.OwnerID == id.OwnerID || folder.SharedWith(id.Email) {
		return nil
	}
	return fmt.Errorf("access denied to folder %s: %w", folder.ID, domain.ErrForbidden)
}

// CanAccessFile checks account, ownership and sharing for a file
func (a *OwnerBasedAuthorizer) CanAccessFile(ctx context.Context, id models.Identity, file *docsystem.File) error {
	if file.AccountID != id.AccountID {
		return fmt.Errorf("access denied to file %s: %w", file.ID, domain.ErrForbidden)
	}
	if file.OwnerID == id.OwnerID || file.SharedWith(id.Email) {
		return nil
	}
	return fmt.Errorf("access denied to file %s: %w", file.ID, domain.ErrForbidden)
}
