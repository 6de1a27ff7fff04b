package auth

import (
	"context"
	"errors"
	"testing"

	"dossier/internal/domain"
	"dossier/internal/domain/models"
	"dossier/internal/domain/models/docsystem"
)

func TestOwnerBasedAuthorizer_CanAccessFolder(t *testing.T) {
	caller := models.Identity{AccountID: "acct-1", OwnerID: "user-1", Email: "me@example.com"}

	tests := []struct {
		name    string
		folder  docsystem.Folder
		allowed bool
	}{
		{
			name:    "owner in same account",
			folder:  docsystem.Folder{ID: "f", AccountID: "acct-1", OwnerID: "user-1"},
			allowed: true,
		},
		{
			name:    "shared with caller",
			folder:  docsystem.Folder{ID: "f", AccountID: "acct-1", OwnerID: "user-2", Users: []string{"me@example.com"}},
			allowed: true,
		},
		{
			name:    "same account but neither owner nor shared",
			folder:  docsystem.Folder{ID: "f", AccountID: "acct-1", OwnerID: "user-2", Users: []string{"other@example.com"}},
			allowed: false,
		},
		{
			name:    "owner id matches in another account",
			folder:  docsystem.Folder{ID: "f", AccountID: "acct-2", OwnerID: "user-1"},
			allowed: false,
		},
	}

	a := NewOwnerBasedAuthorizer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := a.CanAccessFolder(context.Background(), caller, &tt.folder)
			if tt.allowed && err != nil {
				t.Fatalf("expected access, got %v", err)
			}
			if !tt.allowed && !errors.Is(err, domain.ErrForbidden) {
				t.Fatalf("expected ErrForbidden, got %v", err)
			}
		})
	}
}

func TestOwnerBasedAuthorizer_CanAccessFile(t *testing.T) {
	caller := models.Identity{AccountID: "acct-1", OwnerID: "user-1"}
	a := NewOwnerBasedAuthorizer()

	own := &docsystem.File{ID: "x", AccountID: "acct-1", OwnerID: "user-1"}
	if err := a.CanAccessFile(context.Background(), caller, own); err != nil {
		t.Fatalf("owner should have access: %v", err)
	}

	// An empty caller email never matches an empty share entry
	other := &docsystem.File{ID: "y", AccountID: "acct-1", OwnerID: "user-2", Users: []string{""}}
	if err := a.CanAccessFile(context.Background(), caller, other); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}
