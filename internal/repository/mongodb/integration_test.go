package mongodb

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"dossier/internal/domain"
	"dossier/internal/domain/models"
	"dossier/internal/domain/models/docsystem"
	docsysRepo "dossier/internal/domain/repositories/docsystem"
)

func openTestDB(t *testing.T) (*mongo.Database, Collections, *slog.Logger) {
	t.Helper()

	uri := os.Getenv("TEST_MONGO_URL")
	if uri == "" {
		t.Skip("TEST_MONGO_URL not set")
	}

	ctx := context.Background()
	client, err := Connect(ctx, uri)
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	db := client.Database("dossier_test")
	cols := NewCollections("it_" + strings.ReplaceAll(uuid.NewString()[:8], "-", "") + "_")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if err := EnsureIndexes(ctx, db, cols, logger); err != nil {
		t.Fatalf("EnsureIndexes() error = %v", err)
	}

	t.Cleanup(func() {
		db.Collection(cols.Folders).Drop(context.Background())
		db.Collection(cols.Files).Drop(context.Background())
		client.Disconnect(context.Background())
	})

	return db, cols, logger
}

func TestFolderRepository_Integration(t *testing.T) {
	db, cols, logger := openTestDB(t)
	repo := NewFolderRepository(db, cols, logger)
	ctx := context.Background()

	root := &docsystem.Folder{Name: "Guidance for Industry", OwnerID: "u1", AccountID: "acct", IsSystem: true}
	if err := repo.Create(ctx, root); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	child := &docsystem.Folder{Name: "MODULE 2", OwnerID: "u2", AccountID: "acct", ParentID: &root.ID, Users: []string{"u1@example.com"}}
	if err := repo.Create(ctx, child); err != nil {
		t.Fatalf("Create(child) error = %v", err)
	}

	roots, err := repo.List(ctx, docsysRepo.FolderFilter{AccountID: "acct", Parent: docsysRepo.Root()})
	if err != nil {
		t.Fatalf("List(root) error = %v", err)
	}
	if len(roots) != 1 || roots[0].ID != root.ID || !roots[0].IsSystem {
		t.Errorf("root listing = %+v", roots)
	}

	visible, err := repo.List(ctx, docsysRepo.FolderFilter{
		AccountID: "acct",
		Viewer:    &models.Identity{OwnerID: "u1", Email: "u1@example.com"},
		Sort:      docsysRepo.NewestFirst,
	})
	if err != nil {
		t.Fatalf("List(viewer) error = %v", err)
	}
	if len(visible) != 2 || visible[0].ID != child.ID {
		t.Errorf("visible listing = %+v", visible)
	}

	child.Name = "MODULE 2 - QUALITY OVERALL SUMMARY"
	if err := repo.Update(ctx, child); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	got, err := repo.GetByID(ctx, child.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Name != child.Name || got.ParentID == nil || *got.ParentID != root.ID {
		t.Errorf("GetByID() = %+v", got)
	}

	existing, err := repo.ExistingIDs(ctx, "acct", []string{root.ID, "missing"})
	if err != nil {
		t.Fatalf("ExistingIDs() error = %v", err)
	}
	if !existing[root.ID] || existing["missing"] {
		t.Errorf("ExistingIDs() = %v", existing)
	}

	if err := repo.Delete(ctx, child.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := repo.GetByID(ctx, child.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("GetByID(deleted) error = %v, want ErrNotFound", err)
	}
}

func TestFileRepository_Integration(t *testing.T) {
	db, cols, logger := openTestDB(t)
	repo := NewFileRepository(db, cols, logger)
	ctx := context.Background()

	file := &docsystem.File{Name: "Cover.PDF", OwnerID: "u1", AccountID: "acct", Size: 42, Type: docsystem.FileTypeDocument, Extension: "pdf", BlobRef: "k/Cover.PDF"}
	if err := repo.Create(ctx, file); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	found, err := repo.List(ctx, docsysRepo.FileFilter{AccountID: "acct", NameContains: "cover", Types: []string{"document"}})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(found) != 1 || found[0].BlobRef != file.BlobRef || found[0].Size != 42 {
		t.Errorf("List() = %+v", found)
	}

	if err := repo.Delete(ctx, file.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := repo.Delete(ctx, file.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Delete(deleted) error = %v, want ErrNotFound", err)
	}
}
