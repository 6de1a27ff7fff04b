package postgres

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"

	"dossier/internal/domain"
	"dossier/internal/domain/models"
	"dossier/internal/domain/models/docsystem"
	docsysRepo "dossier/internal/domain/repositories/docsystem"
)

// openTestDB connects to TEST_DATABASE_URL and creates throwaway tables
func openTestDB(t *testing.T) *RepositoryConfig {
	t.Helper()

	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := CreateConnectionPool(ctx, url)
	if err != nil {
		t.Fatalf("CreateConnectionPool() error = %v", err)
	}

	prefix := "it_" + strings.ReplaceAll(uuid.NewString()[:8], "-", "") + "_"
	tables := NewTableNames(prefix)
	if err := EnsureSchema(ctx, pool, tables); err != nil {
		pool.Close()
		t.Fatalf("EnsureSchema() error = %v", err)
	}

	t.Cleanup(func() {
		pool.Exec(context.Background(), "DROP TABLE IF EXISTS "+tables.Folders+", "+tables.Files)
		pool.Close()
	})

	return &RepositoryConfig{
		DB:     pool,
		Tables: tables,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestFolderRepository_Integration(t *testing.T) {
	cfg := openTestDB(t)
	repo := NewFolderRepository(cfg)
	ctx := context.Background()

	root := &docsystem.Folder{Name: "ieCTD/Drugs", OwnerID: "u1", AccountID: "acct", IsSystem: true}
	if err := repo.Create(ctx, root); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if root.ID == "" {
		t.Fatal("Create() should assign an id")
	}

	child := &docsystem.Folder{Name: "m1", OwnerID: "u1", AccountID: "acct", ParentID: &root.ID}
	if err := repo.Create(ctx, child); err != nil {
		t.Fatalf("Create(child) error = %v", err)
	}

	got, err := repo.GetByID(ctx, root.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Name != root.Name || !got.IsSystem || got.ParentID != nil {
		t.Errorf("GetByID() = %+v", got)
	}

	child.Users = []string{"b@example.com"}
	if err := repo.Update(ctx, child); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	shared, err := repo.List(ctx, docsysRepo.FolderFilter{
		AccountID: "acct",
		Viewer:    &models.Identity{OwnerID: "u2", Email: "b@example.com"},
	})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(shared) != 1 || shared[0].ID != child.ID {
		t.Errorf("shared listing = %+v", shared)
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
	if err := repo.Delete(ctx, child.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Delete(deleted) error = %v, want ErrNotFound", err)
	}
}

func TestFileRepository_Integration(t *testing.T) {
	cfg := openTestDB(t)
	repo := NewFileRepository(cfg)
	ctx := context.Background()

	folderID := "f1"
	for _, f := range []*docsystem.File{
		{Name: "a.pdf", Size: 30, Type: docsystem.FileTypeDocument, Extension: "pdf", FolderID: &folderID},
		{Name: "b_2.png", Size: 10, Type: docsystem.FileTypeImage, Extension: "png"},
	} {
		f.OwnerID = "u1"
		f.AccountID = "acct"
		f.BlobRef = "ref/" + f.Name
		if err := repo.Create(ctx, f); err != nil {
			t.Fatalf("Create(%s) error = %v", f.Name, err)
		}
	}

	files, err := repo.List(ctx, docsysRepo.FileFilter{
		AccountID:    "acct",
		Folder:       docsysRepo.Root(),
		NameContains: "_2",
	})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(files) != 1 || files[0].Name != "b_2.png" || files[0].Type != docsystem.FileTypeImage {
		t.Errorf("List() = %+v", files)
	}
	if files[0].BlobRef != "ref/b_2.png" {
		t.Errorf("BlobRef = %q", files[0].BlobRef)
	}

	bySize, err := repo.List(ctx, docsysRepo.FileFilter{AccountID: "acct", Sort: docsysRepo.Sort{Field: docsysRepo.SortSize, Desc: true}})
	if err != nil {
		t.Fatalf("List(size) error = %v", err)
	}
	if len(bySize) != 2 || bySize[0].Name != "a.pdf" {
		t.Errorf("size ordering = %+v", bySize)
	}
}
