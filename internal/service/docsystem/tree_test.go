package docsystem

import (
	"context"
	"errors"
	"testing"

	"dossier/internal/domain"
	docsysSvc "dossier/internal/domain/services/docsystem"
)

func TestGetAccountTree(t *testing.T) {
	env := newTestEnv(t)
	actx, bctx := ctxFor(alice), ctxFor(bob)

	a := env.folder(t, actx, "A", nil)
	b := env.folder(t, actx, "B", a)
	env.upload(t, actx, "inner.txt", "i", b)
	env.upload(t, actx, "top.txt", "t", nil)

	p := env.folder(t, bctx, "P", nil)
	q := env.folder(t, bctx, "Q", p)
	users := []string{alice.Email}
	if _, err := env.folderSvc.UpdateFolder(bctx, q.ID, &docsysSvc.UpdateFolderRequest{Users: &users}); err != nil {
		t.Fatalf("share: %v", err)
	}
	env.upload(t, bctx, "bob-private.txt", "b", p)
	env.folder(t, ctxFor(eve), "E", nil)

	gone := env.folder(t, actx, "gone", nil)
	env.upload(t, actx, "orphan.txt", "o", gone)
	if err := env.folders.FolderRepository.Delete(context.Background(), gone.ID); err != nil {
		t.Fatalf("remove folder record: %v", err)
	}

	tree, err := env.treeSvc.GetAccountTree(actx)
	if err != nil {
		t.Fatalf("GetAccountTree() error = %v", err)
	}

	if len(tree.Folders) != 2 || tree.Folders[0].Name != "A" || tree.Folders[1].Name != "Q" {
		t.Fatalf("top-level folders = %+v, want A and Q", tree.Folders)
	}

	nodeA := tree.Folders[0]
	if len(nodeA.Folders) != 1 || nodeA.Folders[0].ID != b.ID {
		t.Fatalf("A children = %+v, want B", nodeA.Folders)
	}
	if len(nodeA.Folders[0].Files) != 1 || nodeA.Folders[0].Files[0].Name != "inner.txt" {
		t.Errorf("B files = %+v, want inner.txt", nodeA.Folders[0].Files)
	}

	var rootFiles []string
	for _, f := range tree.Files {
		rootFiles = append(rootFiles, f.Name)
	}
	if len(rootFiles) != 2 || rootFiles[0] != "top.txt" || rootFiles[1] != "orphan.txt" {
		t.Errorf("root files = %v, want [top.txt orphan.txt]", rootFiles)
	}
}

func TestGetAccountTree_RequiresIdentity(t *testing.T) {
	env := newTestEnv(t)

	if _, err := env.treeSvc.GetAccountTree(context.Background()); !errors.Is(err, domain.ErrNotAuthenticated) {
		t.Errorf("GetAccountTree() error = %v, want ErrNotAuthenticated", err)
	}
}
