package docsystem

import (
	"context"
	"fmt"
	"strings"

	"dossier/internal/domain"
	models "dossier/internal/domain/models/docsystem"
	docsysRepo "dossier/internal/domain/repositories/docsystem"
)

// ancestors returns the chain from startID up to the root, startID first.
// Each step is a fresh store read. A revisited id is reported as a cycle.
func ancestors(ctx context.Context, repo docsysRepo.FolderRepository, startID string) ([]models.Folder, error) {
	var chain []models.Folder
	visited := make(map[string]bool)

	currentID := startID
	for {
		if visited[currentID] {
			return nil, &domain.CycleError{FolderID: currentID, TargetID: startID}
		}
		visited[currentID] = true

		folder, err := repo.GetByID(ctx, currentID)
		if err != nil {
			return nil, err
		}
		chain = append(chain, *folder)

		if folder.ParentID == nil {
			return chain, nil
		}
		currentID = *folder.ParentID
	}
}

// validateNoCircularReference ensures moving folderID under newParentID
// won't make the folder its own ancestor
func validateNoCircularReference(ctx context.Context, repo docsysRepo.FolderRepository, folderID, newParentID string) error {
	// Can't move folder to be its own parent
	if folderID == newParentID {
		return &domain.InvalidOperationError{Message: "cannot move a folder into itself"}
	}

	chain, err := ancestors(ctx, repo, newParentID)
	if err != nil {
		return err
	}
	for _, f := range chain {
		if f.ID == folderID {
			return &domain.CycleError{FolderID: folderID, TargetID: newParentID}
		}
	}
	return nil
}

// folderPath computes the display path "A/B/C" for a folder
func folderPath(ctx context.Context, repo docsysRepo.FolderRepository, folderID string) (string, error) {
	chain, err := ancestors(ctx, repo, folderID)
	if err != nil {
		return "", err
	}
	names := make([]string, len(chain))
	for i, f := range chain {
		names[len(chain)-1-i] = f.Name
	}
	return strings.Join(names, "/"), nil
}

// breadcrumbs returns the chain root-first
func breadcrumbs(ctx context.Context, repo docsysRepo.FolderRepository, folderID string) ([]models.Folder, error) {
	chain, err := ancestors(ctx, repo, folderID)
	if err != nil {
		return nil, fmt.Errorf("walk ancestors: %w", err)
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain, nil
}
