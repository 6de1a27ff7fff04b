package docsystem

import (
	"context"
	"fmt"

	"dossier/internal/domain"
	models "dossier/internal/domain/models/docsystem"
	docsysRepo "dossier/internal/domain/repositories/docsystem"
)

// checkFolderDeletable is the single protection guard used by every folder
// delete path. It rejects a protected target and any protected descendant,
// reading the subtree without writing anything.
func checkFolderDeletable(ctx context.Context, repo docsysRepo.FolderRepository, folder *models.Folder) error {
	return checkSubtree(ctx, repo, folder, make(map[string]bool))
}

func checkSubtree(ctx context.Context, repo docsysRepo.FolderRepository, folder *models.Folder, visited map[string]bool) error {
	if visited[folder.ID] {
		return &domain.CycleError{FolderID: folder.ID, TargetID: folder.ID}
	}
	visited[folder.ID] = true

	if folder.IsSystem {
		return &domain.ProtectedResourceError{ResourceType: "folder", ResourceID: folder.ID, Name: folder.Name}
	}

	children, err := repo.List(ctx, docsysRepo.FolderFilter{
		AccountID: folder.AccountID,
		Parent:    docsysRepo.Inside(folder.ID),
	})
	if err != nil {
		return fmt.Errorf("failed to list child folders: %w", err)
	}
	for i := range children {
		if err := checkSubtree(ctx, repo, &children[i], visited); err != nil {
			return err
		}
	}
	return nil
}

// checkFileDeletable is the file counterpart used by single and bulk delete
func checkFileDeletable(file *models.File) error {
	if file.IsSystemResource {
		return &domain.ProtectedResourceError{ResourceType: "file", ResourceID: file.ID, Name: file.Name}
	}
	return nil
}
