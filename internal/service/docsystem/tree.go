package docsystem

import (
	"context"
	"fmt"
	"log/slog"

	models "dossier/internal/domain/models/docsystem"
	docsysRepo "dossier/internal/domain/repositories/docsystem"
	docsysSvc "dossier/internal/domain/services/docsystem"
)

// treeService implements the TreeService interface
type treeService struct {
	folderRepo docsysRepo.FolderRepository
	fileRepo   docsysRepo.FileRepository
	logger     *slog.Logger
}

// NewTreeService creates a new tree service
func NewTreeService(
	folderRepo docsysRepo.FolderRepository,
	fileRepo docsysRepo.FileRepository,
	logger *slog.Logger,
) docsysSvc.TreeService {
	return &treeService{
		folderRepo: folderRepo,
		fileRepo:   fileRepo,
		logger:     logger,
	}
}

// GetAccountTree builds the nested folder/file tree visible to the caller.
// Folders whose parent is not visible surface at the top level; files whose
// folder no longer exists are adopted by the root.
func (s *treeService) GetAccountTree(ctx context.Context) (*models.TreeNode, error) {
	ident, err := requireIdentity(ctx)
	if err != nil {
		return nil, err
	}

	allFolders, err := s.folderRepo.List(ctx, docsysRepo.FolderFilter{
		AccountID: ident.AccountID,
		Viewer:    &ident,
		Sort:      docsysRepo.Sort{Field: docsysRepo.SortName},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list folders: %w", err)
	}

	allFiles, err := s.fileRepo.List(ctx, docsysRepo.FileFilter{
		AccountID: ident.AccountID,
		Viewer:    &ident,
		Sort:      docsysRepo.Sort{Field: docsysRepo.SortName},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}

	// First pass: create all folder nodes
	folderMap := make(map[string]*models.FolderTreeNode, len(allFolders))
	for _, folder := range allFolders {
		folderMap[folder.ID] = &models.FolderTreeNode{
			ID:        folder.ID,
			Name:      folder.Name,
			ParentID:  folder.ParentID,
			IsSystem:  folder.IsSystem,
			CreatedAt: folder.CreatedAt,
			Folders:   []*models.FolderTreeNode{},
			Files:     []models.FileTreeNode{},
		}
	}

	// Second pass: nest folders under their parents
	rootFolders := make([]*models.FolderTreeNode, 0)
	for _, folder := range allFolders {
		node := folderMap[folder.ID]
		if folder.ParentID != nil {
			if parent, exists := folderMap[*folder.ParentID]; exists {
				parent.Folders = append(parent.Folders, node)
				continue
			}
		}
		rootFolders = append(rootFolders, node)
	}

	// Third pass: hang files off their folders
	rootFiles := make([]models.FileTreeNode, 0)
	var unplaced []models.FileTreeNode
	for _, file := range allFiles {
		fileNode := models.FileTreeNode{
			ID:        file.ID,
			Name:      file.Name,
			FolderID:  file.FolderID,
			Type:      file.Type,
			Size:      file.Size,
			UpdatedAt: file.UpdatedAt,
		}

		if file.FolderID == nil {
			rootFiles = append(rootFiles, fileNode)
			continue
		}
		if parent, exists := folderMap[*file.FolderID]; exists {
			parent.Files = append(parent.Files, fileNode)
			continue
		}
		unplaced = append(unplaced, fileNode)
	}

	if len(unplaced) > 0 {
		orphans, err := s.orphans(ctx, ident.AccountID, unplaced)
		if err != nil {
			return nil, err
		}
		rootFiles = append(rootFiles, orphans...)
	}

	s.logger.Info("account tree built",
		"account_id", ident.AccountID,
		"folder_count", len(allFolders),
		"file_count", len(allFiles),
	)

	return &models.TreeNode{
		Folders: rootFolders,
		Files:   rootFiles,
	}, nil
}

// orphans keeps the files whose folder does not exist at all. Files inside an
// existing folder the caller cannot see stay hidden.
func (s *treeService) orphans(ctx context.Context, accountID string, files []models.FileTreeNode) ([]models.FileTreeNode, error) {
	ids := make([]string, 0, len(files))
	for _, f := range files {
		ids = append(ids, *f.FolderID)
	}

	existing, err := s.folderRepo.ExistingIDs(ctx, accountID, dedupe(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to check folder existence: %w", err)
	}

	var adopted []models.FileTreeNode
	for _, f := range files {
		if !existing[*f.FolderID] {
			adopted = append(adopted, f)
		}
	}
	if len(adopted) > 0 {
		s.logger.Warn("orphaned files adopted by tree root",
			"account_id", accountID,
			"count", len(adopted),
		)
	}
	return adopted, nil
}
