package docsystem

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"dossier/internal/config"
	"dossier/internal/domain"
	"dossier/internal/domain/models"
	docsystem "dossier/internal/domain/models/docsystem"
	"dossier/internal/domain/repositories"
	docsysRepo "dossier/internal/domain/repositories/docsystem"
	"dossier/internal/domain/services"
	docsysSvc "dossier/internal/domain/services/docsystem"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

type folderService struct {
	folderRepo  docsysRepo.FolderRepository
	fileRepo    docsysRepo.FileRepository
	blobs       repositories.BlobStore
	urls        *urlSigner
	authorizer  services.ResourceAuthorizer
	revalidator services.Revalidator
	logger      *slog.Logger
}

// NewFolderService creates a new folder service
func NewFolderService(
	folderRepo docsysRepo.FolderRepository,
	fileRepo docsysRepo.FileRepository,
	blobs repositories.BlobStore,
	urlTTL time.Duration,
	authorizer services.ResourceAuthorizer,
	revalidator services.Revalidator,
	logger *slog.Logger,
) docsysSvc.FolderService {
	return &folderService{
		folderRepo:  folderRepo,
		fileRepo:    fileRepo,
		blobs:       blobs,
		urls:        &urlSigner{blobs: blobs, ttl: urlTTL, logger: logger},
		authorizer:  authorizer,
		revalidator: revalidator,
		logger:      logger,
	}
}

// newFolder stamps ownership from the caller identity
func newFolder(id models.Identity, name string, parentID *string, isSystem bool) *docsystem.Folder {
	now := time.Now()
	return &docsystem.Folder{
		Name:      name,
		OwnerID:   id.OwnerID,
		AccountID: id.AccountID,
		ParentID:  parentID,
		Users:     []string{},
		IsSystem:  isSystem,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// normalizeParent treats an empty id as root
func normalizeParent(id *string) *string {
	if id == nil || strings.TrimSpace(*id) == "" {
		return nil
	}
	return id
}

// CreateFolder creates a new folder. Sibling names are not unique.
func (s *folderService) CreateFolder(ctx context.Context, req *docsysSvc.CreateFolderRequest) (*docsystem.Folder, error) {
	ident, err := requireIdentity(ctx)
	if err != nil {
		return nil, err
	}

	req.Name = strings.TrimSpace(req.Name)
	req.ParentID = normalizeParent(req.ParentID)
	if err := s.validateCreateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	if req.ParentID != nil {
		if _, err := s.loadFolder(ctx, ident, *req.ParentID); err != nil {
			return nil, fmt.Errorf("parent folder: %w", err)
		}
	}

	folder := newFolder(ident, req.Name, req.ParentID, req.IsSystem)
	if err := s.folderRepo.Create(ctx, folder); err != nil {
		return nil, err
	}

	s.setPath(ctx, folder)

	s.logger.Info("folder created",
		"id", folder.ID,
		"name", folder.Name,
		"account_id", folder.AccountID,
		"parent_id", folder.ParentID,
		"is_system", folder.IsSystem,
	)

	revalidate(ctx, s.revalidator, s.logger, req.Path)
	return folder, nil
}

// GetFolder retrieves a folder with its computed path
func (s *folderService) GetFolder(ctx context.Context, id string) (*docsystem.Folder, error) {
	ident, err := requireIdentity(ctx)
	if err != nil {
		return nil, err
	}

	folder, err := s.loadFolder(ctx, ident, id)
	if err != nil {
		return nil, err
	}

	s.setPath(ctx, folder)
	return folder, nil
}

// UpdateFolder renames, re-shares and/or moves a folder with a single write
func (s *folderService) UpdateFolder(ctx context.Context, id string, req *docsysSvc.UpdateFolderRequest) (*docsystem.Folder, error) {
	ident, err := requireIdentity(ctx)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		trimmed := strings.TrimSpace(*req.Name)
		req.Name = &trimmed
	}
	if req.Users != nil {
		users := normalizeEmails(*req.Users)
		req.Users = &users
	}
	if err := s.validateUpdateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	var target *string
	if req.Parent.Present {
		target = normalizeParent(req.Parent.Value)
		if target != nil && *target == id {
			return nil, &domain.InvalidOperationError{Message: "cannot move a folder into itself"}
		}
	}

	folder, err := s.loadFolder(ctx, ident, id)
	if err != nil {
		return nil, err
	}

	if req.Parent.Present {
		if err := s.validateMove(ctx, ident, folder, target); err != nil {
			return nil, err
		}
		folder.ParentID = target
	}
	if req.Name != nil {
		folder.Name = *req.Name
	}
	if req.Users != nil {
		folder.Users = *req.Users
	}

	if err := s.folderRepo.Update(ctx, folder); err != nil {
		return nil, err
	}

	s.setPath(ctx, folder)

	s.logger.Info("folder updated",
		"id", folder.ID,
		"name", folder.Name,
		"parent_id", folder.ParentID,
		"users", len(folder.Users),
	)

	revalidate(ctx, s.revalidator, s.logger, req.Path)
	return folder, nil
}

// MoveFolder reparents a folder. The self check runs before any read so a
// self-move never touches the store.
func (s *folderService) MoveFolder(ctx context.Context, id string, targetID *string, path string) (*docsystem.Folder, error) {
	ident, err := requireIdentity(ctx)
	if err != nil {
		return nil, err
	}

	targetID = normalizeParent(targetID)
	if targetID != nil && *targetID == id {
		return nil, &domain.InvalidOperationError{Message: "cannot move a folder into itself"}
	}

	folder, err := s.loadFolder(ctx, ident, id)
	if err != nil {
		return nil, err
	}

	if err := s.validateMove(ctx, ident, folder, targetID); err != nil {
		return nil, err
	}

	if sameParent(folder.ParentID, targetID) {
		s.setPath(ctx, folder)
		return folder, nil
	}

	folder.ParentID = targetID
	if err := s.folderRepo.Update(ctx, folder); err != nil {
		return nil, err
	}

	s.setPath(ctx, folder)

	s.logger.Info("folder moved",
		"id", folder.ID,
		"name", folder.Name,
		"parent_id", folder.ParentID,
	)

	revalidate(ctx, s.revalidator, s.logger, path)
	return folder, nil
}

// validateMove checks the target exists, is accessible, and is not the
// folder itself or one of its descendants
func (s *folderService) validateMove(ctx context.Context, ident models.Identity, folder *docsystem.Folder, targetID *string) error {
	if targetID == nil {
		return nil
	}
	if *targetID == folder.ID {
		return &domain.InvalidOperationError{Message: "cannot move a folder into itself"}
	}

	if _, err := s.loadFolder(ctx, ident, *targetID); err != nil {
		return fmt.Errorf("target folder: %w", err)
	}

	return validateNoCircularReference(ctx, s.folderRepo, folder.ID, *targetID)
}

// DeleteFolder deletes a folder and everything beneath it.
// The protection guard reads the whole subtree before the first write.
func (s *folderService) DeleteFolder(ctx context.Context, id, path string) error {
	ident, err := requireIdentity(ctx)
	if err != nil {
		return err
	}

	folder, err := s.loadFolder(ctx, ident, id)
	if err != nil {
		return err
	}

	if err := checkFolderDeletable(ctx, s.folderRepo, folder); err != nil {
		return err
	}

	// Partial deletes still change the tree, so revalidate either way
	defer revalidate(ctx, s.revalidator, s.logger, path)

	if err := s.deleteRecursive(ctx, folder); err != nil {
		s.logger.Error("folder delete aborted",
			"id", folder.ID,
			"name", folder.Name,
			"error", err,
		)
		return err
	}

	s.logger.Info("folder deleted",
		"id", folder.ID,
		"name", folder.Name,
		"account_id", folder.AccountID,
	)
	return nil
}

// deleteRecursive removes files (blob then record), then child folders, then
// the folder itself. A failure stops the walk; finished deletes stay.
func (s *folderService) deleteRecursive(ctx context.Context, folder *docsystem.Folder) error {
	// 1. Files directly in this folder
	files, err := s.fileRepo.List(ctx, docsysRepo.FileFilter{
		AccountID: folder.AccountID,
		Folder:    docsysRepo.Inside(folder.ID),
	})
	if err != nil {
		return fmt.Errorf("failed to list files: %w", err)
	}
	for i := range files {
		if err := purgeFile(ctx, s.fileRepo, s.blobs, &files[i]); err != nil {
			return fmt.Errorf("failed to delete file %q: %w", files[i].Name, err)
		}
		s.logger.Debug("deleted file", "id", files[i].ID, "name", files[i].Name)
	}

	// 2. Child folders, re-queried rather than cached
	children, err := s.folderRepo.List(ctx, docsysRepo.FolderFilter{
		AccountID: folder.AccountID,
		Parent:    docsysRepo.Inside(folder.ID),
	})
	if err != nil {
		return fmt.Errorf("failed to list child folders: %w", err)
	}
	for i := range children {
		if err := s.deleteRecursive(ctx, &children[i]); err != nil {
			return err
		}
	}

	// 3. The folder itself
	if err := s.folderRepo.Delete(ctx, folder.ID); err != nil {
		return fmt.Errorf("failed to delete folder %q: %w", folder.Name, err)
	}
	s.logger.Debug("deleted folder", "id", folder.ID, "name", folder.Name)
	return nil
}

// BulkMoveFolders moves folders one at a time so each cycle check sees the
// moves before it. Invalid items are skipped; store failures abort.
func (s *folderService) BulkMoveFolders(ctx context.Context, ids []string, targetID *string, path string) (int, error) {
	ident, err := requireIdentity(ctx)
	if err != nil {
		return 0, err
	}

	ids = dedupe(ids)
	if err := validateBulkIDs(ids); err != nil {
		return 0, err
	}

	targetID = normalizeParent(targetID)
	if targetID != nil {
		if _, err := s.loadFolder(ctx, ident, *targetID); err != nil {
			return 0, fmt.Errorf("target folder: %w", err)
		}
	}

	defer revalidate(ctx, s.revalidator, s.logger, path)

	moved := 0
	for _, id := range ids {
		ok, err := s.tryMove(ctx, ident, id, targetID)
		if err != nil {
			return moved, fmt.Errorf("bulk move stopped after %d of %d folders: %w", moved, len(ids), err)
		}
		if ok {
			moved++
		}
	}

	s.logger.Info("folders moved",
		"requested", len(ids),
		"moved", moved,
		"parent_id", targetID,
	)
	return moved, nil
}

// tryMove applies one bulk move item. It reports false with a nil error when
// the item is invalid and should be skipped.
func (s *folderService) tryMove(ctx context.Context, ident models.Identity, id string, targetID *string) (bool, error) {
	if targetID != nil && *targetID == id {
		s.logger.Debug("skipping self move", "id", id)
		return false, nil
	}

	folder, err := s.loadFolder(ctx, ident, id)
	if err != nil {
		if isSkippable(err) {
			s.logger.Debug("skipping folder", "id", id, "reason", err)
			return false, nil
		}
		return false, err
	}

	if targetID != nil {
		if err := validateNoCircularReference(ctx, s.folderRepo, folder.ID, *targetID); err != nil {
			if isSkippable(err) {
				s.logger.Debug("skipping folder", "id", id, "reason", err)
				return false, nil
			}
			return false, err
		}
	}

	// Already under the target: counted, nothing written
	if sameParent(folder.ParentID, targetID) {
		return true, nil
	}

	folder.ParentID = targetID
	if err := s.folderRepo.Update(ctx, folder); err != nil {
		return false, err
	}
	return true, nil
}

// BulkDeleteFolders guards every target before deleting any of them
func (s *folderService) BulkDeleteFolders(ctx context.Context, ids []string, path string) error {
	ident, err := requireIdentity(ctx)
	if err != nil {
		return err
	}

	ids = dedupe(ids)
	if err := validateBulkIDs(ids); err != nil {
		return err
	}

	// Phase 1: load and guard everything; nothing is written yet
	targets := make([]*docsystem.Folder, 0, len(ids))
	for _, id := range ids {
		folder, err := s.loadFolder(ctx, ident, id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue // already gone
			}
			return err
		}
		if err := checkFolderDeletable(ctx, s.folderRepo, folder); err != nil {
			return err
		}
		targets = append(targets, folder)
	}

	defer revalidate(ctx, s.revalidator, s.logger, path)

	// Phase 2: delete. A target may have vanished as a descendant of an
	// earlier one, so re-check existence first.
	deleted := 0
	for _, folder := range targets {
		if _, err := s.folderRepo.GetByID(ctx, folder.ID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return fmt.Errorf("bulk delete stopped after %d of %d folders: %w", deleted, len(targets), err)
		}
		if err := s.deleteRecursive(ctx, folder); err != nil {
			return fmt.Errorf("bulk delete stopped after %d of %d folders: %w", deleted, len(targets), err)
		}
		deleted++
	}

	s.logger.Info("folders deleted", "requested", len(ids), "deleted", deleted)
	return nil
}

// ListChildren lists the caller's visible folders and files under a parent,
// newest first. The root listing also adopts files whose folder is gone.
func (s *folderService) ListChildren(ctx context.Context, parentID *string) (*docsystem.Contents, error) {
	ident, err := requireIdentity(ctx)
	if err != nil {
		return nil, err
	}

	parentID = normalizeParent(parentID)
	contents := &docsystem.Contents{}

	if parentID != nil {
		folder, err := s.loadFolder(ctx, ident, *parentID)
		if err != nil {
			return nil, err
		}
		s.setPath(ctx, folder)
		contents.Folder = folder
	}

	location := docsysRepo.Under(parentID)

	folders, err := s.folderRepo.List(ctx, docsysRepo.FolderFilter{
		AccountID: ident.AccountID,
		Parent:    location,
		Viewer:    &ident,
		Sort:      docsysRepo.NewestFirst,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list child folders: %w", err)
	}

	files, err := s.fileRepo.List(ctx, docsysRepo.FileFilter{
		AccountID: ident.AccountID,
		Folder:    location,
		Viewer:    &ident,
		Sort:      docsysRepo.NewestFirst,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}

	if parentID == nil {
		orphans, err := s.orphanedFiles(ctx, ident)
		if err != nil {
			return nil, err
		}
		if len(orphans) > 0 {
			files = append(files, orphans...)
			sort.SliceStable(files, func(i, j int) bool {
				return files[i].CreatedAt.After(files[j].CreatedAt)
			})
		}
	}

	s.urls.attach(ctx, files)

	contents.Folders = folders
	contents.Files = files
	return contents, nil
}

// orphanedFiles returns visible files whose folder no longer exists
func (s *folderService) orphanedFiles(ctx context.Context, ident models.Identity) ([]docsystem.File, error) {
	filed, err := s.fileRepo.List(ctx, docsysRepo.FileFilter{
		AccountID: ident.AccountID,
		Folder:    docsysRepo.Location{Kind: docsysRepo.Filed},
		Viewer:    &ident,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list filed files: %w", err)
	}
	if len(filed) == 0 {
		return nil, nil
	}

	folderIDs := make([]string, 0, len(filed))
	for _, f := range filed {
		folderIDs = append(folderIDs, *f.FolderID)
	}
	existing, err := s.folderRepo.ExistingIDs(ctx, ident.AccountID, dedupe(folderIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to check folder existence: %w", err)
	}

	var orphans []docsystem.File
	for _, f := range filed {
		if !existing[*f.FolderID] {
			orphans = append(orphans, f)
		}
	}
	if len(orphans) > 0 {
		s.logger.Warn("orphaned files listed at root",
			"account_id", ident.AccountID,
			"count", len(orphans),
		)
	}
	return orphans, nil
}

// GetBreadcrumbs returns the folders from the root down to id
func (s *folderService) GetBreadcrumbs(ctx context.Context, id string) ([]docsystem.Folder, error) {
	ident, err := requireIdentity(ctx)
	if err != nil {
		return nil, err
	}

	if _, err := s.loadFolder(ctx, ident, id); err != nil {
		return nil, err
	}

	return breadcrumbs(ctx, s.folderRepo, id)
}

// loadFolder fetches a folder and checks the caller may act on it
func (s *folderService) loadFolder(ctx context.Context, ident models.Identity, id string) (*docsystem.Folder, error) {
	folder, err := s.folderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizer.CanAccessFolder(ctx, ident, folder); err != nil {
		return nil, err
	}
	return folder, nil
}

// setPath fills the computed display path, falling back to the name
func (s *folderService) setPath(ctx context.Context, folder *docsystem.Folder) {
	path, err := folderPath(ctx, s.folderRepo, folder.ID)
	if err != nil {
		s.logger.Warn("failed to compute path", "folder_id", folder.ID, "error", err)
		folder.Path = folder.Name
		return
	}
	folder.Path = path
}

// validateCreateRequest validates a folder creation request
func (s *folderService) validateCreateRequest(req *docsysSvc.CreateFolderRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Name,
			validation.Required,
			validation.RuneLength(1, config.MaxFolderNameLength),
		),
	)
}

// validateUpdateRequest validates a folder update request
func (s *folderService) validateUpdateRequest(req *docsysSvc.UpdateFolderRequest) error {
	// At least one field must be provided
	if req.Name == nil && req.Users == nil && !req.Parent.Present {
		return fmt.Errorf("at least one field must be provided")
	}

	var rules []*validation.FieldRules
	if req.Name != nil {
		rules = append(rules,
			validation.Field(&req.Name,
				validation.Required,
				validation.RuneLength(1, config.MaxFolderNameLength),
			),
		)
	}
	if req.Users != nil {
		rules = append(rules, validation.Field(&req.Users, emailListRule))
	}

	return validation.ValidateStruct(req, rules...)
}

func sameParent(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// isSkippable reports errors that make a bulk item invalid rather than
// failing the whole batch
func isSkippable(err error) bool {
	return errors.Is(err, domain.ErrNotFound) ||
		errors.Is(err, domain.ErrForbidden) ||
		errors.Is(err, domain.ErrCycleDetected) ||
		errors.Is(err, domain.ErrInvalidOperation)
}

func validateBulkIDs(ids []string) error {
	if len(ids) == 0 {
		return fmt.Errorf("%w: no ids provided", domain.ErrValidation)
	}
	if len(ids) > config.MaxBulkItems {
		return fmt.Errorf("%w: at most %d ids per request", domain.ErrValidation, config.MaxBulkItems)
	}
	return nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
