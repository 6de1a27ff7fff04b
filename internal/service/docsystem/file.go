package docsystem

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
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
	"golang.org/x/sync/errgroup"
)

// FileLimits carries the configured upload and quota limits
type FileLimits struct {
	MaxUploadBytes    int64
	StorageQuotaBytes int64
	URLTTL            time.Duration
}

// DefaultFileLimits returns the built-in limits
func DefaultFileLimits() FileLimits {
	return FileLimits{
		MaxUploadBytes:    config.DefaultMaxUploadBytes,
		StorageQuotaBytes: config.DefaultStorageQuotaBytes,
		URLTTL:            time.Hour,
	}
}

type fileService struct {
	fileRepo    docsysRepo.FileRepository
	folderRepo  docsysRepo.FolderRepository
	blobs       repositories.BlobStore
	urls        *urlSigner
	authorizer  services.ResourceAuthorizer
	revalidator services.Revalidator
	limits      FileLimits
	logger      *slog.Logger
}

// NewFileService creates a new file service
func NewFileService(
	fileRepo docsysRepo.FileRepository,
	folderRepo docsysRepo.FolderRepository,
	blobs repositories.BlobStore,
	authorizer services.ResourceAuthorizer,
	revalidator services.Revalidator,
	limits FileLimits,
	logger *slog.Logger,
) docsysSvc.FileService {
	return &fileService{
		fileRepo:    fileRepo,
		folderRepo:  folderRepo,
		blobs:       blobs,
		urls:        &urlSigner{blobs: blobs, ttl: limits.URLTTL, logger: logger},
		authorizer:  authorizer,
		revalidator: revalidator,
		limits:      limits,
		logger:      logger,
	}
}

// UploadFile stores the blob, then the record. If the record write fails the
// blob is removed again.
func (s *fileService) UploadFile(ctx context.Context, req *docsysSvc.UploadFileRequest) (*docsystem.File, error) {
	ident, err := requireIdentity(ctx)
	if err != nil {
		return nil, err
	}

	req.Name = strings.TrimSpace(req.Name)
	req.FolderID = normalizeParent(req.FolderID)
	if req.Size > s.limits.MaxUploadBytes {
		return nil, fmt.Errorf("%w: file is %d bytes, limit is %d", domain.ErrPayloadTooLarge, req.Size, s.limits.MaxUploadBytes)
	}
	if err := s.validateUploadRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	if req.FolderID != nil {
		if _, err := s.loadFolder(ctx, ident, *req.FolderID); err != nil {
			return nil, fmt.Errorf("target folder: %w", err)
		}
	}

	fileType, ext := docsystem.ClassifyFile(req.Name)

	ref, err := s.blobs.Put(ctx, req.Name, req.Content, req.Size, req.ContentType)
	if err != nil {
		return nil, fmt.Errorf("store blob: %w", err)
	}

	now := time.Now()
	file := &docsystem.File{
		Name:      req.Name,
		OwnerID:   ident.OwnerID,
		AccountID: ident.AccountID,
		FolderID:  req.FolderID,
		Size:      req.Size,
		BlobRef:   ref,
		Users:     []string{},
		Type:      fileType,
		Extension: ext,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.fileRepo.Create(ctx, file); err != nil {
		if delErr := s.blobs.Delete(context.WithoutCancel(ctx), ref); delErr != nil {
			s.logger.Error("failed to remove blob after record write failed",
				"blob_ref", ref,
				"error", delErr,
			)
		}
		return nil, err
	}

	s.urls.attachOne(ctx, file)

	s.logger.Info("file uploaded",
		"id", file.ID,
		"name", file.Name,
		"size", file.Size,
		"type", file.Type,
		"folder_id", file.FolderID,
	)

	revalidate(ctx, s.revalidator, s.logger, req.Path)
	return file, nil
}

// GetFile retrieves a file with a fetchable URL
func (s *fileService) GetFile(ctx context.Context, id string) (*docsystem.File, error) {
	ident, err := requireIdentity(ctx)
	if err != nil {
		return nil, err
	}

	file, err := s.loadFile(ctx, ident, id)
	if err != nil {
		return nil, err
	}

	s.urls.attachOne(ctx, file)
	return file, nil
}

// UpdateFile renames, re-shares and/or moves a file with a single write.
// Renames keep the stored extension.
func (s *fileService) UpdateFile(ctx context.Context, id string, req *docsysSvc.UpdateFileRequest) (*docsystem.File, error) {
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

	file, err := s.loadFile(ctx, ident, id)
	if err != nil {
		return nil, err
	}

	if req.Folder.Present {
		target := normalizeParent(req.Folder.Value)
		if target != nil {
			if _, err := s.loadFolder(ctx, ident, *target); err != nil {
				return nil, fmt.Errorf("target folder: %w", err)
			}
		}
		file.FolderID = target
	}
	if req.Name != nil {
		file.Name = withExtension(*req.Name, file.Extension)
	}
	if req.Users != nil {
		file.Users = *req.Users
	}

	if err := s.fileRepo.Update(ctx, file); err != nil {
		return nil, err
	}

	s.urls.attachOne(ctx, file)

	s.logger.Info("file updated",
		"id", file.ID,
		"name", file.Name,
		"folder_id", file.FolderID,
		"users", len(file.Users),
	)

	revalidate(ctx, s.revalidator, s.logger, req.Path)
	return file, nil
}

// withExtension appends ".ext" unless name already carries it
func withExtension(name, ext string) string {
	if ext == "" || strings.HasSuffix(strings.ToLower(name), "."+ext) {
		return name
	}
	return name + "." + ext
}

// MoveFile reassigns a file's folder. Files cannot be ancestors, so no cycle
// check is needed.
func (s *fileService) MoveFile(ctx context.Context, id string, targetID *string, path string) (*docsystem.File, error) {
	ident, err := requireIdentity(ctx)
	if err != nil {
		return nil, err
	}

	targetID = normalizeParent(targetID)

	file, err := s.loadFile(ctx, ident, id)
	if err != nil {
		return nil, err
	}

	if targetID != nil {
		if _, err := s.loadFolder(ctx, ident, *targetID); err != nil {
			return nil, fmt.Errorf("target folder: %w", err)
		}
	}

	if !sameParent(file.FolderID, targetID) {
		file.FolderID = targetID
		if err := s.fileRepo.Update(ctx, file); err != nil {
			return nil, err
		}
		s.logger.Info("file moved", "id", file.ID, "folder_id", file.FolderID)
		revalidate(ctx, s.revalidator, s.logger, path)
	}

	s.urls.attachOne(ctx, file)
	return file, nil
}

// DeleteFile deletes the blob then the record
func (s *fileService) DeleteFile(ctx context.Context, id, path string) error {
	ident, err := requireIdentity(ctx)
	if err != nil {
		return err
	}

	file, err := s.loadFile(ctx, ident, id)
	if err != nil {
		return err
	}

	if err := checkFileDeletable(file); err != nil {
		return err
	}

	defer revalidate(ctx, s.revalidator, s.logger, path)

	if err := purgeFile(ctx, s.fileRepo, s.blobs, file); err != nil {
		return err
	}

	s.logger.Info("file deleted", "id", file.ID, "name", file.Name)
	return nil
}

// BulkMoveFiles moves files concurrently; they are independent of each
// other. Missing or inaccessible files are skipped.
func (s *fileService) BulkMoveFiles(ctx context.Context, ids []string, targetID *string, path string) (int, error) {
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

	var moved atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(config.BulkFileConcurrency)

	for _, id := range ids {
		g.Go(func() error {
			file, err := s.loadFile(gctx, ident, id)
			if err != nil {
				if isSkippable(err) {
					s.logger.Debug("skipping file", "id", id, "reason", err)
					return nil
				}
				return err
			}
			if !sameParent(file.FolderID, targetID) {
				file.FolderID = targetID
				if err := s.fileRepo.Update(gctx, file); err != nil {
					return fmt.Errorf("move file %s: %w", id, err)
				}
			}
			moved.Add(1)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return int(moved.Load()), fmt.Errorf("bulk move stopped after %d of %d files: %w", moved.Load(), len(ids), err)
	}

	s.logger.Info("files moved",
		"requested", len(ids),
		"moved", moved.Load(),
		"folder_id", targetID,
	)
	return int(moved.Load()), nil
}

// BulkDeleteFiles guards every file before deleting any of them
func (s *fileService) BulkDeleteFiles(ctx context.Context, ids []string, path string) error {
	ident, err := requireIdentity(ctx)
	if err != nil {
		return err
	}

	ids = dedupe(ids)
	if err := validateBulkIDs(ids); err != nil {
		return err
	}

	targets := make([]*docsystem.File, 0, len(ids))
	for _, id := range ids {
		file, err := s.loadFile(ctx, ident, id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue // already gone
			}
			return err
		}
		if err := checkFileDeletable(file); err != nil {
			return err
		}
		targets = append(targets, file)
	}

	defer revalidate(ctx, s.revalidator, s.logger, path)

	var deleted atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(config.BulkFileConcurrency)

	for _, file := range targets {
		g.Go(func() error {
			if err := purgeFile(gctx, s.fileRepo, s.blobs, file); err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					return nil
				}
				return fmt.Errorf("delete file %q: %w", file.Name, err)
			}
			deleted.Add(1)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("bulk delete stopped after %d of %d files: %w", deleted.Load(), len(targets), err)
	}

	s.logger.Info("files deleted", "requested", len(ids), "deleted", deleted.Load())
	return nil
}

// ListFiles searches the caller's visible files across all folders
func (s *fileService) ListFiles(ctx context.Context, query *docsysSvc.ListFilesQuery) ([]docsystem.File, error) {
	ident, err := requireIdentity(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.validateListQuery(query); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	order, err := docsysRepo.ParseSort(query.Sort)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	files, err := s.fileRepo.List(ctx, docsysRepo.FileFilter{
		AccountID:    ident.AccountID,
		Viewer:       &ident,
		Types:        query.Types,
		NameContains: strings.TrimSpace(query.Search),
		Sort:         order,
		Limit:        query.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}

	s.urls.attach(ctx, files)
	return files, nil
}

// GetUsage sums the caller's own files per type
func (s *fileService) GetUsage(ctx context.Context) (*docsystem.Usage, error) {
	ident, err := requireIdentity(ctx)
	if err != nil {
		return nil, err
	}

	owner := models.Identity{AccountID: ident.AccountID, OwnerID: ident.OwnerID}
	files, err := s.fileRepo.List(ctx, docsysRepo.FileFilter{
		AccountID: ident.AccountID,
		Viewer:    &owner,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}

	usage := &docsystem.Usage{
		Buckets: make(map[docsystem.FileType]docsystem.UsageBucket, len(docsystem.AllFileTypes)),
		All:     s.limits.StorageQuotaBytes,
	}
	for _, t := range docsystem.AllFileTypes {
		usage.Buckets[t] = docsystem.UsageBucket{}
	}

	for _, f := range files {
		t := f.Type
		if _, ok := usage.Buckets[t]; !ok {
			t = docsystem.FileTypeOther
		}
		bucket := usage.Buckets[t]
		bucket.Size += f.Size
		if bucket.LatestDate == nil || f.UpdatedAt.After(*bucket.LatestDate) {
			updated := f.UpdatedAt
			bucket.LatestDate = &updated
		}
		usage.Buckets[t] = bucket
		usage.Used += f.Size
	}

	return usage, nil
}

// loadFile fetches a file and checks the caller may act on it
func (s *fileService) loadFile(ctx context.Context, ident models.Identity, id string) (*docsystem.File, error) {
	file, err := s.fileRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizer.CanAccessFile(ctx, ident, file); err != nil {
		return nil, err
	}
	return file, nil
}

// loadFolder fetches a target folder and checks access
func (s *fileService) loadFolder(ctx context.Context, ident models.Identity, id string) (*docsystem.Folder, error) {
	folder, err := s.folderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizer.CanAccessFolder(ctx, ident, folder); err != nil {
		return nil, err
	}
	return folder, nil
}

func (s *fileService) validateUploadRequest(req *docsysSvc.UploadFileRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Name,
			validation.Required,
			validation.RuneLength(1, config.MaxFileNameLength),
		),
		validation.Field(&req.Size, validation.Required, validation.Min(int64(1))),
		validation.Field(&req.Content, validation.NotNil),
	)
}

func (s *fileService) validateUpdateRequest(req *docsysSvc.UpdateFileRequest) error {
	if req.Name == nil && req.Users == nil && !req.Folder.Present {
		return fmt.Errorf("at least one field must be provided")
	}

	var rules []*validation.FieldRules
	if req.Name != nil {
		rules = append(rules,
			validation.Field(&req.Name,
				validation.Required,
				validation.RuneLength(1, config.MaxFileNameLength),
			),
		)
	}
	if req.Users != nil {
		rules = append(rules, validation.Field(&req.Users, emailListRule))
	}
	return validation.ValidateStruct(req, rules...)
}

func (s *fileService) validateListQuery(q *docsysSvc.ListFilesQuery) error {
	types := make([]interface{}, 0, len(docsystem.AllFileTypes))
	for _, t := range docsystem.AllFileTypes {
		types = append(types, string(t))
	}
	return validation.ValidateStruct(q,
		validation.Field(&q.Types, validation.Each(validation.In(types...))),
		validation.Field(&q.Limit, validation.Min(0)),
	)
}

// purgeFile deletes a file's blob, then its record. Shared by file deletes
// and the recursive folder delete.
func purgeFile(ctx context.Context, fileRepo docsysRepo.FileRepository, blobs repositories.BlobStore, file *docsystem.File) error {
	if file.BlobRef != "" {
		if err := blobs.Delete(ctx, file.BlobRef); err != nil {
			return fmt.Errorf("delete blob: %w", err)
		}
	}
	if err := fileRepo.Delete(ctx, file.ID); err != nil {
		return err
	}
	return nil
}

// urlSigner fills File.URL from the blob store
type urlSigner struct {
	blobs  repositories.BlobStore
	ttl    time.Duration
	logger *slog.Logger
}

func (u *urlSigner) attachOne(ctx context.Context, file *docsystem.File) {
	if file.BlobRef == "" {
		return
	}
	url, err := u.blobs.URLFor(ctx, file.BlobRef, u.ttl)
	if err != nil {
		u.logger.Warn("failed to sign file url", "file_id", file.ID, "error", err)
		return
	}
	file.URL = url
}

func (u *urlSigner) attach(ctx context.Context, files []docsystem.File) {
	for i := range files {
		u.attachOne(ctx, &files[i])
	}
}
