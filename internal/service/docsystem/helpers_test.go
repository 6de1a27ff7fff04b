package docsystem

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"dossier/internal/domain/models"
	docsystem "dossier/internal/domain/models/docsystem"
	docsysSvc "dossier/internal/domain/services/docsystem"
	"dossier/internal/repository/memory"
	"dossier/internal/service/auth"
	blobmem "dossier/internal/storage/memory"
	"dossier/internal/templates"
)

var (
	alice = models.Identity{AccountID: "acct-1", OwnerID: "user-alice", Email: "alice@example.com"}
	bob   = models.Identity{AccountID: "acct-1", OwnerID: "user-bob", Email: "bob@example.com"}
	eve   = models.Identity{AccountID: "acct-2", OwnerID: "user-eve", Email: "eve@example.com"}

	errStore = errors.New("store unavailable")
)

// opLog records store writes in order so tests can assert sequencing
type opLog struct {
	mu  sync.Mutex
	ops []string
}

func (l *opLog) add(op string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ops = append(l.ops, op)
}

func (l *opLog) snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.ops...)
}

// countingFolderRepo wraps the memory store, counting calls and injecting
// failures.
type countingFolderRepo struct {
	*memory.FolderRepository
	log *opLog

	mu                        sync.Mutex
	gets                      int
	creates, updates, deletes int
	failDelete                map[string]bool
	failCreateAfter           int // 0 = never
}

func (r *countingFolderRepo) GetByID(ctx context.Context, id string) (*docsystem.Folder, error) {
	r.mu.Lock()
	r.gets++
	r.mu.Unlock()
	return r.FolderRepository.GetByID(ctx, id)
}

func (r *countingFolderRepo) Create(ctx context.Context, folder *docsystem.Folder) error {
	r.mu.Lock()
	if r.failCreateAfter > 0 && r.creates >= r.failCreateAfter {
		r.mu.Unlock()
		return errStore
	}
	r.creates++
	r.mu.Unlock()
	return r.FolderRepository.Create(ctx, folder)
}

func (r *countingFolderRepo) Update(ctx context.Context, folder *docsystem.Folder) error {
	r.mu.Lock()
	r.updates++
	r.mu.Unlock()
	return r.FolderRepository.Update(ctx, folder)
}

func (r *countingFolderRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	if r.failDelete[id] {
		r.mu.Unlock()
		return errStore
	}
	r.deletes++
	r.mu.Unlock()
	r.log.add("folder:" + id)
	return r.FolderRepository.Delete(ctx, id)
}

func (r *countingFolderRepo) writes() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.creates + r.updates + r.deletes
}

func (r *countingFolderRepo) createCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.creates
}

func (r *countingFolderRepo) getCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.gets
}

type countingFileRepo struct {
	*memory.FileRepository
	log *opLog

	mu                        sync.Mutex
	creates, updates, deletes int
	failCreate                bool
}

func (r *countingFileRepo) Create(ctx context.Context, file *docsystem.File) error {
	r.mu.Lock()
	if r.failCreate {
		r.mu.Unlock()
		return errStore
	}
	r.creates++
	r.mu.Unlock()
	return r.FileRepository.Create(ctx, file)
}

func (r *countingFileRepo) Update(ctx context.Context, file *docsystem.File) error {
	r.mu.Lock()
	r.updates++
	r.mu.Unlock()
	return r.FileRepository.Update(ctx, file)
}

func (r *countingFileRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	r.deletes++
	r.mu.Unlock()
	r.log.add("file:" + id)
	return r.FileRepository.Delete(ctx, id)
}

func (r *countingFileRepo) writes() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.creates + r.updates + r.deletes
}

// loggingBlobStore records blob deletes into the shared op log
type loggingBlobStore struct {
	*blobmem.BlobStore
	log *opLog
}

func (s *loggingBlobStore) Delete(ctx context.Context, ref string) error {
	if err := s.BlobStore.Delete(ctx, ref); err != nil {
		return err
	}
	s.log.add("blob:" + ref)
	return nil
}

type recordingRevalidator struct {
	mu    sync.Mutex
	paths []string
}

func (r *recordingRevalidator) Revalidate(ctx context.Context, path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, path)
	return nil
}

func (r *recordingRevalidator) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.paths)
}

type testEnv struct {
	log      *opLog
	folders  *countingFolderRepo
	files    *countingFileRepo
	blobs    *loggingBlobStore
	reval    *recordingRevalidator
	progress *MemoryProgressTracker
	registry *templates.Registry

	folderSvc docsysSvc.FolderService
	fileSvc   docsysSvc.FileService
	treeSvc   docsysSvc.TreeService
	prov      docsysSvc.Provisioner
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	log := &opLog{}
	folders := &countingFolderRepo{FolderRepository: memory.NewFolderRepository(), log: log, failDelete: map[string]bool{}}
	files := &countingFileRepo{FileRepository: memory.NewFileRepository(), log: log}
	blobs := &loggingBlobStore{BlobStore: blobmem.NewBlobStore(), log: log}
	reval := &recordingRevalidator{}
	progress := NewMemoryProgressTracker()

	registry, err := templates.NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	authorizer := auth.NewOwnerBasedAuthorizer()
	limits := DefaultFileLimits()

	return &testEnv{
		log:       log,
		folders:   folders,
		files:     files,
		blobs:     blobs,
		reval:     reval,
		progress:  progress,
		registry:  registry,
		folderSvc: NewFolderService(folders, files, blobs, limits.URLTTL, authorizer, reval, logger),
		fileSvc:   NewFileService(files, folders, blobs, authorizer, reval, limits, logger),
		treeSvc:   NewTreeService(folders, files, logger),
		prov:      NewProvisioner(folders, registry, progress, authorizer, reval, logger),
	}
}

func ctxFor(id models.Identity) context.Context {
	return models.WithIdentity(context.Background(), id)
}

func (e *testEnv) folder(t *testing.T, ctx context.Context, name string, parent *docsystem.Folder) *docsystem.Folder {
	t.Helper()
	return e.createFolder(t, ctx, name, parent, false)
}

func (e *testEnv) systemFolder(t *testing.T, ctx context.Context, name string, parent *docsystem.Folder) *docsystem.Folder {
	t.Helper()
	return e.createFolder(t, ctx, name, parent, true)
}

func (e *testEnv) createFolder(t *testing.T, ctx context.Context, name string, parent *docsystem.Folder, system bool) *docsystem.Folder {
	t.Helper()
	req := &docsysSvc.CreateFolderRequest{Name: name, IsSystem: system}
	if parent != nil {
		req.ParentID = &parent.ID
	}
	f, err := e.folderSvc.CreateFolder(ctx, req)
	if err != nil {
		t.Fatalf("CreateFolder(%q) error = %v", name, err)
	}
	return f
}

func (e *testEnv) upload(t *testing.T, ctx context.Context, name, content string, folder *docsystem.Folder) *docsystem.File {
	t.Helper()
	req := &docsysSvc.UploadFileRequest{
		Name:        name,
		Size:        int64(len(content)),
		ContentType: "application/octet-stream",
		Content:     strings.NewReader(content),
	}
	if folder != nil {
		req.FolderID = &folder.ID
	}
	f, err := e.fileSvc.UploadFile(ctx, req)
	if err != nil {
		t.Fatalf("UploadFile(%q) error = %v", name, err)
	}
	return f
}

func (e *testEnv) exists(t *testing.T, id string) bool {
	t.Helper()
	_, err := e.folders.FolderRepository.GetByID(context.Background(), id)
	return err == nil
}

func (e *testEnv) fileExists(t *testing.T, id string) bool {
	t.Helper()
	_, err := e.files.FileRepository.GetByID(context.Background(), id)
	return err == nil
}

func (e *testEnv) storedFile(t *testing.T, id string) *docsystem.File {
	t.Helper()
	f, err := e.files.FileRepository.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("stored file %s: %v", id, err)
	}
	return f
}

func (e *testEnv) storedFolder(t *testing.T, id string) *docsystem.Folder {
	t.Helper()
	f, err := e.folders.FolderRepository.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("stored folder %s: %v", id, err)
	}
	return f
}

func ptr(s string) *string { return &s }
