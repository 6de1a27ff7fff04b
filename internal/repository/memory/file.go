package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"dossier/internal/domain"
	"dossier/internal/domain/models/docsystem"
	docsysRepo "dossier/internal/domain/repositories/docsystem"

	"github.com/google/uuid"
)

type fileEntry struct {
	seq  uint64
	file docsystem.File
}

// FileRepository is an in-process FileRepository for tests and single-node
// development.
type FileRepository struct {
	mu    sync.RWMutex
	files map[string]*fileEntry
	seq   uint64
	now   func() time.Time
}

// NewFileRepository creates an empty in-memory file store
func NewFileRepository() *FileRepository {
	return &FileRepository{
		files: make(map[string]*fileEntry),
		now:   time.Now,
	}
}

func cloneFile(f docsystem.File) docsystem.File {
	f.FolderID = cloneID(f.FolderID)
	f.Users = cloneStrings(f.Users)
	f.URL = ""
	return f
}

// Create stores a new file record and assigns its ID and timestamps
func (r *FileRepository) Create(ctx context.Context, file *docsystem.File) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if file.ID == "" {
		file.ID = uuid.NewString()
	}
	if _, exists := r.files[file.ID]; exists {
		return fmt.Errorf("create file: id %s already exists", file.ID)
	}

	now := r.now()
	if file.CreatedAt.IsZero() {
		file.CreatedAt = now
	}
	file.UpdatedAt = now
	if file.Users == nil {
		file.Users = []string{}
	}

	r.seq++
	r.files[file.ID] = &fileEntry{seq: r.seq, file: cloneFile(*file)}
	return nil
}

// GetByID retrieves a file by ID
func (r *FileRepository) GetByID(ctx context.Context, id string) (*docsystem.File, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.files[id]
	if !ok {
		return nil, fmt.Errorf("file %s: %w", id, domain.ErrNotFound)
	}
	f := cloneFile(entry.file)
	return &f, nil
}

// Update writes name, folder, users and updated_at
func (r *FileRepository) Update(ctx context.Context, file *docsystem.File) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.files[file.ID]
	if !ok {
		return fmt.Errorf("file %s: %w", file.ID, domain.ErrNotFound)
	}

	file.UpdatedAt = r.now()
	entry.file.Name = file.Name
	entry.file.FolderID = cloneID(file.FolderID)
	entry.file.Users = cloneStrings(file.Users)
	entry.file.UpdatedAt = file.UpdatedAt
	return nil
}

// Delete removes a file record
func (r *FileRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.files[id]; !ok {
		return fmt.Errorf("file %s: %w", id, domain.ErrNotFound)
	}
	delete(r.files, id)
	return nil
}

// List returns files matching the filter
func (r *FileRepository) List(ctx context.Context, filter docsysRepo.FileFilter) ([]docsystem.File, error) {
	r.mu.RLock()
	entries := make([]*fileEntry, 0)
	for _, entry := range r.files {
		if matchFile(&entry.file, filter) {
			entries = append(entries, entry)
		}
	}
	r.mu.RUnlock()

	entries = orderAndLimit(entries, func(e *fileEntry) sortable {
		return sortable{seq: e.seq, name: e.file.Name, size: e.file.Size, createdAt: e.file.CreatedAt}
	}, filter.Sort, filter.Limit)

	files := make([]docsystem.File, 0, len(entries))
	for _, entry := range entries {
		files = append(files, cloneFile(entry.file))
	}
	return files, nil
}

// Len returns the number of stored file records
func (r *FileRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.files)
}
