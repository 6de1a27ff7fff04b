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

type folderEntry struct {
	seq    uint64
	folder docsystem.Folder
}

// FolderRepository is an in-process FolderRepository for tests and
// single-node development.
type FolderRepository struct {
	mu      sync.RWMutex
	folders map[string]*folderEntry
	seq     uint64
	now     func() time.Time
}

// NewFolderRepository creates an empty in-memory folder store
func NewFolderRepository() *FolderRepository {
	return &FolderRepository{
		folders: make(map[string]*folderEntry),
		now:     time.Now,
	}
}

func cloneFolder(f docsystem.Folder) docsystem.Folder {
	f.ParentID = cloneID(f.ParentID)
	f.Users = cloneStrings(f.Users)
	f.Path = ""
	return f
}

// Create stores a new folder and assigns its ID and timestamps
func (r *FolderRepository) Create(ctx context.Context, folder *docsystem.Folder) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if folder.ID == "" {
		folder.ID = uuid.NewString()
	}
	if _, exists := r.folders[folder.ID]; exists {
		return fmt.Errorf("create folder: id %s already exists", folder.ID)
	}

	now := r.now()
	if folder.CreatedAt.IsZero() {
		folder.CreatedAt = now
	}
	folder.UpdatedAt = now
	if folder.Users == nil {
		folder.Users = []string{}
	}

	r.seq++
	r.folders[folder.ID] = &folderEntry{seq: r.seq, folder: cloneFolder(*folder)}
	return nil
}

// GetByID retrieves a folder by ID
func (r *FolderRepository) GetByID(ctx context.Context, id string) (*docsystem.Folder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.folders[id]
	if !ok {
		return nil, fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}
	f := cloneFolder(entry.folder)
	return &f, nil
}

// Update writes name, parent, users and updated_at
func (r *FolderRepository) Update(ctx context.Context, folder *docsystem.Folder) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.folders[folder.ID]
	if !ok {
		return fmt.Errorf("folder %s: %w", folder.ID, domain.ErrNotFound)
	}

	folder.UpdatedAt = r.now()
	entry.folder.Name = folder.Name
	entry.folder.ParentID = cloneID(folder.ParentID)
	entry.folder.Users = cloneStrings(folder.Users)
	entry.folder.UpdatedAt = folder.UpdatedAt
	return nil
}

// Delete removes a single folder record
func (r *FolderRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.folders[id]; !ok {
		return fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}
	delete(r.folders, id)
	return nil
}

// List returns folders matching the filter
func (r *FolderRepository) List(ctx context.Context, filter docsysRepo.FolderFilter) ([]docsystem.Folder, error) {
	r.mu.RLock()
	entries := make([]*folderEntry, 0)
	for _, entry := range r.folders {
		if matchFolder(&entry.folder, filter) {
			entries = append(entries, entry)
		}
	}
	r.mu.RUnlock()

	entries = orderAndLimit(entries, func(e *folderEntry) sortable {
		return sortable{seq: e.seq, name: e.folder.Name, createdAt: e.folder.CreatedAt}
	}, filter.Sort, filter.Limit)

	folders := make([]docsystem.Folder, 0, len(entries))
	for _, entry := range entries {
		folders = append(folders, cloneFolder(entry.folder))
	}
	return folders, nil
}

// ExistingIDs returns the subset of ids that still exist in the account
func (r *FolderRepository) ExistingIDs(ctx context.Context, accountID string, ids []string) (map[string]bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	existing := make(map[string]bool, len(ids))
	for _, id := range ids {
		if entry, ok := r.folders[id]; ok && entry.folder.AccountID == accountID {
			existing[id] = true
		}
	}
	return existing, nil
}

// Len returns the number of stored folders
func (r *FolderRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.folders)
}
