package memory

import (
	"sort"
	"strings"
	"time"

	"dossier/internal/domain/models"
	"dossier/internal/domain/models/docsystem"
	docsysRepo "dossier/internal/domain/repositories/docsystem"
)

func visibleTo(viewer *models.Identity, ownerID string, users []string) bool {
	if viewer == nil {
		return true
	}
	if ownerID == viewer.OwnerID {
		return true
	}
	if viewer.Email == "" {
		return false
	}
	for _, u := range users {
		if u == viewer.Email {
			return true
		}
	}
	return false
}

func matchFolder(f *docsystem.Folder, filter docsysRepo.FolderFilter) bool {
	if filter.AccountID != "" && f.AccountID != filter.AccountID {
		return false
	}
	if !filter.Parent.Matches(f.ParentID) {
		return false
	}
	if filter.Name != nil && f.Name != *filter.Name {
		return false
	}
	return visibleTo(filter.Viewer, f.OwnerID, f.Users)
}

func matchFile(f *docsystem.File, filter docsysRepo.FileFilter) bool {
	if filter.AccountID != "" && f.AccountID != filter.AccountID {
		return false
	}
	if !filter.Folder.Matches(f.FolderID) {
		return false
	}
	if len(filter.Types) > 0 {
		found := false
		for _, t := range filter.Types {
			if string(f.Type) == t {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if filter.NameContains != "" && !strings.Contains(strings.ToLower(f.Name), strings.ToLower(filter.NameContains)) {
		return false
	}
	return visibleTo(filter.Viewer, f.OwnerID, f.Users)
}

// sortable is the subset of record fields listings can order by
type sortable struct {
	seq       uint64
	name      string
	size      int64
	createdAt time.Time
}

// orderAndLimit sorts keys by the requested field, breaking ties by insertion
// order, then truncates to limit.
func orderAndLimit[T any](items []T, key func(T) sortable, s docsysRepo.Sort, limit int) []T {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := key(items[i]), key(items[j])
		if s.Desc {
			a, b = b, a
		}
		var less, equal bool
		switch s.Field {
		case docsysRepo.SortName:
			less, equal = a.name < b.name, a.name == b.name
		case docsysRepo.SortSize:
			less, equal = a.size < b.size, a.size == b.size
		default:
			less, equal = a.createdAt.Before(b.createdAt), a.createdAt.Equal(b.createdAt)
		}
		if equal {
			less = a.seq < b.seq
		}
		return less
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}

func cloneStrings(in []string) []string {
	if in == nil {
		return []string{}
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func cloneID(id *string) *string {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
