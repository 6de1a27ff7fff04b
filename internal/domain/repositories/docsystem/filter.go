package docsystem

import (
	"fmt"
	"strings"

	"dossier/internal/domain/models"
)

// LocationKind selects how a filter constrains the parent reference
// (ParentID for folders, FolderID for files).
type LocationKind int

const (
	// AnyLocation applies no constraint
	AnyLocation LocationKind = iota
	// AtRoot matches records whose parent reference is NULL
	AtRoot
	// InFolder matches records whose parent reference equals Location.ID
	InFolder
	// Filed matches records whose parent reference is not NULL
	Filed
)

// Location is a parent-reference constraint.
type Location struct {
	Kind LocationKind
	ID   string
}

// Root is the "is null" constraint.
func Root() Location { return Location{Kind: AtRoot} }

// Inside is the equality constraint on a parent id.
func Inside(id string) Location { return Location{Kind: InFolder, ID: id} }

// Under converts a nullable parent id into a Location: nil means root.
func Under(parentID *string) Location {
	if parentID == nil {
		return Root()
	}
	return Inside(*parentID)
}

// Matches reports whether a parent reference satisfies the constraint.
func (l Location) Matches(parentID *string) bool {
	switch l.Kind {
	case AtRoot:
		return parentID == nil
	case InFolder:
		return parentID != nil && *parentID == l.ID
	case Filed:
		return parentID != nil
	default:
		return true
	}
}

// SortField names a sortable column
type SortField string

const (
	SortCreatedAt SortField = "created_at"
	SortName      SortField = "name"
	SortSize      SortField = "size"
)

// Sort is an ordering over one field
type Sort struct {
	Field SortField
	Desc  bool
}

// NewestFirst is the default listing order.
var NewestFirst = Sort{Field: SortCreatedAt, Desc: true}

// ParseSort parses "field-asc" / "field-desc" (e.g. "name-asc", "$createdAt-desc").
// An empty string yields NewestFirst.
func ParseSort(s string) (Sort, error) {
	if s == "" {
		return NewestFirst, nil
	}
	field, dir, ok := strings.Cut(s, "-")
	if !ok {
		return Sort{}, fmt.Errorf("sort %q must be field-asc or field-desc", s)
	}

	var sort Sort
	switch strings.TrimPrefix(field, "$") {
	case "created_at", "createdAt":
		sort.Field = SortCreatedAt
	case "name":
		sort.Field = SortName
	case "size":
		sort.Field = SortSize
	default:
		return Sort{}, fmt.Errorf("unknown sort field %q", field)
	}

	switch dir {
	case "asc":
	case "desc":
		sort.Desc = true
	default:
		return Sort{}, fmt.Errorf("unknown sort direction %q", dir)
	}
	return sort, nil
}

// FolderFilter selects folders inside one account.
type FolderFilter struct {
	AccountID string
	Parent    Location
	Name      *string          // exact name match
	Viewer    *models.Identity // owner OR shared-with; nil = no visibility constraint
	Sort      Sort
	Limit     int // 0 = unlimited
}

// FileFilter selects files inside one account.
type FileFilter struct {
	AccountID    string
	Folder       Location
	Viewer       *models.Identity
	Types        []string // file type classifications; empty = all
	NameContains string   // case-insensitive substring
	Sort         Sort
	Limit        int
}
