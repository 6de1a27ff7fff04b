package postgres

import (
	"fmt"
	"strings"

	"dossier/internal/domain/models"
	docsysRepo "dossier/internal/domain/repositories/docsystem"
)

const (
	folderColumns = "id, name, owner_id, account_id, parent_id, users, is_system, created_at, updated_at"
	fileColumns   = "id, name, owner_id, account_id, folder_id, size, blob_ref, users, type, extension, is_system_resource, created_at, updated_at"
)

// whereClause accumulates AND-ed conditions with positional arguments
type whereClause struct {
	conds []string
	args  []interface{}
}

// arg appends v and returns its placeholder
func (w *whereClause) arg(v interface{}) string {
	w.args = append(w.args, v)
	return fmt.Sprintf("$%d", len(w.args))
}

func (w *whereClause) add(cond string) {
	w.conds = append(w.conds, cond)
}

func (w *whereClause) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

func (w *whereClause) location(column string, loc docsysRepo.Location) {
	switch loc.Kind {
	case docsysRepo.AtRoot:
		w.add(column + " IS NULL")
	case docsysRepo.InFolder:
		w.add(column + " = " + w.arg(loc.ID))
	case docsysRepo.Filed:
		w.add(column + " IS NOT NULL")
	}
}

// viewer restricts rows to the owner OR anyone in the share list
func (w *whereClause) viewer(v *models.Identity) {
	if v == nil {
		return
	}
	if v.Email == "" {
		w.add("owner_id = " + w.arg(v.OwnerID))
		return
	}
	w.add(fmt.Sprintf("(owner_id = %s OR %s = ANY(users))", w.arg(v.OwnerID), w.arg(v.Email)))
}

func (w *whereClause) account(accountID string) {
	if accountID != "" {
		w.add("account_id = " + w.arg(accountID))
	}
}

// orderBy renders ORDER BY with created_at and id as tie-breakers
func orderBy(s docsysRepo.Sort, hasSize bool) string {
	column := "created_at"
	switch s.Field {
	case docsysRepo.SortName:
		column = "name"
	case docsysRepo.SortSize:
		if hasSize {
			column = "size"
		}
	}

	dir := "ASC"
	if s.Desc {
		dir = "DESC"
	}

	if column == "created_at" {
		return fmt.Sprintf(" ORDER BY created_at %s, id %s", dir, dir)
	}
	return fmt.Sprintf(" ORDER BY %s %s, created_at %s, id %s", column, dir, dir, dir)
}

func limit(n int) string {
	if n <= 0 {
		return ""
	}
	return fmt.Sprintf(" LIMIT %d", n)
}

// likePattern escapes LIKE metacharacters and wraps s in wildcards
func likePattern(s string) string {
	s = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
	return "%" + s + "%"
}

// buildFolderQuery renders a SELECT for a folder filter
func buildFolderQuery(table string, f docsysRepo.FolderFilter) (string, []interface{}) {
	var w whereClause
	w.account(f.AccountID)
	w.location("parent_id", f.Parent)
	if f.Name != nil {
		w.add("name = " + w.arg(*f.Name))
	}
	w.viewer(f.Viewer)

	query := "SELECT " + folderColumns + " FROM " + table + w.String() + orderBy(f.Sort, false) + limit(f.Limit)
	return query, w.args
}

// buildFileQuery renders a SELECT for a file filter
func buildFileQuery(table string, f docsysRepo.FileFilter) (string, []interface{}) {
	var w whereClause
	w.account(f.AccountID)
	w.location("folder_id", f.Folder)
	if len(f.Types) > 0 {
		w.add("type = ANY(" + w.arg(f.Types) + ")")
	}
	if f.NameContains != "" {
		w.add("name ILIKE " + w.arg(likePattern(f.NameContains)))
	}
	w.viewer(f.Viewer)

	query := "SELECT " + fileColumns + " FROM " + table + w.String() + orderBy(f.Sort, true) + limit(f.Limit)
	return query, w.args
}
