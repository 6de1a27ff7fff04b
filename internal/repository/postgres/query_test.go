package postgres

import (
	"reflect"
	"strings"
	"testing"

	"dossier/internal/domain/models"
	docsysRepo "dossier/internal/domain/repositories/docsystem"
)

func TestBuildFolderQuery(t *testing.T) {
	name := "m1"
	tests := []struct {
		name      string
		filter    docsysRepo.FolderFilter
		wantWhere string
		wantOrder string
		wantArgs  []interface{}
	}{
		{
			name:      "no constraints",
			filter:    docsysRepo.FolderFilter{},
			wantWhere: "",
			wantOrder: " ORDER BY created_at ASC, id ASC",
			wantArgs:  nil,
		},
		{
			name:      "root of account",
			filter:    docsysRepo.FolderFilter{AccountID: "acct", Parent: docsysRepo.Root()},
			wantWhere: " WHERE account_id = $1 AND parent_id IS NULL",
			wantOrder: " ORDER BY created_at ASC, id ASC",
			wantArgs:  []interface{}{"acct"},
		},
		{
			name: "children by name, oldest first, one row",
			filter: docsysRepo.FolderFilter{
				AccountID: "acct",
				Parent:    docsysRepo.Inside("p1"),
				Name:      &name,
				Limit:     1,
			},
			wantWhere: " WHERE account_id = $1 AND parent_id = $2 AND name = $3",
			wantOrder: " ORDER BY created_at ASC, id ASC LIMIT 1",
			wantArgs:  []interface{}{"acct", "p1", "m1"},
		},
		{
			name: "visible to viewer, newest first",
			filter: docsysRepo.FolderFilter{
				AccountID: "acct",
				Parent:    docsysRepo.Location{Kind: docsysRepo.Filed},
				Viewer:    &models.Identity{OwnerID: "u1", Email: "a@example.com"},
				Sort:      docsysRepo.NewestFirst,
			},
			wantWhere: " WHERE account_id = $1 AND parent_id IS NOT NULL AND (owner_id = $2 OR $3 = ANY(users))",
			wantOrder: " ORDER BY created_at DESC, id DESC",
			wantArgs:  []interface{}{"acct", "u1", "a@example.com"},
		},
		{
			name: "owner only when no email",
			filter: docsysRepo.FolderFilter{
				Viewer: &models.Identity{OwnerID: "u1"},
				Sort:   docsysRepo.Sort{Field: docsysRepo.SortSize},
			},
			wantWhere: " WHERE owner_id = $1",
			wantOrder: " ORDER BY created_at ASC, id ASC",
			wantArgs:  []interface{}{"u1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args := buildFolderQuery("dev_folders", tt.filter)

			want := "SELECT " + folderColumns + " FROM dev_folders" + tt.wantWhere + tt.wantOrder
			if query != want {
				t.Errorf("query:\n got %s\nwant %s", query, want)
			}
			if !reflect.DeepEqual(args, tt.wantArgs) {
				t.Errorf("args = %v, want %v", args, tt.wantArgs)
			}
		})
	}
}

func TestBuildFileQuery(t *testing.T) {
	query, args := buildFileQuery("files", docsysRepo.FileFilter{
		AccountID:    "acct",
		Folder:       docsysRepo.Inside("f1"),
		Types:        []string{"image", "video"},
		NameContains: "50%_off",
		Viewer:       &models.Identity{OwnerID: "u1", Email: "a@example.com"},
		Sort:         docsysRepo.Sort{Field: docsysRepo.SortSize, Desc: true},
		Limit:        10,
	})

	wantWhere := " WHERE account_id = $1 AND folder_id = $2 AND type = ANY($3) AND name ILIKE $4 AND (owner_id = $5 OR $6 = ANY(users))"
	if !strings.Contains(query, wantWhere) {
		t.Errorf("query %q missing %q", query, wantWhere)
	}
	if !strings.HasSuffix(query, " ORDER BY size DESC, created_at DESC, id DESC LIMIT 10") {
		t.Errorf("query %q has wrong ordering", query)
	}

	wantArgs := []interface{}{"acct", "f1", []string{"image", "video"}, `%50\%\_off%`, "u1", "a@example.com"}
	if !reflect.DeepEqual(args, wantArgs) {
		t.Errorf("args = %#v, want %#v", args, wantArgs)
	}
}

func TestSchema_UsesTablePrefix(t *testing.T) {
	ddl := Schema(NewTableNames("test_"))

	for _, want := range []string{
		"CREATE TABLE IF NOT EXISTS test_folders",
		"CREATE TABLE IF NOT EXISTS test_files",
		"test_folders_account_parent_idx ON test_folders",
	} {
		if !strings.Contains(ddl, want) {
			t.Errorf("schema missing %q", want)
		}
	}
	if strings.Contains(ddl, "{{") {
		t.Error("schema has unreplaced placeholders")
	}
}
