package postgres

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"dossier/internal/domain/repositories"
)

//go:embed schema.sql
var schemaSQL string

// Schema renders the DDL for the given table names
func Schema(tables *TableNames) string {
	return strings.NewReplacer(
		"{{folders}}", tables.Folders,
		"{{files}}", tables.Files,
	).Replace(schemaSQL)
}

// EnsureSchema creates the tables and indexes if they do not exist.
// Parent references carry no foreign keys: records point at each other by id
// only and dangling references are tolerated by the readers.
func EnsureSchema(ctx context.Context, db repositories.DBTX, tables *TableNames) error {
	for _, stmt := range strings.Split(Schema(tables), ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
