package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"dossier/internal/domain"
	"dossier/internal/domain/models/docsystem"
	"dossier/internal/domain/repositories"
	docsysRepo "dossier/internal/domain/repositories/docsystem"
)

// PostgresFileRepository implements the FileRepository interface
type PostgresFileRepository struct {
	db     repositories.DBTX
	tables *TableNames
	logger *slog.Logger
}

// NewFileRepository creates a new file repository
func NewFileRepository(config *RepositoryConfig) docsysRepo.FileRepository {
	return &PostgresFileRepository{
		db:     config.DB,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Create inserts a file record
func (r *PostgresFileRepository) Create(ctx context.Context, file *docsystem.File) error {
	if file.Users == nil {
		file.Users = []string{}
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, name, owner_id, account_id, folder_id, size, blob_ref, users,
			type, extension, is_system_resource, created_at, updated_at)
		VALUES (COALESCE(NULLIF($1, ''), gen_random_uuid()::text), $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $12)
		RETURNING id, created_at, updated_at
	`, r.tables.Files)

	err := r.db.QueryRow(ctx, query,
		file.ID,
		file.Name,
		file.OwnerID,
		file.AccountID,
		file.FolderID,
		file.Size,
		file.BlobRef,
		file.Users,
		string(file.Type),
		file.Extension,
		file.IsSystemResource,
		createdAt(file.CreatedAt),
	).Scan(&file.ID, &file.CreatedAt, &file.UpdatedAt)
	if err != nil {
		if IsPgDuplicateError(err) {
			return fmt.Errorf("create file: id %s already exists", file.ID)
		}
		return fmt.Errorf("create file: %w", err)
	}

	return nil
}

// GetByID retrieves a file by ID
func (r *PostgresFileRepository) GetByID(ctx context.Context, id string) (*docsystem.File, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, fileColumns, r.tables.Files)

	rows, err := r.db.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}
	file, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[docsystem.File])
	if err != nil {
		return nil, wrapErr(err, "get file", "file", id)
	}

	return &file, nil
}

// Update writes name, folder and share list
func (r *PostgresFileRepository) Update(ctx context.Context, file *docsystem.File) error {
	if file.Users == nil {
		file.Users = []string{}
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $1, folder_id = $2, users = $3, updated_at = now()
		WHERE id = $4
		RETURNING updated_at
	`, r.tables.Files)

	err := r.db.QueryRow(ctx, query,
		file.Name,
		file.FolderID,
		file.Users,
		file.ID,
	).Scan(&file.UpdatedAt)
	if err != nil {
		return wrapErr(err, "update file", "file", file.ID)
	}

	return nil
}

// Delete deletes a file record
func (r *PostgresFileRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Files)

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete file: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("file %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// List returns files matching the filter
func (r *PostgresFileRepository) List(ctx context.Context, filter docsysRepo.FileFilter) ([]docsystem.File, error) {
	query, args := buildFileQuery(r.tables.Files, filter)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	files, err := pgx.CollectRows(rows, pgx.RowToStructByName[docsystem.File])
	if err != nil {
		return nil, fmt.Errorf("scan files: %w", err)
	}

	r.logger.Debug("files listed", "table", r.tables.Files, "count", len(files))
	return files, nil
}

// createdAt lets callers pin a creation time; zero means "now"
func createdAt(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now()
	}
	return t
}
