package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"dossier/internal/domain"
	"dossier/internal/domain/models/docsystem"
	"dossier/internal/domain/repositories"
	docsysRepo "dossier/internal/domain/repositories/docsystem"
)

// PostgresFolderRepository implements the FolderRepository interface
type PostgresFolderRepository struct {
	db     repositories.DBTX
	tables *TableNames
	logger *slog.Logger
}

// NewFolderRepository creates a new folder repository
func NewFolderRepository(config *RepositoryConfig) docsysRepo.FolderRepository {
	return &PostgresFolderRepository{
		db:     config.DB,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Create inserts a folder. The database assigns the id unless one is set.
func (r *PostgresFolderRepository) Create(ctx context.Context, folder *docsystem.Folder) error {
	if folder.Users == nil {
		folder.Users = []string{}
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, name, owner_id, account_id, parent_id, users, is_system, created_at, updated_at)
		VALUES (COALESCE(NULLIF($1, ''), gen_random_uuid()::text), $2, $3, $4, $5, $6, $7, $8, $8)
		RETURNING id, created_at, updated_at
	`, r.tables.Folders)

	err := r.db.QueryRow(ctx, query,
		folder.ID,
		folder.Name,
		folder.OwnerID,
		folder.AccountID,
		folder.ParentID,
		folder.Users,
		folder.IsSystem,
		createdAt(folder.CreatedAt),
	).Scan(&folder.ID, &folder.CreatedAt, &folder.UpdatedAt)
	if err != nil {
		if IsPgDuplicateError(err) {
			return fmt.Errorf("create folder: id %s already exists", folder.ID)
		}
		return fmt.Errorf("create folder: %w", err)
	}

	return nil
}

// GetByID retrieves a folder by ID
func (r *PostgresFolderRepository) GetByID(ctx context.Context, id string) (*docsystem.Folder, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, folderColumns, r.tables.Folders)

	rows, err := r.db.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("get folder: %w", err)
	}
	folder, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[docsystem.Folder])
	if err != nil {
		return nil, wrapErr(err, "get folder", "folder", id)
	}

	return &folder, nil
}

// Update writes name, parent and share list
func (r *PostgresFolderRepository) Update(ctx context.Context, folder *docsystem.Folder) error {
	if folder.Users == nil {
		folder.Users = []string{}
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $1, parent_id = $2, users = $3, updated_at = now()
		WHERE id = $4
		RETURNING updated_at
	`, r.tables.Folders)

	err := r.db.QueryRow(ctx, query,
		folder.Name,
		folder.ParentID,
		folder.Users,
		folder.ID,
	).Scan(&folder.UpdatedAt)
	if err != nil {
		return wrapErr(err, "update folder", "folder", folder.ID)
	}

	return nil
}

// Delete deletes a single folder record
func (r *PostgresFolderRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Folders)

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete folder: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// List returns folders matching the filter
func (r *PostgresFolderRepository) List(ctx context.Context, filter docsysRepo.FolderFilter) ([]docsystem.Folder, error) {
	query, args := buildFolderQuery(r.tables.Folders, filter)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}
	folders, err := pgx.CollectRows(rows, pgx.RowToStructByName[docsystem.Folder])
	if err != nil {
		return nil, fmt.Errorf("scan folders: %w", err)
	}

	r.logger.Debug("folders listed", "table", r.tables.Folders, "count", len(folders))
	return folders, nil
}

// ExistingIDs returns the subset of ids that exist in the account
func (r *PostgresFolderRepository) ExistingIDs(ctx context.Context, accountID string, ids []string) (map[string]bool, error) {
	existing := make(map[string]bool, len(ids))
	if len(ids) == 0 {
		return existing, nil
	}

	query := fmt.Sprintf(`SELECT id FROM %s WHERE account_id = $1 AND id = ANY($2)`, r.tables.Folders)

	rows, err := r.db.Query(ctx, query, accountID, ids)
	if err != nil {
		return nil, fmt.Errorf("check folder ids: %w", err)
	}
	found, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan folder ids: %w", err)
	}

	for _, id := range found {
		existing[id] = true
	}
	return existing, nil
}
