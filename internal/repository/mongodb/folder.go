package mongodb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"dossier/internal/domain"
	"dossier/internal/domain/models/docsystem"
	docsysRepo "dossier/internal/domain/repositories/docsystem"
)

// FolderRepository stores folders as documents keyed by a string _id
type FolderRepository struct {
	coll   *mongo.Collection
	logger *slog.Logger
}

// NewFolderRepository creates a folder repository over db
func NewFolderRepository(db *mongo.Database, cols Collections, logger *slog.Logger) *FolderRepository {
	return &FolderRepository{
		coll:   db.Collection(cols.Folders),
		logger: logger,
	}
}

// Create inserts a folder, assigning an id and timestamps
func (r *FolderRepository) Create(ctx context.Context, folder *docsystem.Folder) error {
	if folder.ID == "" {
		folder.ID = uuid.NewString()
	}
	if folder.Users == nil {
		folder.Users = []string{}
	}
	now := time.Now().UTC()
	if folder.CreatedAt.IsZero() {
		folder.CreatedAt = now
	}
	folder.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, folder); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("create folder: id %s already exists", folder.ID)
		}
		return fmt.Errorf("create folder: %w", err)
	}
	return nil
}

// GetByID retrieves a folder by ID
func (r *FolderRepository) GetByID(ctx context.Context, id string) (*docsystem.Folder, error) {
	var folder docsystem.Folder
	err := r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&folder)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get folder: %w", err)
	}
	return &folder, nil
}

// Update writes name, parent and share list
func (r *FolderRepository) Update(ctx context.Context, folder *docsystem.Folder) error {
	if folder.Users == nil {
		folder.Users = []string{}
	}
	folder.UpdatedAt = time.Now().UTC()

	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "name", Value: folder.Name},
		{Key: "parent_id", Value: folder.ParentID},
		{Key: "users", Value: folder.Users},
		{Key: "updated_at", Value: folder.UpdatedAt},
	}}}

	result, err := r.coll.UpdateOne(ctx, bson.D{{Key: "_id", Value: folder.ID}}, update)
	if err != nil {
		return fmt.Errorf("update folder: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("folder %s: %w", folder.ID, domain.ErrNotFound)
	}
	return nil
}

// Delete removes a single folder document
func (r *FolderRepository) Delete(ctx context.Context, id string) error {
	result, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return fmt.Errorf("delete folder: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// List returns folders matching the filter
func (r *FolderRepository) List(ctx context.Context, filter docsysRepo.FolderFilter) ([]docsystem.Folder, error) {
	cursor, err := r.coll.Find(ctx, folderFilter(filter), findOptions(filter.Sort, filter.Limit, false))
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}

	folders := make([]docsystem.Folder, 0)
	if err := cursor.All(ctx, &folders); err != nil {
		return nil, fmt.Errorf("decode folders: %w", err)
	}

	r.logger.Debug("folders listed", "count", len(folders))
	return folders, nil
}

// ExistingIDs returns the subset of ids that exist in the account
func (r *FolderRepository) ExistingIDs(ctx context.Context, accountID string, ids []string) (map[string]bool, error) {
	existing := make(map[string]bool, len(ids))
	if len(ids) == 0 {
		return existing, nil
	}

	filter := bson.D{
		{Key: "account_id", Value: accountID},
		{Key: "_id", Value: bson.D{{Key: "$in", Value: ids}}},
	}
	opts := options.Find().SetProjection(bson.D{{Key: "_id", Value: 1}})

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("check folder ids: %w", err)
	}

	var found []struct {
		ID string `bson:"_id"`
	}
	if err := cursor.All(ctx, &found); err != nil {
		return nil, fmt.Errorf("decode folder ids: %w", err)
	}

	for _, f := range found {
		existing[f.ID] = true
	}
	return existing, nil
}
