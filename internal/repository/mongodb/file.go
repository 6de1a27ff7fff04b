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

	"dossier/internal/domain"
	"dossier/internal/domain/models/docsystem"
	docsysRepo "dossier/internal/domain/repositories/docsystem"
)

// FileRepository stores file records as documents keyed by a string _id
type FileRepository struct {
	coll   *mongo.Collection
	logger *slog.Logger
}

// NewFileRepository creates a file repository over db
func NewFileRepository(db *mongo.Database, cols Collections, logger *slog.Logger) *FileRepository {
	return &FileRepository{
		coll:   db.Collection(cols.Files),
		logger: logger,
	}
}

// Create inserts a file record, assigning an id and timestamps
func (r *FileRepository) Create(ctx context.Context, file *docsystem.File) error {
	if file.ID == "" {
		file.ID = uuid.NewString()
	}
	if file.Users == nil {
		file.Users = []string{}
	}
	now := time.Now().UTC()
	if file.CreatedAt.IsZero() {
		file.CreatedAt = now
	}
	file.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, file); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("create file: id %s already exists", file.ID)
		}
		return fmt.Errorf("create file: %w", err)
	}
	return nil
}

// GetByID retrieves a file by ID
func (r *FileRepository) GetByID(ctx context.Context, id string) (*docsystem.File, error) {
	var file docsystem.File
	err := r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&file)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("file %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get file: %w", err)
	}
	return &file, nil
}

// Update writes name, folder and share list
func (r *FileRepository) Update(ctx context.Context, file *docsystem.File) error {
	if file.Users == nil {
		file.Users = []string{}
	}
	file.UpdatedAt = time.Now().UTC()

	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "name", Value: file.Name},
		{Key: "folder_id", Value: file.FolderID},
		{Key: "users", Value: file.Users},
		{Key: "updated_at", Value: file.UpdatedAt},
	}}}

	result, err := r.coll.UpdateOne(ctx, bson.D{{Key: "_id", Value: file.ID}}, update)
	if err != nil {
		return fmt.Errorf("update file: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("file %s: %w", file.ID, domain.ErrNotFound)
	}
	return nil
}

// Delete removes a file document
func (r *FileRepository) Delete(ctx context.Context, id string) error {
	result, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return fmt.Errorf("delete file: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("file %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// List returns files matching the filter
func (r *FileRepository) List(ctx context.Context, filter docsysRepo.FileFilter) ([]docsystem.File, error) {
	cursor, err := r.coll.Find(ctx, fileFilter(filter), findOptions(filter.Sort, filter.Limit, true))
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}

	files := make([]docsystem.File, 0)
	if err := cursor.All(ctx, &files); err != nil {
		return nil, fmt.Errorf("decode files: %w", err)
	}

	r.logger.Debug("files listed", "count", len(files))
	return files, nil
}
