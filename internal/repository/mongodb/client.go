package mongodb

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

// Collection names, prefixed the same way as the SQL tables
type Collections struct {
	Folders string
	Files   string
}

// NewCollections creates collection names with the given prefix
func NewCollections(prefix string) Collections {
	return Collections{
		Folders: prefix + "folders",
		Files:   prefix + "files",
	}
}

// Connect opens a client for uri and pings the primary
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	return client, nil
}

// EnsureIndexes creates the listing indexes used by both repositories
func EnsureIndexes(ctx context.Context, db *mongo.Database, cols Collections, logger *slog.Logger) error {
	indexes := map[string][]mongo.IndexModel{
		cols.Folders: {
			{Keys: bson.D{{Key: "account_id", Value: 1}, {Key: "parent_id", Value: 1}}},
			{Keys: bson.D{{Key: "account_id", Value: 1}, {Key: "name", Value: 1}}},
			{Keys: bson.D{{Key: "users", Value: 1}}},
		},
		cols.Files: {
			{Keys: bson.D{{Key: "account_id", Value: 1}, {Key: "folder_id", Value: 1}}},
			{Keys: bson.D{{Key: "account_id", Value: 1}, {Key: "owner_id", Value: 1}}},
			{Keys: bson.D{{Key: "users", Value: 1}}},
		},
	}

	for name, specs := range indexes {
		created, err := db.Collection(name).Indexes().CreateMany(ctx, specs)
		if err != nil {
			return fmt.Errorf("create indexes on %s: %w", name, err)
		}
		logger.Debug("mongo indexes ensured", "collection", name, "indexes", created)
	}
	return nil
}
