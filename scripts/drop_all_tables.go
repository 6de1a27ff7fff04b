// Drops the folder and file stores for the configured environment prefix.
// Refuses to run against prod.
//
//	go run ./scripts/drop_all_tables.go
package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"dossier/internal/config"
	"dossier/internal/repository/mongodb"
	"dossier/internal/repository/postgres"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	if cfg.Environment == "prod" {
		log.Fatal("refusing to drop stores in the prod environment")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch cfg.StoreDriver {
	case config.StorePostgres:
		pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer pool.Close()

		tables := postgres.NewTableNames(cfg.TablePrefix)
		for _, table := range []string{tables.Files, tables.Folders} {
			if _, err := pool.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", table)); err != nil {
				log.Fatalf("Failed to drop %s: %v", table, err)
			}
		}

	case config.StoreMongo:
		client, err := mongodb.Connect(ctx, cfg.MongoURL)
		if err != nil {
			log.Fatalf("Failed to connect to mongo: %v", err)
		}
		defer client.Disconnect(context.Background())

		db := client.Database(cfg.MongoDatabase)
		cols := mongodb.NewCollections(cfg.TablePrefix)
		for _, name := range []string{cols.Files, cols.Folders} {
			if err := db.Collection(name).Drop(ctx); err != nil {
				log.Fatalf("Failed to drop %s: %v", name, err)
			}
		}

	default:
		log.Fatalf("nothing to drop for store driver %q", cfg.StoreDriver)
	}

	fmt.Printf("Stores dropped (driver: %s, prefix: %s)\n", cfg.StoreDriver, cfg.TablePrefix)
}
