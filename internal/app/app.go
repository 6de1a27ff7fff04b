// Package app wires stores, blob storage and services from configuration.
// The HTTP server and the provisioning CLI share it.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"dossier/internal/config"
	"dossier/internal/domain/repositories"
	docsysRepo "dossier/internal/domain/repositories/docsystem"
	"dossier/internal/domain/services"
	docsysSvc "dossier/internal/domain/services/docsystem"
	"dossier/internal/redisstore"
	"dossier/internal/repository/memory"
	"dossier/internal/repository/mongodb"
	"dossier/internal/repository/postgres"
	authSvc "dossier/internal/service/auth"
	serviceDocsys "dossier/internal/service/docsystem"
	blobmem "dossier/internal/storage/memory"
	"dossier/internal/storage/minio"
	"dossier/internal/templates"
)

// App holds the wired services plus what must be closed on shutdown
type App struct {
	Registry *templates.Registry

	Folders     docsysSvc.FolderService
	Files       docsysSvc.FileService
	Tree        docsysSvc.TreeService
	Provisioner docsysSvc.Provisioner

	// Checks are the health probes of the configured backends
	Checks map[string]func(ctx context.Context) error

	closers []func()
	logger  *slog.Logger
}

type stores struct {
	folders docsysRepo.FolderRepository
	files   docsysRepo.FileRepository
}

// New connects the configured backends and builds the services.
// On error everything opened so far is closed.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (_ *App, err error) {
	a := &App{Checks: make(map[string]func(ctx context.Context) error), logger: logger}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	st, err := a.openStores(ctx, cfg)
	if err != nil {
		return nil, err
	}

	blobs, err := a.openBlobs(ctx, cfg)
	if err != nil {
		return nil, err
	}

	revalidator, progress, err := a.openSignals(cfg)
	if err != nil {
		return nil, err
	}

	a.Registry, err = templates.NewRegistry()
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}

	authorizer := authSvc.NewOwnerBasedAuthorizer()
	limits := serviceDocsys.FileLimits{
		MaxUploadBytes:    cfg.MaxUploadBytes,
		StorageQuotaBytes: cfg.StorageQuotaBytes,
		URLTTL:            cfg.BlobURLTTL,
	}

	a.Folders = serviceDocsys.NewFolderService(st.folders, st.files, blobs, limits.URLTTL, authorizer, revalidator, logger)
	a.Files = serviceDocsys.NewFileService(st.files, st.folders, blobs, authorizer, revalidator, limits, logger)
	a.Tree = serviceDocsys.NewTreeService(st.folders, st.files, logger)
	a.Provisioner = serviceDocsys.NewProvisioner(st.folders, a.Registry, progress, authorizer, revalidator, logger)

	logger.Info("services initialized",
		"store", cfg.StoreDriver,
		"blobs", cfg.BlobDriver,
		"redis", cfg.RedisURL != "",
		"templates", a.Registry.Keys(),
	)
	return a, nil
}

// Close releases backends in reverse order of opening
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func (a *App) onClose(fn func()) {
	a.closers = append(a.closers, fn)
}

func (a *App) openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	switch cfg.StoreDriver {
	case config.StorePostgres:
		pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		a.onClose(pool.Close)
		a.Checks["postgres"] = pool.Ping

		tables := postgres.NewTableNames(cfg.TablePrefix)
		if err := postgres.EnsureSchema(ctx, pool, tables); err != nil {
			return nil, err
		}

		stat := pool.Stat()
		a.logger.Info("database connected",
			"max_conns", stat.MaxConns(),
			"table_prefix", cfg.TablePrefix,
		)

		repoConfig := &postgres.RepositoryConfig{DB: pool, Tables: tables, Logger: a.logger}
		return &stores{
			folders: postgres.NewFolderRepository(repoConfig),
			files:   postgres.NewFileRepository(repoConfig),
		}, nil

	case config.StoreMongo:
		client, err := mongodb.Connect(ctx, cfg.MongoURL)
		if err != nil {
			return nil, err
		}
		a.onClose(func() {
			if err := client.Disconnect(context.Background()); err != nil {
				a.logger.Warn("mongo disconnect failed", "error", err)
			}
		})
		a.Checks["mongo"] = func(ctx context.Context) error {
			return client.Ping(ctx, readpref.Primary())
		}

		db := client.Database(cfg.MongoDatabase)
		cols := mongodb.NewCollections(cfg.TablePrefix)
		if err := mongodb.EnsureIndexes(ctx, db, cols, a.logger); err != nil {
			return nil, err
		}

		a.logger.Info("mongo connected", "database", cfg.MongoDatabase, "prefix", cfg.TablePrefix)
		return &stores{
			folders: mongodb.NewFolderRepository(db, cols, a.logger),
			files:   mongodb.NewFileRepository(db, cols, a.logger),
		}, nil

	case config.StoreMemory:
		a.logger.Warn("using in-memory store; data is lost on exit")
		return &stores{
			folders: memory.NewFolderRepository(),
			files:   memory.NewFileRepository(),
		}, nil
	}

	return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}

func (a *App) openBlobs(ctx context.Context, cfg *config.Config) (repositories.BlobStore, error) {
	switch cfg.BlobDriver {
	case config.BlobMinio:
		store, err := minio.NewBlobStore(ctx, minio.Config{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
		}, a.logger)
		if err != nil {
			return nil, err
		}
		a.Checks["minio"] = store.Ping
		return store, nil

	case config.BlobMemory:
		a.logger.Warn("using in-memory blob store; uploads are lost on exit")
		return blobmem.NewBlobStore(), nil
	}

	return nil, fmt.Errorf("unknown blob driver %q", cfg.BlobDriver)
}

// openSignals picks Redis for revalidation and progress markers when
// REDIS_URL is set, and process-local fallbacks otherwise.
func (a *App) openSignals(cfg *config.Config) (services.Revalidator, docsysSvc.ProgressTracker, error) {
	if cfg.RedisURL == "" {
		return serviceDocsys.NewLogRevalidator(a.logger), serviceDocsys.NewMemoryProgressTracker(), nil
	}

	client, err := redisstore.Connect(cfg.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	a.onClose(func() {
		if err := client.Close(); err != nil {
			a.logger.Warn("redis close failed", "error", err)
		}
	})
	a.Checks["redis"] = func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}

	return redisstore.NewRevalidator(client), redisstore.NewProgressTracker(client, redisstore.DefaultMarkerTTL), nil
}
