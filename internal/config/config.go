package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Store and blob driver names
const (
	StorePostgres = "postgres"
	StoreMongo    = "mongo"
	StoreMemory   = "memory"

	BlobMinio  = "minio"
	BlobMemory = "memory"
)

type Config struct {
	Port        string
	Environment string
	CORSOrigins string
	// Folder/file stores
	StoreDriver   string
	DatabaseURL   string
	TablePrefix   string
	MongoURL      string
	MongoDatabase string
	// Blob store
	BlobDriver     string
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool
	BlobURLTTL     time.Duration
	// Revalidation + provisioning markers; empty disables Redis
	RedisURL string
	// Auth: JWKS for asymmetric tokens, JWTSecret for HS256 (dev/test)
	JWKSURL   string
	JWTSecret string
	// Limits
	MaxUploadBytes    int64
	StorageQuotaBytes int64
	// Logging
	LogDir      string
	LogMaxFiles int
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")

	return &Config{
		Port:              getEnv("PORT", "8080"),
		Environment:       env,
		CORSOrigins:       getEnv("CORS_ORIGINS", "http://localhost:3000"),
		StoreDriver:       getEnv("STORE_DRIVER", StorePostgres),
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		TablePrefix:       getTablePrefix(env),
		MongoURL:          getEnv("MONGO_URL", ""),
		MongoDatabase:     getEnv("MONGO_DATABASE", "dossier"),
		BlobDriver:        getEnv("BLOB_DRIVER", BlobMinio),
		MinioEndpoint:     getEnv("MINIO_ENDPOINT", "localhost:9000"),
		MinioAccessKey:    getEnv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey:    getEnv("MINIO_SECRET_KEY", ""),
		MinioBucket:       getEnv("MINIO_BUCKET", "dossier-files"),
		MinioUseSSL:       getEnv("MINIO_USE_SSL", "false") == "true",
		BlobURLTTL:        time.Duration(getEnvInt("BLOB_URL_TTL_SECONDS", 3600)) * time.Second,
		RedisURL:          getEnv("REDIS_URL", ""),
		JWKSURL:           getEnv("JWKS_URL", ""),
		JWTSecret:         getEnv("JWT_SECRET", ""),
		MaxUploadBytes:    int64(getEnvInt("MAX_UPLOAD_BYTES", DefaultMaxUploadBytes)),
		StorageQuotaBytes: int64(getEnvInt("STORAGE_QUOTA_BYTES", DefaultStorageQuotaBytes)),
		LogDir:            getEnv("LOG_DIR", ""),
		LogMaxFiles:       getEnvInt("LOG_MAX_FILES", 10),
	}
}

// Validate checks everything the HTTP server needs
func (c *Config) Validate() error {
	if err := c.ValidateStores(); err != nil {
		return err
	}
	if c.JWKSURL == "" && c.JWTSecret == "" {
		return fmt.Errorf("one of JWKS_URL or JWT_SECRET must be set")
	}
	return nil
}

// ValidateStores checks that the selected drivers have what they need
func (c *Config) ValidateStores() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required),
		validation.Field(&c.StoreDriver, validation.Required, validation.In(StorePostgres, StoreMongo, StoreMemory)),
		validation.Field(&c.DatabaseURL, validation.When(c.StoreDriver == StorePostgres, validation.Required)),
		validation.Field(&c.MongoURL, validation.When(c.StoreDriver == StoreMongo, validation.Required)),
		validation.Field(&c.MongoDatabase, validation.When(c.StoreDriver == StoreMongo, validation.Required)),
		validation.Field(&c.BlobDriver, validation.Required, validation.In(BlobMinio, BlobMemory)),
		validation.Field(&c.MinioEndpoint, validation.When(c.BlobDriver == BlobMinio, validation.Required)),
		validation.Field(&c.MinioAccessKey, validation.When(c.BlobDriver == BlobMinio, validation.Required)),
		validation.Field(&c.MinioSecretKey, validation.When(c.BlobDriver == BlobMinio, validation.Required)),
		validation.Field(&c.MinioBucket, validation.When(c.BlobDriver == BlobMinio, validation.Required)),
		validation.Field(&c.BlobURLTTL, validation.Min(time.Second)),
		validation.Field(&c.MaxUploadBytes, validation.Min(int64(1))),
		validation.Field(&c.StorageQuotaBytes, validation.Min(int64(1))),
		validation.Field(&c.LogMaxFiles, validation.Min(1)),
	)
}

// IsDev reports whether the server runs in the development environment
func (c *Config) IsDev() bool {
	return c.Environment == "dev"
}

// Origins splits CORS_ORIGINS on commas
func (c *Config) Origins() []string {
	var origins []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	// Allow manual override via TABLE_PREFIX env var
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}

	// Auto-generate based on environment
	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}
