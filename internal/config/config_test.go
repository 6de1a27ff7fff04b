package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "")
	t.Setenv("TABLE_PREFIX", "")
	t.Setenv("MAX_UPLOAD_BYTES", "")
	t.Setenv("BLOB_URL_TTL_SECONDS", "")

	cfg := Load()
	if cfg.Environment != "dev" {
		t.Errorf("Environment = %q, want dev", cfg.Environment)
	}
	if cfg.TablePrefix != "dev_" {
		t.Errorf("TablePrefix = %q, want dev_", cfg.TablePrefix)
	}
	if cfg.MaxUploadBytes != DefaultMaxUploadBytes {
		t.Errorf("MaxUploadBytes = %d", cfg.MaxUploadBytes)
	}
	if cfg.BlobURLTTL != time.Hour {
		t.Errorf("BlobURLTTL = %v, want 1h", cfg.BlobURLTTL)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("ENVIRONMENT", "prod")
	t.Setenv("TABLE_PREFIX", "")
	t.Setenv("MAX_UPLOAD_BYTES", "1024")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("LOG_MAX_FILES", "not-a-number")

	cfg := Load()
	if cfg.TablePrefix != "prod_" {
		t.Errorf("TablePrefix = %q, want prod_", cfg.TablePrefix)
	}
	if cfg.MaxUploadBytes != 1024 {
		t.Errorf("MaxUploadBytes = %d, want 1024", cfg.MaxUploadBytes)
	}
	if !cfg.MinioUseSSL {
		t.Error("MinioUseSSL should be true")
	}
	if cfg.LogMaxFiles != 10 {
		t.Errorf("LogMaxFiles = %d, want fallback 10", cfg.LogMaxFiles)
	}
}

func validConfig() *Config {
	return &Config{
		Port:              "8080",
		StoreDriver:       StoreMemory,
		BlobDriver:        BlobMemory,
		BlobURLTTL:        time.Hour,
		JWTSecret:         "secret",
		MaxUploadBytes:    DefaultMaxUploadBytes,
		StorageQuotaBytes: DefaultStorageQuotaBytes,
		LogMaxFiles:       10,
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "memory drivers", mutate: func(c *Config) {}},
		{
			name:    "unknown store driver",
			mutate:  func(c *Config) { c.StoreDriver = "sqlite" },
			wantErr: "StoreDriver",
		},
		{
			name:    "postgres needs url",
			mutate:  func(c *Config) { c.StoreDriver = StorePostgres },
			wantErr: "DatabaseURL",
		},
		{
			name:    "mongo needs url",
			mutate:  func(c *Config) { c.StoreDriver = StoreMongo; c.MongoDatabase = "d" },
			wantErr: "MongoURL",
		},
		{
			name:    "minio needs credentials",
			mutate:  func(c *Config) { c.BlobDriver = BlobMinio; c.MinioEndpoint = "x"; c.MinioBucket = "b" },
			wantErr: "MinioAccessKey",
		},
		{
			name:    "no token verifier",
			mutate:  func(c *Config) { c.JWTSecret = "" },
			wantErr: "JWKS_URL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestOrigins(t *testing.T) {
	cfg := &Config{CORSOrigins: "http://a.test, http://b.test,,"}
	got := cfg.Origins()
	if len(got) != 2 || got[0] != "http://a.test" || got[1] != "http://b.test" {
		t.Fatalf("Origins() = %v", got)
	}
}
