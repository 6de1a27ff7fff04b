package config

const (
	// MaxFolderNameLength is the maximum length for folder names.
	// Limited to 255 to fit in PostgreSQL VARCHAR(255).
	MaxFolderNameLength = 255

	// MaxFileNameLength is the maximum length for file names, extension included.
	MaxFileNameLength = 255

	// DefaultMaxUploadBytes caps a single upload (5 MiB).
	DefaultMaxUploadBytes = 5 * 1024 * 1024

	// DefaultStorageQuotaBytes is the per-account storage reported by usage (2 GiB).
	DefaultStorageQuotaBytes = 2 * 1024 * 1024 * 1024

	// MaxBulkItems bounds the ids accepted by one bulk move or delete.
	MaxBulkItems = 500

	// BulkFileConcurrency is how many independent file operations a bulk
	// request runs at once.
	BulkFileConcurrency = 8
)
