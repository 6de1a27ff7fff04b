package repositories

import (
	"context"
	"io"
	"time"
)

// BlobStore stores opaque file bytes. References it returns are stored on
// file records and are only meaningful to the same store.
type BlobStore interface {
	// Put stores size bytes read from r and returns a reference to them
	Put(ctx context.Context, name string, r io.Reader, size int64, contentType string) (string, error)

	// Delete removes the blob. Deleting a missing blob is not an error.
	Delete(ctx context.Context, ref string) error

	// URLFor returns a URL the caller can fetch the blob from
	URLFor(ctx context.Context, ref string, ttl time.Duration) (string, error)
}
