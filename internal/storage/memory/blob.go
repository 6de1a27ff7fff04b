package memory

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"sync"
	"time"

	"dossier/internal/storage"
)

type blob struct {
	data        []byte
	contentType string
}

// BlobStore keeps blobs in process memory.
type BlobStore struct {
	mu    sync.RWMutex
	blobs map[string]blob
	// FailDelete makes Delete return an error for the given refs (tests)
	FailDelete map[string]error
}

// NewBlobStore creates an empty in-memory blob store
func NewBlobStore() *BlobStore {
	return &BlobStore{
		blobs:      make(map[string]blob),
		FailDelete: make(map[string]error),
	}
}

// Put reads up to size bytes and stores them under a new ref
func (s *BlobStore) Put(ctx context.Context, name string, r io.Reader, size int64, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	data, err := io.ReadAll(io.LimitReader(r, size))
	if err != nil {
		return "", fmt.Errorf("read blob: %w", err)
	}
	if int64(len(data)) != size {
		return "", fmt.Errorf("read blob: got %d bytes, want %d", len(data), size)
	}

	ref := storage.ObjectKey(name)
	s.mu.Lock()
	s.blobs[ref] = blob{data: data, contentType: contentType}
	s.mu.Unlock()
	return ref, nil
}

// Delete removes a blob; missing refs are ignored
func (s *BlobStore) Delete(ctx context.Context, ref string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err, ok := s.FailDelete[ref]; ok {
		return err
	}
	delete(s.blobs, ref)
	return nil
}

// URLFor returns a memory:// URL; the TTL is ignored
func (s *BlobStore) URLFor(ctx context.Context, ref string, ttl time.Duration) (string, error) {
	s.mu.RLock()
	_, ok := s.blobs[ref]
	s.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("blob %s does not exist", ref)
	}
	return "memory:///" + url.PathEscape(ref), nil
}

// Has reports whether ref is stored
func (s *BlobStore) Has(ref string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.blobs[ref]
	return ok
}

// Len returns the number of stored blobs
func (s *BlobStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}
