package docsystem

import (
	"context"
	"log/slog"
	"sync"

	"dossier/internal/domain"
	"dossier/internal/domain/models"
	"dossier/internal/domain/services"
)

// requireIdentity fails closed when no caller identity is attached
func requireIdentity(ctx context.Context) (models.Identity, error) {
	id, ok := models.IdentityFromContext(ctx)
	if !ok {
		return models.Identity{}, domain.ErrNotAuthenticated
	}
	return id, nil
}

// revalidate signals path to the revalidator. Failures are logged, never
// returned: the mutation itself already happened.
func revalidate(ctx context.Context, r services.Revalidator, logger *slog.Logger, path string) {
	if path == "" {
		path = "/"
	}
	if err := r.Revalidate(context.WithoutCancel(ctx), path); err != nil {
		logger.Warn("revalidate failed", "path", path, "error", err)
	}
}

// LogRevalidator is the Revalidator used when no Redis is configured
type LogRevalidator struct {
	logger *slog.Logger
}

// NewLogRevalidator creates a revalidator that only logs
func NewLogRevalidator(logger *slog.Logger) *LogRevalidator {
	return &LogRevalidator{logger: logger}
}

// Revalidate logs the path at debug level
func (r *LogRevalidator) Revalidate(ctx context.Context, path string) error {
	r.logger.Debug("revalidate", "path", path)
	return nil
}

// MemoryProgressTracker keeps provisioning markers in process memory
type MemoryProgressTracker struct {
	mu      sync.Mutex
	markers map[string]int
}

// NewMemoryProgressTracker creates an empty tracker
func NewMemoryProgressTracker() *MemoryProgressTracker {
	return &MemoryProgressTracker{markers: make(map[string]int)}
}

// Begin marks phase as in flight
func (t *MemoryProgressTracker) Begin(ctx context.Context, accountID string, phase int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.markers[accountID] = phase
	return nil
}

// End clears the marker if it still names phase
func (t *MemoryProgressTracker) End(ctx context.Context, accountID string, phase int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.markers[accountID] == phase {
		delete(t.markers, accountID)
	}
	return nil
}

// Active returns the phase marked in flight, or 0
func (t *MemoryProgressTracker) Active(ctx context.Context, accountID string) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.markers[accountID], nil
}
