package redisstore

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultMarkerTTL bounds how long an abandoned in-flight marker survives
const DefaultMarkerTTL = 10 * time.Minute

// ProgressTracker stores one advisory "phase N in flight" marker per account.
// Markers expire on their own so a crashed run never pins a state.
type ProgressTracker struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewProgressTracker creates a tracker; ttl <= 0 uses DefaultMarkerTTL
func NewProgressTracker(client *redis.Client, ttl time.Duration) *ProgressTracker {
	if ttl <= 0 {
		ttl = DefaultMarkerTTL
	}
	return &ProgressTracker{
		client: client,
		prefix: "provisioning:",
		ttl:    ttl,
	}
}

// key generates the Redis key for an account
func (t *ProgressTracker) key(accountID string) string {
	return t.prefix + accountID
}

// Begin marks phase as in flight
func (t *ProgressTracker) Begin(ctx context.Context, accountID string, phase int) error {
	if err := t.client.Set(ctx, t.key(accountID), phase, t.ttl).Err(); err != nil {
		return fmt.Errorf("set provisioning marker: %w", err)
	}
	return nil
}

// End clears the marker if it still names phase
func (t *ProgressTracker) End(ctx context.Context, accountID string, phase int) error {
	current, err := t.Active(ctx, accountID)
	if err != nil {
		return err
	}
	if current != phase {
		return nil
	}
	if err := t.client.Del(ctx, t.key(accountID)).Err(); err != nil {
		return fmt.Errorf("clear provisioning marker: %w", err)
	}
	return nil
}

// Active returns the phase marked in flight, or 0
func (t *ProgressTracker) Active(ctx context.Context, accountID string) (int, error) {
	val, err := t.client.Get(ctx, t.key(accountID)).Result()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get provisioning marker: %w", err)
	}

	phase, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("parse provisioning marker %q: %w", val, err)
	}
	return phase, nil
}
