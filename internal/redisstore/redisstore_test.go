package redisstore

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	s := miniredis.RunT(t)
	client, err := Connect("redis://" + s.Addr())
	if err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client, s
}

func TestConnect_BadURL(t *testing.T) {
	if _, err := Connect("not a url"); err == nil {
		t.Fatal("expected error for invalid url")
	}
}

func TestProgressTracker_BeginActiveEnd(t *testing.T) {
	client, _ := setupTestRedis(t)
	tracker := NewProgressTracker(client, time.Minute)
	ctx := context.Background()

	phase, err := tracker.Active(ctx, "acct-1")
	if err != nil {
		t.Fatalf("Active failed: %v", err)
	}
	if phase != 0 {
		t.Fatalf("expected no marker, got phase %d", phase)
	}

	if err := tracker.Begin(ctx, "acct-1", 2); err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	if phase, _ = tracker.Active(ctx, "acct-1"); phase != 2 {
		t.Fatalf("expected phase 2, got %d", phase)
	}

	// Ending a different phase leaves the marker alone
	if err := tracker.End(ctx, "acct-1", 1); err != nil {
		t.Fatalf("End failed: %v", err)
	}
	if phase, _ = tracker.Active(ctx, "acct-1"); phase != 2 {
		t.Fatalf("expected phase 2 to survive, got %d", phase)
	}

	if err := tracker.End(ctx, "acct-1", 2); err != nil {
		t.Fatalf("End failed: %v", err)
	}
	if phase, _ = tracker.Active(ctx, "acct-1"); phase != 0 {
		t.Fatalf("expected marker cleared, got %d", phase)
	}
}

func TestProgressTracker_MarkerExpires(t *testing.T) {
	client, s := setupTestRedis(t)
	tracker := NewProgressTracker(client, time.Second)
	ctx := context.Background()

	if err := tracker.Begin(ctx, "acct-1", 1); err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	if ttl := s.TTL("provisioning:acct-1"); ttl != time.Second {
		t.Errorf("expected ttl 1s, got %v", ttl)
	}

	s.FastForward(2 * time.Second)

	phase, err := tracker.Active(ctx, "acct-1")
	if err != nil {
		t.Fatalf("Active failed: %v", err)
	}
	if phase != 0 {
		t.Fatalf("expected expired marker, got phase %d", phase)
	}
}

func TestProgressTracker_CorruptMarker(t *testing.T) {
	client, s := setupTestRedis(t)
	tracker := NewProgressTracker(client, 0)

	s.Set("provisioning:acct-1", "garbage")
	if _, err := tracker.Active(context.Background(), "acct-1"); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestRevalidator_PublishSubscribe(t *testing.T) {
	client, _ := setupTestRedis(t)
	r := NewRevalidator(client)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	events, err := r.Subscribe(ctx)
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	if err := r.Revalidate(ctx, "/documents"); err != nil {
		t.Fatalf("Revalidate failed: %v", err)
	}

	select {
	case ev := <-events:
		if ev.Path != "/documents" {
			t.Errorf("expected path /documents, got %q", ev.Path)
		}
		if ev.At.IsZero() {
			t.Error("expected event timestamp")
		}
	case <-ctx.Done():
		t.Fatal("timed out waiting for revalidate event")
	}
}

func TestRevalidator_PublishWithoutSubscribers(t *testing.T) {
	client, _ := setupTestRedis(t)
	r := NewRevalidator(client)
	if err := r.Revalidate(context.Background(), "/"); err != nil {
		t.Fatalf("Revalidate failed: %v", err)
	}
}
