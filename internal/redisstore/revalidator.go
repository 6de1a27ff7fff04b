package redisstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultChannel is the pub/sub channel revalidation events are published on
const DefaultChannel = "dossier:revalidate"

// Event is the payload published for each finished mutation
type Event struct {
	Path string    `json:"path"`
	At   time.Time `json:"at"`
}

// Revalidator publishes "mutation complete for path" events so view caches
// in other processes can refresh.
type Revalidator struct {
	client  *redis.Client
	channel string
}

// NewRevalidator creates a revalidator publishing on DefaultChannel
func NewRevalidator(client *redis.Client) *Revalidator {
	return &Revalidator{client: client, channel: DefaultChannel}
}

// Revalidate publishes an event for path
func (r *Revalidator) Revalidate(ctx context.Context, path string) error {
	payload, err := json.Marshal(Event{Path: path, At: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("marshal revalidate event: %w", err)
	}
	if err := r.client.Publish(ctx, r.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish revalidate event: %w", err)
	}
	return nil
}

// Subscribe streams events until ctx is cancelled. The returned channel is
// closed when the subscription ends.
func (r *Revalidator) Subscribe(ctx context.Context) (<-chan Event, error) {
	sub := r.client.Subscribe(ctx, r.channel)
	// Wait for the subscription to be confirmed so no publish is missed
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return nil, fmt.Errorf("subscribe %s: %w", r.channel, err)
	}

	events := make(chan Event)
	go func() {
		defer close(events)
		defer sub.Close()

		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var ev Event
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					continue
				}
				select {
				case events <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return events, nil
}
