package services

import "context"

// Revalidator is told when a mutation finished for a logical view path so
// whoever caches that view can refresh it.
type Revalidator interface {
	Revalidate(ctx context.Context, path string) error
}
