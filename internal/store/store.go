package store

import (
	"context"

	"storefront-cart/internal/domain"
)

// Store is the durable cart slot. A slot holds one JSON-serialized item
// sequence under a single key. Read tolerates absent or malformed data
// by returning an empty sequence; Clear removes the entry entirely, so
// downstream code treats "absent" and "present but empty" the same.
type Store interface {
	Read(ctx context.Context, slot string) ([]domain.CartItem, error)
	Write(ctx context.Context, slot string, items []domain.CartItem) error
	Clear(ctx context.Context, slot string) error

	// Watch delivers a coalesced signal whenever the slot is modified by
	// any writer, including other processes. The channel closes when ctx
	// is cancelled.
	Watch(ctx context.Context, slot string) (<-chan struct{}, error)
}

// signal performs a non-blocking send so slow consumers coalesce
// notifications instead of blocking writers.
func signal(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}
