package cart

import (
	"context"
	"log"
	"sync"

	"storefront-cart/internal/bus"
	"storefront-cart/internal/domain"
	"storefront-cart/internal/store"
)

// SyncedCart keeps an in-process view of one cart slot consistent with
// the durable store. The cache is replaced wholesale on every trigger
// (initial load, external store change, internal mutation signal); it is
// always either fully derived from the latest durable snapshot or empty,
// never partially merged.
type SyncedCart struct {
	slot   string
	store  store.Store
	bus    *bus.Bus
	logger *log.Logger

	mu    sync.Mutex
	items []domain.CartItem
}

func New(slot string, st store.Store, b *bus.Bus, logger *log.Logger) *SyncedCart {
	return &SyncedCart{
		slot:   slot,
		store:  st,
		bus:    b,
		logger: logger,
	}
}

// Load populates the cache from the store. A read failure resets the
// cache to empty rather than leaving a stale or partial value.
func (c *SyncedCart) Load(ctx context.Context) {
	items, err := c.store.Read(ctx, c.slot)
	if err != nil {
		c.logger.Printf("load cart %s: %v", c.slot, err)
		items = nil
	}
	c.mu.Lock()
	c.items = items
	c.mu.Unlock()
}

// Run consumes both change feeds until ctx is cancelled: the store's
// watch channel (writes from other processes) and the in-process bus
// (mutations through this instance's API).
func (c *SyncedCart) Run(ctx context.Context) error {
	external, err := c.store.Watch(ctx, c.slot)
	if err != nil {
		return err
	}
	internal, cancel := c.bus.Subscribe()
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case _, ok := <-external:
			if !ok {
				return nil
			}
			c.Load(ctx)
		case <-internal:
			c.Load(ctx)
		}
	}
}

// Add puts the product into the cart with the given quantity. When the
// product is already present its quantity is replaced, not accumulated.
// Quantity is clamped to a minimum of one.
func (c *SyncedCart) Add(ctx context.Context, item domain.CartItem, quantity int) {
	q := domain.ClampQuantity(quantity)

	c.mu.Lock()
	next := c.snapshotLocked()
	replaced := false
	for i := range next {
		if next[i].ID == item.ID {
			next[i].Quantity = q
			replaced = true
			break
		}
	}
	if !replaced {
		item.Quantity = q
		next = append(next, item)
	}
	c.commitLocked(ctx, next)
}

// Remove drops the line item with the given product ID. Removing an
// absent ID is a no-op, not an error.
func (c *SyncedCart) Remove(ctx context.Context, id string) {
	c.mu.Lock()
	next := make([]domain.CartItem, 0, len(c.items))
	for _, it := range c.items {
		if it.ID != id {
			next = append(next, it)
		}
	}
	c.commitLocked(ctx, next)
}

// SetQuantity updates the matching line's quantity, clamped to a
// minimum of one. No-op when the ID is absent.
func (c *SyncedCart) SetQuantity(ctx context.Context, id string, quantity int) {
	c.mu.Lock()
	next := c.snapshotLocked()
	for i := range next {
		if next[i].ID == id {
			next[i].Quantity = domain.ClampQuantity(quantity)
			break
		}
	}
	c.commitLocked(ctx, next)
}

// Clear empties the cart and removes the persisted entry entirely.
func (c *SyncedCart) Clear(ctx context.Context) {
	c.mu.Lock()
	if err := c.store.Clear(ctx, c.slot); err != nil {
		c.logger.Printf("clear cart %s: %v", c.slot, err)
	}
	c.items = nil
	c.mu.Unlock()
	c.bus.Publish()
}

// Slot is the durable key this cart is bound to.
func (c *SyncedCart) Slot() string {
	return c.slot
}

// Items returns the cached view in insertion order.
func (c *SyncedCart) Items() []domain.CartItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Count is the number of distinct line items, independent of quantities.
func (c *SyncedCart) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// TotalCents sums unit price times quantity over the cached view.
func (c *SyncedCart) TotalCents() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return domain.TotalCents(c.items)
}

// TotalQuantity sums quantities over the cached view.
func (c *SyncedCart) TotalQuantity() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return domain.TotalQuantity(c.items)
}

func (c *SyncedCart) snapshotLocked() []domain.CartItem {
	out := make([]domain.CartItem, len(c.items))
	copy(out, c.items)
	return out
}

// commitLocked persists the new sequence, updates the cache and
// broadcasts the update signal. A store failure is absorbed here: the
// cache still reflects the attempted change, so callers must not assume
// persistence succeeded. Releases the mutex taken by the caller.
func (c *SyncedCart) commitLocked(ctx context.Context, next []domain.CartItem) {
	if err := c.store.Write(ctx, c.slot, next); err != nil {
		c.logger.Printf("persist cart %s: %v", c.slot, err)
	}
	c.items = next
	c.mu.Unlock()
	c.bus.Publish()
}
