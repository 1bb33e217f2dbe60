package cart

import (
	"context"
	"log"
	"sync"

	"storefront-cart/internal/bus"
	"storefront-cart/internal/store"
)

// Manager hands out one SyncedCart per slot key and keeps its watcher
// goroutine running for the lifetime of the manager's context.
type Manager struct {
	ctx    context.Context
	store  store.Store
	logger *log.Logger

	mu    sync.Mutex
	carts map[string]*SyncedCart
}

func NewManager(ctx context.Context, st store.Store, logger *log.Logger) *Manager {
	return &Manager{
		ctx:    ctx,
		store:  st,
		logger: logger,
		carts:  make(map[string]*SyncedCart),
	}
}

// Get returns the shared cart instance for the slot, creating and
// loading it on first use.
func (m *Manager) Get(ctx context.Context, slot string) *SyncedCart {
	m.mu.Lock()
	if c, ok := m.carts[slot]; ok {
		m.mu.Unlock()
		return c
	}
	c := New(slot, m.store, bus.New(), m.logger)
	m.carts[slot] = c
	m.mu.Unlock()

	c.Load(ctx)
	go func() {
		if err := c.Run(m.ctx); err != nil && m.ctx.Err() == nil {
			m.logger.Printf("cart watcher for %s stopped: %v", slot, err)
		}
	}()
	return c
}
