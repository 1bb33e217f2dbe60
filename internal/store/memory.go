package store

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"storefront-cart/internal/domain"
)

// MemoryStore keeps slots in process memory. Used in tests and as the
// dev backend when neither Postgres nor Redis is configured.
type MemoryStore struct {
	logger *log.Logger

	mu       sync.Mutex
	slots    map[string][]byte
	watchers map[string][]chan struct{}
}

func NewMemory(logger *log.Logger) *MemoryStore {
	return &MemoryStore{
		logger:   logger,
		slots:    make(map[string][]byte),
		watchers: make(map[string][]chan struct{}),
	}
}

func (m *MemoryStore) Read(_ context.Context, slot string) ([]domain.CartItem, error) {
	m.mu.Lock()
	raw, ok := m.slots[slot]
	m.mu.Unlock()
	if !ok {
		return nil, nil
	}
	return decodeItems(raw, slot, m.logger), nil
}

func (m *MemoryStore) Write(_ context.Context, slot string, items []domain.CartItem) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.slots[slot] = raw
	watchers := append([]chan struct{}(nil), m.watchers[slot]...)
	m.mu.Unlock()
	for _, ch := range watchers {
		signal(ch)
	}
	return nil
}

func (m *MemoryStore) Clear(_ context.Context, slot string) error {
	m.mu.Lock()
	delete(m.slots, slot)
	watchers := append([]chan struct{}(nil), m.watchers[slot]...)
	m.mu.Unlock()
	for _, ch := range watchers {
		signal(ch)
	}
	return nil
}

func (m *MemoryStore) Watch(ctx context.Context, slot string) (<-chan struct{}, error) {
	ch := make(chan struct{}, 1)
	m.mu.Lock()
	m.watchers[slot] = append(m.watchers[slot], ch)
	m.mu.Unlock()

	go func() {
		<-ctx.Done()
		m.mu.Lock()
		ws := m.watchers[slot]
		for i, w := range ws {
			if w == ch {
				m.watchers[slot] = append(ws[:i], ws[i+1:]...)
				break
			}
		}
		m.mu.Unlock()
		close(ch)
	}()

	return ch, nil
}

// decodeItems absorbs corrupted payloads: a slot that cannot be parsed
// behaves like an absent slot.
func decodeItems(raw []byte, slot string, logger *log.Logger) []domain.CartItem {
	var items []domain.CartItem
	if err := json.Unmarshal(raw, &items); err != nil {
		if logger != nil {
			logger.Printf("slot %s holds malformed payload, treating as empty: %v", slot, err)
		}
		return nil
	}
	return items
}
