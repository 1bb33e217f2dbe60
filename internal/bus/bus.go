// Package bus is a minimal in-process fan-out used as the same-context
// cart update signal. Notifications carry no payload; subscribers
// re-read the durable store instead of patching incrementally.
package bus

import "sync"

type Bus struct {
	mu   sync.Mutex
	next int
	subs map[int]chan struct{}
}

func New() *Bus {
	return &Bus{subs: make(map[int]chan struct{})}
}

// Subscribe returns a signal channel and a cancel function. The channel
// has capacity one; bursts of publishes coalesce into a single signal.
func (b *Bus) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)
	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = ch
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		if _, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(ch)
		}
		b.mu.Unlock()
	}
	return ch, cancel
}

// Publish signals every subscriber without blocking.
func (b *Bus) Publish() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
