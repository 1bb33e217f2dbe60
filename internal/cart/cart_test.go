package cart

import (
	"context"
	"errors"
	"log"
	"os"
	"sync"
	"testing"
	"time"

	"storefront-cart/internal/bus"
	"storefront-cart/internal/domain"
)

type stubStore struct {
	mu       sync.Mutex
	data     map[string][]domain.CartItem
	readErr  error
	writeErr error
	clearErr error
	watch    chan struct{}

	writeCalls int
	clearCalls int
}

func newStubStore() *stubStore {
	return &stubStore{
		data:  make(map[string][]domain.CartItem),
		watch: make(chan struct{}, 1),
	}
}

func (s *stubStore) Read(_ context.Context, slot string) ([]domain.CartItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.readErr != nil {
		return nil, s.readErr
	}
	return append([]domain.CartItem(nil), s.data[slot]...), nil
}

func (s *stubStore) Write(_ context.Context, slot string, items []domain.CartItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeCalls++
	if s.writeErr != nil {
		return s.writeErr
	}
	s.data[slot] = append([]domain.CartItem(nil), items...)
	return nil
}

func (s *stubStore) Clear(_ context.Context, slot string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearCalls++
	if s.clearErr != nil {
		return s.clearErr
	}
	delete(s.data, slot)
	return nil
}

func (s *stubStore) Watch(_ context.Context, _ string) (<-chan struct{}, error) {
	return s.watch, nil
}

func (s *stubStore) put(slot string, items []domain.CartItem) {
	s.mu.Lock()
	s.data[slot] = items
	s.mu.Unlock()
}

func (s *stubStore) has(slot string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.data[slot]
	return ok
}

func testLogger() *log.Logger {
	return log.New(os.Stderr, "[test] ", log.LstdFlags)
}

func newTestCart(st *stubStore) *SyncedCart {
	return New("slot", st, bus.New(), testLogger())
}

func TestAddAppendsInInsertionOrder(t *testing.T) {
	st := newStubStore()
	c := newTestCart(st)
	ctx := context.Background()

	c.Add(ctx, domain.CartItem{ID: "p1", PriceCents: 1000}, 2)
	c.Add(ctx, domain.CartItem{ID: "p2", PriceCents: 500}, 1)

	items := c.Items()
	if len(items) != 2 || items[0].ID != "p1" || items[1].ID != "p2" {
		t.Fatalf("unexpected items: %+v", items)
	}
}

func TestAddSameIDReplacesQuantity(t *testing.T) {
	st := newStubStore()
	c := newTestCart(st)
	ctx := context.Background()

	c.Add(ctx, domain.CartItem{ID: "p1"}, 3)
	c.Add(ctx, domain.CartItem{ID: "p1"}, 5)

	items := c.Items()
	if len(items) != 1 {
		t.Fatalf("expected one line item, got %d", len(items))
	}
	if items[0].Quantity != 5 {
		t.Fatalf("expected quantity replaced with 5, got %d", items[0].Quantity)
	}
}

func TestAddClampsQuantity(t *testing.T) {
	st := newStubStore()
	c := newTestCart(st)

	c.Add(context.Background(), domain.CartItem{ID: "p1"}, 0)

	if got := c.Items()[0].Quantity; got != 1 {
		t.Fatalf("expected quantity clamped to 1, got %d", got)
	}
}

func TestRemoveFiltersAndTolerantOfAbsent(t *testing.T) {
	st := newStubStore()
	c := newTestCart(st)
	ctx := context.Background()

	c.Add(ctx, domain.CartItem{ID: "p1"}, 1)
	c.Add(ctx, domain.CartItem{ID: "p2"}, 1)

	c.Remove(ctx, "p1")
	c.Remove(ctx, "missing")

	items := c.Items()
	if len(items) != 1 || items[0].ID != "p2" {
		t.Fatalf("unexpected items: %+v", items)
	}
}

func TestSetQuantityClampsAndIgnoresAbsent(t *testing.T) {
	st := newStubStore()
	c := newTestCart(st)
	ctx := context.Background()

	c.Add(ctx, domain.CartItem{ID: "p1"}, 4)
	c.SetQuantity(ctx, "p1", -5)
	c.SetQuantity(ctx, "missing", 7)

	items := c.Items()
	if len(items) != 1 || items[0].Quantity != 1 {
		t.Fatalf("unexpected items: %+v", items)
	}
}

func TestNoDuplicateIDsAfterMixedMutations(t *testing.T) {
	st := newStubStore()
	c := newTestCart(st)
	ctx := context.Background()

	c.Add(ctx, domain.CartItem{ID: "p1"}, 1)
	c.Add(ctx, domain.CartItem{ID: "p2"}, 2)
	c.Add(ctx, domain.CartItem{ID: "p1"}, 9)
	c.SetQuantity(ctx, "p2", 0)
	c.Remove(ctx, "p3")
	c.Add(ctx, domain.CartItem{ID: "p3"}, 1)

	seen := map[string]bool{}
	for _, it := range c.Items() {
		if seen[it.ID] {
			t.Fatalf("duplicate line item for %s", it.ID)
		}
		seen[it.ID] = true
		if it.Quantity < 1 {
			t.Fatalf("quantity below 1 for %s: %d", it.ID, it.Quantity)
		}
	}
}

func TestAggregates(t *testing.T) {
	st := newStubStore()
	c := newTestCart(st)
	ctx := context.Background()

	c.Add(ctx, domain.CartItem{ID: "p1", PriceCents: 1000}, 2)
	c.Add(ctx, domain.CartItem{ID: "p2", PriceCents: 500}, 1)

	if got := c.TotalCents(); got != 2500 {
		t.Fatalf("expected total 2500, got %d", got)
	}
	if got := c.TotalQuantity(); got != 3 {
		t.Fatalf("expected total quantity 3, got %d", got)
	}
	if got := c.Count(); got != 2 {
		t.Fatalf("expected 2 distinct lines, got %d", got)
	}
}

func TestClearRemovesPersistedEntry(t *testing.T) {
	st := newStubStore()
	c := newTestCart(st)
	ctx := context.Background()

	c.Add(ctx, domain.CartItem{ID: "p1"}, 1)
	c.Clear(ctx)

	if st.has("slot") {
		t.Fatalf("expected persisted entry removed")
	}
	if st.clearCalls != 1 {
		t.Fatalf("expected one clear call, got %d", st.clearCalls)
	}
	if c.Count() != 0 {
		t.Fatalf("expected empty cache after clear")
	}
}

func TestWriteFailureKeepsCacheOnly(t *testing.T) {
	st := newStubStore()
	st.writeErr = errors.New("store down")
	c := newTestCart(st)
	ctx := context.Background()

	c.Add(ctx, domain.CartItem{ID: "p1"}, 1)

	if c.Count() != 1 {
		t.Fatalf("expected cache to reflect attempted change")
	}
	if st.has("slot") {
		t.Fatalf("expected persisted state untouched")
	}
}

func TestLoadFailureResetsCacheToEmpty(t *testing.T) {
	st := newStubStore()
	c := newTestCart(st)
	ctx := context.Background()

	c.Add(ctx, domain.CartItem{ID: "p1"}, 1)
	st.readErr = errors.New("store down")
	c.Load(ctx)

	if c.Count() != 0 {
		t.Fatalf("expected cache reset to empty on read failure")
	}
}

func TestExternalChangeReplacesCacheWholesale(t *testing.T) {
	st := newStubStore()
	c := newTestCart(st)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	// Another process rewrites the slot, then the watch fires.
	st.put("slot", []domain.CartItem{{ID: "p9", Quantity: 4}})
	st.watch <- struct{}{}

	deadline := time.After(2 * time.Second)
	for {
		items := c.Items()
		if len(items) == 1 && items[0].ID == "p9" && items[0].Quantity == 4 {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("cache never converged to external state: %+v", items)
		case <-time.After(10 * time.Millisecond):
		}
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestMutationSignalTriggersReread(t *testing.T) {
	st := newStubStore()
	b := bus.New()
	c := New("slot", st, b, testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() { _ = c.Run(ctx) }()
	// Give the watcher a moment to subscribe before mutating.
	time.Sleep(20 * time.Millisecond)

	st.mu.Lock()
	st.writeErr = errors.New("store down")
	st.mu.Unlock()
	c.Add(ctx, domain.CartItem{ID: "p1"}, 1)
	st.mu.Lock()
	st.writeErr = nil
	st.mu.Unlock()

	// The broadcast makes the synchronizer re-read the durable snapshot,
	// which never saw the failed write.
	deadline := time.After(2 * time.Second)
	for {
		if c.Count() == 0 {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("cache not reconciled with durable snapshot")
		case <-time.After(10 * time.Millisecond):
		}
	}
}
