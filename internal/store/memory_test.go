package store

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"storefront-cart/internal/domain"
)

func testLogger() *log.Logger {
	return log.New(os.Stderr, "[test] ", log.LstdFlags)
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	s := NewMemory(testLogger())
	ctx := context.Background()

	items := []domain.CartItem{
		{ID: "p1", PriceCents: 1000, Quantity: 2},
		{ID: "p2", PriceCents: 500, Quantity: 1},
	}
	if err := s.Write(ctx, "slot-a", items); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := s.Read(ctx, "slot-a")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != 2 || got[0].ID != "p1" || got[1].ID != "p2" {
		t.Fatalf("unexpected items: %+v", got)
	}
	if got[0].Quantity != 2 || got[0].PriceCents != 1000 {
		t.Fatalf("unexpected first item: %+v", got[0])
	}
}

func TestMemoryStoreAbsentSlotIsEmpty(t *testing.T) {
	s := NewMemory(testLogger())
	got, err := s.Read(context.Background(), "missing")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty sequence, got %+v", got)
	}
}

func TestMemoryStoreClearRemovesEntry(t *testing.T) {
	s := NewMemory(testLogger())
	ctx := context.Background()

	if err := s.Write(ctx, "slot-a", []domain.CartItem{{ID: "p1", Quantity: 1}}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := s.Clear(ctx, "slot-a"); err != nil {
		t.Fatalf("clear: %v", err)
	}

	s.mu.Lock()
	_, present := s.slots["slot-a"]
	s.mu.Unlock()
	if present {
		t.Fatalf("expected entry removed, not emptied")
	}

	got, err := s.Read(ctx, "slot-a")
	if err != nil {
		t.Fatalf("read after clear: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty sequence after clear, got %+v", got)
	}
}

func TestMemoryStoreMalformedPayloadIsEmpty(t *testing.T) {
	s := NewMemory(testLogger())
	s.mu.Lock()
	s.slots["slot-a"] = []byte("{not json")
	s.mu.Unlock()

	got, err := s.Read(context.Background(), "slot-a")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected malformed payload to read as empty, got %+v", got)
	}
}

func TestMemoryStoreWatchSignalsOnWriteAndClear(t *testing.T) {
	s := NewMemory(testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := s.Watch(ctx, "slot-a")
	if err != nil {
		t.Fatalf("watch: %v", err)
	}

	if err := s.Write(ctx, "slot-a", []domain.CartItem{{ID: "p1", Quantity: 1}}); err != nil {
		t.Fatalf("write: %v", err)
	}
	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatalf("no signal after write")
	}

	if err := s.Clear(ctx, "slot-a"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatalf("no signal after clear")
	}
}
