package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"storefront-cart/internal/domain"
)

// Demo identifies the session and customer the seed creates.
type Demo struct {
	Token      string
	CustomerID string
}

// Apply inserts demo data for manual testing: a long-lived session and
// a pre-filled cart slot for it. Idempotent via ON CONFLICT.
func Apply(ctx context.Context, pool *pgxpool.Pool, demo Demo) error {
	if err := ensureSession(ctx, pool, demo); err != nil {
		return fmt.Errorf("ensure session: %w", err)
	}

	items := []domain.CartItem{
		{ID: "demo-shirt", Name: "Demo T-Shirt", PriceCents: 1999, Quantity: 1},
		{ID: "demo-mug", Name: "Demo Mug", PriceCents: 1299, Quantity: 2},
	}
	if err := ensureCartSlot(ctx, pool, demo.Token, items); err != nil {
		return fmt.Errorf("ensure cart slot: %w", err)
	}

	return nil
}

func ensureSession(ctx context.Context, pool *pgxpool.Pool, demo Demo) error {
	const q = `
INSERT INTO sessions (token, customer_id, expires_at)
VALUES ($1, $2, $3)
ON CONFLICT (token) DO UPDATE SET expires_at = EXCLUDED.expires_at
`
	_, err := pool.Exec(ctx, q, demo.Token, demo.CustomerID, time.Now().Add(365*24*time.Hour))
	return err
}

func ensureCartSlot(ctx context.Context, pool *pgxpool.Pool, slot string, items []domain.CartItem) error {
	payload, err := json.Marshal(items)
	if err != nil {
		return err
	}
	const q = `
INSERT INTO cart_slots (slot, payload, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (slot) DO NOTHING
`
	_, err = pool.Exec(ctx, q, slot, payload)
	return err
}
