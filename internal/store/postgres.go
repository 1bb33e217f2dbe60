package store

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"storefront-cart/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// notifyChannel carries the slot key of every modified cart slot.
const notifyChannel = "cart_slots_changed"

type PostgresStore struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) *PostgresStore {
	return &PostgresStore{pool: pool, logger: logger}
}

func (s *PostgresStore) Read(ctx context.Context, slot string) ([]domain.CartItem, error) {
	const q = `
SELECT payload
FROM cart_slots
WHERE slot = $1
`
	var raw []byte
	if err := s.pool.QueryRow(ctx, q, slot).Scan(&raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return decodeItems(raw, slot, s.logger), nil
}

func (s *PostgresStore) Write(ctx context.Context, slot string, items []domain.CartItem) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return err
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
INSERT INTO cart_slots (slot, payload, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (slot) DO UPDATE
SET payload = EXCLUDED.payload,
    updated_at = now()
`, slot, raw); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `SELECT pg_notify($1, $2)`, notifyChannel, slot); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *PostgresStore) Clear(ctx context.Context, slot string) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM cart_slots WHERE slot = $1`, slot); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `SELECT pg_notify($1, $2)`, notifyChannel, slot); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// Watch holds a dedicated connection on LISTEN and forwards
// notifications for the given slot. Writers from any process are seen
// because pg_notify fires on commit.
func (s *PostgresStore) Watch(ctx context.Context, slot string) (<-chan struct{}, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := conn.Exec(ctx, `LISTEN `+notifyChannel); err != nil {
		conn.Release()
		return nil, err
	}

	ch := make(chan struct{}, 1)
	go func() {
		defer close(ch)
		defer conn.Release()
		for {
			n, err := conn.Conn().WaitForNotification(ctx)
			if err != nil {
				if ctx.Err() == nil {
					s.logger.Printf("slot watch for %s stopped: %v", slot, err)
				}
				return
			}
			if n.Payload == slot {
				signal(ch)
			}
		}
	}()
	return ch, nil
}
