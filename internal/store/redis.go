package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"storefront-cart/internal/domain"
	"github.com/redis/go-redis/v9"
)

// pubsubChannel carries the slot key of every modified cart slot.
const pubsubChannel = "cart.slots.changed"

type RedisStore struct {
	client *redis.Client
	logger *log.Logger
}

func NewRedis(client *redis.Client, logger *log.Logger) *RedisStore {
	return &RedisStore{client: client, logger: logger}
}

func (s *RedisStore) Read(ctx context.Context, slot string) ([]domain.CartItem, error) {
	raw, err := s.client.Get(ctx, slotKey(slot)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	return decodeItems(raw, slot, s.logger), nil
}

func (s *RedisStore) Write(ctx context.Context, slot string, items []domain.CartItem) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, slotKey(slot), raw, 0).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	s.publish(ctx, slot)
	return nil
}

func (s *RedisStore) Clear(ctx context.Context, slot string) error {
	if err := s.client.Del(ctx, slotKey(slot)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	s.publish(ctx, slot)
	return nil
}

func (s *RedisStore) Watch(ctx context.Context, slot string) (<-chan struct{}, error) {
	sub := s.client.Subscribe(ctx, pubsubChannel)
	// Force the subscription before returning so no write is missed.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("redis subscribe: %w", err)
	}

	ch := make(chan struct{}, 1)
	go func() {
		defer close(ch)
		defer sub.Close()
		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				if msg.Payload == slot {
					signal(ch)
				}
			}
		}
	}()
	return ch, nil
}

func (s *RedisStore) publish(ctx context.Context, slot string) {
	if err := s.client.Publish(ctx, pubsubChannel, slot).Err(); err != nil {
		s.logger.Printf("publish slot change for %s: %v", slot, err)
	}
}

func slotKey(slot string) string {
	return fmt.Sprintf("cart:%s", slot)
}
