package idempotency

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store keeps the results of completed requests keyed by their
// Idempotency-Key so a retried request gets the same answer.
type Store struct {
	client *redis.Client
}

func New(client *redis.Client) *Store {
	return &Store{client: client}
}

// Get decodes the stored result into dst. It reports false when nothing is stored.
func (s *Store) Get(ctx context.Context, key string, dst any) (bool, error) {
	const op = "idempotency.Store.Get"

	raw, err := s.client.Get(ctx, resultKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return true, nil
}

func (s *Store) Put(ctx context.Context, key string, v any, ttl time.Duration) error {
	const op = "idempotency.Store.Put"

	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.client.Set(ctx, resultKey(key), raw, ttl).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func resultKey(key string) string {
	return "idempotency:" + key
}
