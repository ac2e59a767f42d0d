package counter

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/kailas-cloud/ragate/internal/db"
	"github.com/kailas-cloud/ragate/internal/domain"
)

var keyPrefix = domain.KeyPrefix + "metrics:"

// store is the consumer interface for counter operations (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	IncrBy(ctx context.Context, key string, val int64) (int64, error)
}

// Store keeps process-wide monotonic counters in the shared KV store (INCRBY + GET).
// Concurrency is the store's responsibility; INCRBY is atomic server-side.
type Store struct {
	store store
}

// New creates a counter store.
func New(s store) *Store {
	return &Store{store: s}
}

// Increment atomically adds one to the named counter.
func (s *Store) Increment(ctx context.Context, name string) error {
	key := keyPrefix + name
	if _, err := s.store.IncrBy(ctx, key, 1); err != nil {
		return fmt.Errorf("counter INCRBY %s: %w", key, err)
	}
	return nil
}

// Get returns the current counter value. A counter that was never incremented reads as 0.
func (s *Store) Get(ctx context.Context, name string) (int64, error) {
	key := keyPrefix + name
	data, err := s.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("counter GET %s: %w", key, err)
	}

	val, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("counter GET %s parse: %w", key, err)
	}
	return val, nil
}
