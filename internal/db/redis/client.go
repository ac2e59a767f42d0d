// Package redis implements db.Store on rueidis. Valkey with valkey-search and
// Redis 8+ with the query engine speak the same FT dialect, so one client serves both.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/ragate/internal/db"
)

var _ db.Store = (*Store)(nil)

const readyPollInterval = 100 * time.Millisecond

// Config selects the deployment and credentials. An empty Username means the default ACL user.
type Config struct {
	Addrs    []string
	Username string
	Password string
	DB       int
}

func (c Config) clientOption() rueidis.ClientOption {
	return rueidis.ClientOption{
		InitAddress: c.Addrs,
		Username:    c.Username,
		Password:    c.Password,
		SelectDB:    c.DB,
		// Server-assisted caching needs RESP3, and parseNeighbors reads RESP2 FT.SEARCH replies.
		DisableCache: true,
		AlwaysRESP2:  true,
	}
}

// Store talks to one deployment through a pooled rueidis client.
type Store struct {
	client rueidis.Client
}

// NewStore dials cfg.Addrs.
func NewStore(cfg Config) (*Store, error) {
	if len(cfg.Addrs) == 0 {
		return nil, errors.New("redis: no addresses configured")
	}
	c, err := rueidis.NewClient(cfg.clientOption())
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", strings.Join(cfg.Addrs, ","), err)
	}
	return &Store{client: c}, nil
}

// NewStoreForTest wraps an existing client, usually rueidis/mock.
func NewStoreForTest(c rueidis.Client) *Store {
	return &Store{client: c}
}

func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Do(ctx, s.client.B().Ping().Build()).Error(); err != nil {
		return &db.Error{Cmd: "PING", Err: err}
	}
	return nil
}

// Close releases the connection pool.
func (s *Store) Close() { s.client.Close() }

// WaitForReady retries Ping every readyPollInterval until it succeeds, ctx ends
// or timeout elapses. The last ping error is wrapped into the result.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	deadline, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	tick := time.NewTicker(readyPollInterval)
	defer tick.Stop()

	for attempt := 1; ; attempt++ {
		err := s.Ping(deadline)
		if err == nil {
			return nil
		}
		select {
		case <-deadline.Done():
			return fmt.Errorf("store unreachable after %d attempts in %s: %w", attempt, timeout, err)
		case <-tick.C:
		}
	}
}

// serverErrorContains reports whether err is a server reply mentioning substr.
func serverErrorContains(err error, substr string) bool {
	re, ok := rueidis.IsRedisErr(err)
	return ok && strings.Contains(strings.ToLower(re.Error()), substr)
}
