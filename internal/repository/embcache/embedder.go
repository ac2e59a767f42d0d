// Package embcache memoizes embedding oracle calls in the key-value store.
package embcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/ragate/internal/db"
	"github.com/kailas-cloud/ragate/internal/domain"
)

var keyPrefix = domain.KeyPrefix + "emb_cache:"

type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Config controls one cache instance.
type Config struct {
	// Model partitions the keyspace so a model switch never serves stale vectors.
	Model string
	// Dimensions, when set, turns cached vectors of another length into misses.
	Dimensions int
	// TTL of each entry; zero keeps entries until evicted.
	TTL time.Duration
	// Lookups counts results by label "result" (hit, miss). Optional.
	Lookups *prometheus.CounterVec
}

// Embedder wraps another embedder with a read-through cache.
// Store failures degrade to a direct call and never fail Embed.
type Embedder struct {
	next   domain.Embedder
	store  store
	cfg    Config
	logger *zap.Logger
}

func New(next domain.Embedder, s store, cfg Config, logger *zap.Logger) *Embedder {
	return &Embedder{next: next, store: s, cfg: cfg, logger: logger}
}

// Embed serves text from cache when possible. Hits report zero tokens.
func (e *Embedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	key := e.key(text)

	if vec := e.lookup(ctx, key); vec != nil {
		e.count("hit")
		return domain.EmbeddingResult{Embedding: vec}, nil
	}
	e.count("miss")

	res, err := e.next.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed text: %w", err)
	}
	if len(res.Embedding) > 0 {
		if err := e.store.SetWithTTL(ctx, key, db.EncodeVector(res.Embedding), e.cfg.TTL); err != nil {
			e.logger.Warn("Embedding cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return res, nil
}

// lookup returns nil on any miss, including unreadable or stale entries.
func (e *Embedder) lookup(ctx context.Context, key string) []float32 {
	blob, err := e.store.Get(ctx, key)
	switch {
	case errors.Is(err, db.ErrKeyNotFound):
		return nil
	case err != nil:
		e.logger.Warn("Embedding cache read failed", zap.String("key", key), zap.Error(err))
		return nil
	}

	vec, err := db.DecodeVector(blob)
	if err != nil {
		e.logger.Warn("Corrupt embedding cache entry", zap.String("key", key), zap.Error(err))
		return nil
	}
	if e.cfg.Dimensions > 0 && len(vec) != e.cfg.Dimensions {
		e.logger.Debug("Embedding cache entry has stale dimensions",
			zap.String("key", key), zap.Int("cached", len(vec)), zap.Int("want", e.cfg.Dimensions))
		return nil
	}
	return vec
}

func (e *Embedder) count(result string) {
	if e.cfg.Lookups != nil {
		e.cfg.Lookups.WithLabelValues(result).Inc()
	}
}

// key is prefix + hex(sha256(model NUL text)).
func (e *Embedder) key(text string) string {
	sum := sha256.Sum256([]byte(e.cfg.Model + "\x00" + text))
	return keyPrefix + hex.EncodeToString(sum[:])
}
