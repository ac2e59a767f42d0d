// Package db is the storage contract shared by the vector index, the query
// counters and the embedding cache. One Valkey or Redis deployment with a
// search module serves all three.
package db

import (
	"context"
	"time"
)

// Store is everything the gateway needs from the key-value store.
//
//nolint:interfacebloat // facade; consumers declare narrower interfaces
type Store interface {
	Pinger
	Hashes
	Values
	VectorSearcher
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Hashes stores documents as field maps.
type Hashes interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	Del(ctx context.Context, key string) error
}

// Values holds counters and cached blobs.
type Values interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	IncrBy(ctx context.Context, key string, delta int64) (int64, error)
}

// VectorSearcher owns the FT index over a document collection.
type VectorSearcher interface {
	CreateVectorIndex(ctx context.Context, spec *VectorIndexSpec) error
	SearchNearest(ctx context.Context, q *NearestQuery) ([]Neighbor, error)
}
