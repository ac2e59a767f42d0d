// Package metrics holds the gateway's Prometheus collectors.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Namespace prefixes every exported metric.
const Namespace = "ragate"

// Oracle metrics, labelled by oracle role: embedding, classification, generation.
var (
	OracleRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "oracle_requests_total",
			Help:      "Total number of oracle calls",
		},
		[]string{"oracle", "model", "status"},
	)

	OracleRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "oracle_request_duration_seconds",
			Help:      "Oracle call duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"oracle", "model"},
	)

	OracleTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "oracle_tokens_total",
			Help:      "Total oracle tokens consumed",
		},
		[]string{"oracle", "model", "type"},
	)

	OracleThrottleWaitSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "oracle_throttle_wait_seconds",
			Help:      "Time spent waiting for the oracle rate limiter",
			Buckets:   []float64{0.001, 0.01, 0.1, 0.5, 1, 5},
		},
		[]string{"oracle"},
	)

	EmbeddingCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "embedding_cache_total",
			Help:      "Embedding cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)
)

// Pipeline metrics.
var (
	QueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "queries_total",
			Help:      "Query pipeline runs by outcome",
		},
		[]string{"outcome"},
	)

	QueryConfidence = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "query_confidence",
			Help:      "Retrieval confidence of answered queries",
			Buckets:   []float64{0, 0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1},
		},
	)

	ValidationWarningsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "validation_warnings_total",
			Help:      "Non-fatal output validation warnings",
		},
		[]string{"kind"},
	)

	StaleSourcesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "stale_sources_total",
			Help:      "Context items whose document date is older than the freshness window",
		},
	)

	DocumentsIngestedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "documents_ingested_total",
			Help:      "Documents handled by ingestion",
		},
		[]string{"result"}, // "stored" / "skipped"
	)
)

var registerOnce sync.Once

// Register adds every collector to the default registry.
// Safe to call more than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			OracleRequestsTotal,
			OracleRequestDuration,
			OracleTokensTotal,
			OracleThrottleWaitSeconds,
			EmbeddingCacheTotal,
			QueriesTotal,
			QueryConfidence,
			ValidationWarningsTotal,
			StaleSourcesTotal,
			DocumentsIngestedTotal,
			httpDuration,
			httpRequests,
			httpResponseBytes,
			httpInFlight,
		)
	})
}
