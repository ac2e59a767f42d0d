package ragate

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option adjusts a Client before it connects.
type Option func(*clientConfig)

type clientConfig struct {
	driver   string
	addrs    []string
	username string
	password string

	embedder  Embedder
	completer Completer

	collection       string
	vectorDimensions int
	hnswM            int
	hnswEFConstruct  int

	relevanceThreshold float64
	topK, maxTopK      int
	maxQueryLength     int
	oracleTimeout      time.Duration

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

func useStore(driver, addr, password string) Option {
	return func(c *clientConfig) {
		c.driver, c.addrs, c.password = driver, []string{addr}, password
	}
}

// WithValkey stores documents in Valkey with the valkey-search module.
func WithValkey(addr, password string) Option { return useStore("valkey", addr, password) }

// WithRedis stores documents in Redis 8+ (or Redis Stack).
func WithRedis(addr, password string) Option { return useStore("redis", addr, password) }

// WithStoreUser sets the ACL user for WithValkey or WithRedis. Without it the default user is used.
func WithStoreUser(name string) Option {
	return func(c *clientConfig) { c.username = name }
}

// WithEmbedder is required. Its vectors must match WithVectorDimensions.
func WithEmbedder(e Embedder) Option {
	return func(c *clientConfig) { c.embedder = e }
}

// WithCompleter is required. It answers both the relevance check and the final generation.
func WithCompleter(cm Completer) Option {
	return func(c *clientConfig) { c.completer = cm }
}

// WithCollection names the document set; each collection has its own index. Default "commercial_data".
func WithCollection(name string) Option {
	return func(c *clientConfig) { c.collection = name }
}

// WithVectorDimensions must match the embedder. Default 3072, the size of text-embedding-3-large.
func WithVectorDimensions(dim int) Option {
	return func(c *clientConfig) { c.vectorDimensions = dim }
}

// WithHNSW tunes graph degree and build-time beam width. Zero keeps the defaults of 32 and 400.
func WithHNSW(m, efConstruct int) Option {
	return func(c *clientConfig) { c.hnswM, c.hnswEFConstruct = m, efConstruct }
}

// WithRelevanceThreshold is the cosine distance a passage must stay under to be used as context.
// Default 0.30.
func WithRelevanceThreshold(d float64) Option {
	return func(c *clientConfig) { c.relevanceThreshold = d }
}

// WithTopK sets how many passages a query retrieves by default and the most a caller may ask for.
// Defaults 10 and 50.
func WithTopK(k, maxK int) Option {
	return func(c *clientConfig) { c.topK, c.maxTopK = k, maxK }
}

// WithMaxQueryLength truncates sanitized questions to n characters. Default 1000.
func WithMaxQueryLength(n int) Option {
	return func(c *clientConfig) { c.maxQueryLength = n }
}

// WithOracleTimeout bounds each oracle-backed step of Query and Ingest. Default 30s.
func WithOracleTimeout(d time.Duration) Option {
	return func(c *clientConfig) { c.oracleTimeout = d }
}

// WithLogger receives one record per failed call and a debug record per successful one.
func WithLogger(l *slog.Logger) Option {
	return func(c *clientConfig) { c.logger = l }
}

// WithPrometheus exports ragate_sdk_operations_total and ragate_sdk_operation_duration_seconds.
// Several clients may share one registry.
func WithPrometheus(reg prometheus.Registerer) Option {
	return func(c *clientConfig) { c.metricsReg = reg }
}
