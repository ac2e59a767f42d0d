package ragate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/ragate/internal/db"
	dbRedis "github.com/kailas-cloud/ragate/internal/db/redis"
	"github.com/kailas-cloud/ragate/internal/domain"
	"github.com/kailas-cloud/ragate/internal/repository/counter"
	"github.com/kailas-cloud/ragate/internal/repository/vectorindex"
	"github.com/kailas-cloud/ragate/internal/usecase/assembly"
	documentuc "github.com/kailas-cloud/ragate/internal/usecase/document"
	"github.com/kailas-cloud/ragate/internal/usecase/generation"
	healthuc "github.com/kailas-cloud/ragate/internal/usecase/health"
	"github.com/kailas-cloud/ragate/internal/usecase/ingest"
	"github.com/kailas-cloud/ragate/internal/usecase/pipeline"
	"github.com/kailas-cloud/ragate/internal/usecase/relevance"
	"github.com/kailas-cloud/ragate/internal/usecase/retrieval"
	"github.com/kailas-cloud/ragate/internal/usecase/sanitize"
	usageuc "github.com/kailas-cloud/ragate/internal/usecase/usage"
	"github.com/kailas-cloud/ragate/internal/usecase/validation"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultCollection       = "commercial_data"
	defaultDimensions       = 3072
	defaultOracleTimeout    = 30 * time.Second
)

// Internal interfaces, swapped for mocks in tests.
type pipelineUseCase interface {
	RunQuery(ctx context.Context, req domain.QueryRequest) (domain.QueryResult, error)
	IngestDocuments(ctx context.Context, docs []domain.Document) (int, error)
}

type documentUseCase interface {
	Get(ctx context.Context, id string) (domain.Document, error)
	Delete(ctx context.Context, id string) error
}

// Client is the ragate SDK entry point.
type Client struct {
	store     db.Store
	pipe      pipelineUseCase
	docSvc    documentUseCase
	healthSvc healthUseCase
	usageSvc  usageUseCase
	obs       *observer
}

// New connects to the store, waits until it answers, and makes sure the
// collection index exists. ctx bounds both steps.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		collection:       defaultCollection,
		vectorDimensions: defaultDimensions,
		oracleTimeout:    defaultOracleTimeout,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if err := cfg.check(); err != nil {
		return nil, err
	}

	store, err := openStore(cfg)
	if err != nil {
		return nil, err
	}

	c, err := assemble(ctx, store, cfg)
	if err != nil {
		store.Close()
		return nil, err
	}
	return c, nil
}

func (cfg *clientConfig) check() error {
	switch {
	case len(cfg.addrs) == 0:
		return errors.New("ragate: no store configured, pass WithValkey or WithRedis")
	case cfg.driver != "valkey" && cfg.driver != "redis":
		return fmt.Errorf("ragate: unsupported store driver %q", cfg.driver)
	case cfg.embedder == nil:
		return errors.New("ragate: WithEmbedder is required")
	case cfg.completer == nil:
		return errors.New("ragate: WithCompleter is required")
	}
	return nil
}

// openStore dials the configured server. Valkey and Redis share one rueidis
// client since valkey-search and RediSearch speak the same FT.* dialect.
func openStore(cfg *clientConfig) (*dbRedis.Store, error) {
	s, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.addrs,
		Username: cfg.username,
		Password: cfg.password,
	})
	if err != nil {
		return nil, fmt.Errorf("ragate: open %s: %w", cfg.driver, err)
	}
	return s, nil
}

func assemble(ctx context.Context, store *dbRedis.Store, cfg *clientConfig) (*Client, error) {
	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		return nil, fmt.Errorf("ragate: %w", err)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	emb := oracleEmbedder{cfg.embedder}
	chat := oracleCompleter{cfg.completer}

	index := vectorindex.New(store, emb, cfg.collection, cfg.vectorDimensions)
	if cfg.hnswM > 0 || cfg.hnswEFConstruct > 0 {
		index = index.WithHNSW(vectorindex.HNSWConfig{M: cfg.hnswM, EFConstruct: cfg.hnswEFConstruct})
	}
	if err := index.EnsureIndex(ctx); err != nil {
		return nil, fmt.Errorf("ragate: index %q: %w", cfg.collection, err)
	}

	// Internal stages log through zap. SDK callers see slog records from the observer instead.
	quiet := zap.NewNop()
	counters := counter.New(store)

	return &Client{
		store: store,
		pipe: pipeline.New(pipeline.Stages{
			Sanitizer:  sanitize.New(cfg.maxQueryLength),
			Classifier: relevance.New(chat, 0, quiet),
			Retriever:  retrieval.New(index),
			Assembler:  assembly.New(cfg.relevanceThreshold),
			Generator:  generation.New(chat, generation.DefaultTemperature, 0),
			Validator:  validation.New(quiet),
			Ingestor:   ingest.New(index, quiet).WithTimeout(cfg.oracleTimeout),
			Counters:   counters,
		}, pipeline.Config{
			TopK:          cfg.topK,
			MaxTopK:       cfg.maxTopK,
			OracleTimeout: cfg.oracleTimeout,
		}, quiet),
		docSvc:    documentuc.New(index),
		healthSvc: healthuc.New(store, providerHealth(cfg.embedder), providerHealth(cfg.completer)),
		usageSvc:  usageuc.New(counters),
		obs:       obs,
	}, nil
}

// Close disconnects from the store.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping round-trips to the store.
func (c *Client) Ping(ctx context.Context) (err error) {
	done := c.obs.track("ping")
	defer func() { done(err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}
