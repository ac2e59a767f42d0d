package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/kailas-cloud/ragate/internal/config"
	dbRedis "github.com/kailas-cloud/ragate/internal/db/redis"
	"github.com/kailas-cloud/ragate/internal/domain"
	logpkg "github.com/kailas-cloud/ragate/internal/logger"
	"github.com/kailas-cloud/ragate/internal/metrics"
	"github.com/kailas-cloud/ragate/internal/repository/counter"
	"github.com/kailas-cloud/ragate/internal/repository/embcache"
	"github.com/kailas-cloud/ragate/internal/repository/pgstore"
	"github.com/kailas-cloud/ragate/internal/repository/vectorindex"
	chiTransport "github.com/kailas-cloud/ragate/internal/transport/chi"
	ollamaOracle "github.com/kailas-cloud/ragate/internal/transport/ollama"
	openaiOracle "github.com/kailas-cloud/ragate/internal/transport/openai"
	"github.com/kailas-cloud/ragate/internal/usecase/assembly"
	documentuc "github.com/kailas-cloud/ragate/internal/usecase/document"
	"github.com/kailas-cloud/ragate/internal/usecase/generation"
	healthuc "github.com/kailas-cloud/ragate/internal/usecase/health"
	"github.com/kailas-cloud/ragate/internal/usecase/ingest"
	"github.com/kailas-cloud/ragate/internal/usecase/oracle"
	"github.com/kailas-cloud/ragate/internal/usecase/pipeline"
	"github.com/kailas-cloud/ragate/internal/usecase/relevance"
	"github.com/kailas-cloud/ragate/internal/usecase/retrieval"
	"github.com/kailas-cloud/ragate/internal/usecase/sanitize"
	usageuc "github.com/kailas-cloud/ragate/internal/usecase/usage"
	"github.com/kailas-cloud/ragate/internal/usecase/validation"
	"github.com/kailas-cloud/ragate/internal/version"
)

const embeddingCacheTTL = 30 * 24 * time.Hour

// vectorIndex is what the gateway needs from either index driver.
type vectorIndex interface {
	EnsureIndex(ctx context.Context) error
	Upsert(ctx context.Context, id, content string, meta domain.Metadata) error
	Query(ctx context.Context, text string, k int, filter domain.Filter) ([]domain.RetrievalCandidate, error)
	Get(ctx context.Context, id string) (domain.Document, error)
	Delete(ctx context.Context, id string) error
}

// oracles is the assembled oracle chain plus the raw providers for health checks.
type oracles struct {
	embedder       domain.Embedder
	classifier     domain.Completer
	generator      domain.Completer
	embeddingCheck healthuc.OracleChecker
	chatCheck      healthuc.OracleChecker
}

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, config.GetEnv()); err != nil {
		fmt.Fprintln(os.Stderr, "ragate:", err)
		os.Exit(1)
	}
}

// run wires the gateway and serves until ctx is cancelled.
func run(ctx context.Context, env string) error {
	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("ragate starting",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("port", cfg.HTTP.Port),
		zap.String("driver", cfg.Database.Driver),
		zap.String("provider", cfg.Oracles.Provider),
	)

	metrics.Register()

	// The KV store backs counters and the embedding cache for every driver,
	// and the vector index itself for valkey/redis.
	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
	})
	if err != nil {
		return fmt.Errorf("store: %w", err)
	}
	defer store.Close()

	if err := store.WaitForReady(ctx, cfg.Database.ReadinessTimeout); err != nil {
		return err
	}
	logger.Info("store reachable", zap.Strings("addrs", cfg.Database.Addrs))

	orc, err := buildOracles(cfg, store, logger)
	if err != nil {
		return err
	}

	index, pinger, closeIndex, err := buildIndex(ctx, cfg, store, orc.embedder)
	if err != nil {
		return err
	}
	defer closeIndex()

	if err := index.EnsureIndex(ctx); err != nil {
		return fmt.Errorf("ensure index %q: %w", cfg.Index.Collection, err)
	}
	logger.Info("vector index ready",
		zap.String("collection", cfg.Index.Collection),
		zap.Int("dimensions", cfg.Index.Dimensions),
	)

	counters := counter.New(store)
	pipe := pipeline.New(pipeline.Stages{
		Sanitizer:  sanitize.New(cfg.Pipeline.MaxQueryLength),
		Classifier: relevance.New(orc.classifier, cfg.Pipeline.ClassifierMaxTokens, logger),
		Retriever:  retrieval.New(index),
		Assembler:  assembly.New(cfg.Pipeline.RelevanceThreshold),
		Generator: generation.New(orc.generator,
			cfg.Pipeline.GenerationTemperature, cfg.Pipeline.GenerationMaxTokens),
		Validator: validation.New(logger),
		Ingestor:  ingest.New(index, logger).WithTimeout(cfg.Oracles.Timeout),
		Counters:  counters,
	}, pipeline.Config{
		TopK:            cfg.Pipeline.TopK,
		MaxTopK:         cfg.Pipeline.MaxTopK,
		OracleTimeout:   cfg.Oracles.Timeout,
		FreshnessMaxAge: cfg.Pipeline.FreshnessMaxAge,
	}, logger)

	server := chiTransport.NewServer(
		pipe,
		documentuc.New(index),
		usageuc.New(counters),
		healthuc.New(pinger, orc.embeddingCheck, orc.chatCheck),
		logger,
	)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:      chiTransport.Handler(server, cfg.Auth.APIKeys, logger),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}
	return serve(ctx, srv, cfg.HTTP.ShutdownTimeout, logger)
}

// serve runs srv until ctx ends, then drains in-flight requests for at most grace.
func serve(ctx context.Context, srv *http.Server, grace time.Duration, logger *zap.Logger) error {
	failed := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			failed <- err
		}
		close(failed)
	}()

	select {
	case err := <-failed:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down", zap.Duration("grace", grace))
	drainCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	if err := srv.Shutdown(drainCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("stopped")
	return nil
}

// buildIndex picks the vector index driver. The returned func releases
// driver-owned resources.
func buildIndex(
	ctx context.Context,
	cfg config.Config,
	store *dbRedis.Store,
	embedder domain.Embedder,
) (vectorIndex, healthuc.DBPinger, func(), error) {
	if cfg.Database.Driver != config.DriverPgvector {
		idx := vectorindex.New(store, embedder, cfg.Index.Collection, cfg.Index.Dimensions).
			WithHNSW(vectorindex.HNSWConfig{M: cfg.Index.HNSWM, EFConstruct: cfg.Index.HNSWEFConstruct})
		return idx, store, func() {}, nil
	}

	pool, err := pgxpool.New(ctx, cfg.Database.DSN)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("postgres pool: %w", err)
	}
	idx := pgstore.New(pool, embedder, cfg.Index.Collection, cfg.Index.Dimensions)
	return idx, pingers{store, pool}, pool.Close, nil
}

// buildOracles assembles the decorator chains:
// provider -> Cached (embeddings only) -> Throttled -> Instrumented.
func buildOracles(cfg config.Config, store *dbRedis.Store, logger *zap.Logger) (oracles, error) {
	var (
		baseEmb  domain.Embedder
		baseChat domain.Completer
	)

	switch cfg.Oracles.Provider {
	case config.ProviderOllama:
		ocfg := &ollamaOracle.Config{
			ServerURL:      cfg.Oracles.BaseURL,
			EmbeddingModel: cfg.Oracles.EmbeddingModel,
			ChatModel:      cfg.Oracles.ChatModel,
			Logger:         logger,
		}
		emb, err := ollamaOracle.NewEmbedder(ocfg)
		if err != nil {
			return oracles{}, fmt.Errorf("ollama embedder: %w", err)
		}
		chat, err := ollamaOracle.NewCompleter(ocfg)
		if err != nil {
			return oracles{}, fmt.Errorf("ollama completer: %w", err)
		}
		baseEmb, baseChat = emb, chat
	default:
		ocfg := &openaiOracle.Config{
			APIKey:         cfg.Oracles.APIKey,
			BaseURL:        cfg.Oracles.BaseURL,
			EmbeddingModel: cfg.Oracles.EmbeddingModel,
			ChatModel:      cfg.Oracles.ChatModel,
			Dimensions:     cfg.Index.Dimensions,
			Logger:         logger,
		}
		baseEmb, baseChat = openaiOracle.NewEmbedder(ocfg), openaiOracle.NewCompleter(ocfg)
	}

	// One limiter shared by every call to the provider.
	limiter := oracle.NewLimiter(cfg.Oracles.RateLimitRPS, cfg.Oracles.Burst)

	embedder := baseEmb
	if cfg.Oracles.EmbeddingCache {
		embedder = embcache.New(embedder, store, embcache.Config{
			Model:      cfg.Oracles.EmbeddingModel,
			Dimensions: cfg.Index.Dimensions,
			TTL:        embeddingCacheTTL,
			Lookups:    metrics.EmbeddingCacheTotal,
		}, logger)
	}
	embedder = oracle.NewThrottledEmbedder(embedder, limiter)
	embedder = oracle.NewInstrumentedEmbedder(embedder, cfg.Oracles.EmbeddingModel, logger)

	chatFor := func(role string) domain.Completer {
		var c domain.Completer = oracle.NewThrottledCompleter(baseChat, limiter, role)
		return oracle.NewInstrumentedCompleter(c, role, cfg.Oracles.ChatModel, logger)
	}

	return oracles{
		embedder:       embedder,
		classifier:     chatFor(oracle.RoleClassification),
		generator:      chatFor(oracle.RoleGeneration),
		embeddingCheck: asChecker(baseEmb),
		chatCheck:      asChecker(baseChat),
	}, nil
}

// asChecker returns a nil interface (not a typed nil) when v cannot health-check.
func asChecker(v any) healthuc.OracleChecker {
	if hc, ok := v.(domain.HealthChecker); ok {
		return hc
	}
	return nil
}

// pingers reports the first failing pinger.
type pingers []healthuc.DBPinger

func (p pingers) Ping(ctx context.Context) error {
	for _, x := range p {
		if err := x.Ping(ctx); err != nil {
			return fmt.Errorf("ping: %w", err)
		}
	}
	return nil
}
