// Package pipeline orchestrates a query through every stage and exposes ingestion.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/ragate/internal/domain"
	"github.com/kailas-cloud/ragate/internal/logger"
	"github.com/kailas-cloud/ragate/internal/metrics"
	"github.com/kailas-cloud/ragate/internal/usecase/validation"
)

// Config holds the request-level knobs.
type Config struct {
	TopK            int           // retrieval K when the request does not set one
	MaxTopK         int           // upper bound on a requested K
	OracleTimeout   time.Duration // per oracle/store call; 0 = caller's deadline only
	FreshnessMaxAge time.Duration // 0 = validation.DefaultFreshnessMaxAge
}

// Stages bundles the collaborators a Service is built from.
type Stages struct {
	Sanitizer  Sanitizer
	Classifier Classifier
	Retriever  Retriever
	Assembler  Assembler
	Generator  Generator
	Validator  Validator
	Ingestor   Ingestor
	Counters   Counters
}

// Service runs queries strictly stage after stage. It holds no per-query state.
type Service struct {
	stages Stages
	cfg    Config
	logger *zap.Logger
	now    func() time.Time
}

// New creates a Service.
func New(stages Stages, cfg Config, logger *zap.Logger) *Service {
	if cfg.TopK <= 0 {
		cfg.TopK = 10
	}
	if cfg.MaxTopK < cfg.TopK {
		cfg.MaxTopK = cfg.TopK
	}
	if cfg.FreshnessMaxAge <= 0 {
		cfg.FreshnessMaxAge = validation.DefaultFreshnessMaxAge
	}
	return &Service{stages: stages, cfg: cfg, logger: logger, now: time.Now}
}

// RunQuery sanitizes, gates, retrieves, assembles, generates and validates.
// total_queries is counted for every attempt; successful_queries only when validation passes.
func (s *Service) RunQuery(ctx context.Context, req domain.QueryRequest) (domain.QueryResult, error) {
	log := logger.FromContextOr(ctx, s.logger)
	s.increment(ctx, log, domain.CounterTotalQueries)

	res, err := s.runQuery(ctx, log, req)
	metrics.QueriesTotal.WithLabelValues(Outcome(err)).Inc()
	if err != nil {
		return domain.QueryResult{}, err
	}

	metrics.QueryConfidence.Observe(res.Confidence)
	s.increment(ctx, log, domain.CounterSuccessfulQueries)
	return res, nil
}

func (s *Service) runQuery(ctx context.Context, log *zap.Logger, req domain.QueryRequest) (domain.QueryResult, error) {
	query, err := s.stages.Sanitizer.Sanitize(req.Query)
	if err != nil {
		return domain.QueryResult{}, fmt.Errorf("sanitize: %w", err)
	}

	k, err := s.resolveK(req.MaxResults)
	if err != nil {
		return domain.QueryResult{}, err
	}

	relevant := withTimeout(ctx, s.cfg.OracleTimeout, func(ctx context.Context) bool {
		return s.stages.Classifier.IsRelevant(ctx, query)
	})
	if !relevant {
		log.Info("query rejected as not relevant")
		return domain.QueryResult{}, domain.ErrIrrelevantQuery
	}

	candidates, err := withTimeoutErr(ctx, s.cfg.OracleTimeout, func(ctx context.Context) ([]domain.RetrievalCandidate, error) {
		return s.stages.Retriever.Retrieve(ctx, query, k, req.Filter)
	})
	if err != nil {
		return domain.QueryResult{}, fmt.Errorf("retrieve: %w", err)
	}

	items := s.stages.Assembler.Assemble(candidates)
	confidence := s.stages.Assembler.Confidence(candidates)
	s.reportStale(log, s.stages.Assembler.Select(candidates))

	answer, err := withTimeoutErr(ctx, s.cfg.OracleTimeout, func(ctx context.Context) (string, error) {
		return s.stages.Generator.Generate(ctx, query, items)
	})
	if err != nil {
		return domain.QueryResult{}, fmt.Errorf("generate: %w", err)
	}

	answer, err = s.stages.Validator.Validate(ctx, answer)
	if err != nil {
		return domain.QueryResult{}, fmt.Errorf("validate: %w", err)
	}

	log.Debug("query answered",
		zap.Int("candidates", len(candidates)),
		zap.Int("context_items", len(items)),
		zap.Float64("confidence", confidence),
	)

	return domain.QueryResult{
		Query:      query,
		Response:   answer,
		Sources:    items,
		Confidence: confidence,
		Timestamp:  s.now().UTC(),
	}, nil
}

// IngestDocuments stores documents and returns the stored count.
func (s *Service) IngestDocuments(ctx context.Context, docs []domain.Document) (int, error) {
	n, err := s.stages.Ingestor.Ingest(ctx, docs)
	if err != nil {
		return n, fmt.Errorf("ingest: %w", err)
	}
	return n, nil
}

func (s *Service) resolveK(requested int) (int, error) {
	if requested == 0 {
		return s.cfg.TopK, nil
	}
	if requested < 1 || requested > s.cfg.MaxTopK {
		return 0, fmt.Errorf("%w: max_results must be between 1 and %d", domain.ErrInvalidRequest, s.cfg.MaxTopK)
	}
	return requested, nil
}

// reportStale counts cited documents whose date is outside the freshness window.
// Observability only.
func (s *Service) reportStale(log *zap.Logger, cited []domain.RetrievalCandidate) {
	now := s.now()
	stale := 0
	for _, c := range cited {
		if !validation.IsFresh(c.Date, now, s.cfg.FreshnessMaxAge) {
			stale++
		}
	}
	if stale > 0 {
		metrics.StaleSourcesTotal.Add(float64(stale))
		log.Debug("context includes stale sources", zap.Int("stale", stale), zap.Int("cited", len(cited)))
	}
}

func (s *Service) increment(ctx context.Context, log *zap.Logger, name string) {
	if s.stages.Counters == nil {
		return
	}
	if err := s.stages.Counters.Increment(ctx, name); err != nil {
		log.Warn("failed to increment query counter", zap.String("counter", name), zap.Error(err))
	}
}

func withTimeout[T any](ctx context.Context, d time.Duration, fn func(context.Context) T) T {
	if d <= 0 {
		return fn(ctx)
	}
	ctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()
	return fn(ctx)
}

func withTimeoutErr[T any](ctx context.Context, d time.Duration, fn func(context.Context) (T, error)) (T, error) {
	if d <= 0 {
		return fn(ctx)
	}
	ctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()
	return fn(ctx)
}

var outcomes = []struct {
	err   error
	label string
}{
	{domain.ErrEmptyQuery, "empty_query"},
	{domain.ErrQueryTooLong, "query_too_long"},
	{domain.ErrInvalidRequest, "invalid_request"},
	{domain.ErrIrrelevantQuery, "irrelevant_query"},
	{domain.ErrRetrieval, "retrieval_failed"},
	{domain.ErrGeneration, "generation_failed"},
	{domain.ErrEmptyResponse, "empty_response"},
	{domain.ErrHallucinationSuspected, "hallucination_suspected"},
}

// Outcome maps a RunQuery error to its metric label.
func Outcome(err error) string {
	if err == nil {
		return "success"
	}
	for _, o := range outcomes {
		if errors.Is(err, o.err) {
			return o.label
		}
	}
	return "error"
}
