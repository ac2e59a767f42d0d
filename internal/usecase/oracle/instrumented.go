// Package oracle holds decorators shared by the embedding and chat oracles.
package oracle

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/ragate/internal/domain"
	"github.com/kailas-cloud/ragate/internal/logger"
	"github.com/kailas-cloud/ragate/internal/metrics"
)

// Oracle roles used as the "oracle" metric label.
const (
	RoleEmbedding      = "embedding"
	RoleClassification = "classification"
	RoleGeneration     = "generation"
)

// Transport metrics (requests, duration) are recorded in transport/*.
// This layer owns token accounting, the per-request usage collector and call logging.

// InstrumentedEmbedder wraps an embedder with token accounting and logging.
type InstrumentedEmbedder struct {
	inner  domain.Embedder
	model  string
	logger *zap.Logger
}

// NewInstrumentedEmbedder wraps an embedder with observability.
func NewInstrumentedEmbedder(inner domain.Embedder, model string, logger *zap.Logger) *InstrumentedEmbedder {
	return &InstrumentedEmbedder{inner: inner, model: model, logger: logger}
}

// Embed delegates and records usage.
func (p *InstrumentedEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	log := logger.FromContextOr(ctx, p.logger)
	start := time.Now()

	result, err := p.inner.Embed(ctx, text)
	duration := time.Since(start)

	if err != nil {
		log.Error("Embedding request failed",
			zap.String("model", p.model),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}

	recordTokens(ctx, RoleEmbedding, p.model, result.PromptTokens, result.TotalTokens)

	log.Debug("Embedding request completed",
		zap.String("model", p.model),
		zap.Duration("duration", duration),
		zap.Int("dimensions", len(result.Embedding)),
		zap.Int("total_tokens", result.TotalTokens),
	)
	return result, nil
}

// HealthCheck forwards to the inner embedder when it supports one.
func (p *InstrumentedEmbedder) HealthCheck(ctx context.Context) error {
	return healthCheck(ctx, p.inner)
}

// InstrumentedCompleter wraps a chat oracle under a role label (classification or generation).
type InstrumentedCompleter struct {
	inner  domain.Completer
	role   string
	model  string
	logger *zap.Logger
}

// NewInstrumentedCompleter wraps a completer with observability.
func NewInstrumentedCompleter(inner domain.Completer, role, model string, logger *zap.Logger) *InstrumentedCompleter {
	return &InstrumentedCompleter{inner: inner, role: role, model: model, logger: logger}
}

// Complete delegates and records usage.
func (p *InstrumentedCompleter) Complete(
	ctx context.Context, req domain.CompletionRequest,
) (domain.CompletionResult, error) {
	log := logger.FromContextOr(ctx, p.logger)
	start := time.Now()

	result, err := p.inner.Complete(ctx, req)
	duration := time.Since(start)

	if err != nil {
		log.Error("Completion request failed",
			zap.String("oracle", p.role),
			zap.String("model", p.model),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return domain.CompletionResult{}, fmt.Errorf("%s: %w", p.role, err)
	}

	recordTokens(ctx, p.role, p.model, result.PromptTokens, result.TotalTokens)

	log.Debug("Completion request completed",
		zap.String("oracle", p.role),
		zap.String("model", p.model),
		zap.Duration("duration", duration),
		zap.Int("answer_length", len(result.Text)),
		zap.Int("total_tokens", result.TotalTokens),
	)
	return result, nil
}

// HealthCheck forwards to the inner completer when it supports one.
func (p *InstrumentedCompleter) HealthCheck(ctx context.Context) error {
	return healthCheck(ctx, p.inner)
}

func recordTokens(ctx context.Context, role, model string, prompt, total int) {
	if prompt > 0 {
		metrics.OracleTokensTotal.WithLabelValues(role, model, "prompt").Add(float64(prompt))
	}
	if total > 0 {
		metrics.OracleTokensTotal.WithLabelValues(role, model, "total").Add(float64(total))
	}
	domain.UsageFromContext(ctx).AddTokens(total)
}

func healthCheck(ctx context.Context, inner any) error {
	hc, ok := inner.(domain.HealthChecker)
	if !ok {
		return nil
	}
	if err := hc.HealthCheck(ctx); err != nil {
		return fmt.Errorf("health check: %w", err)
	}
	return nil
}
