package oracle

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/kailas-cloud/ragate/internal/domain"
	"github.com/kailas-cloud/ragate/internal/metrics"
)

// NewLimiter returns a limiter for rps requests per second, or nil when rps <= 0 (unlimited).
func NewLimiter(rps float64, burst int) *rate.Limiter {
	if rps <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}

// wait blocks on the limiter and observes the wait. A nil limiter never blocks.
func wait(ctx context.Context, limiter *rate.Limiter, role string) error {
	if limiter == nil {
		return nil
	}
	start := time.Now()
	err := limiter.Wait(ctx)
	metrics.OracleThrottleWaitSeconds.WithLabelValues(role).Observe(time.Since(start).Seconds())
	if err != nil {
		return fmt.Errorf("%s rate limit wait: %w: %w", role, domain.ErrOracleUnavailable, err)
	}
	return nil
}

// ThrottledEmbedder paces embedding calls through a shared limiter.
type ThrottledEmbedder struct {
	inner   domain.Embedder
	limiter *rate.Limiter
}

// NewThrottledEmbedder wraps inner. A nil limiter disables throttling.
func NewThrottledEmbedder(inner domain.Embedder, limiter *rate.Limiter) *ThrottledEmbedder {
	return &ThrottledEmbedder{inner: inner, limiter: limiter}
}

// Embed waits for a token, then delegates.
func (t *ThrottledEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	if err := wait(ctx, t.limiter, RoleEmbedding); err != nil {
		return domain.EmbeddingResult{}, err
	}
	return t.inner.Embed(ctx, text) //nolint:wrapcheck // decorator is transparent
}

// HealthCheck bypasses the limiter.
func (t *ThrottledEmbedder) HealthCheck(ctx context.Context) error {
	return healthCheck(ctx, t.inner)
}

// ThrottledCompleter paces chat calls through a shared limiter.
type ThrottledCompleter struct {
	inner   domain.Completer
	limiter *rate.Limiter
	role    string
}

// NewThrottledCompleter wraps inner. A nil limiter disables throttling.
func NewThrottledCompleter(inner domain.Completer, limiter *rate.Limiter, role string) *ThrottledCompleter {
	return &ThrottledCompleter{inner: inner, limiter: limiter, role: role}
}

// Complete waits for a token, then delegates.
func (t *ThrottledCompleter) Complete(
	ctx context.Context, req domain.CompletionRequest,
) (domain.CompletionResult, error) {
	if err := wait(ctx, t.limiter, t.role); err != nil {
		return domain.CompletionResult{}, err
	}
	return t.inner.Complete(ctx, req) //nolint:wrapcheck // decorator is transparent
}

// HealthCheck bypasses the limiter.
func (t *ThrottledCompleter) HealthCheck(ctx context.Context) error {
	return healthCheck(ctx, t.inner)
}
