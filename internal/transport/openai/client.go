package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/ragate/internal/domain"
	"github.com/kailas-cloud/ragate/internal/metrics"
)

const (
	kindEmbedding = "embedding"
	kindChat      = "chat"
)

// Config holds the OpenAI-compatible API settings shared by both oracles.
type Config struct {
	APIKey         string
	BaseURL        string // empty = api.openai.com
	EmbeddingModel string
	ChatModel      string
	Dimensions     int // 0 = model default
	Logger         *zap.Logger
}

func newClient(cfg *Config) *openai.Client {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return openai.NewClientWithConfig(clientCfg)
}

// roundTrip times one API call and counts it as an error when the call fails or
// the response is empty. Failures come back wrapped in domain.ErrOracleUnavailable.
func roundTrip[T any](
	kind, model string, log *zap.Logger, call func() (T, error), empty func(T) bool,
) (T, error) {
	began := time.Now()
	resp, err := call()
	metrics.OracleRequestDuration.WithLabelValues(kind, model).Observe(time.Since(began).Seconds())

	switch {
	case err != nil:
		err = parseAPIError(kind, err)
	case empty(resp):
		err = fmt.Errorf("empty %s response: %w", kind, domain.ErrOracleUnavailable)
	default:
		metrics.OracleRequestsTotal.WithLabelValues(kind, model, "success").Inc()
		return resp, nil
	}

	metrics.OracleRequestsTotal.WithLabelValues(kind, model, "error").Inc()
	if log != nil {
		log.Debug("OpenAI call failed", zap.String("kind", kind), zap.String("model", model), zap.Error(err))
	}
	var zero T
	return zero, err
}

func healthCheck(ctx context.Context, c *openai.Client) error {
	if _, err := c.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

// parseAPIError extracts a readable message from the API error.
// Everything is wrapped with domain.ErrOracleUnavailable so callers can map it to a stage failure.
func parseAPIError(kind string, err error) error {
	wrap := domain.ErrOracleUnavailable

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s request: %w: %w", kind, wrap, err)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		detail := extractDetail(reqErr.Body)
		if detail == "" {
			detail = string(reqErr.Body)
		}
		return fmt.Errorf("%s API error %d: %s: %w", kind, reqErr.HTTPStatusCode, detail, wrap)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%s API error %d: %s: %w", kind, apiErr.HTTPStatusCode, apiErr.Message, wrap)
	}

	return fmt.Errorf("%s request failed: %w", kind, wrap)
}

// extractDetail reads the "detail" field some OpenAI-compatible providers use for errors.
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}
