// Package ollama implements the embedding and chat oracles against a local Ollama server.
package ollama

import (
	"context"
	"fmt"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"go.uber.org/zap"

	"github.com/kailas-cloud/ragate/internal/domain"
	"github.com/kailas-cloud/ragate/internal/metrics"
)

// DefaultServerURL is the Ollama default listen address.
const DefaultServerURL = "http://localhost:11434"

// Config holds the Ollama connection settings.
type Config struct {
	ServerURL      string
	EmbeddingModel string
	ChatModel      string
	Logger         *zap.Logger
}

func newLLM(serverURL, model string) (*ollama.LLM, error) {
	if serverURL == "" {
		serverURL = DefaultServerURL
	}
	llm, err := ollama.New(ollama.WithModel(model), ollama.WithServerURL(serverURL))
	if err != nil {
		return nil, fmt.Errorf("init ollama model %s: %w", model, err)
	}
	return llm, nil
}

// Embedder is the embedding oracle backed by Ollama.
type Embedder struct {
	llm    *ollama.LLM
	model  string
	logger *zap.Logger
}

// NewEmbedder creates an Ollama embedding oracle.
func NewEmbedder(cfg *Config) (*Embedder, error) {
	llm, err := newLLM(cfg.ServerURL, cfg.EmbeddingModel)
	if err != nil {
		return nil, err
	}
	return &Embedder{llm: llm, model: cfg.EmbeddingModel, logger: cfg.Logger}, nil
}

// Embed implements domain.Embedder. Ollama reports no token usage for embeddings.
func (e *Embedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	start := time.Now()
	vecs, err := e.llm.CreateEmbedding(ctx, []string{text})
	metrics.OracleRequestDuration.WithLabelValues("embedding", e.model).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.OracleRequestsTotal.WithLabelValues("embedding", e.model, "error").Inc()
		return domain.EmbeddingResult{}, fmt.Errorf("ollama embedding: %w: %w", domain.ErrOracleUnavailable, err)
	}
	if len(vecs) == 0 || len(vecs[0]) == 0 {
		metrics.OracleRequestsTotal.WithLabelValues("embedding", e.model, "error").Inc()
		return domain.EmbeddingResult{}, fmt.Errorf("ollama returned no embedding: %w", domain.ErrOracleUnavailable)
	}

	metrics.OracleRequestsTotal.WithLabelValues("embedding", e.model, "success").Inc()
	return domain.EmbeddingResult{Embedding: vecs[0]}, nil
}

// Completer is the chat oracle backed by Ollama.
type Completer struct {
	llm    *ollama.LLM
	model  string
	logger *zap.Logger
}

// NewCompleter creates an Ollama chat oracle.
func NewCompleter(cfg *Config) (*Completer, error) {
	llm, err := newLLM(cfg.ServerURL, cfg.ChatModel)
	if err != nil {
		return nil, err
	}
	return &Completer{llm: llm, model: cfg.ChatModel, logger: cfg.Logger}, nil
}

// Complete implements domain.Completer.
func (c *Completer) Complete(ctx context.Context, req domain.CompletionRequest) (domain.CompletionResult, error) {
	content := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, req.System),
		llms.TextParts(llms.ChatMessageTypeHuman, req.User),
	}
	opts := []llms.CallOption{llms.WithTemperature(float64(req.Temperature))}
	if req.MaxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(req.MaxTokens))
	}

	start := time.Now()
	resp, err := c.llm.GenerateContent(ctx, content, opts...)
	metrics.OracleRequestDuration.WithLabelValues("chat", c.model).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.OracleRequestsTotal.WithLabelValues("chat", c.model, "error").Inc()
		return domain.CompletionResult{}, fmt.Errorf("ollama chat: %w: %w", domain.ErrOracleUnavailable, err)
	}
	if resp == nil || len(resp.Choices) == 0 || resp.Choices[0] == nil {
		metrics.OracleRequestsTotal.WithLabelValues("chat", c.model, "error").Inc()
		return domain.CompletionResult{}, fmt.Errorf("ollama returned no choices: %w", domain.ErrOracleUnavailable)
	}

	metrics.OracleRequestsTotal.WithLabelValues("chat", c.model, "success").Inc()

	choice := resp.Choices[0]
	return domain.CompletionResult{
		Text:         choice.Content,
		PromptTokens: intFromInfo(choice.GenerationInfo, "PromptTokens"),
		TotalTokens:  intFromInfo(choice.GenerationInfo, "TotalTokens"),
	}, nil
}

// intFromInfo reads a token count from langchaingo generation info.
func intFromInfo(info map[string]any, key string) int {
	switch v := info[key].(type) {
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}
