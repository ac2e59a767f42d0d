package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/ragate/internal/domain"
	openaiOracle "github.com/kailas-cloud/ragate/internal/transport/openai"
	ragate "github.com/kailas-cloud/ragate/pkg/sdk"
)

// openAIProviders adapts the gateway's OpenAI transport to the SDK provider interfaces.
func openAIProviders(o *globalOptions) (*sdkEmbedder, *sdkCompleter) {
	cfg := &openaiOracle.Config{
		APIKey:         o.apiKey,
		BaseURL:        o.baseURL,
		EmbeddingModel: o.embeddingModel,
		ChatModel:      o.chatModel,
		Dimensions:     o.dimensions,
		Logger:         zap.NewNop(),
	}
	return &sdkEmbedder{inner: openaiOracle.NewEmbedder(cfg)},
		&sdkCompleter{inner: openaiOracle.NewCompleter(cfg)}
}

type sdkEmbedder struct {
	inner *openaiOracle.Embedder
}

func (e *sdkEmbedder) Embed(ctx context.Context, text string) (ragate.EmbeddingResult, error) {
	r, err := e.inner.Embed(ctx, text)
	if err != nil {
		return ragate.EmbeddingResult{}, fmt.Errorf("openai embed: %w", err)
	}
	return ragate.EmbeddingResult{
		Embedding:    r.Embedding,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}

func (e *sdkEmbedder) HealthCheck(ctx context.Context) error {
	return e.inner.HealthCheck(ctx) //nolint:wrapcheck // transport already wraps
}

type sdkCompleter struct {
	inner *openaiOracle.Completer
}

func (c *sdkCompleter) Complete(ctx context.Context, req ragate.CompletionRequest) (ragate.CompletionResult, error) {
	r, err := c.inner.Complete(ctx, domain.CompletionRequest{
		System:      req.System,
		User:        req.User,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return ragate.CompletionResult{}, fmt.Errorf("openai complete: %w", err)
	}
	return ragate.CompletionResult{
		Text:         r.Text,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}

func (c *sdkCompleter) HealthCheck(ctx context.Context) error {
	return c.inner.HealthCheck(ctx) //nolint:wrapcheck // transport already wraps
}
