package ragate

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/ragate/internal/domain"
)

// Embedder turns text into a vector. Implementations bring their own provider.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// EmbeddingResult is one vector plus what it cost.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// Completer is a chat model. It serves both relevance classification and answer generation.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (CompletionResult, error)
}

// CompletionRequest is a single system+user turn.
type CompletionRequest struct {
	System      string
	User        string
	Temperature float32
	MaxTokens   int
}

// CompletionResult is the model text and its token usage.
type CompletionResult struct {
	Text         string
	PromptTokens int
	TotalTokens  int
}

// Optional provider health is detected through domain.HealthChecker.
func providerHealth(p any) domain.HealthChecker {
	hc, _ := p.(domain.HealthChecker)
	return hc
}

type oracleEmbedder struct{ p Embedder }

func (o oracleEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	out, err := o.p.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}
	return domain.EmbeddingResult(out), nil
}

type oracleCompleter struct{ p Completer }

func (o oracleCompleter) Complete(ctx context.Context, req domain.CompletionRequest) (domain.CompletionResult, error) {
	out, err := o.p.Complete(ctx, CompletionRequest(req))
	if err != nil {
		return domain.CompletionResult{}, fmt.Errorf("complete: %w", err)
	}
	return domain.CompletionResult(out), nil
}
