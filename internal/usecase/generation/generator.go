// Package generation asks the chat oracle to answer from the assembled context only.
package generation

import (
	"context"
	"fmt"
	"strings"

	"github.com/kailas-cloud/ragate/internal/domain"
)

// SystemPrompt restricts the oracle to the supplied context.
const SystemPrompt = "You are a commercial analytics expert. Use only the provided context to answer " +
	"questions about sales performance. If the context doesn't contain relevant information, clearly state that."

// Sampling defaults.
const (
	DefaultTemperature = 0.3
	DefaultMaxTokens   = 1500
)

// Generator renders the prompt and calls the oracle. Oracle failures propagate as ErrGeneration.
type Generator struct {
	oracle      Completer
	temperature float32
	maxTokens   int
}

// New creates a Generator. A negative temperature or maxTokens <= 0 selects the defaults.
func New(oracle Completer, temperature float32, maxTokens int) *Generator {
	if temperature < 0 {
		temperature = DefaultTemperature
	}
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	return &Generator{oracle: oracle, temperature: temperature, maxTokens: maxTokens}
}

// Generate returns the raw answer text.
func (g *Generator) Generate(ctx context.Context, query string, items []domain.ContextItem) (string, error) {
	res, err := g.oracle.Complete(ctx, domain.CompletionRequest{
		System:      SystemPrompt,
		User:        UserPrompt(query, items),
		Temperature: g.temperature,
		MaxTokens:   g.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrGeneration, err)
	}
	return res.Text, nil
}

// RenderContext formats items as newline-joined "Source/Content" blocks in the given order.
func RenderContext(items []domain.ContextItem) string {
	blocks := make([]string, len(items))
	for i, it := range items {
		blocks[i] = fmt.Sprintf("Source: %s\nContent: %s", it.Source, it.Content)
	}
	return strings.Join(blocks, "\n")
}

// UserPrompt builds the user turn.
func UserPrompt(query string, items []domain.ContextItem) string {
	return fmt.Sprintf("Context:\n%s\n\nQuestion: %s", RenderContext(items), query)
}
