// Package relevance gates queries that are outside the commercial-analytics domain.
package relevance

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/ragate/internal/domain"
	"github.com/kailas-cloud/ragate/internal/logger"
)

// SystemPrompt constrains the oracle to a one-word verdict.
const SystemPrompt = "You are a relevance classifier for commercial queries. Reply only 'RELEVANT' or 'NOT_RELEVANT'."

// Relevant is the only oracle output accepted as in-domain.
const Relevant = "RELEVANT"

// DefaultMaxTokens bounds the verdict length.
const DefaultMaxTokens = 10

// Classifier asks the oracle whether a query is in-domain.
type Classifier struct {
	oracle    Completer
	maxTokens int
	logger    *zap.Logger
}

// New creates a Classifier. maxTokens <= 0 selects DefaultMaxTokens.
func New(oracle Completer, maxTokens int, logger *zap.Logger) *Classifier {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	return &Classifier{oracle: oracle, maxTokens: maxTokens, logger: logger}
}

// IsRelevant returns true iff the trimmed verdict is exactly RELEVANT.
// An oracle failure fails open: it is logged and the query is treated as relevant.
func (c *Classifier) IsRelevant(ctx context.Context, query string) bool {
	res, err := c.oracle.Complete(ctx, domain.CompletionRequest{
		System:      SystemPrompt,
		User:        query,
		Temperature: 0,
		MaxTokens:   c.maxTokens,
	})
	if err != nil {
		logger.FromContextOr(ctx, c.logger).Error("relevance check failed, fail-open", zap.Error(err))
		return true
	}
	return strings.TrimSpace(res.Text) == Relevant
}
