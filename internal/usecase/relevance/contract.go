package relevance

import (
	"context"

	"github.com/kailas-cloud/ragate/internal/domain"
)

// Completer is the classification oracle.
type Completer interface {
	Complete(ctx context.Context, req domain.CompletionRequest) (domain.CompletionResult, error)
}
