package retrieval

import (
	"context"

	"github.com/kailas-cloud/ragate/internal/domain"
)

// Index is the vector index read path.
type Index interface {
	Query(ctx context.Context, text string, k int, filter domain.Filter) ([]domain.RetrievalCandidate, error)
}
