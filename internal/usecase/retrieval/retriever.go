// Package retrieval returns nearest-neighbor candidates for a query.
package retrieval

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/kailas-cloud/ragate/internal/domain"
)

// DefaultK is the number of candidates requested when the caller does not specify one.
const DefaultK = 10

// Retriever delegates embedding and KNN search to the vector index.
// It does not retry.
type Retriever struct {
	index Index
}

// New creates a Retriever.
func New(index Index) *Retriever {
	return &Retriever{index: index}
}

// Retrieve returns up to k candidates ordered by ascending distance.
// k <= 0 selects DefaultK. Failures are reported as ErrRetrieval.
func (r *Retriever) Retrieve(
	ctx context.Context, query string, k int, filter domain.Filter,
) ([]domain.RetrievalCandidate, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: empty query", domain.ErrRetrieval)
	}
	if k <= 0 {
		k = DefaultK
	}

	candidates, err := r.index.Query(ctx, query, k, filter)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrRetrieval, err)
	}

	slices.SortStableFunc(candidates, func(a, b domain.RetrievalCandidate) int {
		return cmp.Compare(a.Distance, b.Distance)
	})
	if len(candidates) > k {
		candidates = candidates[:k]
	}
	return candidates, nil
}
