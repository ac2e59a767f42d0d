package pipeline

import (
	"context"

	"github.com/kailas-cloud/ragate/internal/domain"
)

// Sanitizer cleans raw query text.
type Sanitizer interface {
	Sanitize(raw string) (string, error)
}

// Classifier gates out-of-domain queries. It never fails.
type Classifier interface {
	IsRelevant(ctx context.Context, query string) bool
}

// Retriever returns nearest-neighbor candidates ordered by ascending distance.
type Retriever interface {
	Retrieve(ctx context.Context, query string, k int, filter domain.Filter) ([]domain.RetrievalCandidate, error)
}

// Assembler derives context and confidence from the same sub-threshold candidate set.
type Assembler interface {
	Select(candidates []domain.RetrievalCandidate) []domain.RetrievalCandidate
	Assemble(candidates []domain.RetrievalCandidate) []domain.ContextItem
	Confidence(candidates []domain.RetrievalCandidate) float64
}

// Generator produces a raw answer from the query and context.
type Generator interface {
	Generate(ctx context.Context, query string, items []domain.ContextItem) (string, error)
}

// Validator checks (and may replace) a generated answer.
type Validator interface {
	Validate(ctx context.Context, answer string) (string, error)
}

// Ingestor stores documents into the vector index.
type Ingestor interface {
	Ingest(ctx context.Context, docs []domain.Document) (int, error)
}

// Counters persists the query counters.
type Counters interface {
	Increment(ctx context.Context, name string) error
}
