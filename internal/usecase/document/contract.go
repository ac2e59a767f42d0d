package document

import (
	"context"

	"github.com/kailas-cloud/ragate/internal/domain"
)

// Repository is the vector index lookup/removal path.
type Repository interface {
	Get(ctx context.Context, id string) (domain.Document, error)
	Delete(ctx context.Context, id string) error
}
