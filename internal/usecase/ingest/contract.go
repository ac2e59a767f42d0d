package ingest

import (
	"context"

	"github.com/kailas-cloud/ragate/internal/domain"
)

// Index is the vector index write path. It embeds content itself.
type Index interface {
	Upsert(ctx context.Context, id, content string, meta domain.Metadata) error
}
