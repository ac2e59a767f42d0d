package vectorindex

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kailas-cloud/ragate/internal/db"
	"github.com/kailas-cloud/ragate/internal/domain"
)

// Hash field names of a stored document.
const (
	fieldContent = "content"
	fieldSource  = "source"
	fieldDate    = "date"
	fieldType    = "type"
	fieldVector  = "vector"
)

// store is the consumer interface for the vector index (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	Del(ctx context.Context, key string) error
	CreateVectorIndex(ctx context.Context, spec *db.VectorIndexSpec) error
	SearchNearest(ctx context.Context, q *db.NearestQuery) ([]db.Neighbor, error)
}

var returnFields = []string{fieldContent, fieldSource, fieldDate, fieldType}

// HNSWConfig HNSW index parameters.
type HNSWConfig struct {
	M           int
	EFConstruct int
}

// Index is a document collection stored as hashes under an FT index with a COSINE vector field.
// It embeds text through the embedding oracle on both write and query paths.
type Index struct {
	store      store
	embedder   domain.Embedder
	collection string
	dimensions int
	hnsw       HNSWConfig
}

// New creates a vector index over the given collection.
func New(s store, embedder domain.Embedder, collection string, dimensions int) *Index {
	return &Index{
		store:      s,
		embedder:   embedder,
		collection: collection,
		dimensions: dimensions,
		hnsw:       HNSWConfig{M: 32, EFConstruct: 400},
	}
}

// WithHNSW configures HNSW index parameters.
func (x *Index) WithHNSW(cfg HNSWConfig) *Index {
	if cfg.M > 0 {
		x.hnsw.M = cfg.M
	}
	if cfg.EFConstruct > 0 {
		x.hnsw.EFConstruct = cfg.EFConstruct
	}
	return x
}

// Collection returns the collection name.
func (x *Index) Collection() string { return x.collection }

// IndexName returns the FT index name for the collection.
func (x *Index) IndexName() string {
	return domain.KeyPrefix + x.collection + ":idx"
}

func (x *Index) keyPrefix() string {
	return domain.KeyPrefix + x.collection + ":"
}

func (x *Index) docKey(id string) string {
	return x.keyPrefix() + id
}

// EnsureIndex creates the FT index if absent. Safe to call on every start.
func (x *Index) EnsureIndex(ctx context.Context) error {
	err := x.store.CreateVectorIndex(ctx, &db.VectorIndexSpec{
		Name:           x.IndexName(),
		Prefix:         x.keyPrefix(),
		TagFields:      []string{fieldSource, fieldType},
		VectorField:    fieldVector,
		Dimensions:     x.dimensions,
		M:              x.hnsw.M,
		EFConstruction: x.hnsw.EFConstruct,
	})
	if err != nil && !errors.Is(err, db.ErrIndexExists) {
		return fmt.Errorf("ensure index %s: %w", x.IndexName(), err)
	}
	return nil
}

// Upsert embeds content and stores it with its metadata. Re-upserting an id overwrites it.
func (x *Index) Upsert(ctx context.Context, id, content string, meta domain.Metadata) error {
	emb, err := x.embedder.Embed(ctx, content)
	if err != nil {
		return fmt.Errorf("embed document %s: %w", id, err)
	}
	if x.dimensions > 0 && len(emb.Embedding) != x.dimensions {
		return fmt.Errorf("embed document %s: got %d dimensions, index expects %d",
			id, len(emb.Embedding), x.dimensions)
	}

	fields := map[string]string{
		fieldContent: content,
		fieldSource:  meta.Source,
		fieldDate:    meta.Date,
		fieldType:    meta.Type,
		fieldVector:  string(db.EncodeVector(emb.Embedding)),
	}
	if err := x.store.HSet(ctx, x.docKey(id), fields); err != nil {
		return fmt.Errorf("hset %s: %w", x.docKey(id), err)
	}
	return nil
}

// Query embeds text and returns up to k nearest documents with their raw cosine distance.
func (x *Index) Query(
	ctx context.Context, text string, k int, filter domain.Filter,
) ([]domain.RetrievalCandidate, error) {
	emb, err := x.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	neighbors, err := x.store.SearchNearest(ctx, &db.NearestQuery{
		Index:       x.IndexName(),
		VectorField: fieldVector,
		Vector:      emb.Embedding,
		K:           k,
		Tags:        map[string]string{fieldSource: filter.Source, fieldType: filter.Type},
		Return:      returnFields,
	})
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", x.collection, err)
	}

	out := make([]domain.RetrievalCandidate, len(neighbors))
	for i, n := range neighbors {
		out[i] = domain.RetrievalCandidate{
			ID:       strings.TrimPrefix(n.Key, x.keyPrefix()),
			Content:  n.Fields[fieldContent],
			Source:   n.Fields[fieldSource],
			Date:     n.Fields[fieldDate],
			Type:     n.Fields[fieldType],
			Distance: n.Distance,
		}
	}
	return out, nil
}

// Get returns a stored document by id.
func (x *Index) Get(ctx context.Context, id string) (domain.Document, error) {
	m, err := x.store.HGetAll(ctx, x.docKey(id))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domain.Document{}, domain.ErrDocumentNotFound
		}
		return domain.Document{}, fmt.Errorf("hgetall %s: %w", x.docKey(id), err)
	}
	return domain.Document{
		ID:      id,
		Content: m[fieldContent],
		Source:  m[fieldSource],
		Date:    m[fieldDate],
		Type:    m[fieldType],
	}, nil
}

// Delete removes a stored document. Deleting an absent id is a no-op.
func (x *Index) Delete(ctx context.Context, id string) error {
	if err := x.store.Del(ctx, x.docKey(id)); err != nil {
		return fmt.Errorf("del %s: %w", x.docKey(id), err)
	}
	return nil
}
