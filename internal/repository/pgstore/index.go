package pgstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pgvector/pgvector-go"

	"github.com/kailas-cloud/ragate/internal/domain"
)

// pool is the consumer interface over *pgxpool.Pool (ISP).
type pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Index is a document collection stored in a Postgres table with a pgvector column.
type Index struct {
	pool       pool
	embedder   domain.Embedder
	collection string
	table      string
	dimensions int
}

// New creates a pgvector-backed index. The collection name becomes the table name.
func New(p pool, embedder domain.Embedder, collection string, dimensions int) *Index {
	return &Index{
		pool:       p,
		embedder:   embedder,
		collection: collection,
		table:      pgx.Identifier{collection}.Sanitize(),
		dimensions: dimensions,
	}
}

// Collection returns the collection name.
func (x *Index) Collection() string { return x.collection }

// EnsureIndex creates the extension, table and cosine HNSW index if absent.
func (x *Index) EnsureIndex(ctx context.Context) error {
	idxName := pgx.Identifier{x.collection + "_embedding_idx"}.Sanitize()
	stmts := []string{
		"CREATE EXTENSION IF NOT EXISTS vector",
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			content TEXT NOT NULL,
			source TEXT NOT NULL DEFAULT '',
			date TEXT NOT NULL DEFAULT '',
			type TEXT NOT NULL DEFAULT '',
			embedding vector(%d)
		)`, x.table, x.dimensions),
		fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s USING hnsw (embedding vector_cosine_ops)",
			idxName, x.table),
	}
	for _, stmt := range stmts {
		if _, err := x.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure index %s: %w", x.collection, err)
		}
	}
	return nil
}

// Upsert embeds content and inserts or replaces the row.
func (x *Index) Upsert(ctx context.Context, id, content string, meta domain.Metadata) error {
	emb, err := x.embedder.Embed(ctx, content)
	if err != nil {
		return fmt.Errorf("embed document %s: %w", id, err)
	}
	if x.dimensions > 0 && len(emb.Embedding) != x.dimensions {
		return fmt.Errorf("embed document %s: got %d dimensions, index expects %d",
			id, len(emb.Embedding), x.dimensions)
	}

	stmt := fmt.Sprintf(`
		INSERT INTO %s (id, content, source, date, type, embedding)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			content = EXCLUDED.content,
			source = EXCLUDED.source,
			date = EXCLUDED.date,
			type = EXCLUDED.type,
			embedding = EXCLUDED.embedding`, x.table)

	_, err = x.pool.Exec(ctx, stmt, id, content, meta.Source, meta.Date, meta.Type,
		pgvector.NewVector(emb.Embedding))
	if err != nil {
		return fmt.Errorf("upsert %s: %w", id, err)
	}
	return nil
}

// Query embeds text and returns up to k nearest rows ordered by cosine distance.
func (x *Index) Query(
	ctx context.Context, text string, k int, filter domain.Filter,
) ([]domain.RetrievalCandidate, error) {
	emb, err := x.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	sql := fmt.Sprintf(`
		SELECT id, content, source, date, type, embedding <=> $1 AS distance
		FROM %s
		WHERE ($2 = '' OR source = $2) AND ($3 = '' OR type = $3)
		ORDER BY embedding <=> $1
		LIMIT $4`, x.table)

	rows, err := x.pool.Query(ctx, sql, pgvector.NewVector(emb.Embedding), filter.Source, filter.Type, k)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", x.collection, err)
	}
	defer rows.Close()

	var out []domain.RetrievalCandidate
	for rows.Next() {
		var c domain.RetrievalCandidate
		if err := rows.Scan(&c.ID, &c.Content, &c.Source, &c.Date, &c.Type, &c.Distance); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query %s: %w", x.collection, err)
	}
	return out, nil
}

// Get returns a stored document by id.
func (x *Index) Get(ctx context.Context, id string) (domain.Document, error) {
	sql := fmt.Sprintf("SELECT content, source, date, type FROM %s WHERE id = $1", x.table)
	doc := domain.Document{ID: id}
	err := x.pool.QueryRow(ctx, sql, id).Scan(&doc.Content, &doc.Source, &doc.Date, &doc.Type)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Document{}, domain.ErrDocumentNotFound
		}
		return domain.Document{}, fmt.Errorf("get %s: %w", id, err)
	}
	return doc, nil
}

// Delete removes a stored document. Deleting an absent id is a no-op.
func (x *Index) Delete(ctx context.Context, id string) error {
	sql := fmt.Sprintf("DELETE FROM %s WHERE id = $1", x.table)
	if _, err := x.pool.Exec(ctx, sql, id); err != nil {
		return fmt.Errorf("delete %s: %w", id, err)
	}
	return nil
}
