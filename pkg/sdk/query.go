package ragate

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/ragate/internal/domain"
)

// Query runs one question through the full pipeline and returns a validated answer.
func (c *Client) Query(ctx context.Context, req QueryRequest) (res QueryResult, err error) {
	done := c.obs.track("query")
	defer func() { done(err) }()

	out, err := c.pipe.RunQuery(ctx, domain.QueryRequest{
		Query:      req.Query,
		Filter:     domain.Filter{Source: req.Filter.Source, Type: req.Filter.Type},
		MaxResults: req.MaxResults,
	})
	if err != nil {
		return QueryResult{}, fmt.Errorf("query: %w", err)
	}
	return fromInternalResult(out), nil
}

// Ingest stores documents in order and returns how many were stored.
// Documents with empty content are skipped. The first storage failure stops the batch.
func (c *Client) Ingest(ctx context.Context, docs []Document) (n int, err error) {
	done := c.obs.track("ingest")
	defer func() { done(err) }()

	in := make([]domain.Document, len(docs))
	for i := range docs {
		in[i] = toInternalDocument(&docs[i])
	}
	n, err = c.pipe.IngestDocuments(ctx, in)
	if err != nil {
		return n, fmt.Errorf("ingest: %w", err)
	}
	return n, nil
}

// GetDocument returns a stored document or ErrDocumentNotFound.
func (c *Client) GetDocument(ctx context.Context, id string) (doc Document, err error) {
	done := c.obs.track("document.get")
	defer func() { done(err) }()

	d, err := c.docSvc.Get(ctx, id)
	if err != nil {
		return Document{}, fmt.Errorf("get document: %w", err)
	}
	return fromInternalDocument(d), nil
}

// DeleteDocument removes a stored document.
func (c *Client) DeleteDocument(ctx context.Context, id string) (err error) {
	done := c.obs.track("document.delete")
	defer func() { done(err) }()

	if err = c.docSvc.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

func toInternalDocument(d *Document) domain.Document {
	return domain.Document{
		ID:      d.ID,
		Content: d.Content,
		Source:  d.Source,
		Date:    d.Date,
		Type:    d.Type,
	}
}

func fromInternalDocument(d domain.Document) Document {
	return Document{
		ID:      d.ID,
		Content: d.Content,
		Source:  d.Source,
		Date:    d.Date,
		Type:    d.Type,
	}
}

func fromInternalResult(r domain.QueryResult) QueryResult {
	sources := make([]Source, len(r.Sources))
	for i, s := range r.Sources {
		sources[i] = Source{
			Content:        s.Content,
			Source:         s.Source,
			RelevanceScore: s.RelevanceScore,
		}
	}
	return QueryResult{
		Query:      r.Query,
		Response:   r.Response,
		Sources:    sources,
		Confidence: r.Confidence,
		Timestamp:  r.Timestamp,
	}
}
