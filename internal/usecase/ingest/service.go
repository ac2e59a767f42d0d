// Package ingest stores documents into the vector index.
package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/ragate/internal/domain"
	"github.com/kailas-cloud/ragate/internal/logger"
	"github.com/kailas-cloud/ragate/internal/metrics"
)

// fallbackIDPrefix is prepended to generated ids for documents submitted without one.
const fallbackIDPrefix = "doc_"

// Service ingests documents one at a time.
type Service struct {
	index   Index
	timeout time.Duration
	logger  *zap.Logger
	newID   func() string
}

// New creates a Service.
func New(index Index, logger *zap.Logger) *Service {
	return &Service{
		index:  index,
		logger: logger,
		newID:  func() string { return fallbackIDPrefix + uuid.NewString() },
	}
}

// WithTimeout bounds each per-document upsert (embedding included). 0 disables.
func (s *Service) WithTimeout(d time.Duration) *Service {
	s.timeout = d
	return s
}

// Ingest stores every document with non-empty content and returns how many were stored.
// Empty documents are skipped silently. The first storage failure stops ingestion and is
// returned as ErrIngestion together with the count stored before it.
func (s *Service) Ingest(ctx context.Context, docs []domain.Document) (int, error) {
	log := logger.FromContextOr(ctx, s.logger)

	stored := 0
	for i := range docs {
		doc := &docs[i]
		if doc.Content == "" {
			metrics.DocumentsIngestedTotal.WithLabelValues("skipped").Inc()
			log.Debug("skipping document with empty content", zap.Int("position", i), zap.String("id", doc.ID))
			continue
		}

		id := doc.ID
		if id == "" {
			id = s.newID()
		}

		if err := s.upsert(ctx, id, doc); err != nil {
			log.Error("document ingestion failed",
				zap.String("id", id),
				zap.Int("stored", stored),
				zap.Error(err),
			)
			return stored, fmt.Errorf("%w: document %s: %w", domain.ErrIngestion, id, err)
		}
		metrics.DocumentsIngestedTotal.WithLabelValues("stored").Inc()
		stored++
	}
	return stored, nil
}

func (s *Service) upsert(ctx context.Context, id string, doc *domain.Document) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	if err := s.index.Upsert(ctx, id, doc.Content, domain.MetadataOf(doc)); err != nil {
		return fmt.Errorf("upsert: %w", err)
	}
	return nil
}
