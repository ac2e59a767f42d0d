// Package document exposes stored documents by id.
package document

import (
	"context"
	"fmt"
	"strings"

	"github.com/kailas-cloud/ragate/internal/domain"
)

// Service reads and removes individual documents.
type Service struct {
	repo Repository
}

// New creates a Service.
func New(repo Repository) *Service {
	return &Service{repo: repo}
}

// Get returns a document or ErrDocumentNotFound.
func (s *Service) Get(ctx context.Context, id string) (domain.Document, error) {
	if strings.TrimSpace(id) == "" {
		return domain.Document{}, fmt.Errorf("%w: document id is required", domain.ErrInvalidRequest)
	}
	doc, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Document{}, fmt.Errorf("get document %s: %w", id, err)
	}
	return doc, nil
}

// Delete removes a document. Deleting an absent id is not an error.
func (s *Service) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: document id is required", domain.ErrInvalidRequest)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete document %s: %w", id, err)
	}
	return nil
}
