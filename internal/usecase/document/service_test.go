package document

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/ragate/internal/domain"
)

// --- Mock ---

type mockRepo struct {
	getResult domain.Document
	getErr    error
	deleteErr error
	deleted   []string
}

func (m *mockRepo) Get(_ context.Context, _ string) (domain.Document, error) {
	return m.getResult, m.getErr
}

func (m *mockRepo) Delete(_ context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	return m.deleteErr
}

// --- Tests ---

func TestGet(t *testing.T) {
	repo := &mockRepo{getResult: domain.Document{ID: "d1", Content: "Q3 revenue"}}
	doc, err := New(repo).Get(context.Background(), "d1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Content != "Q3 revenue" {
		t.Errorf("unexpected document %+v", doc)
	}
}

func TestGet_NotFound(t *testing.T) {
	repo := &mockRepo{getErr: domain.ErrDocumentNotFound}
	if _, err := New(repo).Get(context.Background(), "nope"); !errors.Is(err, domain.ErrDocumentNotFound) {
		t.Fatalf("expected ErrDocumentNotFound, got %v", err)
	}
}

func TestGet_EmptyID(t *testing.T) {
	if _, err := New(&mockRepo{}).Get(context.Background(), " "); !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	repo := &mockRepo{}
	if err := New(repo).Delete(context.Background(), "d1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.deleted) != 1 || repo.deleted[0] != "d1" {
		t.Errorf("unexpected deletes %v", repo.deleted)
	}
}

func TestDelete_StoreError(t *testing.T) {
	cause := errors.New("READONLY")
	if err := New(&mockRepo{deleteErr: cause}).Delete(context.Background(), "d1"); !errors.Is(err, cause) {
		t.Fatalf("expected wrapped cause, got %v", err)
	}
}
