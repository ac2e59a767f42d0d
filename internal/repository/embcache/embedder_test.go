package embcache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"github.com/kailas-cloud/ragate/internal/db"
	"github.com/kailas-cloud/ragate/internal/domain"
)

type mockEmbedder struct {
	result domain.EmbeddingResult
	err    error
	calls  int
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	m.calls++
	return m.result, m.err
}

// mockKVStore implements the consumer interface for tests.
type mockKVStore struct {
	data   map[string][]byte
	getErr error
	setErr error
	ttl    time.Duration
}

func newMockKVStore() *mockKVStore {
	return &mockKVStore{data: map[string][]byte{}}
}

func (m *mockKVStore) Get(_ context.Context, key string) ([]byte, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	v, ok := m.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (m *mockKVStore) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	m.ttl = ttl
	return nil
}

func newCounter() *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_cache_total"}, []string{"result"})
}

func TestEmbed_MissThenHit(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{
		Embedding:    []float32{0.1, 0.2, 0.3},
		PromptTokens: 4,
		TotalTokens:  4,
	}}
	ms := newMockKVStore()
	counter := newCounter()
	ce := New(inner, ms, Config{Model: "text-embedding-3-large", Dimensions: 3, TTL: time.Hour, Lookups: counter}, zap.NewNop())
	ctx := context.Background()

	first, err := ce.Embed(ctx, "Q3 revenue by region")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.TotalTokens != 4 {
		t.Errorf("expected TotalTokens=4 on miss, got %d", first.TotalTokens)
	}
	if ms.ttl != time.Hour {
		t.Errorf("expected ttl 1h, got %v", ms.ttl)
	}

	second, err := ce.Embed(ctx, "Q3 revenue by region")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 1 {
		t.Errorf("expected 1 inner call, got %d", inner.calls)
	}
	if second.TotalTokens != 0 {
		t.Errorf("expected TotalTokens=0 on hit, got %d", second.TotalTokens)
	}
	if len(second.Embedding) != 3 || second.Embedding[2] != 0.3 {
		t.Errorf("unexpected cached vector %v", second.Embedding)
	}

	if v := testutil.ToFloat64(counter.WithLabelValues("hit")); v != 1 {
		t.Errorf("expected 1 hit, got %f", v)
	}
	if v := testutil.ToFloat64(counter.WithLabelValues("miss")); v != 1 {
		t.Errorf("expected 1 miss, got %f", v)
	}
}

func TestEmbed_KeyIncludesModel(t *testing.T) {
	a := New(&mockEmbedder{}, newMockKVStore(), Config{Model: "model-a"}, zap.NewNop())
	b := New(&mockEmbedder{}, newMockKVStore(), Config{Model: "model-b"}, zap.NewNop())
	if a.key("same text") == b.key("same text") {
		t.Error("cache keys must differ across models")
	}
}

func TestEmbed_DimensionMismatchIsMiss(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{1, 2, 3, 4}}}
	ms := newMockKVStore()
	ce := New(inner, ms, Config{Model: "m", Dimensions: 4}, zap.NewNop())
	ms.data[ce.key("text")] = db.EncodeVector([]float32{9, 9})

	res, err := ce.Embed(context.Background(), "text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 1 || len(res.Embedding) != 4 {
		t.Errorf("expected fresh embedding from inner, got %v (calls=%d)", res.Embedding, inner.calls)
	}
}

func TestEmbed_StoreErrorsAreNonFatal(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{0.5}}}
	ms := newMockKVStore()
	ms.getErr = errors.New("conn refused")
	ms.setErr = errors.New("conn refused")
	ce := New(inner, ms, Config{Model: "m", Dimensions: 1}, zap.NewNop())

	res, err := ce.Embed(context.Background(), "text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Embedding[0] != 0.5 {
		t.Errorf("unexpected embedding %v", res.Embedding)
	}
}

func TestEmbed_InnerError(t *testing.T) {
	sentinel := errors.New("provider down")
	ce := New(&mockEmbedder{err: sentinel}, newMockKVStore(), Config{Model: "m"}, zap.NewNop())

	_, err := ce.Embed(context.Background(), "text")
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected wrapped inner error, got %v", err)
	}
}

func TestEmbed_CorruptEntryIsMiss(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{1}}}
	ms := newMockKVStore()
	ce := New(inner, ms, Config{Model: "m"}, zap.NewNop())
	ms.data[ce.key("text")] = []byte{1, 2, 3}

	if _, err := ce.Embed(context.Background(), "text"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 1 {
		t.Errorf("expected fallthrough to inner, calls=%d", inner.calls)
	}
	if len(ms.data[ce.key("text")]) != 4 {
		t.Error("corrupt entry should be overwritten")
	}
}
