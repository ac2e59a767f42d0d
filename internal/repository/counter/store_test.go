package counter

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/kailas-cloud/ragate/internal/db"
)

type mockStore struct {
	data     map[string]int64
	getErr   error
	incrErr  error
	lastIncr string
}

func newMockStore() *mockStore {
	return &mockStore{data: map[string]int64{}}
}

func (m *mockStore) Get(_ context.Context, key string) ([]byte, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	v, ok := m.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return []byte(strconv.FormatInt(v, 10)), nil
}

func (m *mockStore) IncrBy(_ context.Context, key string, val int64) (int64, error) {
	if m.incrErr != nil {
		return 0, m.incrErr
	}
	m.lastIncr = key
	m.data[key] += val
	return m.data[key], nil
}

func TestIncrementAndGet(t *testing.T) {
	ms := newMockStore()
	s := New(ms)
	ctx := context.Background()

	for range 3 {
		if err := s.Increment(ctx, "total_queries"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ms.lastIncr != "ragate:metrics:total_queries" {
		t.Errorf("unexpected key %q", ms.lastIncr)
	}

	n, err := s.Get(ctx, "total_queries")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 3 {
		t.Errorf("expected 3, got %d", n)
	}
}

func TestGet_MissingIsZero(t *testing.T) {
	s := New(newMockStore())
	n, err := s.Get(context.Background(), "successful_queries")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 0 {
		t.Errorf("expected 0, got %d", n)
	}
}

func TestGet_StoreError(t *testing.T) {
	ms := newMockStore()
	ms.getErr = &db.Error{Cmd: "GET", Key: "ragate:metrics:total_queries", Err: errors.New("connection reset")}
	s := New(ms)

	_, err := s.Get(context.Background(), "total_queries")
	var dbErr *db.Error
	if !errors.As(err, &dbErr) {
		t.Fatalf("expected wrapped db.Error, got %v", err)
	}
}

func TestGet_Unparsable(t *testing.T) {
	s := New(&badValueStore{})
	if _, err := s.Get(context.Background(), "total_queries"); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestIncrement_Error(t *testing.T) {
	ms := newMockStore()
	ms.incrErr = errors.New("readonly replica")
	s := New(ms)
	if err := s.Increment(context.Background(), "total_queries"); err == nil {
		t.Fatal("expected error")
	}
}

type badValueStore struct{}

func (badValueStore) Get(context.Context, string) ([]byte, error) { return []byte("NaN"), nil }
func (badValueStore) IncrBy(context.Context, string, int64) (int64, error) {
	return 0, nil
}
