package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/ragate/internal/domain"
	"github.com/kailas-cloud/ragate/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.Register()
	os.Exit(m.Run())
}

// fakeOllama answers the embedding and chat endpoints of the Ollama HTTP API.
func fakeOllama(t *testing.T, reply string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/embeddings":
			_ = json.NewEncoder(w).Encode(map[string]any{"embedding": []float32{0.5, 0.25}})
		case "/api/embed":
			_ = json.NewEncoder(w).Encode(map[string]any{"embeddings": [][]float32{{0.5, 0.25}}})
		case "/api/chat":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"model":             "llama3",
				"message":           map[string]any{"role": "assistant", "content": reply},
				"done":              true,
				"prompt_eval_count": 12,
				"eval_count":        3,
			})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func testConfig(url string) *Config {
	return &Config{ServerURL: url, EmbeddingModel: "nomic-embed-text", ChatModel: "llama3", Logger: zap.NewNop()}
}

func TestEmbedder_Embed(t *testing.T) {
	srv := fakeOllama(t, "")
	defer srv.Close()

	emb, err := NewEmbedder(testConfig(srv.URL))
	if err != nil {
		t.Fatalf("NewEmbedder: %v", err)
	}
	res, err := emb.Embed(context.Background(), "agent quota")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(res.Embedding) != 2 || res.Embedding[0] != 0.5 {
		t.Errorf("unexpected embedding %v", res.Embedding)
	}
}

func TestCompleter_Complete(t *testing.T) {
	srv := fakeOllama(t, "RELEVANT")
	defer srv.Close()

	c, err := NewCompleter(testConfig(srv.URL))
	if err != nil {
		t.Fatalf("NewCompleter: %v", err)
	}
	res, err := c.Complete(context.Background(), domain.CompletionRequest{System: "s", User: "u", MaxTokens: 10})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if res.Text != "RELEVANT" {
		t.Errorf("expected RELEVANT, got %q", res.Text)
	}
}

func TestCompleter_ServerDown(t *testing.T) {
	srv := fakeOllama(t, "")
	url := srv.URL
	srv.Close()

	c, err := NewCompleter(testConfig(url))
	if err != nil {
		t.Fatalf("NewCompleter: %v", err)
	}
	_, err = c.Complete(context.Background(), domain.CompletionRequest{User: "u"})
	if !errors.Is(err, domain.ErrOracleUnavailable) {
		t.Fatalf("expected ErrOracleUnavailable, got %v", err)
	}
}

func TestIntFromInfo(t *testing.T) {
	info := map[string]any{"a": 3, "b": float64(4), "c": "x"}
	if intFromInfo(info, "a") != 3 || intFromInfo(info, "b") != 4 || intFromInfo(info, "c") != 0 || intFromInfo(nil, "a") != 0 {
		t.Error("unexpected conversion")
	}
}
