package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kailas-cloud/ragate/internal/domain"
	"github.com/kailas-cloud/ragate/internal/metrics"
)

const testEmbeddingModel = "text-embedding-3-small"

func TestMain(m *testing.M) {
	metrics.Register()
	os.Exit(m.Run())
}

func newTestConfig(url string) *Config {
	return &Config{
		APIKey:         "sk-test",
		BaseURL:        url,
		EmbeddingModel: testEmbeddingModel,
		ChatModel:      "gpt-4-turbo",
		Logger:         zap.NewNop(),
	}
}

// fakeAPI serves canned JSON per path and records the last decoded request body.
type fakeAPI struct {
	status int
	reply  map[string]string
	auth   string
	body   map[string]any
}

func (f *fakeAPI) start(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.auth = r.Header.Get("Authorization")
		if r.Body != nil && r.Method == http.MethodPost {
			f.body = map[string]any{}
			_ = json.NewDecoder(r.Body).Decode(&f.body)
		}
		reply, ok := f.reply[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if f.status != 0 {
			w.WriteHeader(f.status)
		}
		_, _ = w.Write([]byte(reply))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func embeddingOutcomes(status string) float64 {
	return testutil.ToFloat64(metrics.OracleRequestsTotal.WithLabelValues(kindEmbedding, testEmbeddingModel, status))
}

func TestEmbedder_Embed(t *testing.T) {
	api := &fakeAPI{reply: map[string]string{
		"/embeddings": `{"object":"list","model":"text-embedding-3-small",
			"data":[{"object":"embedding","index":0,"embedding":[0.25,-0.5,1,0]}],
			"usage":{"prompt_tokens":6,"total_tokens":6}}`,
	}}
	srv := api.start(t)

	cfg := newTestConfig(srv.URL)
	cfg.Dimensions = 4
	before := embeddingOutcomes("success")

	res, err := NewEmbedder(cfg).Embed(context.Background(), "revenue by region")
	require.NoError(t, err)

	assert.Equal(t, []float32{0.25, -0.5, 1, 0}, res.Embedding)
	assert.Equal(t, 6, res.TotalTokens)
	assert.Equal(t, "Bearer sk-test", api.auth)
	assert.Equal(t, testEmbeddingModel, api.body["model"])
	assert.EqualValues(t, 4, api.body["dimensions"])
	assert.InDelta(t, 1, embeddingOutcomes("success")-before, 0)
}

func TestEmbedder_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		reply  string
		substr string
	}{
		{name: "no vectors", reply: `{"object":"list","data":[]}`, substr: "empty embedding response"},
		{name: "rate limited", status: http.StatusTooManyRequests,
			reply: `{"error":{"message":"slow down","type":"rate_limit_error"}}`, substr: "429"},
		{name: "detail body", status: http.StatusBadRequest,
			reply: `{"detail":"unknown model"}`, substr: "unknown model"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeAPI{status: tt.status, reply: map[string]string{"/embeddings": tt.reply}}
			srv := api.start(t)
			before := embeddingOutcomes("error")

			_, err := NewEmbedder(newTestConfig(srv.URL)).Embed(context.Background(), "x")

			require.ErrorIs(t, err, domain.ErrOracleUnavailable)
			assert.Contains(t, err.Error(), tt.substr)
			assert.InDelta(t, 1, embeddingOutcomes("error")-before, 0)
		})
	}
}

func TestEmbedder_HealthCheck(t *testing.T) {
	up := (&fakeAPI{reply: map[string]string{"/models": `{"object":"list","data":[]}`}}).start(t)
	require.NoError(t, NewEmbedder(newTestConfig(up.URL)).HealthCheck(context.Background()))

	down := (&fakeAPI{}).start(t)
	assert.Error(t, NewEmbedder(newTestConfig(down.URL)).HealthCheck(context.Background()))
}

func TestExtractDetail(t *testing.T) {
	assert.Equal(t, "model not found", extractDetail([]byte(`{"detail":"model not found"}`)))
	assert.Empty(t, extractDetail([]byte(`{"detail":""}`)))
	assert.Empty(t, extractDetail([]byte(`<html>`)))
}

func TestParseAPIError_KeepsContextCause(t *testing.T) {
	for _, cause := range []error{context.DeadlineExceeded, context.Canceled} {
		err := parseAPIError(kindChat, cause)
		assert.ErrorIs(t, err, domain.ErrOracleUnavailable)
		assert.ErrorIs(t, err, cause)
	}
}
