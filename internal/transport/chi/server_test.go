package chi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/kailas-cloud/ragate/internal/domain"
	"github.com/kailas-cloud/ragate/internal/usecase/health"
	"github.com/kailas-cloud/ragate/internal/usecase/usage"
)

// --- Mocks ---

type mockPipeline struct {
	result    domain.QueryResult
	err       error
	tokens    int
	gotReq    domain.QueryRequest
	ingestN   int
	ingestErr error
	gotDocs   []domain.Document
}

func (m *mockPipeline) RunQuery(ctx context.Context, req domain.QueryRequest) (domain.QueryResult, error) {
	m.gotReq = req
	if m.tokens > 0 {
		domain.UsageFromContext(ctx).AddTokens(m.tokens)
	}
	return m.result, m.err
}

func (m *mockPipeline) IngestDocuments(_ context.Context, docs []domain.Document) (int, error) {
	m.gotDocs = docs
	return m.ingestN, m.ingestErr
}

type mockDocuments struct {
	doc       domain.Document
	getErr    error
	deleteErr error
	gotID     string
}

func (m *mockDocuments) Get(_ context.Context, id string) (domain.Document, error) {
	m.gotID = id
	return m.doc, m.getErr
}

func (m *mockDocuments) Delete(_ context.Context, id string) error {
	m.gotID = id
	return m.deleteErr
}

type mockUsage struct {
	report usage.Report
	err    error
}

func (m *mockUsage) GetReport(_ context.Context) (usage.Report, error) { return m.report, m.err }

type mockHealth struct {
	report health.Report
}

func (m *mockHealth) Check(_ context.Context) health.Report { return m.report }

type testEnv struct {
	pipeline  *mockPipeline
	documents *mockDocuments
	usage     *mockUsage
	health    *mockHealth
	router    http.Handler
}

func newTestEnv() *testEnv {
	env := &testEnv{
		pipeline:  &mockPipeline{},
		documents: &mockDocuments{},
		usage:     &mockUsage{},
		health:    &mockHealth{report: health.Report{Status: health.Healthy, Checks: map[string]health.CheckResult{}}},
	}
	r := chi.NewRouter()
	NewServer(env.pipeline, env.documents, env.usage, env.health, zap.NewNop()).Register(r)
	env.router = r
	return env
}

func (e *testEnv) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, http.NoBody)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	return resp
}

// --- POST /query ---

func TestQuery_Success(t *testing.T) {
	env := newTestEnv()
	env.pipeline.tokens = 42
	env.pipeline.result = domain.QueryResult{
		Query:      "Q3 revenue?",
		Response:   "Based on the review, revenue grew.",
		Sources:    []domain.ContextItem{{Content: "Revenue grew", Source: "q3", RelevanceScore: 0.9}},
		Confidence: 0.9,
		Timestamp:  time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	}

	rr := env.do(http.MethodPost, "/query",
		`{"query":"Q3 revenue?","context":{"source":"q3","type":7},"max_results":5}`)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if rr.Header().Get("X-Oracle-Tokens") != "42" {
		t.Errorf("expected X-Oracle-Tokens 42, got %q", rr.Header().Get("X-Oracle-Tokens"))
	}

	var resp QueryResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Response != "Based on the review, revenue grew." || len(resp.Sources) != 1 || resp.Confidence != 0.9 {
		t.Errorf("unexpected response %+v", resp)
	}
	if resp.Timestamp != "2024-06-01T12:00:00Z" {
		t.Errorf("unexpected timestamp %q", resp.Timestamp)
	}

	got := env.pipeline.gotReq
	if got.Query != "Q3 revenue?" || got.MaxResults != 5 {
		t.Errorf("unexpected pipeline request %+v", got)
	}
	if got.Filter.Source != "q3" || got.Filter.Type != "" {
		t.Errorf("unexpected filter %+v", got.Filter)
	}
}

func TestQuery_EmptySourcesIsArray(t *testing.T) {
	env := newTestEnv()
	env.pipeline.result = domain.QueryResult{Response: "x"}

	rr := env.do(http.MethodPost, "/query", `{"query":"q"}`)
	if !strings.Contains(rr.Body.String(), `"sources":[]`) {
		t.Errorf("expected empty sources array, got %s", rr.Body.String())
	}
}

func TestQuery_InvalidBody(t *testing.T) {
	env := newTestEnv()
	rr := env.do(http.MethodPost, "/query", `{not json`)
	if rr.Code != http.StatusBadRequest || decodeError(t, rr).Code != ErrorCodeBadRequest {
		t.Fatalf("expected 400 bad_request, got %d", rr.Code)
	}
}

func TestQuery_InvalidMaxResults(t *testing.T) {
	env := newTestEnv()
	rr := env.do(http.MethodPost, "/query", `{"query":"q","max_results":0}`)
	if rr.Code != http.StatusBadRequest || decodeError(t, rr).Code != ErrorCodeValidationFailed {
		t.Fatalf("expected 400 validation_failed, got %d", rr.Code)
	}
}

func TestQuery_ErrorMapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   ErrorCode
	}{
		{domain.ErrEmptyQuery, http.StatusBadRequest, ErrorCodeEmptyQuery},
		{domain.ErrQueryTooLong, http.StatusBadRequest, ErrorCodeQueryTooLong},
		{domain.ErrIrrelevantQuery, http.StatusBadRequest, ErrorCodeIrrelevantQuery},
		{domain.ErrInvalidRequest, http.StatusBadRequest, ErrorCodeValidationFailed},
		{domain.ErrRetrieval, http.StatusBadGateway, ErrorCodeRetrievalFailed},
		{domain.ErrGeneration, http.StatusBadGateway, ErrorCodeGenerationFailed},
		{domain.ErrEmptyResponse, http.StatusInternalServerError, ErrorCodeEmptyResponse},
		{domain.ErrHallucinationSuspected, http.StatusInternalServerError, ErrorCodeHallucinationSuspected},
		{errors.New("boom"), http.StatusInternalServerError, ErrorCodeInternalError},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			env := newTestEnv()
			env.pipeline.err = fmt.Errorf("stage: %w: secret detail", tt.err)

			rr := env.do(http.MethodPost, "/query", `{"query":"q"}`)
			if rr.Code != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, rr.Code)
			}
			resp := decodeError(t, rr)
			if resp.Code != tt.code {
				t.Errorf("expected code %s, got %s", tt.code, resp.Code)
			}
			if strings.Contains(resp.Message, "secret detail") {
				t.Errorf("internal detail leaked: %q", resp.Message)
			}
		})
	}
}

// --- POST /documents/ingest ---

func TestIngest_Success(t *testing.T) {
	env := newTestEnv()
	env.pipeline.ingestN = 2

	rr := env.do(http.MethodPost, "/documents/ingest",
		`{"documents":[{"id":"a","content":"x","source":"crm"},{"content":""},{"content":"y","date":"2024-01-01"}]}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp IngestResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "success" || resp.ProcessedCount != 2 || resp.Errors == nil {
		t.Errorf("unexpected response %+v", resp)
	}
	if len(env.pipeline.gotDocs) != 3 || env.pipeline.gotDocs[0].Source != "crm" {
		t.Errorf("unexpected documents %+v", env.pipeline.gotDocs)
	}
}

func TestIngest_MissingDocuments(t *testing.T) {
	env := newTestEnv()
	rr := env.do(http.MethodPost, "/documents/ingest", `{}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestIngest_StorageFailure(t *testing.T) {
	env := newTestEnv()
	env.pipeline.ingestErr = fmt.Errorf("%w: document a: READONLY", domain.ErrIngestion)

	rr := env.do(http.MethodPost, "/documents/ingest", `{"documents":[{"content":"x"}]}`)
	if rr.Code != http.StatusInternalServerError || decodeError(t, rr).Code != ErrorCodeIngestionFailed {
		t.Fatalf("expected 500 ingestion_failed, got %d", rr.Code)
	}
}

// --- /documents/{id} ---

func TestGetDocument(t *testing.T) {
	env := newTestEnv()
	env.documents.doc = domain.Document{ID: "d1", Content: "Quota report", Source: "crm", Type: "report"}

	rr := env.do(http.MethodGet, "/documents/d1", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var doc domain.Document
	if err := json.NewDecoder(rr.Body).Decode(&doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if doc.ID != "d1" || env.documents.gotID != "d1" {
		t.Errorf("unexpected document %+v", doc)
	}
}

func TestGetDocument_NotFound(t *testing.T) {
	env := newTestEnv()
	env.documents.getErr = domain.ErrDocumentNotFound

	rr := env.do(http.MethodGet, "/documents/missing", "")
	if rr.Code != http.StatusNotFound || decodeError(t, rr).Code != ErrorCodeDocumentNotFound {
		t.Fatalf("expected 404 document_not_found, got %d", rr.Code)
	}
}

func TestDeleteDocument(t *testing.T) {
	env := newTestEnv()
	rr := env.do(http.MethodDelete, "/documents/d1", "")
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rr.Code)
	}
	if env.documents.gotID != "d1" {
		t.Errorf("unexpected id %q", env.documents.gotID)
	}
}

// --- /metrics, /health ---

func TestMetrics_JSON(t *testing.T) {
	env := newTestEnv()
	env.usage.report = usage.Report{TotalQueries: 4, SuccessfulQueries: 3, SuccessRate: 0.75}

	rr := env.do(http.MethodGet, "/metrics", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var body map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["total_queries"] != float64(4) || body["success_rate"] != 0.75 {
		t.Errorf("unexpected body %v", body)
	}
}

func TestMetrics_StoreError(t *testing.T) {
	env := newTestEnv()
	env.usage.err = errors.New("connection refused")
	if rr := env.do(http.MethodGet, "/metrics", ""); rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
}

func TestPrometheusMetrics(t *testing.T) {
	env := newTestEnv()
	rr := env.do(http.MethodGet, "/metrics/prometheus", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "go_goroutines") {
		t.Error("expected default collectors in exposition")
	}
}

func TestHealth(t *testing.T) {
	env := newTestEnv()
	env.health.report = health.Report{
		Status: health.Degraded,
		Checks: map[string]health.CheckResult{health.CheckDatabase: health.CheckError},
	}

	rr := env.do(http.MethodGet, "/health", "")
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rr.Code)
	}
	var resp HealthResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "degraded" || resp.Service != "ragate" || resp.Checks["database"] != "error" {
		t.Errorf("unexpected health response %+v", resp)
	}
}
