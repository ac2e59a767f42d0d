package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/ragate/internal/domain"
	"github.com/kailas-cloud/ragate/internal/logger"
	"github.com/kailas-cloud/ragate/internal/usecase/health"
	"github.com/kailas-cloud/ragate/internal/usecase/usage"
	"github.com/kailas-cloud/ragate/internal/version"
)

// maxBodyBytes bounds request bodies (ingest batches included).
const maxBodyBytes = 10 << 20

// Pipeline runs queries and ingestion.
type Pipeline interface {
	RunQuery(ctx context.Context, req domain.QueryRequest) (domain.QueryResult, error)
	IngestDocuments(ctx context.Context, docs []domain.Document) (int, error)
}

// Documents reads and removes single documents.
type Documents interface {
	Get(ctx context.Context, id string) (domain.Document, error)
	Delete(ctx context.Context, id string) error
}

// UsageReporter reads the query counters.
type UsageReporter interface {
	GetReport(ctx context.Context) (usage.Report, error)
}

// HealthChecker aggregates component health.
type HealthChecker interface {
	Check(ctx context.Context) health.Report
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server holds the HTTP handlers of the gateway.
type Server struct {
	pipeline      Pipeline
	documents     Documents
	usage         UsageReporter
	health        HealthChecker
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	pipeline Pipeline,
	documents Documents,
	usage UsageReporter,
	health HealthChecker,
	logger *zap.Logger,
) *Server {
	s := &Server{
		pipeline:  pipeline,
		documents: documents,
		usage:     usage,
		health:    health,
		logger:    logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrEmptyQuery, http.StatusBadRequest, ErrorCodeEmptyQuery),
		sentinelHandler(domain.ErrQueryTooLong, http.StatusBadRequest, ErrorCodeQueryTooLong),
		sentinelHandler(domain.ErrIrrelevantQuery, http.StatusBadRequest, ErrorCodeIrrelevantQuery),
		sentinelHandler(domain.ErrInvalidRequest, http.StatusBadRequest, ErrorCodeValidationFailed),
		sentinelHandler(domain.ErrDocumentNotFound, http.StatusNotFound, ErrorCodeDocumentNotFound),
		sentinelHandler(domain.ErrRetrieval, http.StatusBadGateway, ErrorCodeRetrievalFailed),
		sentinelHandler(domain.ErrGeneration, http.StatusBadGateway, ErrorCodeGenerationFailed),
		sentinelHandler(domain.ErrIngestion, http.StatusInternalServerError, ErrorCodeIngestionFailed),
		sentinelHandler(domain.ErrEmptyResponse, http.StatusInternalServerError, ErrorCodeEmptyResponse),
		sentinelHandler(domain.ErrHallucinationSuspected,
			http.StatusInternalServerError, ErrorCodeHallucinationSuspected),
	}
	return s
}

// Register mounts the routes on r.
func (s *Server) Register(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Post("/query", s.Query)
	r.Post("/documents/ingest", s.IngestDocuments)
	r.Get("/documents/{id}", s.GetDocument)
	r.Delete("/documents/{id}", s.DeleteDocument)
	r.Get("/metrics", s.Metrics)
	r.Get("/metrics/prometheus", s.PrometheusMetrics)
}

// Query handles POST /query.
func (s *Server) Query(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if !s.decode(w, r, &req) {
		return
	}

	qr := domain.QueryRequest{
		Query:  req.Query,
		Filter: domain.FilterFromContext(req.Context),
	}
	if req.MaxResults != nil {
		if *req.MaxResults < 1 {
			writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, "max_results must be at least 1")
			return
		}
		qr.MaxResults = *req.MaxResults
	}

	ctx, tokens := domain.NewContextWithUsage(r.Context())
	res, err := s.pipeline.RunQuery(ctx, qr)
	setOracleHeaders(w, tokens)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	sources := res.Sources
	if sources == nil {
		sources = []domain.ContextItem{}
	}
	writeJSON(w, http.StatusOK, QueryResponse{
		Query:      res.Query,
		Response:   res.Response,
		Sources:    sources,
		Confidence: res.Confidence,
		Timestamp:  res.Timestamp.Format(time.RFC3339Nano),
	})
}

// IngestDocuments handles POST /documents/ingest.
func (s *Server) IngestDocuments(w http.ResponseWriter, r *http.Request) {
	var req IngestRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Documents == nil {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, "documents is required")
		return
	}

	ctx, tokens := domain.NewContextWithUsage(r.Context())
	n, err := s.pipeline.IngestDocuments(ctx, req.Documents)
	setOracleHeaders(w, tokens)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, IngestResponse{
		Status:         "success",
		ProcessedCount: n,
		Errors:         []string{},
	})
}

// GetDocument handles GET /documents/{id}.
func (s *Server) GetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := s.documents.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// DeleteDocument handles DELETE /documents/{id}.
func (s *Server) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	if err := s.documents.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Metrics handles GET /metrics (JSON counters).
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	report, err := s.usage.GetReport(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// PrometheusMetrics handles GET /metrics/prometheus.
func (s *Server) PrometheusMetrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != health.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status:  string(report.Status),
		Service: logger.ServiceName,
		Version: version.Version,
		Checks:  checks,
	})
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

func setOracleHeaders(w http.ResponseWriter, u *domain.OracleUsage) {
	if u != nil && u.Calls() > 0 {
		w.Header().Set("X-Oracle-Tokens", strconv.Itoa(u.TotalTokens()))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// clientSentinels are the errors whose own text is safe to show to clients.
var clientSentinels = []error{
	domain.ErrEmptyQuery,
	domain.ErrQueryTooLong,
	domain.ErrInvalidRequest,
	domain.ErrIrrelevantQuery,
	domain.ErrDocumentNotFound,
	domain.ErrRetrieval,
	domain.ErrGeneration,
	domain.ErrIngestion,
	domain.ErrEmptyResponse,
	domain.ErrHallucinationSuspected,
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	for _, s := range clientSentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContextOr(r.Context(), s.logger)
	log.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}
