package chi

import "github.com/kailas-cloud/ragate/internal/domain"

// ErrorCode is the machine-readable error code in ErrorResponse.
type ErrorCode string

// Error codes returned to clients.
const (
	ErrorCodeBadRequest             ErrorCode = "bad_request"
	ErrorCodeNotFound               ErrorCode = "not_found"
	ErrorCodeMethodNotAllowed       ErrorCode = "method_not_allowed"
	ErrorCodeValidationFailed       ErrorCode = "validation_failed"
	ErrorCodeUnauthorized           ErrorCode = "unauthorized"
	ErrorCodeEmptyQuery             ErrorCode = "empty_query"
	ErrorCodeQueryTooLong           ErrorCode = "query_too_long"
	ErrorCodeIrrelevantQuery        ErrorCode = "irrelevant_query"
	ErrorCodeDocumentNotFound       ErrorCode = "document_not_found"
	ErrorCodeRetrievalFailed        ErrorCode = "retrieval_failed"
	ErrorCodeGenerationFailed       ErrorCode = "generation_failed"
	ErrorCodeIngestionFailed        ErrorCode = "ingestion_failed"
	ErrorCodeEmptyResponse          ErrorCode = "empty_response"
	ErrorCodeHallucinationSuspected ErrorCode = "hallucination_suspected"
	ErrorCodeInternalError          ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// QueryRequest is the body of POST /query.
type QueryRequest struct {
	Query      string         `json:"query"`
	Context    map[string]any `json:"context,omitempty"`
	MaxResults *int           `json:"max_results,omitempty"`
}

// QueryResponse is the body of a successful POST /query.
type QueryResponse struct {
	Query      string               `json:"query"`
	Response   string               `json:"response"`
	Sources    []domain.ContextItem `json:"sources"`
	Confidence float64              `json:"confidence"`
	Timestamp  string               `json:"timestamp"`
}

// IngestRequest is the body of POST /documents/ingest.
type IngestRequest struct {
	Documents []domain.Document `json:"documents"`
}

// IngestResponse is the body of a successful POST /documents/ingest.
type IngestResponse struct {
	Status         string   `json:"status"`
	ProcessedCount int      `json:"processed_count"`
	Errors         []string `json:"errors"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status  string            `json:"status"`
	Service string            `json:"service"`
	Version string            `json:"version"`
	Checks  map[string]string `json:"checks"`
}
