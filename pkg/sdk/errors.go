package ragate

import "github.com/kailas-cloud/ragate/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrEmptyQuery             = domain.ErrEmptyQuery
	ErrQueryTooLong           = domain.ErrQueryTooLong
	ErrInvalidRequest         = domain.ErrInvalidRequest
	ErrDocumentNotFound       = domain.ErrDocumentNotFound
	ErrIrrelevantQuery        = domain.ErrIrrelevantQuery
	ErrRetrieval              = domain.ErrRetrieval
	ErrGeneration             = domain.ErrGeneration
	ErrIngestion              = domain.ErrIngestion
	ErrOracleUnavailable      = domain.ErrOracleUnavailable
	ErrEmptyResponse          = domain.ErrEmptyResponse
	ErrHallucinationSuspected = domain.ErrHallucinationSuspected
)
