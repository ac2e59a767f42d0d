package domain

import "errors"

// Input validation failures (user-correctable).
var (
	// ErrEmptyQuery signals a query that is empty or blank after sanitization.
	ErrEmptyQuery = errors.New("query cannot be empty")
	// ErrQueryTooLong signals a sanitized query longer than the configured maximum.
	ErrQueryTooLong = errors.New("query too long")
	// ErrInvalidRequest signals a malformed request envelope (bad max_results, bad JSON).
	ErrInvalidRequest = errors.New("invalid request")
	// ErrDocumentNotFound signals a lookup of a document id the index does not hold.
	ErrDocumentNotFound = errors.New("document not found")
)

// Policy rejection.
var (
	// ErrIrrelevantQuery signals a query the relevance classifier rejected.
	ErrIrrelevantQuery = errors.New("query not relevant to commercial analytics")
)

// Backend failures. Never retried by the pipeline.
var (
	// ErrRetrieval signals that the vector index could not be queried.
	ErrRetrieval = errors.New("retrieval failed")
	// ErrGeneration signals that the generation oracle failed to produce an answer.
	ErrGeneration = errors.New("generation failed")
	// ErrIngestion signals a storage backend failure while ingesting documents.
	ErrIngestion = errors.New("ingestion failed")
	// ErrOracleUnavailable signals a transport-level failure talking to an oracle.
	ErrOracleUnavailable = errors.New("oracle unavailable")
)

// Output quality rejections.
var (
	// ErrEmptyResponse signals a blank generated answer.
	ErrEmptyResponse = errors.New("empty response generated")
	// ErrHallucinationSuspected signals an answer with specific claims and no attribution.
	ErrHallucinationSuspected = errors.New("response validation failed: potential hallucination detected")
)
