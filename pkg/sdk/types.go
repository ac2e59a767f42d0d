package ragate

import "time"

// Document is a unit of ingestion. Empty ID gets a generated one; empty Source
// and Type default to "unknown" and "document".
type Document struct {
	ID      string
	Content string
	Source  string
	Date    string // ISO-8601 or empty
	Type    string
}

// Filter restricts retrieval to documents with matching metadata. Empty fields do not constrain.
type Filter struct {
	Source string
	Type   string
}

// QueryRequest is one question for the pipeline.
type QueryRequest struct {
	Query      string
	Filter     Filter
	MaxResults int // 0 uses the client default
}

// Source is a retrieved passage that informed the answer.
type Source struct {
	Content        string
	Source         string
	RelevanceScore float64
}

// QueryResult is a validated answer.
type QueryResult struct {
	Query      string
	Response   string
	Sources    []Source
	Confidence float64
	Timestamp  time.Time
}

// Stats holds the persisted query counters.
type Stats struct {
	TotalQueries      int64
	SuccessfulQueries int64
	SuccessRate       float64
	Timestamp         time.Time
}
