package domain

import "time"

// Filter restricts retrieval to documents whose metadata equals the given values.
// Empty fields do not constrain.
type Filter struct {
	Source string
	Type   string
}

// FilterFromContext extracts the supported metadata keys from a free-form request context.
// Non-string values and unknown keys are ignored.
func FilterFromContext(ctx map[string]any) Filter {
	var f Filter
	if s, ok := ctx["source"].(string); ok {
		f.Source = s
	}
	if s, ok := ctx["type"].(string); ok {
		f.Type = s
	}
	return f
}

// RetrievalCandidate is one nearest-neighbor hit. Distance is the store's cosine distance in [0, 2].
type RetrievalCandidate struct {
	ID       string
	Content  string
	Source   string
	Date     string
	Type     string
	Distance float64
}

// ContextItem is a candidate that passed the relevance threshold.
type ContextItem struct {
	Content        string  `json:"content"`
	Source         string  `json:"source"`
	RelevanceScore float64 `json:"relevance_score"`
}

// QueryRequest is the input of a single pipeline run.
type QueryRequest struct {
	Query      string
	Filter     Filter
	MaxResults int // 0 selects the configured default
}

// QueryResult is the validated outcome of a pipeline run.
type QueryResult struct {
	Query      string
	Response   string
	Sources    []ContextItem
	Confidence float64
	Timestamp  time.Time
}
