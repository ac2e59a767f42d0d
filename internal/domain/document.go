package domain

// Default metadata applied to ingested documents that omit it.
const (
	DefaultSource       = "unknown"
	DefaultDocumentType = "document"
)

// Document is a unit of ingestion. Once stored, the vector index owns it.
type Document struct {
	ID      string `json:"id,omitempty"`
	Content string `json:"content"`
	Source  string `json:"source,omitempty"`
	Date    string `json:"date,omitempty"` // ISO-8601 or empty
	Type    string `json:"type,omitempty"`
}

// Metadata is what the vector index stores next to the document content.
type Metadata struct {
	Source string
	Date   string
	Type   string
}

// MetadataOf returns the document metadata with defaults filled in.
func MetadataOf(d *Document) Metadata {
	m := Metadata{Source: d.Source, Date: d.Date, Type: d.Type}
	if m.Source == "" {
		m.Source = DefaultSource
	}
	if m.Type == "" {
		m.Type = DefaultDocumentType
	}
	return m
}
