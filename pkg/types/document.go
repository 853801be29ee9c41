// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"time"
)

// DocumentType categorizes an FOMC document.
type DocumentType string

const (
	DocStatement DocumentType = "statement"
	DocMinutes   DocumentType = "minutes"
)

// Document is a press statement or meeting minutes document from the
// Federal Reserve, after cleaning.
type Document struct {
	// ID is a stable identifier derived from type and date.
	ID string `json:"id" yaml:"id"`

	// Title is the display title (e.g. "FOMC Statement, 2024-12-18").
	Title string `json:"title" yaml:"title"`

	// Date is the meeting date in ISO form (YYYY-MM-DD).
	Date string `json:"date" yaml:"date"`

	// Type is statement or minutes.
	Type DocumentType `json:"type" yaml:"type"`

	// SourceURL records where the document came from. Used for
	// ingestion dedup; for file-sourced corpora it is the file path.
	SourceURL string `json:"source_url" yaml:"source_url"`

	// Text is the cleaned document text.
	Text string `json:"text" yaml:"text"`

	// IngestedAt is when the document entered the corpus.
	IngestedAt time.Time `json:"ingested_at" yaml:"ingested_at"`
}

// Validate checks required document fields.
func (d Document) Validate() error {
	if d.Title == "" {
		return fmt.Errorf("document title must not be empty")
	}
	if d.Type != DocStatement && d.Type != DocMinutes {
		return fmt.Errorf("invalid document type %q", d.Type)
	}
	if _, err := time.Parse("2006-01-02", d.Date); err != nil {
		return fmt.Errorf("invalid document date %q: %w", d.Date, err)
	}
	if d.Text == "" {
		return fmt.Errorf("document text must not be empty")
	}
	return nil
}

// DocumentChunk is a segment of a document sized for embedding and
// retrieval.
type DocumentChunk struct {
	// ID is a stable identifier for the chunk.
	ID string `json:"id" yaml:"id"`

	// DocumentID identifies the owning document.
	DocumentID string `json:"document_id" yaml:"document_id"`

	// Text is the chunk text.
	Text string `json:"text" yaml:"text"`

	// Index is the chunk's position within the document, starting at 0.
	Index int `json:"index" yaml:"index"`

	// TokenCount is the estimated token count of Text.
	TokenCount int `json:"token_count" yaml:"token_count"`

	// SectionHeader is the FOMC section the chunk falls under, if detected.
	SectionHeader string `json:"section_header,omitempty" yaml:"section_header,omitempty"`

	// Embedding is the chunk's embedding vector.
	Embedding []float32 `json:"-" yaml:"-"`
}
