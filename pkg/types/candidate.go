// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"strings"
)

// Candidate is a retrieved passage with provenance and a relevance score.
// Candidates are produced by the retrieval gateway, are immutable, and live
// only for the duration of one question.
type Candidate struct {
	// ChunkID identifies the stored chunk.
	ChunkID string `json:"chunk_id" yaml:"chunk_id"`

	// DocumentID identifies the owning document.
	DocumentID string `json:"document_id" yaml:"document_id"`

	// DocumentName is the owning document's display title.
	DocumentName string `json:"document_name" yaml:"document_name"`

	// DocumentDate is the owning document's date in ISO form (YYYY-MM-DD).
	DocumentDate string `json:"document_date" yaml:"document_date"`

	// SectionHeader is the section the passage was found under, if known.
	SectionHeader string `json:"section_header,omitempty" yaml:"section_header,omitempty"`

	// Text is the passage text.
	Text string `json:"text" yaml:"text"`

	// Score is the relevance score in [0,1], higher is more relevant.
	Score float64 `json:"score" yaml:"score"`
}

// DateRange is an inclusive ISO date range used to scope retrieval.
type DateRange struct {
	Start string `json:"start" yaml:"start"`
	End   string `json:"end" yaml:"end"`
}

// RetrievalScope carries the assessor's hints for a retrieval pass: an
// optional date range and a bounded result-count hint. The count hint is
// fixed at assessment time and survives reformulation.
type RetrievalScope struct {
	// DateRange restricts the filtered retrieval pass. Nil means no
	// temporal signal was found in the question.
	DateRange *DateRange `json:"date_range,omitempty" yaml:"date_range,omitempty"`

	// TopK is the number of candidates a thorough answer needs.
	TopK int `json:"top_k" yaml:"top_k"`
}

// Citation links an answer claim to a retrieved candidate. A Citation is
// only valid while its ChunkID is a member of the active candidate set and
// Excerpt is a substring of that candidate's passage text.
type Citation struct {
	// Number is the sequential citation number after renumbering (1..k).
	Number int `json:"number" yaml:"number"`

	// DocumentName is the cited document's display title.
	DocumentName string `json:"document_name" yaml:"document_name"`

	// DocumentDate is the cited document's date in ISO form.
	DocumentDate string `json:"document_date" yaml:"document_date"`

	// SectionHeader is the cited section, if known.
	SectionHeader string `json:"section_header,omitempty" yaml:"section_header,omitempty"`

	// ChunkID identifies the cited chunk.
	ChunkID string `json:"chunk_id" yaml:"chunk_id"`

	// Score is the cited candidate's relevance score.
	Score float64 `json:"score" yaml:"score"`

	// Excerpt is a verbatim excerpt from the cited passage.
	Excerpt string `json:"excerpt" yaml:"excerpt"`

	// SourceIndex is the transient per-call marker index the synthesizer
	// used ([Source N]). It is meaningless outside validation.
	SourceIndex int `json:"-" yaml:"-"`
}

// Validate checks the citation invariants against the given candidate.
func (c Citation) Validate(candidate Candidate) error {
	if c.ChunkID != candidate.ChunkID {
		return fmt.Errorf("citation chunk %s does not match candidate %s", c.ChunkID, candidate.ChunkID)
	}
	if c.Excerpt != "" && !strings.Contains(candidate.Text, c.Excerpt) {
		return fmt.Errorf("citation excerpt is not a substring of chunk %s", c.ChunkID)
	}
	return nil
}
