// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the shared data model for fedquery: questions,
// retrieved candidates, citations, answers, and per-stage configuration.
package types

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// Confidence grades how well the retrieved evidence supports an answer.
type Confidence string

const (
	ConfidenceHigh         Confidence = "high"
	ConfidenceMedium       Confidence = "medium"
	ConfidenceLow          Confidence = "low"
	ConfidenceInsufficient Confidence = "insufficient"
)

// Question is a natural-language question from the analyst. Immutable once
// created; one Question per workflow invocation.
type Question struct {
	// ID identifies the question in logs, derived from text and arrival
	// time.
	ID string `json:"id" yaml:"id"`

	// Text is the question as asked.
	Text string `json:"text" yaml:"text"`

	// ReceivedAt is when the question entered the system.
	ReceivedAt time.Time `json:"received_at" yaml:"received_at"`
}

// NewQuestion creates a Question stamped with the current time.
func NewQuestion(text string) (Question, error) {
	if text == "" {
		return Question{}, fmt.Errorf("question text must not be empty")
	}
	now := time.Now()
	sum := sha256.Sum256([]byte(text + now.Format(time.RFC3339Nano)))
	return Question{
		ID:         hex.EncodeToString(sum[:8]),
		Text:       text,
		ReceivedAt: now,
	}, nil
}

// Answer is the terminal output of the workflow: either a grounded answer
// with ordered citations, or an uncertainty response with none.
type Answer struct {
	// Text is the formatted response, including remapped inline markers
	// and the sources footer for grounded answers.
	Text string `json:"text" yaml:"text"`

	// Confidence is the tier the evidence reached.
	Confidence Confidence `json:"confidence" yaml:"confidence"`

	// Citations are the validated, sequentially numbered citations.
	// Empty for uncertainty responses.
	Citations []Citation `json:"citations,omitempty" yaml:"citations,omitempty"`

	// DroppedCitations counts citations removed during grounding
	// validation. Surfaced so silent drops are impossible.
	DroppedCitations int `json:"dropped_citations,omitempty" yaml:"dropped_citations,omitempty"`

	// Grounded reports whether Text is an evidence-backed answer rather
	// than an uncertainty response.
	Grounded bool `json:"grounded" yaml:"grounded"`
}
