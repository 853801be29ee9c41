// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llm provides the language-model capability consumed by the
// question-answering workflow. The workflow treats a failed model call as
// fatal for the question; the only retry at this layer is transport-level
// backoff on HTTP 429.
package llm

import (
	"context"
	"errors"
	"regexp"
	"strings"
)

// ErrModelUnreachable indicates the language-model API could not be
// reached or returned a failure. Callers treat this as fatal for the
// current question; it is never converted into a fabricated answer.
var ErrModelUnreachable = errors.New("language model unreachable")

// Backend abstracts the generative AI API so tests can supply a mock.
// Generate sends one prompt and returns the model's text reply.
type Backend interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

var (
	fenceOpen  = regexp.MustCompile("^```(?:json)?\\s*")
	fenceClose = regexp.MustCompile("\\s*```$")
)

// StripFences removes a surrounding Markdown code fence from a model
// reply. Models frequently wrap JSON in ```json ... ``` despite being
// told not to.
func StripFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = fenceOpen.ReplaceAllString(text, "")
	text = fenceClose.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}
