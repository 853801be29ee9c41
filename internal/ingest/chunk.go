// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ingest

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"

	"github.com/pdiddy/fedquery/pkg/types"
)

// sectionPatterns match FOMC section headers: Markdown headings plus the
// recurring minutes section titles.
var sectionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^#{1,3}\s+(.+)`),
	regexp.MustCompile(`^(Participants'.+)`),
	regexp.MustCompile(`^(Committee Policy.+)`),
	regexp.MustCompile(`^(Developments in.+)`),
	regexp.MustCompile(`^(Staff Review.+)`),
	regexp.MustCompile(`^(Staff Economic.+)`),
	regexp.MustCompile(`^(Financial Developments.+)`),
}

// detectSectionHeader returns the section header a line declares, if any.
func detectSectionHeader(line string) (string, bool) {
	line = strings.TrimSpace(line)
	for _, p := range sectionPatterns {
		if m := p.FindStringSubmatch(line); m != nil {
			return m[1], true
		}
	}
	return "", false
}

// estimateTokens gives a rough token count (~4 chars per token for English).
func estimateTokens(text string) int {
	n := len(text) / 4
	if n < 1 {
		return 1
	}
	return n
}

// splitSeparators is the separator hierarchy for recursive splitting:
// paragraphs first, then lines, sentences, words.
var splitSeparators = []string{"\n\n", "\n", ". ", " "}

// splitRecursive splits text into pieces of at most chunkSize estimated
// tokens, carrying chunkOverlap tokens of trailing context into each
// successor chunk.
func splitRecursive(text string, chunkSize, chunkOverlap int, separators []string) []string {
	if len(separators) == 0 {
		separators = splitSeparators
	}
	if estimateTokens(text) <= chunkSize {
		return []string{text}
	}

	separator := separators[0]
	remaining := separators
	if len(separators) > 1 {
		remaining = separators[1:]
	}

	parts := strings.Split(text, separator)
	if len(parts) == 1 && len(separators) > 1 {
		return splitRecursive(text, chunkSize, chunkOverlap, remaining)
	}

	var chunks []string
	current := ""

	for _, part := range parts {
		candidate := strings.TrimSpace(part)
		if current != "" {
			candidate = strings.TrimSpace(current + separator + part)
		}

		if estimateTokens(candidate) > chunkSize && current != "" {
			chunks = append(chunks, strings.TrimSpace(current))
			overlap := overlapText(current, chunkOverlap)
			if overlap != "" {
				current = strings.TrimSpace(overlap + separator + part)
			} else {
				current = strings.TrimSpace(part)
			}
		} else {
			current = candidate
		}
	}

	if strings.TrimSpace(current) != "" {
		chunks = append(chunks, strings.TrimSpace(current))
	}
	return chunks
}

// overlapText returns the last overlapTokens worth of text, snapped forward
// to a word boundary to avoid mid-word truncation.
func overlapText(text string, overlapTokens int) string {
	if overlapTokens <= 0 {
		return ""
	}
	chars := overlapTokens * 4
	if len(text) <= chars {
		return text
	}
	candidate := text[len(text)-chars:]
	if idx := strings.Index(candidate, " "); idx != -1 {
		candidate = candidate[idx+1:]
	}
	return candidate
}

// ChunkDocument splits a document into chunks with section-header
// metadata. The current section header carries forward until a chunk
// introduces a new one.
func ChunkDocument(doc types.Document, chunkSize, chunkOverlap int) []types.DocumentChunk {
	raw := splitRecursive(doc.Text, chunkSize, chunkOverlap, nil)

	var result []types.DocumentChunk
	currentHeader := ""
	for idx, text := range raw {
		for _, line := range strings.Split(text, "\n") {
			if header, ok := detectSectionHeader(line); ok {
				currentHeader = header
				break
			}
		}
		result = append(result, types.DocumentChunk{
			ID:            chunkID(doc.ID, idx, text),
			DocumentID:    doc.ID,
			Text:          text,
			Index:         idx,
			TokenCount:    estimateTokens(text),
			SectionHeader: currentHeader,
		})
	}
	return result
}

// chunkID derives a stable chunk identifier from document id, position,
// and content, consistent across re-ingestions of unchanged text.
func chunkID(docID string, index int, text string) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%d|%s", docID, index, text)))
	return hex.EncodeToString(sum[:8])
}
