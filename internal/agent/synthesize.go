// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package agent

import (
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/pdiddy/fedquery/pkg/types"
)

// excerptRunes is how much of a cited passage is quoted verbatim.
const excerptRunes = 200

// markerBlock matches inline source markers, including grouped forms:
// [Source 2], [Sources 2, 5], [Source 1; Source 3].
var markerBlock = regexp.MustCompile(`\[Sources?\s+[^\]]+\]`)

// markerDigits pulls the individual numbers out of a marker block.
var markerDigits = regexp.MustCompile(`(\d+)`)

// synthesize generates the draft answer over the current candidate set and
// drafts citations for the markers that actually occur in it. The model is
// instructed to stay inside the supplied set, but that is not trusted —
// validation enforces it.
func (w *Workflow) synthesize(ctx context.Context, ws *workflowState) error {
	prompt, err := renderTemplate(synthesizePromptTmpl, map[string]any{
		"Question": ws.question.Text,
		"Context":  sourceContext(ws.candidates),
	})
	if err != nil {
		return err
	}

	reply, err := w.backend.Generate(ctx, prompt)
	if err != nil {
		return fmt.Errorf("synthesizing answer: %w", err)
	}

	ws.draft = reply
	ws.citations = draftCitations(reply, ws.candidates)
	return nil
}

// extractMarkers returns the marker indices that occur in the answer text,
// deduplicated, in first-appearance order. Markers offered to the model
// but never used produce nothing.
func extractMarkers(answer string) []int {
	seen := make(map[int]bool)
	var indices []int
	for _, block := range markerBlock.FindAllString(answer, -1) {
		for _, digits := range markerDigits.FindAllString(block, -1) {
			idx, err := strconv.Atoi(digits)
			if err != nil {
				continue
			}
			if !seen[idx] {
				seen[idx] = true
				indices = append(indices, idx)
			}
		}
	}
	return indices
}

// draftCitations builds the citation draft for markers present in the
// answer. A marker with no corresponding candidate (out of range) drafts
// nothing; grounding validation handles the rest.
func draftCitations(answer string, candidates []types.Candidate) []types.Citation {
	var citations []types.Citation
	for _, idx := range extractMarkers(answer) {
		i := idx - 1 // [Source N] is 1-based; the candidate set is 0-based
		if i < 0 || i >= len(candidates) {
			continue
		}
		c := candidates[i]
		citations = append(citations, types.Citation{
			DocumentName:  c.DocumentName,
			DocumentDate:  c.DocumentDate,
			SectionHeader: c.SectionHeader,
			ChunkID:       c.ChunkID,
			Score:         c.Score,
			Excerpt:       prefixRunes(c.Text, excerptRunes),
			SourceIndex:   idx,
		})
	}
	return citations
}
