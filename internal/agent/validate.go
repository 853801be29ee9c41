// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package agent

import (
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/fedquery/pkg/types"
)

// validate reconciles the drafted citations against the current candidate
// set. A citation survives only if its chunk id is a member of the set and
// its excerpt is a verbatim substring of that chunk's text; anything else
// is dropped, never repaired, and every drop is logged and counted.
// Survivors are renumbered 1..k in first-appearance order.
func (w *Workflow) validate(ws *workflowState) {
	byID := make(map[string]types.Candidate, len(ws.candidates))
	for _, c := range ws.candidates {
		byID[c.ChunkID] = c
	}

	var validated []types.Citation
	for _, cit := range ws.citations {
		candidate, ok := byID[cit.ChunkID]
		if !ok {
			w.logger.Warn("dropping citation: chunk not in candidate set",
				zap.String("chunk_id", cit.ChunkID))
			ws.dropped++
			continue
		}
		if err := cit.Validate(candidate); err != nil {
			w.logger.Warn("dropping citation: grounding check failed",
				zap.String("chunk_id", cit.ChunkID),
				zap.Error(err))
			ws.dropped++
			continue
		}
		cit.Number = len(validated) + 1
		validated = append(validated, cit)
	}

	ws.citations = validated
}

// remapMarkers rewrites the answer's inline marker blocks to the
// sequential numbering of the validated citations, so no inline number is
// ever without a matching footnote entry. Blocks whose numbers all failed
// validation are removed outright; an orphaned marker must not survive
// into the emitted answer.
func remapMarkers(answer string, citations []types.Citation) string {
	sourceMap := make(map[int]int, len(citations))
	for _, c := range citations {
		if c.SourceIndex > 0 {
			sourceMap[c.SourceIndex] = c.Number
		}
	}

	return markerBlock.ReplaceAllStringFunc(answer, func(block string) string {
		var remapped []string
		for _, digits := range markerDigits.FindAllString(block, -1) {
			idx, err := strconv.Atoi(digits)
			if err != nil {
				continue
			}
			if n, ok := sourceMap[idx]; ok {
				remapped = append(remapped, strconv.Itoa(n))
			}
		}
		if len(remapped) == 0 {
			return ""
		}
		return "[" + strings.Join(remapped, ", ") + "]"
	})
}
