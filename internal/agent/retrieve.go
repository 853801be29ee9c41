// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package agent

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/pdiddy/fedquery/internal/vectorstore"
	"github.com/pdiddy/fedquery/pkg/types"
)

// Gateway is the retrieval capability the workflow consumes. Relevance
// scores must be in [0,1] and comparable across calls; zero results is not
// an error. Implementations must be safe for concurrent use.
type Gateway interface {
	Search(ctx context.Context, query string, topK int, dateRange *types.DateRange) ([]types.Candidate, error)
}

// retrieve runs one or two retrieval passes and replaces the candidate set.
//
// With a date-range hint it searches twice — once filtered to the range,
// once over the whole corpus — and merges with strict filtered-first
// priority. Recurring FOMC template language makes raw similarity favor
// generic near-duplicates from other periods; the filtered pass guarantees
// period-relevant content outranks them, and the unfiltered pass only
// backfills remaining slots.
func (w *Workflow) retrieve(ctx context.Context, ws *workflowState) error {
	topK := ws.scope.TopK

	if ws.scope.DateRange != nil {
		filtered, err := w.search(ctx, ws.currentQuery, topK, ws.scope.DateRange)
		if err != nil {
			return err
		}
		unfiltered, err := w.search(ctx, ws.currentQuery, topK, nil)
		if err != nil {
			return err
		}
		ws.candidates = mergeTwoPass(filtered, unfiltered, topK)
	} else {
		candidates, err := w.search(ctx, ws.currentQuery, topK, nil)
		if err != nil {
			return err
		}
		ws.candidates = candidates
	}

	w.logger.Debug("retrieved candidates",
		zap.Int("count", len(ws.candidates)),
		zap.Int("top_k", topK),
		zap.Int("attempt", ws.attempts))
	return nil
}

// search wraps the gateway call. A corpus that has never been indexed is a
// normal "no evidence" outcome, not a fault: it maps to zero candidates
// and lets confidence evaluation reach the insufficient tier. Every other
// gateway failure is fatal for the question.
func (w *Workflow) search(ctx context.Context, query string, topK int, dateRange *types.DateRange) ([]types.Candidate, error) {
	candidates, err := w.gateway.Search(ctx, query, topK, dateRange)
	if errors.Is(err, vectorstore.ErrCorpusUnavailable) {
		w.logger.Warn("corpus has no indexed documents")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("searching corpus: %w", err)
	}
	return candidates, nil
}

// mergeTwoPass merges the filtered and unfiltered retrieval passes.
// Filtered candidates keep strict priority regardless of raw score; order
// within each pass is preserved (score-descending as returned by the
// gateway); duplicates keep their first, higher-priority occurrence; the
// result is truncated to topK.
func mergeTwoPass(filtered, unfiltered []types.Candidate, topK int) []types.Candidate {
	seen := make(map[string]bool, len(filtered))
	merged := make([]types.Candidate, 0, len(filtered)+len(unfiltered))

	for _, c := range filtered {
		if !seen[c.ChunkID] {
			seen[c.ChunkID] = true
			merged = append(merged, c)
		}
	}
	for _, c := range unfiltered {
		if !seen[c.ChunkID] {
			seen[c.ChunkID] = true
			merged = append(merged, c)
		}
	}

	if len(merged) > topK {
		merged = merged[:topK]
	}
	return merged
}
