// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/fedquery/internal/llm"
	"github.com/pdiddy/fedquery/pkg/types"
)

// assessment is the JSON shape the classifier prompt asks for.
type assessment struct {
	NeedsRetrieval bool    `json:"needs_retrieval"`
	DateStart      *string `json:"date_start"`
	DateEnd        *string `json:"date_end"`
	TopKHint       *int    `json:"top_k_hint"`
}

// assess classifies the question and derives the retrieval scope. A model
// failure is fatal for the question: assessment never proceeds blind.
func (w *Workflow) assess(ctx context.Context, ws *workflowState) (bool, error) {
	prompt, err := renderTemplate(assessPromptTmpl, map[string]any{
		"Question":    ws.question.Text,
		"DefaultTopK": w.cfg.DefaultTopK,
		"MaxTopK":     w.cfg.MaxTopK,
	})
	if err != nil {
		return false, err
	}

	reply, err := w.backend.Generate(ctx, prompt)
	if err != nil {
		return false, fmt.Errorf("assessing question: %w", err)
	}

	scope := types.RetrievalScope{TopK: w.cfg.DefaultTopK}

	var parsed assessment
	if err := json.Unmarshal([]byte(llm.StripFences(reply)), &parsed); err != nil {
		// Unparseable reply: fall back to a yes/no reading and run an
		// unscoped retrieval rather than failing the question.
		lower := strings.ToLower(reply)
		needs := strings.Contains(lower, "yes") || strings.Contains(lower, "true")
		w.logger.Debug("assessment JSON parse failed, using yes/no fallback",
			zap.Bool("needs_retrieval", needs))
		ws.scope = scope
		return needs, nil
	}

	if parsed.DateStart != nil && parsed.DateEnd != nil && *parsed.DateStart != "" && *parsed.DateEnd != "" {
		scope.DateRange = &types.DateRange{Start: *parsed.DateStart, End: *parsed.DateEnd}
	}
	if parsed.TopKHint != nil && *parsed.TopKHint >= 1 && *parsed.TopKHint <= w.cfg.MaxTopK {
		scope.TopK = *parsed.TopKHint
	}

	ws.scope = scope
	w.logger.Debug("assessed question",
		zap.Bool("needs_retrieval", parsed.NeedsRetrieval),
		zap.Int("top_k", scope.TopK),
		zap.Bool("date_scoped", scope.DateRange != nil))
	return parsed.NeedsRetrieval, nil
}
