// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package agent

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// reformulate rewrites the question given what the weak retrieval brought
// back, and bumps the attempt counter. The retrieval scope is not
// re-derived: the date hint stays frozen from the first assessment.
func (w *Workflow) reformulate(ctx context.Context, ws *workflowState) error {
	prompt, err := renderTemplate(reformulatePromptTmpl, map[string]any{
		"Question": ws.question.Text,
		"Passages": passageSummary(ws.candidates, 3),
	})
	if err != nil {
		return err
	}

	reply, err := w.backend.Generate(ctx, prompt)
	if err != nil {
		return fmt.Errorf("reformulating question: %w", err)
	}

	rewritten := strings.TrimSpace(reply)
	if rewritten == "" {
		// A blank rewrite would retry the identical query; keep the
		// current one and just consume the attempt.
		rewritten = ws.currentQuery
	}

	ws.currentQuery = rewritten
	ws.attempts++
	w.logger.Debug("reformulated question",
		zap.Int("attempt", ws.attempts),
		zap.String("query", rewritten))
	return nil
}
