// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package agent

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/fedquery/internal/llm"
	"github.com/pdiddy/fedquery/pkg/types"
)

// Workflow runs the question-answering state machine. A Workflow holds no
// per-question state and may serve concurrent Answer calls; each call owns
// its own workflowState.
type Workflow struct {
	gateway Gateway
	backend llm.Backend
	cfg     types.AgentConfig
	logger  *zap.Logger
}

// NewWorkflow wires a Workflow. A nil logger disables logging. Zero-valued
// config fields take their defaults (thresholds 0.55/0.40/0.25, two
// reformulations, top-k 10 bounded at 50).
func NewWorkflow(gateway Gateway, backend llm.Backend, cfg types.AgentConfig, logger *zap.Logger) *Workflow {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Thresholds == (types.ConfidenceThresholds{}) {
		cfg.Thresholds = types.DefaultThresholds()
	}
	if cfg.MaxReformulations <= 0 {
		cfg.MaxReformulations = 2
	}
	if cfg.DefaultTopK <= 0 {
		cfg.DefaultTopK = 10
	}
	if cfg.MaxTopK <= 0 {
		cfg.MaxTopK = 50
	}
	return &Workflow{gateway: gateway, backend: backend, cfg: cfg, logger: logger}
}

// Answer runs one question through the state machine to a terminal
// response. The machine terminates in at most 1 + MaxReformulations
// retrieval passes and at most one synthesis; model or gateway failures
// abort the question with a typed error and never produce a partial
// answer. Cancellation is honored at every state boundary; abandoning a
// question mutates nothing outside the discarded workflowState.
func (w *Workflow) Answer(ctx context.Context, questionText string) (types.Answer, error) {
	question, err := types.NewQuestion(questionText)
	if err != nil {
		return types.Answer{}, err
	}

	ws := newWorkflowState(question)
	current := stateAssess
	w.logger.Debug("answering question", zap.String("question_id", question.ID))

	for current != stateRespond {
		if err := ctx.Err(); err != nil {
			return types.Answer{}, err
		}

		next, err := w.step(ctx, current, ws)
		if err != nil {
			return types.Answer{}, err
		}
		w.logger.Debug("state transition",
			zap.String("from", string(current)),
			zap.String("to", string(next)))
		current = next
	}

	return w.respond(ws), nil
}

// step executes one state and returns the next, per the transition table:
//
//	assess      → retrieve | respond        (needs_retrieval)
//	retrieve    → evaluate
//	evaluate    → synthesize                (confidence medium/high)
//	            → reformulate               (confidence low, attempts left)
//	            → respond                   (insufficient, or budget spent)
//	reformulate → retrieve
//	synthesize  → validate
//	validate    → respond
func (w *Workflow) step(ctx context.Context, current state, ws *workflowState) (state, error) {
	switch current {
	case stateAssess:
		needsRetrieval, err := w.assess(ctx, ws)
		if err != nil {
			return current, err
		}
		if !needsRetrieval {
			return stateRespond, nil
		}
		return stateRetrieve, nil

	case stateRetrieve:
		if err := w.retrieve(ctx, ws); err != nil {
			return current, err
		}
		return stateEvaluate, nil

	case stateEvaluate:
		ws.confidence = evaluateConfidence(ws.candidates, w.cfg.Thresholds)
		w.logger.Debug("evaluated confidence",
			zap.String("tier", string(ws.confidence)),
			zap.Int("candidates", len(ws.candidates)))
		switch {
		case ws.confidence == types.ConfidenceHigh || ws.confidence == types.ConfidenceMedium:
			return stateSynthesize, nil
		case ws.confidence == types.ConfidenceLow && ws.attempts < w.cfg.MaxReformulations:
			return stateReformulate, nil
		default:
			return stateRespond, nil
		}

	case stateReformulate:
		if err := w.reformulate(ctx, ws); err != nil {
			return current, err
		}
		return stateRetrieve, nil

	case stateSynthesize:
		if err := w.synthesize(ctx, ws); err != nil {
			return current, err
		}
		return stateValidate, nil

	case stateValidate:
		w.validate(ws)
		return stateRespond, nil

	default:
		return current, fmt.Errorf("unknown workflow state %q", current)
	}
}

// respond assembles the terminal Answer: a grounded answer with remapped
// markers and a sources footer, or an uncertainty response. The
// uncertainty response is a successful outcome meaning "no evidence
// found", distinct from the errors Answer returns.
func (w *Workflow) respond(ws *workflowState) types.Answer {
	if ws.confidence != types.ConfidenceHigh && ws.confidence != types.ConfidenceMedium || ws.draft == "" {
		return types.Answer{
			Text:       w.uncertaintyText(ws),
			Confidence: ws.confidence,
			Grounded:   false,
		}
	}

	text := remapMarkers(ws.draft, ws.citations)
	if footer := sourcesFooter(ws.citations); footer != "" {
		text = text + "\n\nSources:\n" + footer
	}

	return types.Answer{
		Text:             text,
		Confidence:       ws.confidence,
		Citations:        ws.citations,
		DroppedCitations: ws.dropped,
		Grounded:         true,
	}
}

// uncertaintyText reports what was searched and the weak best matches, if
// any, without fabricating a claim.
func (w *Workflow) uncertaintyText(ws *workflowState) string {
	var b strings.Builder
	b.WriteString("I was unable to find sufficient information in the FOMC document corpus ")
	b.WriteString("to answer this question confidently. The available documents may not cover this topic.\n\n")

	queries := []string{ws.question.Text}
	if ws.currentQuery != ws.question.Text {
		queries = append(queries, ws.currentQuery)
	}
	b.WriteString("Searched: " + strings.Join(queries, ", "))

	if len(ws.candidates) > 0 {
		b.WriteString("\nBest matches (low relevance):\n")
		for i, c := range ws.candidates {
			if i >= 3 {
				break
			}
			fmt.Fprintf(&b, "  [%d] %s (score: %.2f)\n", i+1, c.DocumentName, c.Score)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// sourcesFooter renders the numbered citation list.
func sourcesFooter(citations []types.Citation) string {
	var lines []string
	for _, c := range citations {
		chunkRef := c.ChunkID
		if len(chunkRef) > 8 {
			chunkRef = chunkRef[:8]
		}
		lines = append(lines, fmt.Sprintf("  [%d] %s, %s, §%s (chunk %s)",
			c.Number, c.DocumentName, c.DocumentDate, c.SectionHeader, chunkRef))
	}
	return strings.Join(lines, "\n")
}
