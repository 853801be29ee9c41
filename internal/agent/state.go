// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package agent implements the question-answering workflow: a finite state
// machine that assesses a question, retrieves evidence, gates on
// confidence, reformulates within a bounded budget, and emits a
// citation-validated answer. The language model decides which edge is
// taken; the set of states and edges is closed.
package agent

import "github.com/pdiddy/fedquery/pkg/types"

// state names one node of the workflow state machine.
type state string

const (
	stateAssess      state = "assess"
	stateRetrieve    state = "retrieve"
	stateEvaluate    state = "evaluate"
	stateReformulate state = "reformulate"
	stateSynthesize  state = "synthesize"
	stateValidate    state = "validate"
	stateRespond     state = "respond"
)

// workflowState is the single mutable record threaded through one
// question's state machine. It is owned by exactly one Workflow.Answer
// call and discarded on completion; nothing in it is shared across
// questions.
type workflowState struct {
	// question is the immutable original question.
	question types.Question

	// currentQuery is the text retrieval runs against: the original
	// question, or the latest reformulation.
	currentQuery string

	// scope holds the assessor's hints. The count hint is fixed at
	// assessment time; the date range is frozen across reformulations.
	scope types.RetrievalScope

	// candidates is the current candidate set, replaced (not appended)
	// on every retrieval pass.
	candidates []types.Candidate

	// confidence is the tier of the current candidate set.
	confidence types.Confidence

	// attempts counts reformulations so far.
	attempts int

	// draft is the synthesized answer text before marker remapping.
	draft string

	// citations is the citation list: drafted at synthesis, filtered
	// and renumbered at validation.
	citations []types.Citation

	// dropped counts citations removed during grounding validation.
	dropped int
}

func newWorkflowState(q types.Question) *workflowState {
	return &workflowState{
		question:     q,
		currentQuery: q.Text,
		confidence:   types.ConfidenceInsufficient,
	}
}
