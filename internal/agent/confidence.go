// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package agent

import "github.com/pdiddy/fedquery/pkg/types"

// evaluateConfidence maps the mean candidate relevance to a tier. An empty
// candidate set is insufficient by definition. Boundary ties resolve to
// the higher tier (>=, not >).
func evaluateConfidence(candidates []types.Candidate, th types.ConfidenceThresholds) types.Confidence {
	if len(candidates) == 0 {
		return types.ConfidenceInsufficient
	}

	var sum float64
	for _, c := range candidates {
		sum += c.Score
	}
	return tierForScore(sum/float64(len(candidates)), th)
}

// tierForScore resolves a mean relevance score against the configured
// thresholds.
func tierForScore(mean float64, th types.ConfidenceThresholds) types.Confidence {
	switch {
	case mean >= th.High:
		return types.ConfidenceHigh
	case mean >= th.Medium:
		return types.ConfidenceMedium
	case mean >= th.Low:
		return types.ConfidenceLow
	default:
		return types.ConfidenceInsufficient
	}
}
