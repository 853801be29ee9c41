// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package evaluation measures retrieval quality against a golden
// question set. The metrics are pure computation over search outputs;
// no model calls are involved.
package evaluation

import (
	"math"
	"strings"
)

// PrecisionAtK is the fraction of the top-k retrieved documents that are
// relevant. Returns 0 when k <= 0 or nothing was retrieved.
func PrecisionAtK(retrieved []string, relevant map[string]bool, k int) float64 {
	if k <= 0 || len(retrieved) == 0 {
		return 0
	}
	hits := 0
	for _, id := range topK(retrieved, k) {
		if relevant[id] {
			hits++
		}
	}
	return float64(hits) / float64(k)
}

// RecallAtK is the fraction of relevant documents found in the top-k
// results. An empty relevant set scores 1: an out-of-scope question that
// retrieves nothing relevant is vacuously correct.
func RecallAtK(retrieved []string, relevant map[string]bool, k int) float64 {
	if len(relevant) == 0 {
		return 1
	}
	if k <= 0 || len(retrieved) == 0 {
		return 0
	}
	seen := make(map[string]bool, k)
	for _, id := range topK(retrieved, k) {
		if relevant[id] {
			seen[id] = true
		}
	}
	return float64(len(seen)) / float64(len(relevant))
}

// MRR is the reciprocal rank of the first relevant result, or 0 when no
// relevant document is retrieved at all.
func MRR(retrieved []string, relevant map[string]bool) float64 {
	for i, id := range retrieved {
		if relevant[id] {
			return 1 / float64(i+1)
		}
	}
	return 0
}

// NDCGAtK is normalized discounted cumulative gain at k with binary
// relevance. An empty relevant set scores 1; k <= 0 scores 0.
func NDCGAtK(retrieved []string, relevant map[string]bool, k int) float64 {
	if len(relevant) == 0 {
		return 1
	}
	if k <= 0 {
		return 0
	}

	dcg := 0.0
	for i, id := range topK(retrieved, k) {
		if relevant[id] {
			dcg += 1 / math.Log2(float64(i)+2)
		}
	}

	ideal := len(relevant)
	if ideal > k {
		ideal = k
	}
	idcg := 0.0
	for i := 0; i < ideal; i++ {
		idcg += 1 / math.Log2(float64(i)+2)
	}
	if idcg == 0 {
		return 0
	}
	return dcg / idcg
}

// HitRateAtK is 1 when any relevant document appears in the top-k results.
// An empty relevant set scores 1.
func HitRateAtK(retrieved []string, relevant map[string]bool, k int) float64 {
	if len(relevant) == 0 {
		return 1
	}
	if k <= 0 || len(retrieved) == 0 {
		return 0
	}
	for _, id := range topK(retrieved, k) {
		if relevant[id] {
			return 1
		}
	}
	return 0
}

// ChunkTextRecall is the fraction of expected text fragments that occur,
// case-insensitively, somewhere in the top-k chunk texts. No expected
// fragments scores 1.
func ChunkTextRecall(texts []string, fragments []string, k int) float64 {
	if len(fragments) == 0 {
		return 1
	}
	if k <= 0 || len(texts) == 0 {
		return 0
	}

	var b strings.Builder
	for i, t := range topK(texts, k) {
		if i > 0 {
			b.WriteString(" ")
		}
		b.WriteString(strings.ToLower(t))
	}
	combined := b.String()

	hits := 0
	for _, frag := range fragments {
		if strings.Contains(combined, strings.ToLower(frag)) {
			hits++
		}
	}
	return float64(hits) / float64(len(fragments))
}

func topK(items []string, k int) []string {
	if len(items) > k {
		return items[:k]
	}
	return items
}
