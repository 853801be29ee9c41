// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package vectorstore

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/pdiddy/fedquery/pkg/types"
)

// Search embeds the query text and returns the topK most similar chunks,
// ranked by cosine similarity (clamped to [0,1]), optionally restricted to
// documents whose date falls inside the inclusive dateRange. It returns
// ErrCorpusUnavailable if nothing has ever been indexed; a corpus with no
// match simply yields zero candidates.
//
// The scan is brute force over the candidate rows. Corpus sizes here are a
// few thousand chunks; index selection (HNSW vs IVF) belongs to the store,
// not its callers, and can change behind this contract.
func (s *Store) Search(ctx context.Context, query string, topK int, dateRange *types.DateRange) ([]types.Candidate, error) {
	if topK <= 0 {
		return nil, fmt.Errorf("topK must be positive, got %d", topK)
	}

	var docCount int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM documents`).Scan(&docCount); err != nil {
		return nil, fmt.Errorf("checking corpus: %w", err)
	}
	if docCount == 0 {
		return nil, ErrCorpusUnavailable
	}

	queryVec, err := s.embedder.EmbedOne(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	var (
		qb   strings.Builder
		args []any
	)
	qb.WriteString(
		`SELECT c.id, c.document_id, d.title, d.date, c.section_header, c.text, c.embedding
		FROM chunks c
		JOIN documents d ON c.document_id = d.id`)
	if dateRange != nil {
		qb.WriteString(` WHERE d.date >= ? AND d.date <= ?`)
		args = append(args, dateRange.Start, dateRange.End)
	}

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var candidates []types.Candidate
	for rows.Next() {
		var (
			c       types.Candidate
			section sql.NullString
			blob    []byte
		)
		if err := rows.Scan(&c.ChunkID, &c.DocumentID, &c.DocumentName, &c.DocumentDate, &section, &c.Text, &blob); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		c.SectionHeader = section.String
		c.Score = clampScore(cosineSimilarity(queryVec, decodeVector(blob)))
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	if len(candidates) > topK {
		candidates = candidates[:topK]
	}
	return candidates, nil
}

// cosineSimilarity computes the cosine of the angle between two vectors.
// Mismatched or zero-magnitude vectors score 0.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// clampScore restricts a similarity to the [0,1] relevance-score contract.
func clampScore(s float64) float64 {
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}
