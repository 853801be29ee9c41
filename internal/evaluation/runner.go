// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package evaluation

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/fedquery/pkg/types"
)

// Searcher runs one retrieval pass for the evaluation. The real corpus
// gateway satisfies this with an unfiltered search.
type Searcher interface {
	Search(ctx context.Context, query string, topK int, dateRange *types.DateRange) ([]types.Candidate, error)
}

// GoldenEntry is one question in the golden QA file, with the documents
// and text fragments a good retrieval run should surface. Out-of-scope
// questions list neither and score vacuously.
type GoldenEntry struct {
	ID                string   `yaml:"id"`
	Question          string   `yaml:"question"`
	Category          string   `yaml:"category"`
	DateStart         string   `yaml:"date_start,omitempty"`
	DateEnd           string   `yaml:"date_end,omitempty"`
	RelevantDocuments []DocRef `yaml:"relevant_documents,omitempty"`
	ExpectedFragments []string `yaml:"relevant_text_fragments,omitempty"`
}

// dateRange returns the entry's search filter, or nil when the entry is
// not date-scoped. Both ends must be present to form a range.
func (e GoldenEntry) dateRange() *types.DateRange {
	if e.DateStart == "" || e.DateEnd == "" {
		return nil
	}
	return &types.DateRange{Start: e.DateStart, End: e.DateEnd}
}

// DocRef names a corpus document by type and meeting date, matching how
// ingestion derives document ids (type-date).
type DocRef struct {
	Type string `yaml:"type"`
	Date string `yaml:"date"`
}

// DocumentID returns the corpus document id this reference resolves to.
func (r DocRef) DocumentID() string {
	return r.Type + "-" + r.Date
}

// QuestionResult holds every metric for one golden question, keyed by k.
type QuestionResult struct {
	ID              string          `yaml:"id"`
	Question        string          `yaml:"question"`
	Category        string          `yaml:"category"`
	PrecisionAtK    map[int]float64 `yaml:"precision_at_k"`
	RecallAtK       map[int]float64 `yaml:"recall_at_k"`
	MRR             float64         `yaml:"mrr"`
	NDCGAtK         map[int]float64 `yaml:"ndcg_at_k"`
	HitRateAtK      map[int]float64 `yaml:"hit_rate_at_k"`
	ChunkTextRecall map[int]float64 `yaml:"chunk_text_recall_at_k"`
}

// CategoryMetrics averages the per-question metrics within one category.
type CategoryMetrics struct {
	Category        string          `yaml:"category"`
	Count           int             `yaml:"count"`
	PrecisionAtK    map[int]float64 `yaml:"avg_precision_at_k"`
	RecallAtK       map[int]float64 `yaml:"avg_recall_at_k"`
	MRR             float64         `yaml:"avg_mrr"`
	NDCGAtK         map[int]float64 `yaml:"avg_ndcg_at_k"`
	HitRateAtK      map[int]float64 `yaml:"avg_hit_rate_at_k"`
	ChunkTextRecall map[int]float64 `yaml:"avg_chunk_text_recall_at_k"`
}

// Report is the full evaluation output, serializable to YAML.
type Report struct {
	ConfigLabel string            `yaml:"config_label"`
	Timestamp   time.Time         `yaml:"timestamp"`
	Overall     CategoryMetrics   `yaml:"overall"`
	PerCategory []CategoryMetrics `yaml:"per_category"`
	PerQuestion []QuestionResult  `yaml:"per_question"`
}

// DefaultKValues are the cutoffs metrics are computed at.
var DefaultKValues = []int{3, 5, 10}

// LoadGolden reads the golden QA file.
func LoadGolden(path string) ([]GoldenEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading golden file: %w", err)
	}
	var entries []GoldenEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing golden file: %w", err)
	}
	return entries, nil
}

// Run evaluates retrieval quality over the golden set. Each question is
// searched once at the largest k; metrics at the smaller cutoffs are
// computed from that single result list. A search failure aborts the run.
func Run(ctx context.Context, searcher Searcher, entries []GoldenEntry, kValues []int, configLabel string) (*Report, error) {
	if len(kValues) == 0 {
		kValues = DefaultKValues
	}
	maxK := kValues[0]
	for _, k := range kValues {
		if k > maxK {
			maxK = k
		}
	}

	var results []QuestionResult
	for _, entry := range entries {
		candidates, err := searcher.Search(ctx, entry.Question, maxK, entry.dateRange())
		if err != nil {
			return nil, fmt.Errorf("searching for %s: %w", entry.ID, err)
		}

		retrievedIDs := make([]string, len(candidates))
		retrievedTexts := make([]string, len(candidates))
		for i, c := range candidates {
			retrievedIDs[i] = c.DocumentID
			retrievedTexts[i] = c.Text
		}

		relevant := make(map[string]bool, len(entry.RelevantDocuments))
		for _, ref := range entry.RelevantDocuments {
			relevant[ref.DocumentID()] = true
		}

		result := QuestionResult{
			ID:              entry.ID,
			Question:        entry.Question,
			Category:        entry.Category,
			PrecisionAtK:    make(map[int]float64, len(kValues)),
			RecallAtK:       make(map[int]float64, len(kValues)),
			MRR:             MRR(retrievedIDs, relevant),
			NDCGAtK:         make(map[int]float64, len(kValues)),
			HitRateAtK:      make(map[int]float64, len(kValues)),
			ChunkTextRecall: make(map[int]float64, len(kValues)),
		}
		for _, k := range kValues {
			result.PrecisionAtK[k] = PrecisionAtK(retrievedIDs, relevant, k)
			result.RecallAtK[k] = RecallAtK(retrievedIDs, relevant, k)
			result.NDCGAtK[k] = NDCGAtK(retrievedIDs, relevant, k)
			result.HitRateAtK[k] = HitRateAtK(retrievedIDs, relevant, k)
			result.ChunkTextRecall[k] = ChunkTextRecall(retrievedTexts, entry.ExpectedFragments, k)
		}
		results = append(results, result)
	}

	return &Report{
		ConfigLabel: configLabel,
		Timestamp:   time.Now(),
		Overall:     aggregate("overall", results, kValues),
		PerCategory: aggregateByCategory(results, kValues),
		PerQuestion: results,
	}, nil
}

// WriteReport saves a report to a YAML file.
func WriteReport(path string, report *Report) error {
	data, err := yaml.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func aggregateByCategory(results []QuestionResult, kValues []int) []CategoryMetrics {
	byCat := make(map[string][]QuestionResult)
	for _, r := range results {
		byCat[r.Category] = append(byCat[r.Category], r)
	}

	categories := make([]string, 0, len(byCat))
	for cat := range byCat {
		categories = append(categories, cat)
	}
	sort.Strings(categories)

	out := make([]CategoryMetrics, 0, len(categories))
	for _, cat := range categories {
		out = append(out, aggregate(cat, byCat[cat], kValues))
	}
	return out
}

func aggregate(label string, results []QuestionResult, kValues []int) CategoryMetrics {
	agg := CategoryMetrics{
		Category:        label,
		Count:           len(results),
		PrecisionAtK:    make(map[int]float64, len(kValues)),
		RecallAtK:       make(map[int]float64, len(kValues)),
		NDCGAtK:         make(map[int]float64, len(kValues)),
		HitRateAtK:      make(map[int]float64, len(kValues)),
		ChunkTextRecall: make(map[int]float64, len(kValues)),
	}
	if len(results) == 0 {
		return agg
	}

	n := float64(len(results))
	for _, r := range results {
		agg.MRR += r.MRR / n
		for _, k := range kValues {
			agg.PrecisionAtK[k] += r.PrecisionAtK[k] / n
			agg.RecallAtK[k] += r.RecallAtK[k] / n
			agg.NDCGAtK[k] += r.NDCGAtK[k] / n
			agg.HitRateAtK[k] += r.HitRateAtK[k] / n
			agg.ChunkTextRecall[k] += r.ChunkTextRecall[k] / n
		}
	}
	return agg
}
