package agent

import (
	"fmt"
	"reflect"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/pdiddy/fedquery/pkg/types"
)

func cand(id string, score float64) types.Candidate {
	return types.Candidate{
		ChunkID:      id,
		DocumentID:   "doc-" + id,
		DocumentName: "FOMC Statement " + id,
		DocumentDate: "2024-06-12",
		Text:         "Passage text for chunk " + id + " about the federal funds rate.",
		Score:        score,
	}
}

func chunkIDs(candidates []types.Candidate) []string {
	ids := make([]string, len(candidates))
	for i, c := range candidates {
		ids[i] = c.ChunkID
	}
	return ids
}

// --- mergeTwoPass ---

func TestMergeTwoPassFilteredPriority(t *testing.T) {
	// Unfiltered results score higher, but filtered ones must still rank
	// first in the merge.
	filtered := []types.Candidate{cand("f1", 0.40), cand("f2", 0.35)}
	unfiltered := []types.Candidate{cand("u1", 0.90), cand("u2", 0.85)}

	merged := mergeTwoPass(filtered, unfiltered, 10)
	want := []string{"f1", "f2", "u1", "u2"}
	if got := chunkIDs(merged); !reflect.DeepEqual(got, want) {
		t.Errorf("merge order = %v, want %v", got, want)
	}
}

func TestMergeTwoPassDedupKeepsFiltered(t *testing.T) {
	shared := cand("x", 0.50)
	filtered := []types.Candidate{shared, cand("f2", 0.45)}
	sharedAgain := cand("x", 0.80) // same chunk, different pass score
	unfiltered := []types.Candidate{sharedAgain, cand("u2", 0.70)}

	merged := mergeTwoPass(filtered, unfiltered, 10)
	if got := chunkIDs(merged); !reflect.DeepEqual(got, []string{"x", "f2", "u2"}) {
		t.Errorf("merge = %v", got)
	}
	// The filtered-pass instance is the one kept.
	if merged[0].Score != 0.50 {
		t.Errorf("kept score = %v, want the filtered-pass 0.50", merged[0].Score)
	}
}

func TestMergeTwoPassTruncates(t *testing.T) {
	var filtered, unfiltered []types.Candidate
	for i := 0; i < 6; i++ {
		filtered = append(filtered, cand(fmt.Sprintf("f%d", i), 0.5))
		unfiltered = append(unfiltered, cand(fmt.Sprintf("u%d", i), 0.9))
	}

	merged := mergeTwoPass(filtered, unfiltered, 4)
	if len(merged) != 4 {
		t.Fatalf("len = %d, want 4", len(merged))
	}
	// Truncation happens after priority ordering: all survivors are
	// filtered-pass candidates.
	for _, c := range merged {
		if c.ChunkID[0] != 'f' {
			t.Errorf("unfiltered candidate %s survived ahead of filtered ones", c.ChunkID)
		}
	}
}

func TestMergeTwoPassEmptyFiltered(t *testing.T) {
	unfiltered := []types.Candidate{cand("u1", 0.9)}
	merged := mergeTwoPass(nil, unfiltered, 10)
	if got := chunkIDs(merged); !reflect.DeepEqual(got, []string{"u1"}) {
		t.Errorf("merge = %v", got)
	}
}

// --- confidence ---

func TestTierForScoreBoundaries(t *testing.T) {
	th := types.DefaultThresholds()
	tests := []struct {
		mean float64
		want types.Confidence
	}{
		{0.70, types.ConfidenceHigh},
		{0.55, types.ConfidenceHigh}, // boundary resolves up
		{0.549999, types.ConfidenceMedium},
		{0.40, types.ConfidenceMedium},
		{0.399999, types.ConfidenceLow},
		{0.25, types.ConfidenceLow},
		{0.249999, types.ConfidenceInsufficient},
		{0.0, types.ConfidenceInsufficient},
	}
	for _, tt := range tests {
		if got := tierForScore(tt.mean, th); got != tt.want {
			t.Errorf("tierForScore(%v) = %v, want %v", tt.mean, got, tt.want)
		}
	}
}

func TestEvaluateConfidenceEmptySet(t *testing.T) {
	if got := evaluateConfidence(nil, types.DefaultThresholds()); got != types.ConfidenceInsufficient {
		t.Errorf("empty set = %v, want insufficient", got)
	}
}

func TestEvaluateConfidenceMean(t *testing.T) {
	candidates := []types.Candidate{cand("a", 0.60), cand("b", 0.50)} // mean 0.55
	if got := evaluateConfidence(candidates, types.DefaultThresholds()); got != types.ConfidenceHigh {
		t.Errorf("mean 0.55 = %v, want high", got)
	}
}

func TestEvaluateConfidenceCustomThresholds(t *testing.T) {
	th := types.ConfidenceThresholds{High: 0.9, Medium: 0.8, Low: 0.7}
	candidates := []types.Candidate{cand("a", 0.85)}
	if got := evaluateConfidence(candidates, th); got != types.ConfidenceMedium {
		t.Errorf("recalibrated thresholds: got %v, want medium", got)
	}
}

// --- marker extraction ---

func TestExtractMarkers(t *testing.T) {
	tests := []struct {
		name   string
		answer string
		want   []int
	}{
		{
			name:   "single markers in order",
			answer: "Rates held steady [Source 2]. Inflation eased [Source 5].",
			want:   []int{2, 5},
		},
		{
			name:   "grouped markers",
			answer: "Both meetings noted this [Sources 1, 3].",
			want:   []int{1, 3},
		},
		{
			name:   "duplicates keep first appearance",
			answer: "[Source 3] then [Source 1] then [Source 3] again.",
			want:   []int{3, 1},
		},
		{
			name:   "no markers",
			answer: "The sources do not contain enough information.",
			want:   nil,
		},
		{
			name:   "bracketed non-marker text ignored",
			answer: "See [Table: reserves] and [Source 4].",
			want:   []int{4},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractMarkers(tt.answer); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("extractMarkers = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDraftCitationsSkipsOutOfRange(t *testing.T) {
	candidates := []types.Candidate{cand("a", 0.6), cand("b", 0.6)}
	answer := "Claim [Source 2]. Hallucinated claim [Source 7]."

	citations := draftCitations(answer, candidates)
	if len(citations) != 1 {
		t.Fatalf("got %d citations, want 1", len(citations))
	}
	if citations[0].ChunkID != "b" || citations[0].SourceIndex != 2 {
		t.Errorf("citation = %+v", citations[0])
	}
}

func TestDraftCitationsExcerptIsSubstring(t *testing.T) {
	c := cand("a", 0.6)
	citations := draftCitations("Claim [Source 1].", []types.Candidate{c})
	if len(citations) != 1 {
		t.Fatal("expected one citation")
	}
	if err := citations[0].Validate(c); err != nil {
		t.Errorf("drafted excerpt fails its own grounding check: %v", err)
	}
}

// --- validation and renumbering ---

func testWorkflow() *Workflow {
	return NewWorkflow(nil, nil, types.AgentConfig{}, zap.NewNop())
}

func TestValidateDropsUnknownChunk(t *testing.T) {
	w := testWorkflow()
	ws := newWorkflowState(types.Question{Text: "q"})
	ws.candidates = []types.Candidate{cand("a", 0.6)}
	ws.citations = []types.Citation{
		{ChunkID: "a", Excerpt: "Passage text", SourceIndex: 1},
		{ChunkID: "ghost", Excerpt: "anything", SourceIndex: 2},
	}

	w.validate(ws)
	if len(ws.citations) != 1 || ws.citations[0].ChunkID != "a" {
		t.Fatalf("citations = %+v", ws.citations)
	}
	if ws.dropped != 1 {
		t.Errorf("dropped = %d, want 1", ws.dropped)
	}
	if ws.citations[0].Number != 1 {
		t.Errorf("renumbering: got %d, want 1", ws.citations[0].Number)
	}
}

func TestValidateDropsBadExcerpt(t *testing.T) {
	w := testWorkflow()
	ws := newWorkflowState(types.Question{Text: "q"})
	ws.candidates = []types.Candidate{cand("a", 0.6)}
	ws.citations = []types.Citation{
		{ChunkID: "a", Excerpt: "text that is not in the passage", SourceIndex: 1},
	}

	w.validate(ws)
	if len(ws.citations) != 0 {
		t.Errorf("citation with foreign excerpt survived: %+v", ws.citations)
	}
	if ws.dropped != 1 {
		t.Errorf("dropped = %d, want 1", ws.dropped)
	}
}

func TestValidateRenumbersSequentially(t *testing.T) {
	w := testWorkflow()
	ws := newWorkflowState(types.Question{Text: "q"})
	ws.candidates = []types.Candidate{cand("a", 0.6), cand("b", 0.6), cand("c", 0.6)}
	ws.citations = []types.Citation{
		{ChunkID: "c", Excerpt: "", SourceIndex: 3},
		{ChunkID: "ghost", SourceIndex: 7},
		{ChunkID: "a", Excerpt: "", SourceIndex: 1},
	}

	w.validate(ws)
	if len(ws.citations) != 2 {
		t.Fatalf("citations = %+v", ws.citations)
	}
	for i, c := range ws.citations {
		if c.Number != i+1 {
			t.Errorf("citation %d has number %d", i, c.Number)
		}
	}
}

func TestRemapMarkers(t *testing.T) {
	citations := []types.Citation{
		{Number: 1, SourceIndex: 3},
		{Number: 2, SourceIndex: 5},
	}
	tests := []struct {
		name   string
		answer string
		want   string
	}{
		{
			name:   "single markers",
			answer: "First [Source 3], then [Source 5].",
			want:   "First [1], then [2].",
		},
		{
			name:   "grouped marker",
			answer: "Both agree [Sources 3, 5].",
			want:   "Both agree [1, 2].",
		},
		{
			name:   "orphaned marker removed",
			answer: "Valid [Source 3] and invalid [Source 9].",
			want:   "Valid [1] and invalid .",
		},
		{
			name:   "partially valid group",
			answer: "Mixed [Sources 3, 9].",
			want:   "Mixed [1].",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := remapMarkers(tt.answer, citations); got != tt.want {
				t.Errorf("remapMarkers = %q, want %q", got, tt.want)
			}
		})
	}
}

// --- prompt helpers ---

func TestPrefixRunes(t *testing.T) {
	if got := prefixRunes("héllo wörld", 5); got != "héllo" {
		t.Errorf("prefixRunes = %q", got)
	}
	if got := prefixRunes("short", 200); got != "short" {
		t.Errorf("prefixRunes = %q", got)
	}
}

func TestSourceContextNumbersFromOne(t *testing.T) {
	ctx := sourceContext([]types.Candidate{cand("a", 0.5), cand("b", 0.5)})
	for _, want := range []string{"[Source 1]", "[Source 2]"} {
		if !strings.Contains(ctx, want) {
			t.Errorf("context missing %s:\n%s", want, ctx)
		}
	}
}
