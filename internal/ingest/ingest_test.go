package ingest

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pdiddy/fedquery/pkg/types"
)

// --- Clean ---

func TestClean(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "strips share line",
			in:   "Opening paragraph.\nShare\nClosing paragraph.",
			want: "Opening paragraph.\n\nClosing paragraph.",
		},
		{
			name: "strips media contact block",
			in:   "Statement text.\nFor media inquiries, please email\nsomeone\n or call 202-452-2955.",
			want: "Statement text.",
		},
		{
			name: "collapses blank runs",
			in:   "One.\n\n\n\nTwo.",
			want: "One.\n\nTwo.",
		},
		{
			name: "collapses space runs",
			in:   "Rates  were \t held  steady.",
			want: "Rates were held steady.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clean(tt.in); got != tt.want {
				t.Errorf("Clean(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

// --- chunker ---

func TestDetectSectionHeader(t *testing.T) {
	tests := []struct {
		line string
		want string
		ok   bool
	}{
		{"## Committee Policy Action", "Committee Policy Action", true},
		{"Participants' Views on Current Conditions", "Participants' Views on Current Conditions", true},
		{"Staff Review of the Economic Situation", "Staff Review of the Economic Situation", true},
		{"The Committee decided to maintain the target range.", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := detectSectionHeader(tt.line)
		if ok != tt.ok || got != tt.want {
			t.Errorf("detectSectionHeader(%q) = (%q, %v), want (%q, %v)", tt.line, got, ok, tt.want, tt.ok)
		}
	}
}

func TestSplitRecursiveShortText(t *testing.T) {
	text := "A short statement."
	chunks := splitRecursive(text, 512, 50, nil)
	if len(chunks) != 1 || chunks[0] != text {
		t.Errorf("expected single untouched chunk, got %v", chunks)
	}
}

func TestSplitRecursiveRespectsBudget(t *testing.T) {
	var paras []string
	for i := 0; i < 20; i++ {
		paras = append(paras, fmt.Sprintf("Paragraph %d discussing monetary policy at some length to fill space.", i))
	}
	text := strings.Join(paras, "\n\n")

	chunks := splitRecursive(text, 40, 5, nil)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		// Overlap can push a chunk slightly past the budget; it must
		// never balloon to a multiple of it.
		if tok := estimateTokens(c); tok > 80 {
			t.Errorf("chunk %d has %d estimated tokens, budget 40", i, tok)
		}
	}
}

func TestOverlapTextSnapsToWordBoundary(t *testing.T) {
	text := "the committee judged that inflation remained elevated"
	got := overlapText(text, 4) // 16 chars of tail
	if got == "" {
		t.Fatal("expected non-empty overlap")
	}
	if strings.HasPrefix(got, " ") || !strings.HasSuffix(text, got) {
		t.Errorf("overlap %q is not a clean suffix of the text", got)
	}
	if len(got) > 16 {
		t.Errorf("overlap %q longer than requested window", got)
	}
}

func TestChunkDocumentCarriesSectionHeaders(t *testing.T) {
	doc := types.Document{
		ID:   "minutes-2024-06-12",
		Text: "## Staff Review of the Economic Situation\n\n" + strings.Repeat("The staff reviewed recent data on inflation and employment. ", 20) + "\n\n## Committee Policy Action\n\n" + strings.Repeat("The Committee decided to maintain the target range. ", 20),
	}
	chunks := ChunkDocument(doc, 100, 10)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	if chunks[0].SectionHeader != "Staff Review of the Economic Situation" {
		t.Errorf("first chunk section = %q", chunks[0].SectionHeader)
	}
	last := chunks[len(chunks)-1]
	if last.SectionHeader != "Committee Policy Action" {
		t.Errorf("last chunk section = %q", last.SectionHeader)
	}
	for i, c := range chunks {
		if c.Index != i {
			t.Errorf("chunk %d has index %d", i, c.Index)
		}
		if c.ID == "" || c.DocumentID != doc.ID {
			t.Errorf("chunk %d has bad identity: %+v", i, c)
		}
	}
}

func TestChunkIDStable(t *testing.T) {
	a := chunkID("doc", 3, "same text")
	b := chunkID("doc", 3, "same text")
	c := chunkID("doc", 4, "same text")
	if a != b {
		t.Error("chunk id not stable for identical input")
	}
	if a == c {
		t.Error("chunk id must differ across positions")
	}
}

// --- Run ---

type memStore struct {
	docs   map[string]types.Document
	chunks int
	fail   map[string]bool // doc IDs that fail AddDocument
}

func newMemStore() *memStore {
	return &memStore{docs: map[string]types.Document{}, fail: map[string]bool{}}
}

func (m *memStore) AddDocument(_ context.Context, doc types.Document, chunks []types.DocumentChunk) (int, error) {
	if m.fail[doc.ID] {
		return 0, fmt.Errorf("forced failure")
	}
	m.docs[doc.SourceURL] = doc
	m.chunks += len(chunks)
	return len(chunks), nil
}

func (m *memStore) HasDocument(_ context.Context, sourceURL string) (bool, error) {
	_, ok := m.docs[sourceURL]
	return ok, nil
}

func writeCorpusFile(t *testing.T, dir, year, name, text string) {
	t.Helper()
	yearDir := filepath.Join(dir, year)
	if err := os.MkdirAll(yearDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(yearDir, name), []byte(text), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestRunIngestsAndSkips(t *testing.T) {
	dir := t.TempDir()
	writeCorpusFile(t, dir, "2024", "statement_2024-01-31.txt", "The Committee decided to maintain the target range for the federal funds rate.")
	writeCorpusFile(t, dir, "2024", "minutes_2024-06-12.txt", "Participants' Views on Current Conditions\nParticipants discussed inflation.")
	writeCorpusFile(t, dir, "2024", "notes.txt", "not a corpus file")

	store := newMemStore()
	cfg := types.IngestConfig{TextsDir: dir}

	var out bytes.Buffer
	summary, err := Run(context.Background(), store, cfg, &out)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Ingested != 2 || summary.Skipped != 0 || summary.Failed != 0 {
		t.Errorf("summary = %+v", summary)
	}
	if summary.ChunksStored == 0 {
		t.Error("no chunks stored")
	}

	// Second run skips everything.
	summary, err = Run(context.Background(), store, cfg, &out)
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if summary.Ingested != 0 || summary.Skipped != 2 {
		t.Errorf("second summary = %+v", summary)
	}
}

func TestRunCountsFailures(t *testing.T) {
	dir := t.TempDir()
	writeCorpusFile(t, dir, "2024", "statement_2024-01-31.txt", "Statement text.")
	writeCorpusFile(t, dir, "2024", "statement_2024-03-20.txt", "Another statement.")

	store := newMemStore()
	store.fail["statement-2024-03-20"] = true

	var out bytes.Buffer
	summary, err := Run(context.Background(), store, types.IngestConfig{TextsDir: dir}, &out)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Ingested != 1 || summary.Failed != 1 {
		t.Errorf("summary = %+v", summary)
	}
	if !strings.Contains(out.String(), "failed") {
		t.Error("failure not reported in progress output")
	}
}
