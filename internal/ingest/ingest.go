// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ingest

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pdiddy/fedquery/pkg/types"
)

// textFilePattern matches corpus text files: <type>_<date>.txt, e.g.
// statement_2024-12-18.txt, laid out under per-year directories.
var textFilePattern = regexp.MustCompile(`^(statement|minutes)_(\d{4}-\d{2}-\d{2})\.txt$`)

// Storer is the slice of the vector store ingestion needs.
type Storer interface {
	AddDocument(ctx context.Context, doc types.Document, chunks []types.DocumentChunk) (int, error)
	HasDocument(ctx context.Context, sourceURL string) (bool, error)
}

// Summary holds counts from an ingestion run.
type Summary struct {
	Ingested     int
	Skipped      int
	ChunksStored int
	Failed       int
}

// Total returns the number of documents processed.
func (s Summary) Total() int {
	return s.Ingested + s.Skipped + s.Failed
}

// Run walks cfg.TextsDir for document text files, cleans and chunks each
// new document, and stores it with embeddings. Documents already in the
// store (by source path) are skipped. Per-document progress goes to w; a
// failed document is counted and reported, not fatal for the run.
func Run(ctx context.Context, store Storer, cfg types.IngestConfig, w io.Writer) (Summary, error) {
	chunkSize := cfg.ChunkSize
	if chunkSize <= 0 {
		chunkSize = 512
	}
	chunkOverlap := cfg.ChunkOverlap
	if chunkOverlap < 0 {
		chunkOverlap = 50
	}

	var paths []string
	err := filepath.WalkDir(cfg.TextsDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && textFilePattern.MatchString(d.Name()) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return Summary{}, fmt.Errorf("walking texts directory %s: %w", cfg.TextsDir, err)
	}

	var summary Summary
	for _, path := range paths {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		doc, err := loadDocument(path)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", filepath.Base(path), err)
			summary.Failed++
			continue
		}

		exists, err := store.HasDocument(ctx, doc.SourceURL)
		if err != nil {
			return summary, fmt.Errorf("checking %s: %w", doc.ID, err)
		}
		if exists {
			fmt.Fprintf(w, "skipped %s\n", doc.ID)
			summary.Skipped++
			continue
		}

		chunks := ChunkDocument(doc, chunkSize, chunkOverlap)
		if len(chunks) == 0 {
			fmt.Fprintf(w, "failed  %s: no chunks produced\n", doc.ID)
			summary.Failed++
			continue
		}

		n, err := store.AddDocument(ctx, doc, chunks)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", doc.ID, err)
			summary.Failed++
			continue
		}

		fmt.Fprintf(w, "ingested %s (%d chunks)\n", doc.ID, n)
		summary.Ingested++
		summary.ChunksStored += n
	}

	return summary, nil
}

// loadDocument reads and cleans one corpus text file, deriving identity
// and metadata from the file name.
func loadDocument(path string) (types.Document, error) {
	m := textFilePattern.FindStringSubmatch(filepath.Base(path))
	if m == nil {
		return types.Document{}, fmt.Errorf("unrecognized file name %s", filepath.Base(path))
	}
	docType := types.DocumentType(m[1])
	date := m[2]

	data, err := os.ReadFile(path)
	if err != nil {
		return types.Document{}, fmt.Errorf("reading %s: %w", path, err)
	}

	text := Clean(string(data))
	if text == "" {
		return types.Document{}, fmt.Errorf("empty document %s", path)
	}

	title := fmt.Sprintf("FOMC %s, %s", titleCase(string(docType)), date)
	doc := types.Document{
		ID:        fmt.Sprintf("%s-%s", docType, date),
		Title:     title,
		Date:      date,
		Type:      docType,
		SourceURL: "file://" + path,
		Text:      text,
	}
	if err := doc.Validate(); err != nil {
		return types.Document{}, err
	}
	return doc, nil
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
