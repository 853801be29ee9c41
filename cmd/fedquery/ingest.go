// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/fedquery/internal/ingest"
	"github.com/pdiddy/fedquery/pkg/types"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Chunk, embed, and index FOMC document texts",
	Long: `Ingest walks the texts directory (texts-dir/<year>/<type>_<date>.txt),
cleans and chunks each document, embeds the chunks, and stores them in
the SQLite vector index. Documents already present are skipped, so
re-running after adding new files only processes the additions.`,
	RunE: runIngest,
}

func runIngest(cmd *cobra.Command, args []string) error {
	store, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	textsDir, _ := cmd.Flags().GetString("texts-dir")
	chunkSize, _ := cmd.Flags().GetInt("chunk-size")
	chunkOverlap, _ := cmd.Flags().GetInt("chunk-overlap")

	summary, err := ingest.Run(context.Background(), store, types.IngestConfig{
		TextsDir:     textsDir,
		ChunkSize:    chunkSize,
		ChunkOverlap: chunkOverlap,
	}, os.Stdout)
	if err != nil {
		return err
	}

	fmt.Printf("\nIngested %d document(s) (%d chunks), skipped %d already indexed\n",
		summary.Ingested, summary.ChunksStored, summary.Skipped)

	if total, err := store.Count(context.Background()); err == nil {
		fmt.Printf("Corpus now holds %d document(s)\n", total)
	}

	if summary.Failed > 0 {
		return fmt.Errorf("%d document(s) failed ingestion", summary.Failed)
	}
	return nil
}

func init() {
	ingestCmd.Flags().String("texts-dir", "data/texts", "directory of document text files, grouped by year")
	ingestCmd.Flags().Int("chunk-size", 512, "chunk size in tokens")
	ingestCmd.Flags().Int("chunk-overlap", 50, "overlap between adjacent chunks in tokens")

	rootCmd.AddCommand(ingestCmd)
}
