// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/fedquery/internal/vectorstore"
)

var docCmd = &cobra.Command{
	Use:   "doc [document-id]",
	Short: "Show a stored corpus document",
	Long: `Doc prints a document from the corpus index by its id (type-date, e.g.
statement-2024-12-18). Useful for checking what a citation points at.`,
	Args: cobra.ExactArgs(1),
	RunE: runDoc,
}

func runDoc(cmd *cobra.Command, args []string) error {
	store, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	doc, err := store.GetDocument(context.Background(), args[0])
	if errors.Is(err, vectorstore.ErrNotFound) {
		return fmt.Errorf("document %q is not in the index", args[0])
	}
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	}

	fmt.Printf("%s (%s, %s)\n", doc.Title, doc.Type, doc.Date)
	fmt.Printf("source: %s\n\n", doc.SourceURL)
	fmt.Println(doc.Text)
	return nil
}

func init() {
	docCmd.Flags().Bool("json", false, "output the document as JSON")

	rootCmd.AddCommand(docCmd)
}
