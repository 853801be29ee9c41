// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/fedquery/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the corpus index directly",
	Long: `Search runs a raw similarity query against the vector index and prints
the ranked chunks with their relevance scores. Useful for inspecting
what the ask workflow would retrieve, without involving the model.

Use --from and --to together to restrict results to meetings in a date
range.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")
	topK, _ := cmd.Flags().GetInt("top-k")
	from, _ := cmd.Flags().GetString("from")
	to, _ := cmd.Flags().GetString("to")

	var dateRange *types.DateRange
	switch {
	case from != "" && to != "":
		dateRange = &types.DateRange{Start: from, End: to}
	case from != "" || to != "":
		return fmt.Errorf("date filtering requires both --from and --to")
	}

	store, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	candidates, err := store.Search(context.Background(), query, topK, dateRange)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatSearchOutput(candidates, jsonOutput)
}

func formatSearchOutput(candidates []types.Candidate, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(candidates)
	}

	if len(candidates) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-4s  %-6s  %-30s  %-12s  %-25s  %s\n",
		"Rank", "Score", "Document", "Date", "Section", "Text")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 130))

	for i, c := range candidates {
		doc := c.DocumentName
		if len(doc) > 30 {
			doc = doc[:27] + "..."
		}
		section := c.SectionHeader
		if len(section) > 25 {
			section = section[:22] + "..."
		}
		text := strings.Join(strings.Fields(c.Text), " ")
		if len(text) > 45 {
			text = text[:42] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-4d  %.4f  %-30s  %-12s  %-25s  %s\n",
			i+1, c.Score, doc, c.DocumentDate, section, text)
	}

	fmt.Fprintf(os.Stdout, "\n%d results\n", len(candidates))
	return nil
}

func init() {
	searchCmd.Flags().Int("top-k", 10, "maximum number of results to return")
	searchCmd.Flags().String("from", "", "meeting date range start (YYYY-MM-DD)")
	searchCmd.Flags().String("to", "", "meeting date range end (YYYY-MM-DD)")
	searchCmd.Flags().Bool("json", false, "output results as JSON")

	rootCmd.AddCommand(searchCmd)
}
