// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/fedquery/internal/agent"
	"github.com/pdiddy/fedquery/internal/llm"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question against the FOMC corpus",
	Long: `Ask runs one question through the retrieval and synthesis workflow and
prints a citation-grounded answer. When the corpus evidence is too weak
to support an answer, ask reports that instead of fabricating one.

Requires an ingested corpus (see 'fedquery ingest') and an Anthropic API
key in .secrets/anthropic-api-key or the config file.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := strings.Join(args, " ")

	logger, err := newLogger(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	store, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	cfg := aiConfig()
	if cfg.APIKey == "" {
		return fmt.Errorf("no API key: add .secrets/anthropic-api-key or set ai.api_key in the config file")
	}

	workflow := agent.NewWorkflow(store, llm.NewClaudeBackend(cfg), agentConfig(), logger)
	answer, err := workflow.Answer(context.Background(), question)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(answer)
	}

	fmt.Println(answer.Text)
	fmt.Fprintf(os.Stderr, "\nconfidence: %s", answer.Confidence)
	if answer.DroppedCitations > 0 {
		fmt.Fprintf(os.Stderr, " (%d citation(s) failed validation and were dropped)", answer.DroppedCitations)
	}
	fmt.Fprintln(os.Stderr)
	return nil
}

func init() {
	askCmd.Flags().Bool("json", false, "output the full answer as JSON")

	rootCmd.AddCommand(askCmd)
}
