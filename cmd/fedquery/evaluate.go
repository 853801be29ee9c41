// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/pdiddy/fedquery/internal/evaluation"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Measure retrieval quality against a golden question set",
	Long: `Evaluate runs every question from the golden QA file through the index
and computes precision, recall, MRR, NDCG, hit rate, and chunk text
recall at each cutoff. No model calls are made; this measures retrieval
only. The full report can be written to a YAML file with --output.`,
	RunE: runEvaluate,
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	goldenPath, _ := cmd.Flags().GetString("golden")
	outputPath, _ := cmd.Flags().GetString("output")
	label, _ := cmd.Flags().GetString("label")
	kValues, _ := cmd.Flags().GetIntSlice("k")

	entries, err := evaluation.LoadGolden(goldenPath)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return fmt.Errorf("golden file %s contains no questions", goldenPath)
	}

	store, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	report, err := evaluation.Run(context.Background(), store, entries, kValues, label)
	if err != nil {
		return err
	}

	printOverall(report)

	if outputPath != "" {
		if err := evaluation.WriteReport(outputPath, report); err != nil {
			return err
		}
		fmt.Printf("\nFull report written to %s\n", outputPath)
	}
	return nil
}

func printOverall(report *evaluation.Report) {
	overall := report.Overall
	fmt.Fprintf(os.Stdout, "Evaluated %d question(s) [%s]\n\n", overall.Count, report.ConfigLabel)
	fmt.Fprintf(os.Stdout, "MRR: %.3f\n", overall.MRR)

	ks := make([]int, 0, len(overall.PrecisionAtK))
	for k := range overall.PrecisionAtK {
		ks = append(ks, k)
	}
	sort.Ints(ks)

	fmt.Fprintf(os.Stdout, "%-4s  %-10s  %-10s  %-10s  %-10s  %s\n",
		"k", "Precision", "Recall", "NDCG", "HitRate", "TextRecall")
	for _, k := range ks {
		fmt.Fprintf(os.Stdout, "%-4d  %-10.3f  %-10.3f  %-10.3f  %-10.3f  %.3f\n",
			k, overall.PrecisionAtK[k], overall.RecallAtK[k],
			overall.NDCGAtK[k], overall.HitRateAtK[k], overall.ChunkTextRecall[k])
	}
}

func init() {
	evaluateCmd.Flags().String("golden", "data/eval/golden_qa.yaml", "golden QA file")
	evaluateCmd.Flags().String("output", "", "write the full report to this YAML file")
	evaluateCmd.Flags().String("label", "baseline", "configuration label recorded in the report")
	evaluateCmd.Flags().IntSlice("k", []int{3, 5, 10}, "cutoffs to compute metrics at")

	rootCmd.AddCommand(evaluateCmd)
}
