// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the fedquery CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/fedquery/internal/embedding"
	"github.com/pdiddy/fedquery/internal/secrets"
	"github.com/pdiddy/fedquery/internal/vectorstore"
	"github.com/pdiddy/fedquery/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns the secret value for key if it exists, or fallback otherwise.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command for the fedquery CLI.
var rootCmd = &cobra.Command{
	Use:   "fedquery",
	Short: "Citation-grounded question answering over FOMC documents",
	Long: `fedquery answers questions about Federal Reserve monetary policy from a
local corpus of FOMC statements and meeting minutes. Every claim in an
answer is backed by a verifiable citation into the corpus; when the
evidence is too weak, fedquery says so instead of guessing.

Build the corpus with ingest, inspect retrieval with search, ask
questions with ask, and measure retrieval quality with evaluate.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./fedquery.yaml or ~/.config/fedquery/config.yaml)")
	rootCmd.PersistentFlags().String("data-dir", "data", "base data directory (contains index/, texts/)")
	rootCmd.PersistentFlags().Bool("verbose", false, "enable debug logging")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("fedquery")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "fedquery"))
		}
	}

	viper.SetEnvPrefix("FEDQUERY")
	viper.AutomaticEnv()

	viper.SetDefault("ai.model", "claude-sonnet-4-5-20250929")
	viper.SetDefault("ai.max_retries", 3)
	viper.SetDefault("embedding.base_url", "http://localhost:11434")
	viper.SetDefault("embedding.model", "all-minilm")
	viper.SetDefault("embedding.timeout", 30*time.Second)

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// newLogger builds the CLI logger: warn-level production JSON by default,
// debug console with --verbose.
func newLogger(cmd *cobra.Command) (*zap.Logger, error) {
	verbose, _ := cmd.Flags().GetBool("verbose")
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return cfg.Build()
}

// openStore wires the embedding client and opens the vector store rooted
// at --data-dir.
func openStore(cmd *cobra.Command) (*vectorstore.Store, error) {
	dataDir, _ := cmd.Flags().GetString("data-dir")

	embedder := embedding.NewClient(types.EmbeddingConfig{
		BaseURL: viper.GetString("embedding.base_url"),
		Model:   viper.GetString("embedding.model"),
		Timeout: viper.GetDuration("embedding.timeout"),
	})
	return vectorstore.NewStore(types.StoreConfig{DataDir: dataDir}, embedder)
}

// aiConfig resolves the generative model settings, preferring the config
// file and falling back to .secrets/anthropic-api-key for the key.
func aiConfig() types.AIConfig {
	return types.AIConfig{
		Model:      viper.GetString("ai.model"),
		APIKey:     secretDefault("anthropic-api-key", viper.GetString("ai.api_key")),
		MaxRetries: viper.GetInt("ai.max_retries"),
	}
}

// agentConfig resolves the workflow settings. Unset values stay zero and
// take the workflow's defaults.
func agentConfig() types.AgentConfig {
	return types.AgentConfig{
		Thresholds: types.ConfidenceThresholds{
			High:   viper.GetFloat64("agent.thresholds.high"),
			Medium: viper.GetFloat64("agent.thresholds.medium"),
			Low:    viper.GetFloat64("agent.thresholds.low"),
		},
		MaxReformulations: viper.GetInt("agent.max_reformulations"),
		DefaultTopK:       viper.GetInt("agent.default_top_k"),
		MaxTopK:           viper.GetInt("agent.max_top_k"),
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
