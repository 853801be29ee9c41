package types

import "time"

// ConfidenceThresholds are the lower bounds for each confidence tier.
// Mean candidate relevance at or above a bound resolves to that tier
// (boundary ties go to the higher tier). The defaults are calibrated for
// all-MiniLM-L6-v2 cosine similarity on the FOMC corpus and must be
// recalibrated when the embedding model changes.
type ConfidenceThresholds struct {
	High   float64 `json:"high" yaml:"high"`
	Medium float64 `json:"medium" yaml:"medium"`
	Low    float64 `json:"low" yaml:"low"`
}

// DefaultThresholds returns the stock threshold calibration.
func DefaultThresholds() ConfidenceThresholds {
	return ConfidenceThresholds{High: 0.55, Medium: 0.40, Low: 0.25}
}

// AgentConfig holds settings for the question-answering workflow.
type AgentConfig struct {
	// Thresholds map mean relevance to a confidence tier.
	Thresholds ConfidenceThresholds `json:"thresholds" yaml:"thresholds"`

	// MaxReformulations caps the reformulate→retrieve loop (default 2).
	MaxReformulations int `json:"max_reformulations" yaml:"max_reformulations"`

	// DefaultTopK is the candidate count used when the assessor gives no
	// hint (default 10).
	DefaultTopK int `json:"default_top_k" yaml:"default_top_k"`

	// MaxTopK bounds the assessor's count hint (default 50).
	MaxTopK int `json:"max_top_k" yaml:"max_top_k"`
}

// AIConfig holds shared settings for components that call a Generative AI API.
type AIConfig struct {
	// Model is the AI model identifier (e.g. "claude-sonnet-4-5-20250929").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the AI API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxRetries is the number of retry attempts for rate-limited API
	// calls (default 3). Other failures are not retried.
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// EmbeddingConfig holds settings for the embedding service client.
type EmbeddingConfig struct {
	// BaseURL is the OpenAI-compatible embedding endpoint base
	// (e.g. "http://localhost:11434").
	BaseURL string `json:"base_url" yaml:"base_url"`

	// Model is the embedding model identifier.
	Model string `json:"model" yaml:"model"`

	// Timeout is the per-request timeout (default 30s).
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// StoreConfig holds settings for the vector store.
type StoreConfig struct {
	// DataDir is the base data directory; the SQLite database lives at
	// DataDir/index/fedquery.db.
	DataDir string `json:"data_dir" yaml:"data_dir"`
}

// IngestConfig holds settings for the ingestion pipeline.
type IngestConfig struct {
	// TextsDir is the directory of cleaned document text files, laid out
	// as TextsDir/<year>/<type>_<date>.txt.
	TextsDir string `json:"texts_dir" yaml:"texts_dir"`

	// ChunkSize is the chunk token budget (default 512).
	ChunkSize int `json:"chunk_size" yaml:"chunk_size"`

	// ChunkOverlap is the inter-chunk overlap in tokens (default 50).
	ChunkOverlap int `json:"chunk_overlap" yaml:"chunk_overlap"`
}
