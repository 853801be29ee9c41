// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package embedding provides a client for an OpenAI-compatible embedding
// service. The vector store uses it to embed chunks at ingestion time and
// query text at search time.
package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pdiddy/fedquery/internal/httputil"
	"github.com/pdiddy/fedquery/pkg/types"
)

const defaultTimeout = 30 * time.Second

// Client handles communication with the embedding service.
type Client struct {
	baseURL string
	model   string
	client  *http.Client
}

// NewClient builds a Client from config.
func NewClient(cfg types.EmbeddingConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: cfg.BaseURL,
		model:   cfg.Model,
		client:  &http.Client{Timeout: timeout},
	}
}

// request is the request body for the /v1/embeddings endpoint.
type request struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

// response is the response body from the /v1/embeddings endpoint.
type response struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// Embed returns one embedding vector per input text, in input order.
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	bodyBytes, err := json.Marshal(request{Model: c.model, Input: texts})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	url := c.baseURL + "/v1/embeddings"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := httputil.DoWithRetry(ctx, c.client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("calling embedding service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("embedding service returned %d: %s", resp.StatusCode, string(body))
	}

	var eResp response
	if err := json.NewDecoder(resp.Body).Decode(&eResp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	if len(eResp.Data) != len(texts) {
		return nil, fmt.Errorf("embedding service returned %d vectors for %d inputs", len(eResp.Data), len(texts))
	}

	vectors := make([][]float32, len(eResp.Data))
	for i, d := range eResp.Data {
		vectors[i] = d.Embedding
	}
	return vectors, nil
}

// EmbedOne embeds a single text.
func (c *Client) EmbedOne(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}
