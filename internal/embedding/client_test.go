package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pdiddy/fedquery/pkg/types"
)

func TestEmbed(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		if req.Model != "test-embed" {
			t.Errorf("model = %q, want test-embed", req.Model)
		}
		data := make([]map[string]any, len(req.Input))
		for i := range req.Input {
			data[i] = map[string]any{"embedding": []float32{float32(i), 1, 0}}
		}
		json.NewEncoder(w).Encode(map[string]any{"data": data})
	}))
	defer ts.Close()

	c := NewClient(types.EmbeddingConfig{BaseURL: ts.URL, Model: "test-embed"})

	vectors, err := c.Embed(context.Background(), []string{"alpha", "beta"})
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(vectors) != 2 {
		t.Fatalf("got %d vectors, want 2", len(vectors))
	}
	if vectors[1][0] != 1 {
		t.Errorf("vectors[1][0] = %v, want 1", vectors[1][0])
	}
}

func TestEmbedEmptyInput(t *testing.T) {
	c := NewClient(types.EmbeddingConfig{BaseURL: "http://unused", Model: "m"})
	vectors, err := c.Embed(context.Background(), nil)
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if vectors != nil {
		t.Errorf("expected nil vectors for empty input, got %v", vectors)
	}
}

func TestEmbedCountMismatch(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"data": []any{}})
	}))
	defer ts.Close()

	c := NewClient(types.EmbeddingConfig{BaseURL: ts.URL, Model: "m"})
	if _, err := c.Embed(context.Background(), []string{"alpha"}); err == nil {
		t.Error("expected error on vector count mismatch")
	}
}
