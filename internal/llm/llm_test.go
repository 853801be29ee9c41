package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

// --- StripFences ---

func TestStripFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "bare json untouched",
			in:   `{"needs_retrieval": true}`,
			want: `{"needs_retrieval": true}`,
		},
		{
			name: "json fence",
			in:   "```json\n{\"a\": 1}\n```",
			want: `{"a": 1}`,
		},
		{
			name: "anonymous fence",
			in:   "```\n{\"a\": 1}\n```",
			want: `{"a": 1}`,
		},
		{
			name: "surrounding whitespace",
			in:   "  ```json\n{}\n```  ",
			want: `{}`,
		},
		{
			name: "plain text untouched",
			in:   "no retrieval needed",
			want: "no retrieval needed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripFences(tt.in); got != tt.want {
				t.Errorf("StripFences(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

// --- ClaudeBackend ---

func claudeTestServer(t *testing.T, status int, reply string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("x-api-key"); got != "test-key" {
			t.Errorf("missing api key header, got %q", got)
		}
		if got := r.Header.Get("anthropic-version"); got == "" {
			t.Error("missing anthropic-version header")
		}
		w.WriteHeader(status)
		if status == http.StatusOK {
			json.NewEncoder(w).Encode(map[string]any{
				"content": []map[string]string{
					{"type": "text", "text": reply},
				},
			})
		}
	}))
}

func TestClaudeBackendGenerate(t *testing.T) {
	ts := claudeTestServer(t, http.StatusOK, "the answer")
	defer ts.Close()

	oldURL := claudeAPIURL
	claudeAPIURL = ts.URL
	defer func() { claudeAPIURL = oldURL }()

	backend := &ClaudeBackend{APIKey: "test-key", Model: "test-model", Client: ts.Client()}
	got, err := backend.Generate(context.Background(), "a prompt")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != "the answer" {
		t.Errorf("Generate = %q, want %q", got, "the answer")
	}
}

func TestClaudeBackendAPIError(t *testing.T) {
	ts := claudeTestServer(t, http.StatusInternalServerError, "")
	defer ts.Close()

	oldURL := claudeAPIURL
	claudeAPIURL = ts.URL
	defer func() { claudeAPIURL = oldURL }()

	backend := &ClaudeBackend{APIKey: "test-key", Model: "test-model", Client: ts.Client()}
	_, err := backend.Generate(context.Background(), "a prompt")
	if !errors.Is(err, ErrModelUnreachable) {
		t.Errorf("Generate error = %v, want ErrModelUnreachable", err)
	}
}

func TestClaudeBackendNetworkError(t *testing.T) {
	oldURL := claudeAPIURL
	claudeAPIURL = "http://127.0.0.1:1" // nothing listens here
	defer func() { claudeAPIURL = oldURL }()

	backend := &ClaudeBackend{APIKey: "test-key", Model: "test-model"}
	_, err := backend.Generate(context.Background(), "a prompt")
	if !errors.Is(err, ErrModelUnreachable) {
		t.Errorf("Generate error = %v, want ErrModelUnreachable", err)
	}
}
