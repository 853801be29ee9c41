// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package agent

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/pdiddy/fedquery/pkg/types"
)

// assessPromptTmpl classifies a question: does it need retrieval, does it
// carry a temporal signal, and how many results will a thorough answer need.
var assessPromptTmpl = template.Must(template.New("assess").Parse(`You are a query classifier for an FOMC document retrieval system. Determine if the user's question requires searching FOMC documents, extract any temporal date range, and estimate how many search results are needed.

Respond with ONLY a JSON object (no markdown, no explanation):
{"needs_retrieval": true/false, "date_start": "YYYY-MM-DD" or null, "date_end": "YYYY-MM-DD" or null, "top_k_hint": integer or null}

Rules:
- Questions about Fed policy, interest rates, inflation, economic outlook, FOMC meetings -> needs_retrieval: true
- Greetings, general knowledge, non-FOMC topics -> needs_retrieval: false
- If the question mentions a specific month/year (e.g. 'December 2024'), set date_start to the 1st and date_end to the last day of that month
- If a year is mentioned without a month (e.g. '2024'), use the full year range
- If no temporal signal, set both dates to null
- top_k_hint: estimate how many search results are needed to fully answer the question. The FOMC meets ~8 times per year and documents use very similar language across meetings, so retrieval needs extra results to cover all relevant dates. Guidelines: single meeting -> null (default {{.DefaultTopK}}), 2-3 meetings -> 15, full year (~8 meetings) -> 30, multi-year -> 40-{{.MaxTopK}}. For narrow questions about one topic at one meeting, use null.

Question: {{.Question}}
`))

// reformulatePromptTmpl rewrites a question whose retrieval came back weak.
var reformulatePromptTmpl = template.Must(template.New("reformulate").Parse(`You are a query reformulation expert for FOMC document search. The original query did not retrieve sufficiently relevant results. Rephrase the query to improve retrieval. Keep it concise and focused on FOMC-specific terminology. Respond with ONLY the reformulated query.

Original query: {{.Question}}
Retrieved passages (low relevance):
{{.Passages}}
Reformulated query:`))

// synthesizePromptTmpl produces an answer grounded in the supplied source
// passages, with [Source N] inline markers.
var synthesizePromptTmpl = template.Must(template.New("synthesize").Parse(`You are a research assistant answering questions about FOMC monetary policy. Answer ONLY based on the provided source passages. For each claim, cite the source using [Source N] notation. If the sources don't contain enough information, say so. Be precise and factual.

Question: {{.Question}}

Source passages:
{{.Context}}

Answer:`))

func renderTemplate(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering %s prompt: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}

// sourceContext formats the candidate set as numbered source passages.
// Marker indices are 1-based positions in this listing, transient to one
// synthesis call.
func sourceContext(candidates []types.Candidate) string {
	blocks := make([]string, len(candidates))
	for i, c := range candidates {
		blocks[i] = fmt.Sprintf("[Source %d] %s (%s), §%s\n%s",
			i+1, c.DocumentName, c.DocumentDate, c.SectionHeader, c.Text)
	}
	return strings.Join(blocks, "\n\n")
}

// passageSummary lists prefixes of the weakest-scoring retrieval for the
// reformulation prompt.
func passageSummary(candidates []types.Candidate, max int) string {
	var lines []string
	for i, c := range candidates {
		if i >= max {
			break
		}
		lines = append(lines, "- "+prefixRunes(c.Text, 100)+"...")
	}
	return strings.Join(lines, "\n")
}

// prefixRunes returns at most n runes of s without splitting a rune.
func prefixRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
