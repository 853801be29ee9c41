// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ingest builds the retrieval corpus from cleaned FOMC document
// text files: normalize, chunk with section metadata, embed, store.
// Document acquisition (scraping federalreserve.gov) happens upstream;
// this package consumes its output.
package ingest

import (
	"regexp"
	"strings"
)

var (
	blankRuns     = regexp.MustCompile(`\n{3,}`)
	spaceRuns     = regexp.MustCompile(`[ \t]+`)
	blankWithWS   = regexp.MustCompile(`\n +\n`)
	shareLine     = regexp.MustCompile(`(?m)^\s*Share\s*$`)
	mediaContact  = regexp.MustCompile(`(?s)For media inquiries.*?202-452-2955\.?`)
)

// Clean normalizes whitespace and strips federalreserve.gov boilerplate
// (social-share button text, the media-inquiry contact block) from a
// document's text.
func Clean(text string) string {
	text = shareLine.ReplaceAllString(text, "")
	text = mediaContact.ReplaceAllString(text, "")
	text = spaceRuns.ReplaceAllString(text, " ")
	text = blankWithWS.ReplaceAllString(text, "\n\n")
	text = blankRuns.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
