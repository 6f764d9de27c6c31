// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package markdown

import (
	"regexp"
	"strings"

	"github.com/pdiddy/vision-md/pkg/types"
)

// ImageLocationMarker stands in for the image being described inside the
// context window sent to the vision model.
const ImageLocationMarker = "[IMAGE LOCATION]"

var whitespaceRun = regexp.MustCompile(`\s+`)

// BuildContext extracts the text surrounding doc[start:end] as a single
// flattened line for the describer prompt. It takes up to BeforeChars
// bytes before the span and AfterChars after, replaces any embedded image
// markup in those windows with short placeholders so base64 noise never
// reaches the model, joins them around ImageLocationMarker, collapses all
// whitespace runs to single spaces, and truncates the result to MaxChars
// runes with a trailing ellipsis.
func BuildContext(doc string, start, end int, cfg types.ContextConfig) string {
	if cfg.BeforeChars <= 0 && cfg.AfterChars <= 0 && cfg.MaxChars <= 0 {
		cfg = types.DefaultContextConfig()
	}

	from := start - cfg.BeforeChars
	if from < 0 {
		from = 0
	}
	to := end + cfg.AfterChars
	if to > len(doc) {
		to = len(doc)
	}
	if start < 0 {
		start = 0
	}
	if end > len(doc) {
		end = len(doc)
	}

	before := strings.ToValidUTF8(doc[from:start], "")
	after := strings.ToValidUTF8(doc[end:to], "")

	joined := stripImageMarkup(before) + " " + ImageLocationMarker + " " + stripImageMarkup(after)
	flat := strings.TrimSpace(whitespaceRun.ReplaceAllString(joined, " "))

	if cfg.MaxChars > 0 {
		if r := []rune(flat); len(r) > cfg.MaxChars {
			flat = string(r[:cfg.MaxChars]) + "…"
		}
	}
	return flat
}

// stripImageMarkup replaces embedded data-URI images with [Image] and any
// other Markdown image reference with [ImageRef].
func stripImageMarkup(text string) string {
	text = imageDataURIPattern.ReplaceAllString(text, "[Image]")
	return imageLinkPattern.ReplaceAllString(text, "[ImageRef]")
}
