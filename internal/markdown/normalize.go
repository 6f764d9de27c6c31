// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package markdown

import (
	"regexp"
	"strings"
)

var (
	blankRun    = regexp.MustCompile(`\n{3,}`)
	imagePrefix = regexp.MustCompile(`^\s*(?:image|Image|IMAGE)\s*:\s*`)
)

// CollapseBlankLines reduces runs of three or more newlines to exactly
// two and trims surrounding whitespace. Idempotent.
func CollapseBlankLines(s string) string {
	return strings.TrimSpace(blankRun.ReplaceAllString(s, "\n\n"))
}

// NormalizeImagePrefixes rewrites lines that start with a case-variant
// "image:" label to the canonical "IMAGE: " form the describer prompt
// asks for, so downstream consumers can grep one spelling.
func NormalizeImagePrefixes(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if loc := imagePrefix.FindStringIndex(line); loc != nil {
			lines[i] = "IMAGE: " + line[loc[1]:]
		}
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
