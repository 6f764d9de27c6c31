// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract converts a PDF's native text layer into Markdown with
// embedded images preserved as base64 data URIs. The describe pipeline
// runs on its output.
package extract

import (
	"context"
	"fmt"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"

	"github.com/pdiddy/vision-md/internal/markdown"
)

// PageSource yields per-page HTML with images embedded as data URIs.
// *render.Document implements it; tests supply a fake.
type PageSource interface {
	PageHTML(n int) (string, error)
}

// Markdown converts every page in the resolved range [start, end]
// (1-based inclusive) into one Markdown document. Page HTML comes from
// the PDF's text layer with images embedded as data URIs; the HTML is
// then converted page by page and joined with blank lines.
func Markdown(ctx context.Context, doc PageSource, start, end int) (string, error) {
	converter := md.NewConverter("", true, nil)

	var pages []string
	for n := start; n <= end; n++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		html, err := doc.PageHTML(n)
		if err != nil {
			return "", fmt.Errorf("extracting page %d: %w", n, err)
		}
		text, err := converter.ConvertString(html)
		if err != nil {
			return "", fmt.Errorf("converting page %d to markdown: %w", n, err)
		}
		pages = append(pages, strings.TrimSpace(text))
	}

	return markdown.CollapseBlankLines(strings.Join(pages, "\n\n")), nil
}
