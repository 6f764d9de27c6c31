// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"strings"

	"github.com/pdiddy/vision-md/internal/imaging"
	"github.com/pdiddy/vision-md/internal/markdown"
	"github.com/pdiddy/vision-md/internal/render"
	"github.com/pdiddy/vision-md/internal/vision"
	"github.com/pdiddy/vision-md/pkg/types"
)

// PageRenderer is the rendering surface the full-page pipeline needs.
// *render.Document implements it; tests supply a fake.
type PageRenderer interface {
	PageCount() int
	Page(ctx context.Context, n int) (image.Image, error)
}

const pageFailureBody = "_Error extracting this page. Try lowering DPI or tokens and re-run._"

// FullPage transcribes each page in the configured range through the
// vision model and assembles the results into one Markdown document.
// A failing page becomes a placeholder fragment and the run continues;
// an invalid page range or a cancelled context aborts the run. Progress
// is written to w, one line per page.
func FullPage(ctx context.Context, doc PageRenderer, model vision.Transcriber, cfg types.OCRConfig, w io.Writer) (string, Summary, error) {
	start, end, err := render.ResolveRange(doc.PageCount(), cfg.Start, cfg.End)
	if err != nil {
		return "", Summary{}, err
	}

	var summary Summary
	var fragments []string

	for n := start; n <= end; n++ {
		if err := ctx.Err(); err != nil {
			return "", summary, err
		}

		fmt.Fprintf(w, "transcribing page %d (%d of %d)\n", n, n-start+1, end-start+1)

		text, err := transcribePage(ctx, doc, model, cfg, n)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return "", summary, err
			}
			fmt.Fprintf(w, "failed  page %d: %v\n", n, err)
			summary.recordFailure(n, err)
			fragments = append(fragments, pageFragment(n, pageFailureBody, cfg.PageHeadings))
			continue
		}

		summary.recordSuccess(n)
		fragments = append(fragments, pageFragment(n, text, cfg.PageHeadings))
	}

	out := markdown.CollapseBlankLines(strings.Join(fragments, "\n\n"))
	return out + "\n", summary, nil
}

// transcribePage runs one page through render, cap, and the model call.
func transcribePage(ctx context.Context, doc PageRenderer, model vision.Transcriber, cfg types.OCRConfig, n int) (string, error) {
	img, err := doc.Page(ctx, n)
	if err != nil {
		return "", err
	}
	payload, err := imaging.EncodeCapped(img, cfg.Cap)
	if err != nil {
		return "", err
	}
	return model.Transcribe(ctx, n, payload)
}

// pageFragment prefixes the page heading when enabled.
func pageFragment(n int, body string, headings bool) string {
	if !headings {
		return body
	}
	return fmt.Sprintf("## Page %d\n\n%s", n, body)
}
