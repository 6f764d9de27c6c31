// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/vision-md/internal/markdown"
	"github.com/pdiddy/vision-md/internal/vision"
	"github.com/pdiddy/vision-md/pkg/types"
)

const imageFailureBody = "[description unavailable]"

// DescribeImages replaces every embedded base64 image in doc with a
// model-written description quoted as "> Image: ...". Text fragments
// pass through untouched; a failing image becomes a visible placeholder
// and the run continues. Progress is written to w, one line per image.
func DescribeImages(ctx context.Context, doc string, model vision.Describer, cfg types.DescribeConfig, w io.Writer) (string, Summary, error) {
	fragments := markdown.Tokenize(doc)

	total := 0
	for _, f := range fragments {
		if f.Kind == markdown.FragmentImage {
			total++
		}
	}

	var summary Summary
	var out strings.Builder
	index := 0

	for _, f := range fragments {
		if f.Kind != markdown.FragmentImage {
			out.WriteString(f.Raw)
			continue
		}

		index++
		if err := ctx.Err(); err != nil {
			return "", summary, err
		}

		fmt.Fprintf(w, "describing image %d of %d\n", index, total)

		surrounding := markdown.BuildContext(doc, f.Start, f.End, cfg.Context)
		desc, err := model.Describe(ctx, f.DataURL, surrounding)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return "", summary, err
			}
			fmt.Fprintf(w, "failed  image %d: %v\n", index, err)
			summary.recordFailure(index, err)
			out.WriteString(imageBlock(imageFailureBody))
			continue
		}

		summary.recordSuccess(index)
		out.WriteString(imageBlock(desc))
	}

	return markdown.CollapseBlankLines(out.String()) + "\n", summary, nil
}

// imageBlock formats a description as a standalone blockquote. The
// surrounding blank lines keep the quote from gluing onto adjacent prose;
// the final normalization pass collapses any excess.
func imageBlock(desc string) string {
	desc = strings.TrimPrefix(desc, "IMAGE: ")
	desc = strings.Join(strings.Fields(desc), " ")
	return "\n\n> Image: " + desc + "\n\n"
}
