// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package render rasterizes PDF pages into in-memory bitmaps via MuPDF
// (go-fitz). A Document wraps one open PDF; pages are rendered one at a
// time and discarded by the caller after encoding.
package render

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"

	"github.com/pdiddy/vision-md/pkg/types"
)

// Document is an open PDF ready for page rasterization.
type Document struct {
	doc *fitz.Document
	cfg types.RenderConfig
}

// Open validates path and opens the PDF. The caller must Close the
// returned Document.
func Open(path string, cfg types.RenderConfig) (*Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("input file %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("input %s is a directory, not a PDF", path)
	}
	if !strings.EqualFold(filepath.Ext(path), ".pdf") {
		return nil, fmt.Errorf("input %s does not have a .pdf extension", path)
	}

	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("opening PDF %s: %w", path, err)
	}

	if cfg.DPI <= 0 {
		cfg.DPI = types.DefaultRenderConfig().DPI
	}

	return &Document{doc: doc, cfg: cfg}, nil
}

// Close releases the underlying MuPDF handle.
func (d *Document) Close() error {
	if d.doc == nil {
		return nil
	}
	err := d.doc.Close()
	d.doc = nil
	return err
}

// PageCount returns the number of pages in the document.
func (d *Document) PageCount() int {
	return d.doc.NumPage()
}

// ResolveRange clamps a 1-based inclusive page range to the document.
// Zero values mean "unset": start defaults to the first page and end to
// the last. The range is invalid when start exceeds end after clamping.
func (d *Document) ResolveRange(start, end int) (int, int, error) {
	return ResolveRange(d.PageCount(), start, end)
}

// ResolveRange clamps start and end (1-based inclusive, 0 = unset) to
// [1, total]. It fails when the document is empty or start > end after
// clamping.
func ResolveRange(total, start, end int) (int, int, error) {
	if total == 0 {
		return 0, 0, fmt.Errorf("document has no pages")
	}

	s := start
	if s < 1 {
		s = 1
	}
	e := end
	if e == 0 || e > total {
		e = total
	}
	if s > e {
		return 0, 0, fmt.Errorf("invalid page range: start=%d end=%d (total=%d)", s, e, total)
	}
	return s, e, nil
}

// PageHTML returns the text layer of the page with 1-based number n as
// HTML, with raster content embedded as base64 data URIs.
func (d *Document) PageHTML(n int) (string, error) {
	html, err := d.doc.HTML(n-1, true)
	if err != nil {
		return "", fmt.Errorf("extracting HTML for page %d: %w", n, err)
	}
	return html, nil
}

// Page rasterizes the page with 1-based number n at the configured DPI.
func (d *Document) Page(ctx context.Context, n int) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	img, err := d.doc.ImageDPI(n-1, float64(d.cfg.DPI))
	if err != nil {
		return nil, fmt.Errorf("rendering page %d: %w", n, err)
	}
	return img, nil
}
