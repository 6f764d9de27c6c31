// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package imaging encodes page bitmaps into size-capped payloads suitable
// for a vision model request.
package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"image/png"
	"math"

	xdraw "golang.org/x/image/draw"

	"github.com/pdiddy/vision-md/pkg/types"
)

// MIME types produced by EncodeCapped.
const (
	MIMEPNG  = "image/png"
	MIMEJPEG = "image/jpeg"
)

// Payload is an encoded image plus its MIME type.
type Payload struct {
	Data []byte
	MIME string
}

// EncodeCapped encodes img under cfg.MaxBytes, preferring the highest
// fidelity that fits. The fallback chain:
//
//  1. PNG. Returned unchanged when it fits; lossless always wins.
//  2. JPEG at descending qualities (QualityStart down to QualityFloor in
//     QualityStep decrements), with any alpha flattened onto a white
//     background once before the first attempt.
//  3. A single proportional downscale. The factor is the square root of
//     the byte ratio (area scales quadratically), clamped to MinScale,
//     with each edge floored at ScaleFloorPx, re-encoded at
//     max(70, QualityFloor).
//
// The step-3 result is accepted even if it still exceeds the budget.
// Looping until the cap is met is deliberately avoided; the overage is
// rare at sane DPI settings and the contract tolerates it.
func EncodeCapped(img image.Image, cfg types.CapConfig) (Payload, error) {
	cfg = normalize(cfg)

	// 1) Lossless first.
	var pngBuf bytes.Buffer
	if err := png.Encode(&pngBuf, img); err != nil {
		return Payload{}, fmt.Errorf("encoding PNG: %w", err)
	}
	if pngBuf.Len() <= cfg.MaxBytes {
		return Payload{Data: pngBuf.Bytes(), MIME: MIMEPNG}, nil
	}

	// 2) JPEG quality ladder. Flatten alpha exactly once, here.
	flat := flattenToOpaque(img)
	var lastData []byte
	for q := cfg.QualityStart; q >= cfg.QualityFloor; q -= cfg.QualityStep {
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, flat, &jpeg.Options{Quality: q}); err != nil {
			return Payload{}, fmt.Errorf("encoding JPEG at quality %d: %w", q, err)
		}
		if buf.Len() <= cfg.MaxBytes {
			return Payload{Data: buf.Bytes(), MIME: MIMEJPEG}, nil
		}
		lastData = buf.Bytes()
	}
	if lastData == nil {
		// Degenerate quality ladder (start below floor); encode once at
		// the floor so the downscale factor has a byte count to work from.
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, flat, &jpeg.Options{Quality: cfg.QualityFloor}); err != nil {
			return Payload{}, fmt.Errorf("encoding JPEG at quality %d: %w", cfg.QualityFloor, err)
		}
		if buf.Len() <= cfg.MaxBytes {
			return Payload{Data: buf.Bytes(), MIME: MIMEJPEG}, nil
		}
		lastData = buf.Bytes()
	}

	// 3) Single downscale pass.
	scale := math.Sqrt(float64(cfg.MaxBytes) / float64(len(lastData)))
	if scale < cfg.MinScale {
		scale = cfg.MinScale
	}
	bounds := flat.Bounds()
	newW := scaledEdge(bounds.Dx(), scale, cfg.ScaleFloorPx)
	newH := scaledEdge(bounds.Dy(), scale, cfg.ScaleFloorPx)

	resized := image.NewRGBA(image.Rect(0, 0, newW, newH))
	xdraw.CatmullRom.Scale(resized, resized.Bounds(), flat, bounds, xdraw.Src, nil)

	quality := cfg.QualityFloor
	if quality < 70 {
		quality = 70
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: quality}); err != nil {
		return Payload{}, fmt.Errorf("encoding downscaled JPEG: %w", err)
	}
	// May still exceed MaxBytes; accepted as-is.
	return Payload{Data: buf.Bytes(), MIME: MIMEJPEG}, nil
}

// DataURL renders the payload as a base64 data URL.
func DataURL(p Payload) string {
	return "data:" + p.MIME + ";base64," + base64.StdEncoding.EncodeToString(p.Data)
}

// scaledEdge applies the scale factor to one edge, floored at floorPx.
func scaledEdge(edge int, scale float64, floorPx int) int {
	scaled := int(float64(edge) * scale)
	if scaled < floorPx {
		scaled = floorPx
	}
	return scaled
}

// flattenToOpaque composites img onto a white background, dropping alpha.
// Fully opaque images are drawn straight through.
func flattenToOpaque(img image.Image) *image.RGBA {
	bounds := img.Bounds()
	flat := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))

	if o, ok := img.(interface{ Opaque() bool }); ok && o.Opaque() {
		draw.Draw(flat, flat.Bounds(), img, bounds.Min, draw.Src)
		return flat
	}

	draw.Draw(flat, flat.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(flat, flat.Bounds(), img, bounds.Min, draw.Over)
	return flat
}

// normalize fills zero-valued fields with defaults.
func normalize(cfg types.CapConfig) types.CapConfig {
	def := types.DefaultCapConfig()
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = def.MaxBytes
	}
	if cfg.QualityStart <= 0 {
		cfg.QualityStart = def.QualityStart
	}
	if cfg.QualityStep <= 0 {
		cfg.QualityStep = def.QualityStep
	}
	if cfg.QualityFloor <= 0 {
		cfg.QualityFloor = def.QualityFloor
	}
	if cfg.ScaleFloorPx <= 0 {
		cfg.ScaleFloorPx = def.ScaleFloorPx
	}
	if cfg.MinScale <= 0 {
		cfg.MinScale = def.MinScale
	}
	return cfg
}
