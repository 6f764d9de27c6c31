// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math/rand"
	"strings"
	"testing"

	"github.com/pdiddy/vision-md/pkg/types"
)

// noiseImage builds a deterministic random-noise bitmap. Noise defeats
// PNG's filters, so the lossless encoding stays near raw size and the
// lossy fallbacks are easy to trigger with a tight budget.
func noiseImage(w, h int, opaque bool) *image.NRGBA {
	rng := rand.New(rand.NewSource(1))
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			a := uint8(255)
			if !opaque && x < w/2 {
				a = 0
			}
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(rng.Intn(256)),
				G: uint8(rng.Intn(256)),
				B: uint8(rng.Intn(256)),
				A: a,
			})
		}
	}
	return img
}

func pngLen(t *testing.T, img image.Image) int {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Len()
}

func TestEncodeCappedLosslessPreferred(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 100, 100))
	for y := 0; y < 100; y++ {
		for x := 0; x < 100; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 30, G: 60, B: 90, A: 255})
		}
	}

	got, err := EncodeCapped(img, types.DefaultCapConfig())
	if err != nil {
		t.Fatal(err)
	}
	if got.MIME != MIMEPNG {
		t.Fatalf("MIME = %q, want %q", got.MIME, MIMEPNG)
	}

	// Lossless-fits means byte-identical to a plain PNG encode.
	var want bytes.Buffer
	if err := png.Encode(&want, img); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got.Data, want.Bytes()) {
		t.Error("PNG payload should be byte-identical to the direct encoding")
	}
	if len(got.Data) > types.DefaultCapConfig().MaxBytes {
		t.Error("payload exceeds budget")
	}
}

func TestEncodeCappedFallsThroughToJPEG(t *testing.T) {
	img := noiseImage(200, 200, true)
	cfg := types.DefaultCapConfig()
	// Budget just under the lossless size forces the quality ladder.
	cfg.MaxBytes = pngLen(t, img) - 1

	got, err := EncodeCapped(img, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if got.MIME != MIMEJPEG {
		t.Fatalf("MIME = %q, want %q", got.MIME, MIMEJPEG)
	}
	if len(got.Data) > cfg.MaxBytes {
		t.Errorf("quality-ladder payload is %d bytes, over the %d budget", len(got.Data), cfg.MaxBytes)
	}

	// Dimensions unchanged: the ladder never downscales.
	dims, err := jpeg.DecodeConfig(bytes.NewReader(got.Data))
	if err != nil {
		t.Fatal(err)
	}
	if dims.Width != 200 || dims.Height != 200 {
		t.Errorf("dimensions = %dx%d, want 200x200", dims.Width, dims.Height)
	}
}

func TestEncodeCappedDownscalesAsLastResort(t *testing.T) {
	img := noiseImage(640, 640, true)
	cfg := types.CapConfig{
		MaxBytes:     2_000, // unreachable by any quality level at 640px
		QualityStart: 85,
		QualityStep:  10,
		QualityFloor: 35,
		ScaleFloorPx: 64,
		MinScale:     0.25,
	}

	got, err := EncodeCapped(img, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if got.MIME != MIMEJPEG {
		t.Fatalf("MIME = %q, want %q", got.MIME, MIMEJPEG)
	}

	dims, err := jpeg.DecodeConfig(bytes.NewReader(got.Data))
	if err != nil {
		t.Fatal(err)
	}
	if dims.Width >= 640 || dims.Height >= 640 {
		t.Errorf("dimensions = %dx%d, expected a downscale below 640", dims.Width, dims.Height)
	}
	if dims.Width < cfg.ScaleFloorPx || dims.Height < cfg.ScaleFloorPx {
		t.Errorf("dimensions = %dx%d fell below the %dpx floor", dims.Width, dims.Height, cfg.ScaleFloorPx)
	}
	// The byte ratio is tiny, so the clamp must have kicked in:
	// 640 * 0.25 = 160 on each edge.
	if dims.Width != 160 || dims.Height != 160 {
		t.Errorf("dimensions = %dx%d, want the MinScale clamp at 160x160", dims.Width, dims.Height)
	}
	// Soft overage is allowed here; no budget assertion on purpose.
}

func TestEncodeCappedTinyBitmapStillWalksChain(t *testing.T) {
	// Even a 16px image over budget as PNG must try the JPEG ladder and,
	// failing that, reach the downscale branch without erroring.
	img := noiseImage(16, 16, true)
	cfg := types.CapConfig{
		MaxBytes:     100,
		QualityStart: 85,
		QualityStep:  10,
		QualityFloor: 35,
		ScaleFloorPx: 8,
		MinScale:     0.2,
	}

	got, err := EncodeCapped(img, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if got.MIME != MIMEJPEG {
		t.Fatalf("MIME = %q, want %q", got.MIME, MIMEJPEG)
	}
	if len(got.Data) == 0 {
		t.Fatal("empty payload")
	}
}

func TestEncodeCappedFlattensAlpha(t *testing.T) {
	img := noiseImage(200, 200, false) // left half fully transparent
	cfg := types.DefaultCapConfig()
	cfg.MaxBytes = pngLen(t, img) - 1

	got, err := EncodeCapped(img, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if got.MIME != MIMEJPEG {
		t.Fatalf("MIME = %q, want %q", got.MIME, MIMEJPEG)
	}

	decoded, err := jpeg.Decode(bytes.NewReader(got.Data))
	if err != nil {
		t.Fatal(err)
	}
	// The transparent half must have been composited onto white, not black.
	r, g, b, _ := decoded.At(10, 100).RGBA()
	if r>>8 < 230 || g>>8 < 230 || b>>8 < 230 {
		t.Errorf("transparent region decoded to (%d, %d, %d), want near-white",
			r>>8, g>>8, b>>8)
	}
}

func TestDataURL(t *testing.T) {
	p := Payload{Data: []byte{0x1, 0x2, 0x3}, MIME: MIMEJPEG}
	url := DataURL(p)
	if !strings.HasPrefix(url, "data:image/jpeg;base64,") {
		t.Errorf("DataURL = %q, want data:image/jpeg;base64, prefix", url)
	}
	if url != "data:image/jpeg;base64,AQID" {
		t.Errorf("DataURL = %q, want %q", url, "data:image/jpeg;base64,AQID")
	}
}
