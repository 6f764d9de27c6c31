// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/pdiddy/vision-md/pkg/types"
)

// fakeDescriber returns canned descriptions and records the surrounding
// context it was given.
type fakeDescriber struct {
	failOn      map[int]bool
	calls       int
	surrounding []string
}

func (f *fakeDescriber) Describe(ctx context.Context, dataURL, surrounding string) (string, error) {
	f.calls++
	f.surrounding = append(f.surrounding, surrounding)
	if f.failOn[f.calls] {
		return "", fmt.Errorf("model refused image %d", f.calls)
	}
	return fmt.Sprintf("IMAGE: description of image %d", f.calls), nil
}

func describeDoc() string {
	return "Intro paragraph.\n\n" +
		"![](data:image/png;base64,AAAA)\n\n" +
		"Middle text between the figures.\n\n" +
		"![fig2](data:image/jpeg;base64,BBBB)\n\n" +
		"Closing paragraph."
}

func TestDescribeImagesReplacesMarkers(t *testing.T) {
	model := &fakeDescriber{}

	var progress bytes.Buffer
	out, summary, err := DescribeImages(context.Background(), describeDoc(), model, types.DefaultDescribeConfig(), &progress)
	if err != nil {
		t.Fatal(err)
	}

	if summary.Succeeded != 2 || summary.Failed != 0 {
		t.Errorf("summary = %+v, want 2 succeeded", summary)
	}
	if strings.Contains(out, "base64") {
		t.Errorf("output still contains embedded image data:\n%s", out)
	}
	for _, want := range []string{
		"Intro paragraph.",
		"> Image: description of image 1",
		"Middle text between the figures.",
		"> Image: description of image 2",
		"Closing paragraph.",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if !strings.Contains(progress.String(), "describing image 1 of 2") {
		t.Errorf("progress missing the per-image line:\n%s", progress.String())
	}
}

func TestDescribeImagesBuildsSurroundingContext(t *testing.T) {
	model := &fakeDescriber{}

	_, _, err := DescribeImages(context.Background(), describeDoc(), model, types.DefaultDescribeConfig(), new(bytes.Buffer))
	if err != nil {
		t.Fatal(err)
	}

	if len(model.surrounding) != 2 {
		t.Fatalf("describer saw %d context strings, want 2", len(model.surrounding))
	}
	first := model.surrounding[0]
	if !strings.Contains(first, "[IMAGE LOCATION]") {
		t.Errorf("context %q missing the location marker", first)
	}
	if !strings.Contains(first, "Intro paragraph.") || !strings.Contains(first, "Middle text") {
		t.Errorf("context %q missing the surrounding prose", first)
	}
	if strings.Contains(first, "base64,BBBB") {
		t.Errorf("context %q leaks the neighboring image payload", first)
	}
}

func TestDescribeImagesFailureBecomesPlaceholder(t *testing.T) {
	model := &fakeDescriber{failOn: map[int]bool{1: true}}

	var progress bytes.Buffer
	out, summary, err := DescribeImages(context.Background(), describeDoc(), model, types.DefaultDescribeConfig(), &progress)
	if err != nil {
		t.Fatal(err)
	}

	if summary.Succeeded != 1 || summary.Failed != 1 {
		t.Errorf("summary = %+v, want 1 succeeded and 1 failed", summary)
	}
	if !strings.Contains(out, "> Image: [description unavailable]") {
		t.Errorf("output missing the failure placeholder:\n%s", out)
	}
	if !strings.Contains(out, "> Image: description of image 2") {
		t.Error("run should continue past the failing image")
	}
	if !strings.Contains(progress.String(), "failed  image 1") {
		t.Errorf("progress missing the failure line:\n%s", progress.String())
	}
}

func TestDescribeImagesPassesPlainTextThrough(t *testing.T) {
	doc := "# Just text\n\nNo images anywhere."
	model := &fakeDescriber{}

	out, summary, err := DescribeImages(context.Background(), doc, model, types.DefaultDescribeConfig(), new(bytes.Buffer))
	if err != nil {
		t.Fatal(err)
	}
	if model.calls != 0 {
		t.Errorf("describer called %d times for a text-only document", model.calls)
	}
	if summary.Total() != 0 {
		t.Errorf("summary = %+v, want empty", summary)
	}
	if !strings.Contains(out, "No images anywhere.") {
		t.Errorf("text content lost:\n%s", out)
	}
}

func TestDescribeImagesFlattensMultilineDescriptions(t *testing.T) {
	doc := "before ![](data:image/png;base64,AAAA) after"
	model := &multilineDescriber{}

	out, _, err := DescribeImages(context.Background(), doc, model, types.DefaultDescribeConfig(), new(bytes.Buffer))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "> Image: line one line two") {
		t.Errorf("multi-line description should collapse to one quoted line:\n%s", out)
	}
}

type multilineDescriber struct{}

func (multilineDescriber) Describe(ctx context.Context, dataURL, surrounding string) (string, error) {
	return "line one\nline two", nil
}
