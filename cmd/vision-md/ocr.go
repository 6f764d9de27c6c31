// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/vision-md/internal/pipeline"
	"github.com/pdiddy/vision-md/internal/render"
	"github.com/pdiddy/vision-md/internal/vision"
	"github.com/pdiddy/vision-md/pkg/types"
)

var ocrCmd = &cobra.Command{
	Use:   "ocr <pdf>",
	Short: "Transcribe PDF pages to Markdown through a vision model",
	Long: `Ocr renders each page of the PDF to an image, caps the encoded size
under the byte budget (PNG, then descending JPEG qualities, then a single
downscale), and has the vision model transcribe it to Markdown.

Each page becomes one fragment headed "## Page N" unless --no-headings is
set. A page that fails to render or transcribe is replaced by a visible
placeholder; the run continues and exits zero. Output defaults to
<input>_vision.md next to the source file.`,
	Args: cobra.ExactArgs(1),
	RunE: runOCR,
}

func runOCR(cmd *cobra.Command, args []string) error {
	started := time.Now()
	input := args[0]
	cfg := ocrConfig(cmd)

	doc, err := render.Open(input, cfg.Render)
	if err != nil {
		return err
	}
	defer doc.Close()

	client, err := vision.NewClient(cfg.Vision)
	if err != nil {
		return err
	}

	text, summary, err := pipeline.FullPage(context.Background(), doc, client, cfg, os.Stdout)
	if err != nil {
		return err
	}

	output := outputPath(cmd, input, "_vision.md")
	if err := os.WriteFile(output, []byte(text), 0o644); err != nil {
		return fmt.Errorf("writing output %s: %w", output, err)
	}

	fmt.Fprintf(os.Stdout, "wrote %s (%d/%d pages transcribed)\n", output, summary.Succeeded, summary.Total())
	if summary.HasFailures() {
		fmt.Fprintf(os.Stderr, "%d page(s) failed; placeholders inserted\n", summary.Failed)
	}

	return maybeWriteReport(cmd, pipeline.Report{
		Input:   input,
		Output:  output,
		Mode:    "ocr",
		Model:   cfg.Vision.Model,
		Summary: summary,
	}, started)
}

// ocrConfig assembles the full-page settings from defaults, the config
// file, and flags.
func ocrConfig(cmd *cobra.Command) types.OCRConfig {
	cfg := types.DefaultOCRConfig()

	if v, _ := cmd.Flags().GetInt("dpi"); v > 0 {
		cfg.Render.DPI = v
	} else if v := viper.GetInt("dpi"); v > 0 {
		cfg.Render.DPI = v
	}
	if v, _ := cmd.Flags().GetInt("max-bytes"); v > 0 {
		cfg.Cap.MaxBytes = v
	}
	if v, _ := cmd.Flags().GetInt("min-edge"); v > 0 {
		cfg.Cap.ScaleFloorPx = v
	}

	cfg.Start, _ = cmd.Flags().GetInt("start")
	cfg.End, _ = cmd.Flags().GetInt("end")

	noHeadings, _ := cmd.Flags().GetBool("no-headings")
	cfg.PageHeadings = !noHeadings

	cfg.Vision = visionConfig(cmd, cfg.Vision)
	return cfg
}

func init() {
	ocrCmd.Flags().Int("dpi", 0, "rendering resolution (default 280)")
	ocrCmd.Flags().Int("max-bytes", 0, "byte budget per encoded page image (default 20 MiB)")
	ocrCmd.Flags().Int("min-edge", 0, "minimum image edge length after downscaling (default 720)")
	ocrCmd.Flags().Int("start", 0, "first page to transcribe, 1-based (default: first)")
	ocrCmd.Flags().Int("end", 0, "last page to transcribe, 1-based inclusive (default: last)")
	ocrCmd.Flags().Bool("no-headings", false, "suppress the ## Page N heading before each page")
	ocrCmd.Flags().String("model", "", "model identifier (default gpt-4.1)")
	ocrCmd.Flags().Int("max-tokens", 0, "per-page output token ceiling (default 3500)")
	ocrCmd.Flags().Float32("temperature", 0, "sampling temperature (default 0)")
	ocrCmd.Flags().Int("retries", 0, "retry attempts for transient API failures (default 3)")
	ocrCmd.Flags().String("base-url", "", "OpenAI-compatible endpoint override")
	ocrCmd.Flags().StringP("output", "o", "", "output file (default <input>_vision.md)")
	ocrCmd.Flags().String("report", "", "write a YAML run report to this path")

	rootCmd.AddCommand(ocrCmd)
}
