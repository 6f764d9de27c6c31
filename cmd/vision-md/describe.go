// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/vision-md/internal/extract"
	"github.com/pdiddy/vision-md/internal/pipeline"
	"github.com/pdiddy/vision-md/internal/render"
	"github.com/pdiddy/vision-md/internal/vision"
	"github.com/pdiddy/vision-md/pkg/types"
)

var describeCmd = &cobra.Command{
	Use:   "describe <pdf>",
	Short: "Convert a PDF's text layer to Markdown, describing embedded images",
	Long: `Describe extracts the PDF's native text layer as Markdown, then replaces
each embedded image with a description written by the vision model. The
model sees the image plus a bounded window of the surrounding text, so
descriptions reference the prose around them.

An image that fails to describe is replaced by a visible placeholder; the
run continues and exits zero. Output defaults to <input>.md next to the
source file.`,
	Args: cobra.ExactArgs(1),
	RunE: runDescribe,
}

func runDescribe(cmd *cobra.Command, args []string) error {
	started := time.Now()
	input := args[0]
	cfg := describeConfig(cmd)

	doc, err := render.Open(input, types.DefaultRenderConfig())
	if err != nil {
		return err
	}
	defer doc.Close()

	ctx := context.Background()

	start, end, err := doc.ResolveRange(0, 0)
	if err != nil {
		return err
	}
	text, err := extract.Markdown(ctx, doc, start, end)
	if err != nil {
		return err
	}

	client, err := vision.NewClient(cfg.Vision)
	if err != nil {
		return err
	}

	out, summary, err := pipeline.DescribeImages(ctx, text, client, cfg, os.Stdout)
	if err != nil {
		return err
	}

	output := outputPath(cmd, input, ".md")
	if output == input {
		return fmt.Errorf("output path %s would overwrite the input", output)
	}
	if err := os.WriteFile(output, []byte(out), 0o644); err != nil {
		return fmt.Errorf("writing output %s: %w", output, err)
	}

	fmt.Fprintf(os.Stdout, "wrote %s (%d/%d images described)\n", output, summary.Succeeded, summary.Total())
	if summary.HasFailures() {
		fmt.Fprintf(os.Stderr, "%d image(s) failed; placeholders inserted\n", summary.Failed)
	}

	return maybeWriteReport(cmd, pipeline.Report{
		Input:   input,
		Output:  output,
		Mode:    "describe",
		Model:   cfg.Vision.Model,
		Summary: summary,
	}, started)
}

// describeConfig assembles the describe settings from defaults, the
// config file, and flags.
func describeConfig(cmd *cobra.Command) types.DescribeConfig {
	cfg := types.DefaultDescribeConfig()

	if v, _ := cmd.Flags().GetInt("context-before"); v > 0 {
		cfg.Context.BeforeChars = v
	}
	if v, _ := cmd.Flags().GetInt("context-after"); v > 0 {
		cfg.Context.AfterChars = v
	}
	if v, _ := cmd.Flags().GetInt("context-max"); v > 0 {
		cfg.Context.MaxChars = v
	}

	cfg.Vision = visionConfig(cmd, cfg.Vision)
	return cfg
}

func init() {
	describeCmd.Flags().Int("context-before", 0, "characters of text taken before each image (default 400)")
	describeCmd.Flags().Int("context-after", 0, "characters of text taken after each image (default 400)")
	describeCmd.Flags().Int("context-max", 0, "ceiling on the combined context string (default 1000)")
	describeCmd.Flags().String("model", "", "model identifier (default gpt-4.1)")
	describeCmd.Flags().Int("max-tokens", 0, "per-image output token ceiling (default 2000)")
	describeCmd.Flags().Float32("temperature", 0, "sampling temperature (default 0)")
	describeCmd.Flags().Int("retries", 0, "retry attempts for transient API failures (default 3)")
	describeCmd.Flags().String("base-url", "", "OpenAI-compatible endpoint override")
	describeCmd.Flags().StringP("output", "o", "", "output file (default <input>.md)")
	describeCmd.Flags().String("report", "", "write a YAML run report to this path")

	rootCmd.AddCommand(describeCmd)
}
