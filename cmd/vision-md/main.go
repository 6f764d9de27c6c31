// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the vision-md CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/vision-md/internal/pipeline"
	"github.com/pdiddy/vision-md/internal/secrets"
	"github.com/pdiddy/vision-md/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API credentials loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// rootCmd is the base command for the vision-md CLI.
var rootCmd = &cobra.Command{
	Use:   "vision-md",
	Short: "Convert PDFs to Markdown with a vision-capable model",
	Long: `vision-md converts PDF documents into Markdown using a vision-capable
model. Two strategies are available as subcommands:

  ocr       renders every page to an image and has the model transcribe it;
            best for scans and layout-heavy documents.
  describe  keeps the native text layer and replaces each embedded image
            with a model-written description; best for born-digital PDFs.

Credentials come from .secrets/openai-api-key, a .env file, or the
OPENAI_API_KEY environment variable.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()

		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./vision-md.yaml or ~/.config/vision-md/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("vision-md")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "vision-md"))
		}
	}

	viper.SetEnvPrefix("VISION_MD")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// --- shared helpers ---

// apiKey resolves the API key: config/env first, then the secrets dir.
func apiKey() string {
	if v := viper.GetString("api_key"); v != "" {
		return v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		return v
	}
	return loadedSecrets["openai-api-key"]
}

// baseURL resolves an optional OpenAI-compatible endpoint override.
func baseURL(cmd *cobra.Command) string {
	if v, _ := cmd.Flags().GetString("base-url"); v != "" {
		return v
	}
	if v := viper.GetString("base_url"); v != "" {
		return v
	}
	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		return v
	}
	return loadedSecrets["openai-base-url"]
}

// visionConfig builds the model-call settings shared by both strategies,
// starting from def and applying flags, config file, and credentials.
func visionConfig(cmd *cobra.Command, def types.VisionConfig) types.VisionConfig {
	cfg := def

	if v, _ := cmd.Flags().GetString("model"); v != "" {
		cfg.Model = v
	} else if v := viper.GetString("model"); v != "" {
		cfg.Model = v
	}
	if v, _ := cmd.Flags().GetInt("max-tokens"); v > 0 {
		cfg.MaxTokens = v
	}
	if v, _ := cmd.Flags().GetFloat32("temperature"); v > 0 {
		cfg.Temperature = v
	}
	if v, _ := cmd.Flags().GetInt("retries"); v > 0 {
		cfg.MaxRetries = v
	}

	cfg.APIKey = apiKey()
	cfg.BaseURL = baseURL(cmd)
	return cfg
}

// outputPath returns the --output flag or derives a path from the input
// file's stem plus suffix.
func outputPath(cmd *cobra.Command, input, suffix string) string {
	if v, _ := cmd.Flags().GetString("output"); v != "" {
		return v
	}
	return strings.TrimSuffix(input, filepath.Ext(input)) + suffix
}

// maybeWriteReport writes the YAML run report when --report is set.
func maybeWriteReport(cmd *cobra.Command, r pipeline.Report, started time.Time) error {
	path, _ := cmd.Flags().GetString("report")
	if path == "" {
		return nil
	}
	r.Started = started
	r.Duration = time.Since(started).Round(time.Millisecond).String()
	return pipeline.WriteReport(path, r)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
