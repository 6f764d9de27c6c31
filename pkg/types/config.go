// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the configuration structures shared by the
// vision-md pipeline stages. Every component receives its configuration
// explicitly at construction; there is no ambient state.
package types

// RenderConfig holds settings for PDF page rasterization.
type RenderConfig struct {
	// DPI is the rendering resolution. 260-320 is a good balance for
	// dense text (default 280).
	DPI int `json:"dpi" yaml:"dpi"`
}

// DefaultRenderConfig returns rendering defaults.
func DefaultRenderConfig() RenderConfig {
	return RenderConfig{DPI: 280}
}

// CapConfig holds settings for the image size capper.
type CapConfig struct {
	// MaxBytes is the hard ceiling for an encoded page payload
	// (default 20 MiB). The final downscale step may exceed it; see
	// imaging.EncodeCapped.
	MaxBytes int `json:"max_bytes" yaml:"max_bytes"`

	// QualityStart is the first JPEG quality attempted (default 85).
	QualityStart int `json:"quality_start" yaml:"quality_start"`

	// QualityStep is the decrement between successive JPEG quality
	// attempts (default 10).
	QualityStep int `json:"quality_step" yaml:"quality_step"`

	// QualityFloor is the lowest JPEG quality tried before downscaling
	// (default 35).
	QualityFloor int `json:"quality_floor" yaml:"quality_floor"`

	// ScaleFloorPx is the minimum edge length after downscaling
	// (default 720).
	ScaleFloorPx int `json:"scale_floor_px" yaml:"scale_floor_px"`

	// MinScale clamps the computed downscale factor to avoid degenerate
	// shrinking (default 0.2).
	MinScale float64 `json:"min_scale" yaml:"min_scale"`
}

// DefaultCapConfig returns the size-capping defaults.
func DefaultCapConfig() CapConfig {
	return CapConfig{
		MaxBytes:     20 * 1024 * 1024,
		QualityStart: 85,
		QualityStep:  10,
		QualityFloor: 35,
		ScaleFloorPx: 720,
		MinScale:     0.2,
	}
}

// ContextConfig bounds the text window built around an embedded image.
type ContextConfig struct {
	// BeforeChars is how many characters to take before the image
	// marker (default 400).
	BeforeChars int `json:"before_chars" yaml:"before_chars"`

	// AfterChars is how many characters to take after the image marker
	// (default 400).
	AfterChars int `json:"after_chars" yaml:"after_chars"`

	// MaxChars caps the combined context string (default 1000).
	MaxChars int `json:"max_chars" yaml:"max_chars"`
}

// DefaultContextConfig returns the context-window defaults.
func DefaultContextConfig() ContextConfig {
	return ContextConfig{BeforeChars: 400, AfterChars: 400, MaxChars: 1000}
}

// VisionConfig holds settings for the vision model client.
type VisionConfig struct {
	// Model is the model identifier (default "gpt-4.1").
	Model string `json:"model" yaml:"model"`

	// APIKey authenticates against the API. Loaded from
	// .secrets/openai-api-key or the OPENAI_API_KEY environment variable.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// BaseURL overrides the API endpoint for OpenAI-compatible gateways
	// (Azure, OpenRouter). Empty means the default OpenAI endpoint.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`

	// MaxTokens is the per-call output ceiling (default 3500).
	MaxTokens int `json:"max_tokens" yaml:"max_tokens"`

	// Temperature controls determinism (default 0).
	Temperature float32 `json:"temperature" yaml:"temperature"`

	// MaxRetries is the number of retry attempts for failed API calls
	// (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// DefaultVisionConfig returns the vision client defaults.
func DefaultVisionConfig() VisionConfig {
	return VisionConfig{
		Model:       "gpt-4.1",
		MaxTokens:   3500,
		Temperature: 0,
		MaxRetries:  3,
	}
}

// OCRConfig groups the settings for the full-page vision strategy.
type OCRConfig struct {
	Render RenderConfig `json:"render" yaml:"render"`
	Cap    CapConfig    `json:"cap" yaml:"cap"`
	Vision VisionConfig `json:"vision" yaml:"vision"`

	// PageHeadings controls whether "## Page N" headings are inserted
	// before each page fragment (default true).
	PageHeadings bool `json:"page_headings" yaml:"page_headings"`

	// Start and End bound the pages processed, 1-based inclusive.
	// Zero means unset (first/last page respectively).
	Start int `json:"start,omitempty" yaml:"start,omitempty"`
	End   int `json:"end,omitempty" yaml:"end,omitempty"`
}

// DefaultOCRConfig returns the full-page strategy defaults.
func DefaultOCRConfig() OCRConfig {
	return OCRConfig{
		Render:       DefaultRenderConfig(),
		Cap:          DefaultCapConfig(),
		Vision:       DefaultVisionConfig(),
		PageHeadings: true,
	}
}

// DescribeConfig groups the settings for the image-description strategy.
type DescribeConfig struct {
	Context ContextConfig `json:"context" yaml:"context"`
	Vision  VisionConfig  `json:"vision" yaml:"vision"`
}

// DefaultDescribeConfig returns the describe strategy defaults.
func DefaultDescribeConfig() DescribeConfig {
	cfg := DescribeConfig{
		Context: DefaultContextConfig(),
		Vision:  DefaultVisionConfig(),
	}
	// Descriptions are short; the full-page token ceiling is oversized here.
	cfg.Vision.MaxTokens = 2000
	return cfg
}
