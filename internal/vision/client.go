// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package vision talks to an OpenAI-compatible chat completion API with
// image inputs. It covers the two model calls the pipeline makes: full-page
// transcription and single-image description.
package vision

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/pdiddy/vision-md/internal/imaging"
	"github.com/pdiddy/vision-md/internal/markdown"
	"github.com/pdiddy/vision-md/pkg/types"
)

const ocrSystemPrompt = `You are a meticulous transcription engine. Transcribe the page image into clean Markdown.
Preserve the reading order, headings, lists, and emphasis. Render tables as Markdown tables.
Transcribe text exactly as printed; do not summarize, do not add commentary, and do not wrap the output in code fences.
Where the page contains a figure, chart, or photograph, insert a single line starting with "IMAGE:" followed by a short description of it.
Mark passages you cannot read as [...].`

const describeSystemPrompt = `You describe images extracted from a document. Using the surrounding text for context, write a concise description of the image's content and its role in the document.
For charts and diagrams, state what is shown and the key takeaway. For decorative images, say so briefly.
Respond with the description only, no preamble.`

// Describer is the call surface the describe pipeline depends on; tests
// supply a fake.
type Describer interface {
	Describe(ctx context.Context, dataURL, surrounding string) (string, error)
}

// Transcriber is the call surface the full-page pipeline depends on.
type Transcriber interface {
	Transcribe(ctx context.Context, pageNum int, payload imaging.Payload) (string, error)
}

// Client issues vision requests against an OpenAI-compatible endpoint.
type Client struct {
	api *openai.Client
	cfg types.VisionConfig
}

// NewClient builds a Client from cfg. APIKey is required; BaseURL is
// optional and points the client at a compatible non-OpenAI endpoint.
func NewClient(cfg types.VisionConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("vision API key is not set")
	}
	if cfg.Model == "" {
		cfg.Model = types.DefaultVisionConfig().Model
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = types.DefaultVisionConfig().MaxRetries
	}

	apiCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = cfg.BaseURL
	}

	return &Client{api: openai.NewClientWithConfig(apiCfg), cfg: cfg}, nil
}

// Transcribe sends one rendered page to the model and returns its Markdown
// transcription. The page number is included in the user message so the
// model can resolve cross-page artifacts like running headers.
func (c *Client) Transcribe(ctx context.Context, pageNum int, payload imaging.Payload) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       c.cfg.Model,
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: ocrSystemPrompt},
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: fmt.Sprintf("Page %d of the document.", pageNum),
					},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    imaging.DataURL(payload),
							Detail: openai.ImageURLDetailHigh,
						},
					},
				},
			},
		},
	}

	content, err := c.complete(ctx, req)
	if err != nil {
		return "", fmt.Errorf("transcribing page %d: %w", pageNum, err)
	}
	return markdown.NormalizeImagePrefixes(content), nil
}

// Describe sends one embedded image to the model along with the flattened
// surrounding text and returns the description.
func (c *Client) Describe(ctx context.Context, dataURL, surrounding string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       c.cfg.Model,
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: describeSystemPrompt},
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: "Surrounding context: " + surrounding,
					},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    dataURL,
							Detail: openai.ImageURLDetailHigh,
						},
					},
				},
			},
		},
	}

	content, err := c.complete(ctx, req)
	if err != nil {
		return "", fmt.Errorf("describing image: %w", err)
	}
	return markdown.NormalizeImagePrefixes(content), nil
}

// complete runs the request through the retry wrapper and validates that
// the model returned non-empty content.
func (c *Client) complete(ctx context.Context, req openai.ChatCompletionRequest) (string, error) {
	resp, err := callWithRetry(ctx, c.cfg.MaxRetries, func(ctx context.Context) (openai.ChatCompletionResponse, error) {
		return c.api.CreateChatCompletion(ctx, req)
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("model returned no choices")
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("model returned empty content")
	}
	return content, nil
}
