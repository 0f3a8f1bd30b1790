package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// Claude implements the polish stage against the Anthropic API.
type Claude struct {
	apiKey string
	model  anthropic.Model
}

// NewClaude creates a Claude polisher.
func NewClaude(apiKey string) *Claude {
	return &Claude{
		apiKey: apiKey,
		model:  anthropic.ModelClaudeSonnet4_5_20250929,
	}
}

// Polish rewrites the raw transcript into a formatted markdown note.
func (c *Claude) Polish(ctx context.Context, transcript string) (string, error) {
	if c.apiKey == "" {
		return "", errors.New("API key required: set ANTHROPIC_API_KEY or store one with config set-key")
	}

	client := anthropic.NewClient(option.WithAPIKey(c.apiKey))

	params := anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: 4096,
		System: []anthropic.TextBlockParam{
			{Text: polishInstruction},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(transcript)),
		},
	}

	resp, err := client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("failed to polish via Anthropic API: %w", err)
	}

	// An empty response means the model had nothing to say, which the
	// pipeline treats as a distinct outcome from an API failure.
	if len(resp.Content) == 0 {
		return "", nil
	}

	textBlock, ok := resp.Content[0].AsAny().(anthropic.TextBlock)
	if !ok {
		return "", errors.New("unexpected response type from Anthropic API")
	}

	return textBlock.Text, nil
}
