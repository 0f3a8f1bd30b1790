package pipeline

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// DefaultGeminiModel handles both audio transcription and text polishing.
const DefaultGeminiModel = "gemini-2.5-flash"

// Gemini implements both pipeline stages against the Gemini API, sending
// the clip as an inline binary part for transcription.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini builds a Gemini provider using the given API key.
func NewGemini(ctx context.Context, apiKey string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is not set")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Gemini{client: client, model: DefaultGeminiModel}, nil
}

// Transcribe sends the instruction plus the raw audio bytes and returns the
// transcript text. An empty response is returned as-is, not as an error.
func (g *Gemini) Transcribe(ctx context.Context, data []byte, mimeType string) (string, error) {
	contents := []*genai.Content{{
		Parts: []*genai.Part{
			{Text: transcribeInstruction},
			{InlineData: &genai.Blob{MIMEType: mimeType, Data: data}},
		},
	}}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("gemini transcription request failed: %w", err)
	}

	return responseText(resp), nil
}

// Polish rewrites the transcript into markdown.
func (g *Gemini) Polish(ctx context.Context, transcript string) (string, error) {
	contents := []*genai.Content{{
		Parts: []*genai.Part{
			{Text: polishInstruction},
			{Text: "Raw transcription:\n" + transcript},
		},
	}}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("gemini polish request failed: %w", err)
	}

	return responseText(resp), nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}

	var out string
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			out += part.Text
		}
	}

	return out
}
