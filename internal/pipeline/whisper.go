package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Whisper implements the transcription stage against the OpenAI Whisper
// API. It only transcribes; pair it with a Polisher such as Claude.
type Whisper struct {
	apiKey string
}

// NewWhisper creates a Whisper transcriber.
func NewWhisper(apiKey string) *Whisper {
	return &Whisper{
		apiKey: apiKey,
	}
}

// Transcribe sends the encoded clip to the Whisper API.
func (w *Whisper) Transcribe(ctx context.Context, data []byte, mimeType string) (string, error) {
	if w.apiKey == "" {
		return "", errors.New("API key required: set OPENAI_API_KEY or store one with config set-key")
	}

	client := openai.NewClient(option.WithAPIKey(w.apiKey))

	params := openai.AudioTranscriptionNewParams{
		File:  bytes.NewReader(data),
		Model: openai.AudioModelWhisper1,
	}

	resp, err := client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("failed to create transcription via Whisper API: %w", err)
	}

	return resp.Text, nil
}
