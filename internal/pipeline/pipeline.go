// Package pipeline orchestrates the two remote stages that turn a recorded
// clip into note content: raw transcription, then polishing into markdown.
// Each stage is independently fallible and persists its result to the note
// repository immediately on success, so a polishing failure never loses the
// raw transcript.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/voxnote/voxnote/internal/audio"
	"github.com/voxnote/voxnote/internal/note"
)

// ErrEmptyResult marks a stage that completed without error but produced no
// text. This is a distinct outcome from a thrown failure.
var ErrEmptyResult = errors.New("empty result")

// Transcriber turns audio bytes into a plain text transcript.
type Transcriber interface {
	Transcribe(ctx context.Context, data []byte, mimeType string) (string, error)
}

// Polisher turns a raw transcript into formatted markdown.
type Polisher interface {
	Polish(ctx context.Context, transcript string) (string, error)
}

// Notes is the slice of the repository the pipeline writes into.
type Notes interface {
	Update(id string, patch note.Patch) (note.Note, error)
}

// Stage identifies which remote call a failure belongs to.
type Stage int

const (
	StageTranscribe Stage = iota
	StagePolish
)

func (s Stage) String() string {
	if s == StagePolish {
		return "polish"
	}

	return "transcribe"
}

// StageError wraps a stage failure with its origin.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Result carries whatever the pipeline managed to produce. On a polish
// failure the raw transcript is still populated (and already persisted).
type Result struct {
	RawTranscription string
	PolishedNote     string
	Title            string
}

// Pipeline wires the two stages to the note repository.
type Pipeline struct {
	transcriber Transcriber
	polisher    Polisher
	notes       Notes
}

// New creates a pipeline. All collaborators are required.
func New(transcriber Transcriber, polisher Polisher, notes Notes) *Pipeline {
	return &Pipeline{
		transcriber: transcriber,
		polisher:    polisher,
		notes:       notes,
	}
}

// Process runs both stages against the clip, feeding each stage's output
// into the note with the given id as soon as it is available. There is no
// retry; an in-flight stage runs to completion or failure.
func (p *Pipeline) Process(ctx context.Context, noteID string, clip audio.Clip) (Result, error) {
	var result Result

	raw, err := p.transcriber.Transcribe(ctx, clip.Data, clip.MIMEType)
	if err != nil {
		return result, &StageError{Stage: StageTranscribe, Err: err}
	}

	if strings.TrimSpace(raw) == "" {
		return result, &StageError{Stage: StageTranscribe, Err: ErrEmptyResult}
	}

	// Persist stage 1 before polishing starts.
	if _, err := p.notes.Update(noteID, note.Patch{RawTranscription: &raw}); err != nil {
		return result, &StageError{Stage: StageTranscribe, Err: err}
	}

	result.RawTranscription = raw

	polished, err := p.polisher.Polish(ctx, raw)
	if err != nil {
		return result, &StageError{Stage: StagePolish, Err: err}
	}

	if strings.TrimSpace(polished) == "" {
		return result, &StageError{Stage: StagePolish, Err: ErrEmptyResult}
	}

	patch := note.Patch{PolishedNote: &polished}
	if title, ok := ExtractTitle(polished); ok {
		patch.Title = &title
		result.Title = title
	}

	if _, err := p.notes.Update(noteID, patch); err != nil {
		return result, &StageError{Stage: StagePolish, Err: err}
	}

	result.PolishedNote = polished

	return result, nil
}

// statusLimit bounds user-facing status messages.
const statusLimit = 100

// StatusMessage translates a pipeline failure into the single short status
// string shown to the user.
func StatusMessage(err error) string {
	var stageErr *StageError
	if !errors.As(err, &stageErr) {
		return truncateStatus("Processing failed: " + err.Error())
	}

	if errors.Is(stageErr.Err, ErrEmptyResult) {
		if stageErr.Stage == StagePolish {
			return "Polishing returned no text. The raw transcript was saved."
		}

		return "Transcription returned no text. Try recording again."
	}

	if stageErr.Stage == StagePolish {
		return truncateStatus("Polishing failed (raw transcript saved): " + stageErr.Err.Error())
	}

	return truncateStatus("Transcription failed: " + stageErr.Err.Error())
}

func truncateStatus(s string) string {
	runes := []rune(s)
	if len(runes) <= statusLimit {
		return s
	}

	return string(runes[:statusLimit-3]) + "..."
}
