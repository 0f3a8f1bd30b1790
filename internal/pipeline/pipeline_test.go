package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voxnote/voxnote/internal/audio"
	"github.com/voxnote/voxnote/internal/note"
)

type fakeTranscriber struct {
	text string
	err  error
}

func (f *fakeTranscriber) Transcribe(_ context.Context, _ []byte, _ string) (string, error) {
	return f.text, f.err
}

type fakePolisher struct {
	text string
	err  error
}

func (f *fakePolisher) Polish(_ context.Context, _ string) (string, error) {
	return f.text, f.err
}

type recordingNotes struct {
	patches []note.Patch
	err     error
}

func (r *recordingNotes) Update(_ string, patch note.Patch) (note.Note, error) {
	if r.err != nil {
		return note.Note{}, r.err
	}

	r.patches = append(r.patches, patch)

	return note.Note{}, nil
}

func testClip() audio.Clip {
	return audio.Clip{Data: []byte{1, 2, 3}, MIMEType: audio.MIMETypeMP3}
}

func TestProcess_BothStagesPersist(t *testing.T) {
	notes := &recordingNotes{}
	p := New(
		&fakeTranscriber{text: "raw words"},
		&fakePolisher{text: "# Meeting Notes\nPolished body"},
		notes,
	)

	result, err := p.Process(context.Background(), "n1", testClip())
	require.NoError(t, err)

	assert.Equal(t, "raw words", result.RawTranscription)
	assert.Equal(t, "# Meeting Notes\nPolished body", result.PolishedNote)
	assert.Equal(t, "Meeting Notes", result.Title)

	require.Len(t, notes.patches, 2)

	first := notes.patches[0]
	require.NotNil(t, first.RawTranscription)
	assert.Equal(t, "raw words", *first.RawTranscription)
	assert.Nil(t, first.PolishedNote)

	second := notes.patches[1]
	require.NotNil(t, second.PolishedNote)
	require.NotNil(t, second.Title)
	assert.Equal(t, "Meeting Notes", *second.Title)
}

func TestProcess_PolishFailureKeepsTranscript(t *testing.T) {
	notes := &recordingNotes{}
	p := New(
		&fakeTranscriber{text: "raw words"},
		&fakePolisher{err: errors.New("model overloaded")},
		notes,
	)

	result, err := p.Process(context.Background(), "n1", testClip())
	require.Error(t, err)

	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, StagePolish, stageErr.Stage)

	// Stage 1 was persisted before the polish attempt.
	require.Len(t, notes.patches, 1)
	require.NotNil(t, notes.patches[0].RawTranscription)
	assert.Equal(t, "raw words", result.RawTranscription)
	assert.Empty(t, result.PolishedNote)
}

func TestProcess_TranscribeFailureWritesNothing(t *testing.T) {
	notes := &recordingNotes{}
	p := New(
		&fakeTranscriber{err: errors.New("network down")},
		&fakePolisher{text: "unused"},
		notes,
	)

	_, err := p.Process(context.Background(), "n1", testClip())

	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, StageTranscribe, stageErr.Stage)
	assert.Empty(t, notes.patches)
}

func TestProcess_EmptyTranscriptSkipsPolish(t *testing.T) {
	notes := &recordingNotes{}
	polisher := &fakePolisher{text: "should not run"}
	p := New(&fakeTranscriber{text: "   \n"}, polisher, notes)

	_, err := p.Process(context.Background(), "n1", testClip())

	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, StageTranscribe, stageErr.Stage)
	assert.ErrorIs(t, err, ErrEmptyResult)
	assert.Empty(t, notes.patches)
}

func TestProcess_EmptyPolishIsDistinctOutcome(t *testing.T) {
	notes := &recordingNotes{}
	p := New(&fakeTranscriber{text: "raw words"}, &fakePolisher{text: ""}, notes)

	result, err := p.Process(context.Background(), "n1", testClip())

	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, StagePolish, stageErr.Stage)
	assert.ErrorIs(t, err, ErrEmptyResult)

	// The transcript still made it to the note.
	require.Len(t, notes.patches, 1)
	assert.Equal(t, "raw words", result.RawTranscription)
}

func TestProcess_TitleLeftAloneWhenUnusable(t *testing.T) {
	notes := &recordingNotes{}
	p := New(&fakeTranscriber{text: "raw"}, &fakePolisher{text: "- only\n- bullets"}, notes)

	result, err := p.Process(context.Background(), "n1", testClip())
	require.NoError(t, err)

	assert.Empty(t, result.Title)
	require.Len(t, notes.patches, 2)
	assert.Nil(t, notes.patches[1].Title)
}

func TestStatusMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "empty transcript",
			err:  &StageError{Stage: StageTranscribe, Err: ErrEmptyResult},
			want: "Transcription returned no text. Try recording again.",
		},
		{
			name: "empty polish mentions saved transcript",
			err:  &StageError{Stage: StagePolish, Err: ErrEmptyResult},
			want: "Polishing returned no text. The raw transcript was saved.",
		},
		{
			name: "transcribe failure",
			err:  &StageError{Stage: StageTranscribe, Err: errors.New("dial tcp: timeout")},
			want: "Transcription failed: dial tcp: timeout",
		},
		{
			name: "non-stage error",
			err:  errors.New("boom"),
			want: "Processing failed: boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusMessage(tt.err))
		})
	}
}

func TestStatusMessage_Bounded(t *testing.T) {
	long := errors.New(longText(300))

	msg := StatusMessage(&StageError{Stage: StagePolish, Err: long})

	assert.LessOrEqual(t, len([]rune(msg)), 100)
	assert.True(t, len(msg) > 0)
}

func longText(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = 'x'
	}

	return string(b)
}
