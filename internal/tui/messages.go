package tui

import (
	"github.com/voxnote/voxnote/internal/audio"
	"github.com/voxnote/voxnote/internal/pipeline"
)

// recordStartedMsg reports that the capture device is live.
type recordStartedMsg struct{}

// recordFailedMsg reports a device acquisition or capture failure.
type recordFailedMsg struct {
	err error
}

// clipReadyMsg carries the encoded recording into the processing stage.
type clipReadyMsg struct {
	noteID string
	clip   audio.Clip
}

// noAudioMsg reports a stop with nothing captured.
type noAudioMsg struct{}

// processedMsg reports a completed pipeline run.
type processedMsg struct {
	noteID string
	result pipeline.Result
}

// processFailedMsg reports a pipeline failure; any stage that completed
// before the failure has already been persisted.
type processFailedMsg struct {
	noteID string
	err    error
}
