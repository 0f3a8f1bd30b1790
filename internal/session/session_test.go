package session_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/voxnote/voxnote/internal/audio"
	"github.com/voxnote/voxnote/internal/session"
)

// fakeDevice is a scriptable audio input for session tests.
type fakeDevice struct {
	dataC      chan<- []byte
	started    bool
	dealloced  bool
	captureErr error
	startErr   error
}

func (d *fakeDevice) CaptureInto(_ context.Context, dataC chan<- []byte) error {
	if d.captureErr != nil {
		return d.captureErr
	}

	d.dataC = dataC

	return nil
}

func (d *fakeDevice) Start(_ context.Context) error {
	if d.startErr != nil {
		return d.startErr
	}

	d.started = true

	return nil
}

func (d *fakeDevice) Stop(_ context.Context) error {
	d.started = false

	return nil
}

func (d *fakeDevice) IsStarted() bool {
	return d.started
}

func (d *fakeDevice) Dealloc(_ context.Context) {
	d.dealloced = true
}

func (d *fakeDevice) push(data []byte) {
	d.dataC <- data
}

func newTestSession(dev *fakeDevice) *session.Session {
	return session.New(session.Config{SampleRate: 16_000}, func(audio.DeviceConfig) audio.Device {
		return dev
	})
}

func TestSession_RecordFinalizeComplete(t *testing.T) {
	ctx := context.Background()
	dev := &fakeDevice{}
	s := newTestSession(dev)

	require.Equal(t, session.PhaseIdle, s.Phase())

	require.NoError(t, s.Start(ctx))
	assert.Equal(t, session.PhaseRecording, s.Phase())
	assert.True(t, dev.started)

	// Two seconds of silence, in fragments.
	fragment := make([]byte, 8_000)
	for range 8 {
		dev.push(fragment)
	}

	// Wait until the accumulation sink has drained the fan-out.
	require.Eventually(t, func() bool {
		captured, _ := s.CapturedBytes()

		return captured == 64_000
	}, time.Second, 10*time.Millisecond)

	clip, err := s.Finalize(ctx)
	require.NoError(t, err)
	assert.Equal(t, session.PhaseProcessing, s.Phase())
	assert.Equal(t, audio.MIMETypeMP3, clip.MIMEType)
	assert.NotEmpty(t, clip.Data)
	assert.True(t, dev.dealloced, "device must be released when capture stops")

	s.Complete()
	assert.Equal(t, session.PhaseIdle, s.Phase())
}

func TestSession_FinalizeWithoutAudio(t *testing.T) {
	ctx := context.Background()
	dev := &fakeDevice{}
	s := newTestSession(dev)

	require.NoError(t, s.Start(ctx))

	_, err := s.Finalize(ctx)
	assert.ErrorIs(t, err, session.ErrNoAudio, "zero fragments must never reach the pipeline")
	assert.Equal(t, session.PhaseIdle, s.Phase())
	assert.True(t, dev.dealloced)
}

func TestSession_DoubleStartRejected(t *testing.T) {
	ctx := context.Background()
	dev := &fakeDevice{}
	s := newTestSession(dev)

	require.NoError(t, s.Start(ctx))

	err := s.Start(ctx)
	assert.ErrorIs(t, err, session.ErrSessionActive)
	assert.Equal(t, session.PhaseRecording, s.Phase(), "guarded start must not change state")
}

func TestSession_FinalizeWhenIdle(t *testing.T) {
	s := newTestSession(&fakeDevice{})

	_, err := s.Finalize(context.Background())
	assert.ErrorIs(t, err, session.ErrNotRecording)
}

func TestSession_DeviceFailureReturnsToIdle(t *testing.T) {
	tests := []struct {
		name     string
		dev      *fakeDevice
		wantKind session.DeviceErrorKind
	}{
		{
			name:     "permission denied during acquisition",
			dev:      &fakeDevice{captureErr: errors.New("malgo: access denied")},
			wantKind: session.DeviceErrorPermission,
		},
		{
			name:     "no device available",
			dev:      &fakeDevice{captureErr: errors.New("malgo: no device found")},
			wantKind: session.DeviceErrorNotFound,
		},
		{
			name:     "device busy on start",
			dev:      &fakeDevice{startErr: errors.New("malgo: device busy")},
			wantKind: session.DeviceErrorBusy,
		},
		{
			name:     "unsupported format",
			dev:      &fakeDevice{startErr: errors.New("format not supported")},
			wantKind: session.DeviceErrorUnsupportedFormat,
		},
		{
			name:     "anything else is unknown",
			dev:      &fakeDevice{captureErr: errors.New("backend exploded")},
			wantKind: session.DeviceErrorUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSession(tt.dev)

			err := s.Start(context.Background())
			require.Error(t, err)

			var devErr *session.DeviceError
			require.ErrorAs(t, err, &devErr)
			assert.Equal(t, tt.wantKind, devErr.Kind)
			assert.NotEmpty(t, devErr.Message())

			assert.Equal(t, session.PhaseIdle, s.Phase(), "failure must return to Idle")
			assert.True(t, tt.dev.dealloced, "device must be released on every exit path")
		})
	}
}

func TestSession_ElapsedAndLevels(t *testing.T) {
	ctx := context.Background()
	dev := &fakeDevice{}
	s := newTestSession(dev)

	assert.Zero(t, s.Elapsed())
	assert.Nil(t, s.ReadLevels(100))

	require.NoError(t, s.Start(ctx))

	dev.push([]byte{0x01, 0x02, 0x03, 0x04})
	require.Eventually(t, func() bool {
		return len(s.ReadLevels(100)) == 2
	}, time.Second, 10*time.Millisecond)

	assert.Positive(t, s.Elapsed())

	s.Abort(ctx)
	assert.Equal(t, session.PhaseIdle, s.Phase())
	assert.True(t, dev.dealloced)
}
