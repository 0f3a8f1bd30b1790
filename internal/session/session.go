// Package session owns the recording lifecycle: a state machine that
// acquires the audio input, accumulates PCM fragments while recording,
// and assembles them into a single encoded clip when capture stops.
//
// The session is a singleton per app instance. Every exit path, success or
// failure, releases the input device and the visualization resources.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/voxnote/voxnote/internal/audio"
	"github.com/voxnote/voxnote/pkg/channels"
)

// Phase is the session's lifecycle state.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseRequestingDevice
	PhaseRecording
	PhaseStopping
	PhaseProcessing
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseRequestingDevice:
		return "requesting device"
	case PhaseRecording:
		return "recording"
	case PhaseStopping:
		return "stopping"
	case PhaseProcessing:
		return "processing"
	default:
		return "unknown"
	}
}

// Defaults for capture accumulation.
const (
	// DefaultMaxBytes caps the in-memory PCM accumulation (64MB, roughly
	// half an hour of 16kHz mono).
	DefaultMaxBytes = 64 << 20

	// DefaultRingSize keeps one second of samples for the waveform feed.
	DefaultRingSize = audio.DefaultSampleRate
)

// Config configures a recording session.
type Config struct {
	SampleRate int
	Channels   int
	MaxBytes   int64
	RingSize   int
}

func (c Config) withDefaults() Config {
	if c.SampleRate == 0 {
		c.SampleRate = audio.DefaultSampleRate
	}

	if c.Channels == 0 {
		c.Channels = audio.DefaultChannels
	}

	if c.MaxBytes == 0 {
		c.MaxBytes = DefaultMaxBytes
	}

	if c.RingSize == 0 {
		c.RingSize = DefaultRingSize
	}

	return c
}

// Session is the recording state machine.
type Session struct {
	cfg  Config
	open audio.Opener

	mu        sync.Mutex
	phase     Phase
	dev       audio.Device
	cancel    context.CancelFunc
	bcast     *channels.Broadcaster[[]byte]
	fragC     chan []byte
	ringC     chan []byte
	fragments [][]byte
	captured  int64
	truncated bool
	startedAt time.Time
	ring      *audio.SampleRing
	sinks     sync.WaitGroup
}

// New creates an idle session. A nil opener uses the real malgo device.
func New(cfg Config, open audio.Opener) *Session {
	if open == nil {
		open = audio.NewDevice
	}

	return &Session{
		cfg:  cfg.withDefaults(),
		open: open,
	}
}

// Phase returns the current lifecycle state.
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.phase
}

// Recording reports whether capture is running.
func (s *Session) Recording() bool {
	return s.Phase() == PhaseRecording
}

// Active reports whether the session is anywhere other than Idle.
func (s *Session) Active() bool {
	return s.Phase() != PhaseIdle
}

// Start transitions Idle -> RequestingDevice -> Recording. Starting while
// a session is active is rejected without any state change. Device
// acquisition failures are classified (permission / not-found / busy /
// unsupported-format / unknown), all resources are released, and the
// session returns to Idle.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.phase != PhaseIdle {
		s.mu.Unlock()

		return ErrSessionActive
	}

	s.phase = PhaseRequestingDevice
	s.mu.Unlock()

	captureCtx, cancel := context.WithCancel(context.Background())

	bcast := channels.NewBroadcaster[[]byte]()
	fragC := make(chan []byte, 64)
	ringC := make(chan []byte, 64)

	// The fragment sink must not lose packets; the visualization sink may
	// drop under pressure.
	bcast.SubscribeWithTimeout(fragC, time.Second)
	bcast.Subscribe(ringC)

	input, err := bcast.Run(captureCtx)
	if err != nil {
		cancel()
		s.toIdle()

		return fmt.Errorf("failed to start capture broadcaster: %w", err)
	}

	dev := s.open(audio.DeviceConfig{
		SampleRate: s.cfg.SampleRate,
		Channels:   s.cfg.Channels,
	})

	if err := dev.CaptureInto(captureCtx, input); err != nil {
		dev.Dealloc(ctx)
		cancel()
		s.toIdle()

		return classifyDeviceError(err)
	}

	if err := dev.Start(ctx); err != nil {
		dev.Dealloc(ctx)
		cancel()
		s.toIdle()

		return classifyDeviceError(err)
	}

	s.mu.Lock()
	s.dev = dev
	s.cancel = cancel
	s.bcast = bcast
	s.fragC = fragC
	s.ringC = ringC
	s.fragments = nil
	s.captured = 0
	s.truncated = false
	s.ring = audio.NewSampleRing(s.cfg.RingSize)
	s.startedAt = time.Now()
	s.phase = PhaseRecording
	s.mu.Unlock()

	s.sinks.Add(2)
	go s.accumulate(fragC)
	go s.feedRing(ringC)

	return nil
}

// Finalize transitions Recording -> Stopping: the device is stopped and
// released, the capture fan-out is drained, and all accumulated fragments
// are assembled into one encoded clip. With audio captured the session
// moves to Processing and the clip is returned; with none it returns to
// Idle with ErrNoAudio.
func (s *Session) Finalize(ctx context.Context) (audio.Clip, error) {
	s.mu.Lock()
	if s.phase != PhaseRecording {
		s.mu.Unlock()

		return audio.Clip{}, ErrNotRecording
	}

	s.phase = PhaseStopping
	dev, cancel, bcast := s.dev, s.cancel, s.bcast
	fragC, ringC := s.fragC, s.ringC
	s.mu.Unlock()

	// Stop the device before closing the fan-out so no callback can write
	// into a closed channel.
	if err := dev.Stop(ctx); err != nil {
		slog.Warn("failed to stop audio device", "error", err)
	}

	cancel()
	bcast.Wait()
	close(fragC)
	close(ringC)
	s.sinks.Wait()
	dev.Dealloc(ctx)

	if dropped := bcast.Dropped(); dropped > 0 {
		slog.Debug("capture fan-out dropped packets", "dropped", dropped)
	}

	s.mu.Lock()
	fragments, total := s.fragments, s.captured
	s.dev, s.cancel, s.bcast, s.fragC, s.ringC = nil, nil, nil, nil, nil

	if total == 0 {
		s.phase = PhaseIdle
		s.ring = nil
		s.mu.Unlock()

		return audio.Clip{}, ErrNoAudio
	}
	s.mu.Unlock()

	pcm := make([]byte, 0, total)
	for _, fragment := range fragments {
		pcm = append(pcm, fragment...)
	}

	clip, err := audio.EncodeClip(audio.BytesToInt16(pcm), s.cfg.SampleRate)
	if err != nil {
		s.toIdle()

		return audio.Clip{}, fmt.Errorf("failed to assemble recording: %w", err)
	}

	s.mu.Lock()
	s.phase = PhaseProcessing
	s.fragments = nil
	s.captured = 0
	s.mu.Unlock()

	return clip, nil
}

// Complete transitions Processing -> Idle once the pipeline has finished
// with the clip, successfully or not. Safe to call in any state.
func (s *Session) Complete() {
	s.toIdle()
}

// Abort releases the device and all resources from any state and returns
// to Idle, discarding accumulated audio. Used on shutdown and on failure
// paths.
func (s *Session) Abort(ctx context.Context) {
	s.mu.Lock()
	dev, cancel, bcast := s.dev, s.cancel, s.bcast
	fragC, ringC := s.fragC, s.ringC
	recording := s.phase == PhaseRecording
	s.mu.Unlock()

	if recording && dev != nil {
		if err := dev.Stop(ctx); err != nil {
			slog.Warn("failed to stop audio device on abort", "error", err)
		}

		cancel()
		bcast.Wait()
		close(fragC)
		close(ringC)
		s.sinks.Wait()
	}

	if dev != nil {
		dev.Dealloc(ctx)
	}

	s.toIdle()
}

// Elapsed returns how long the current recording has been running.
func (s *Session) Elapsed() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseRecording {
		return 0
	}

	return time.Since(s.startedAt)
}

// ReadLevels returns up to n recent samples for the waveform feed.
func (s *Session) ReadLevels(n int) []int16 {
	s.mu.Lock()
	ring := s.ring
	s.mu.Unlock()

	if ring == nil {
		return nil
	}

	return ring.Read(n)
}

// CapturedBytes returns the accumulated PCM byte count and its cap.
func (s *Session) CapturedBytes() (int64, int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.captured, s.cfg.MaxBytes
}

func (s *Session) accumulate(fragC <-chan []byte) {
	defer s.sinks.Done()

	for data := range fragC {
		s.mu.Lock()
		if s.captured+int64(len(data)) > s.cfg.MaxBytes {
			if !s.truncated {
				s.truncated = true
				slog.Warn("capture limit reached, dropping further audio", "maxBytes", s.cfg.MaxBytes)
			}
			s.mu.Unlock()

			continue
		}

		s.fragments = append(s.fragments, data)
		s.captured += int64(len(data))
		s.mu.Unlock()
	}
}

func (s *Session) feedRing(ringC <-chan []byte) {
	defer s.sinks.Done()

	for data := range ringC {
		s.mu.Lock()
		ring := s.ring
		s.mu.Unlock()

		if ring != nil {
			ring.Write(audio.BytesToInt16(data))
		}
	}
}

func (s *Session) toIdle() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.phase = PhaseIdle
	s.dev = nil
	s.cancel = nil
	s.bcast = nil
	s.fragC = nil
	s.ringC = nil
	s.fragments = nil
	s.captured = 0
	s.ring = nil
}
