// Package audio wraps microphone capture and clip encoding. The capture
// device delivers raw S16LE PCM packets into a channel; the rest of the
// system never touches the hardware directly.
package audio

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gen2brain/malgo"
	"github.com/voxnote/voxnote/pkg/collections"
)

// Capture defaults. 16kHz mono is the native rate for speech models.
const (
	DefaultSampleRate = 16_000
	DefaultChannels   = 1
)

// DeviceConfig configures a capture device.
type DeviceConfig struct {
	SampleRate int
	Channels   int
}

// WithDefaults returns the config with defaults applied to zero fields.
func (c DeviceConfig) WithDefaults() DeviceConfig {
	if c.SampleRate == 0 {
		c.SampleRate = DefaultSampleRate
	}

	if c.Channels == 0 {
		c.Channels = DefaultChannels
	}

	return c
}

// Device is an exclusive handle on an audio input. Implementations must be
// releasable on every exit path: Dealloc is safe to call in any state.
type Device interface {
	// CaptureInto initializes the underlying device so that, once Start is
	// called, packets of sampled PCM bytes are written into dataC.
	CaptureInto(ctx context.Context, dataC chan<- []byte) error

	// Start begins capture.
	Start(ctx context.Context) error

	// Stop halts capture. No packets are delivered after Stop returns.
	// A no-op if the device was never initialized.
	Stop(ctx context.Context) error

	// IsStarted reports whether capture is running.
	IsStarted() bool

	// Dealloc frees the underlying device and context.
	Dealloc(ctx context.Context)
}

// Opener creates capture devices. The recording session takes an Opener so
// tests can substitute a fake input.
type Opener func(conf DeviceConfig) Device

// NewDevice returns a malgo-backed capture device.
func NewDevice(conf DeviceConfig) Device {
	return &device{conf: conf.WithDefaults()}
}

type device struct {
	conf DeviceConfig

	mgCtx    *malgo.AllocatedContext
	mgDevice *malgo.Device
}

func (d *device) CaptureInto(ctx context.Context, dataC chan<- []byte) error {
	if dataC == nil {
		return fmt.Errorf("data channel is nil, unable to allocate device")
	}

	mgCtx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return fmt.Errorf("failed to initialize malgo context: %w", err)
	}

	devCnf := malgo.DefaultDeviceConfig(malgo.Capture)
	devCnf.Capture.Format = malgo.FormatS16
	devCnf.Capture.Channels = uint32(d.conf.Channels)
	devCnf.SampleRate = uint32(d.conf.SampleRate)

	callbacks := malgo.DeviceCallbacks{
		Data: func(_, samples []byte, _ uint32) {
			// Samples are reused by malgo after the callback returns.
			packet := make([]byte, len(samples))
			copy(packet, samples)
			dataC <- packet
		},
	}

	mgDevice, err := malgo.InitDevice(mgCtx.Context, devCnf, callbacks)
	if err != nil {
		uninitializeContext(mgCtx)

		return fmt.Errorf("failed to initialize malgo capture device: %w", err)
	}

	d.mgCtx = mgCtx
	d.mgDevice = mgDevice

	return nil
}

func (d *device) Start(ctx context.Context) error {
	if d.mgDevice == nil {
		return fmt.Errorf("device nil, have you called CaptureInto?")
	}

	if d.mgDevice.IsStarted() {
		return nil
	}

	if err := d.mgDevice.Start(); err != nil {
		return fmt.Errorf("failed to start malgo device: %w", err)
	}

	return nil
}

func (d *device) Stop(ctx context.Context) error {
	if d.mgDevice == nil {
		return nil
	}

	if err := d.mgDevice.Stop(); err != nil {
		return fmt.Errorf("failed to stop malgo device: %w", err)
	}

	return nil
}

func (d *device) IsStarted() bool {
	if d.mgDevice == nil {
		return false
	}

	return d.mgDevice.IsStarted()
}

func (d *device) Dealloc(ctx context.Context) {
	if d.mgDevice == nil {
		return
	}

	d.mgDevice.Uninit()
	d.mgCtx.Free()
	d.mgDevice = nil
	d.mgCtx = nil
}

// Info describes an available capture device.
type Info struct {
	Name        string
	IsDefault   bool
	FormatCount int
	Formats     []string
}

// EnumerateDevices lists the available capture devices.
func EnumerateDevices(ctx context.Context) ([]Info, error) {
	devCtx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize malgo context: %w", err)
	}
	defer uninitializeContext(devCtx)

	captureDevices, err := devCtx.Devices(malgo.Capture)
	if err != nil {
		return nil, fmt.Errorf("failed to get capture devices: %w", err)
	}

	return collections.Apply(captureDevices, malgoDeviceInfoToInfo), nil
}

func malgoDeviceInfoToInfo(mdi malgo.DeviceInfo) Info {
	formats := make([]string, len(mdi.Formats))
	for i, mf := range mdi.Formats {
		formats[i] = fmt.Sprintf("(SampleSizeBytes: %d, Channels: %d, SampleRate: %d)",
			malgo.SampleSizeInBytes(mf.Format),
			mf.Channels, mf.SampleRate)
	}

	return Info{
		Name:        mdi.Name(),
		IsDefault:   mdi.IsDefault != 0,
		FormatCount: int(mdi.FormatCount),
		Formats:     formats,
	}
}

func uninitializeContext(deviceCtx *malgo.AllocatedContext) {
	if deviceCtx == nil {
		return
	}

	if err := deviceCtx.Uninit(); err != nil {
		slog.Error("failed to uninitialize malgo context", "error", err)
	}
	deviceCtx.Free()
}
