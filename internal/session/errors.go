package session

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSessionActive guards the entry point: starting while a recording
	// is active is rejected, leaving state unchanged.
	ErrSessionActive = errors.New("a recording session is already active")

	// ErrNotRecording is returned when stop is requested outside the
	// Recording phase.
	ErrNotRecording = errors.New("no recording in progress")

	// ErrNoAudio is returned when capture stopped without accumulating any
	// audio fragments. The pipeline is never invoked in this case.
	ErrNoAudio = errors.New("no audio captured")
)

// DeviceErrorKind categorizes audio input failures for user-facing
// reporting.
type DeviceErrorKind int

const (
	DeviceErrorUnknown DeviceErrorKind = iota
	DeviceErrorPermission
	DeviceErrorNotFound
	DeviceErrorBusy
	DeviceErrorUnsupportedFormat
)

func (k DeviceErrorKind) String() string {
	switch k {
	case DeviceErrorPermission:
		return "permission denied"
	case DeviceErrorNotFound:
		return "device not found"
	case DeviceErrorBusy:
		return "device busy"
	case DeviceErrorUnsupportedFormat:
		return "unsupported format"
	default:
		return "unknown"
	}
}

// DeviceError wraps an audio input failure with its category.
type DeviceError struct {
	Kind DeviceErrorKind
	Err  error
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("audio device error (%s): %v", e.Kind, e.Err)
}

func (e *DeviceError) Unwrap() error {
	return e.Err
}

// Message returns a short user-facing description of the failure.
func (e *DeviceError) Message() string {
	switch e.Kind {
	case DeviceErrorPermission:
		return "Microphone access denied. Check your system permissions."
	case DeviceErrorNotFound:
		return "No microphone found. Connect an input device and try again."
	case DeviceErrorBusy:
		return "Microphone is in use by another application."
	case DeviceErrorUnsupportedFormat:
		return "The requested audio format is not supported by this device."
	default:
		return "Could not access the microphone."
	}
}

// classifyDeviceError maps a raw device failure onto the error taxonomy.
// malgo surfaces errors as strings, so classification is by message.
func classifyDeviceError(err error) *DeviceError {
	msg := strings.ToLower(err.Error())

	kind := DeviceErrorUnknown

	switch {
	case strings.Contains(msg, "access denied") || strings.Contains(msg, "permission"):
		kind = DeviceErrorPermission
	case strings.Contains(msg, "no device") || strings.Contains(msg, "not found") ||
		strings.Contains(msg, "no backend"):
		kind = DeviceErrorNotFound
	case strings.Contains(msg, "busy") || strings.Contains(msg, "in use"):
		kind = DeviceErrorBusy
	case strings.Contains(msg, "format") || strings.Contains(msg, "not supported"):
		kind = DeviceErrorUnsupportedFormat
	}

	return &DeviceError{Kind: kind, Err: err}
}
