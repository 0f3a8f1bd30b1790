package audio

import (
	"bytes"
	"errors"
	"fmt"

	mp3encoder "github.com/braheezy/shine-mp3/pkg/mp3"
)

// MIMETypeMP3 is the mime type attached to encoded clips.
const MIMETypeMP3 = "audio/mpeg"

// Clip is one finished recording: encoded audio bytes plus the mime type
// the inference service needs to interpret them.
type Clip struct {
	Data     []byte
	MIMEType string
}

// EncodeClip encodes mono S16LE samples into a single MP3 clip.
func EncodeClip(samples []int16, sampleRate int) (Clip, error) {
	if len(samples) == 0 {
		return Clip{}, errors.New("no samples to encode")
	}

	if sampleRate <= 0 {
		return Clip{}, errors.New("sample rate must be positive")
	}

	// WORKAROUND: shine-mp3 Write() miscounts frames for mono input, so
	// duplicate each sample into both channels and encode as stereo.
	stereo := make([]int16, len(samples)*2)
	for i, sample := range samples {
		stereo[i*2] = sample
		stereo[i*2+1] = sample
	}

	encoder := mp3encoder.NewEncoder(sampleRate, 2)

	var buf bytes.Buffer
	if err := encoder.Write(&buf, stereo); err != nil {
		return Clip{}, fmt.Errorf("failed to encode MP3 clip: %w", err)
	}

	return Clip{Data: buf.Bytes(), MIMEType: MIMETypeMP3}, nil
}
