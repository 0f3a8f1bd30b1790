package audio_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/voxnote/voxnote/internal/audio"
)

func TestSampleRing_ReadMostRecent(t *testing.T) {
	t.Parallel()

	ring := audio.NewSampleRing(4)

	ring.Write([]int16{1, 2, 3})
	assert.Equal(t, []int16{1, 2, 3}, ring.Read(3))
	assert.Equal(t, []int16{2, 3}, ring.Read(2), "read returns the newest samples")

	// Overflow wraps, discarding the oldest.
	ring.Write([]int16{4, 5})
	assert.Equal(t, 4, ring.Count())
	assert.Equal(t, []int16{2, 3, 4, 5}, ring.Read(10))
}

func TestSampleRing_EmptyRead(t *testing.T) {
	t.Parallel()

	ring := audio.NewSampleRing(8)
	assert.Nil(t, ring.Read(4))
	assert.Zero(t, ring.Count())
}

func TestBytesToInt16(t *testing.T) {
	t.Parallel()

	// 0x0102 and 0xFFFF (-1) little-endian.
	samples := audio.BytesToInt16([]byte{0x02, 0x01, 0xFF, 0xFF})
	assert.Equal(t, []int16{258, -1}, samples)

	assert.Nil(t, audio.BytesToInt16([]byte{0x01}), "odd trailing byte is dropped")
}

func TestEncodeClip(t *testing.T) {
	t.Parallel()

	// One second of silence at 16kHz is enough for a few MP3 frames.
	samples := make([]int16, 16_000)

	clip, err := audio.EncodeClip(samples, 16_000)
	require.NoError(t, err)

	assert.Equal(t, audio.MIMETypeMP3, clip.MIMEType)
	assert.NotEmpty(t, clip.Data)
}

func TestEncodeClip_Invalid(t *testing.T) {
	t.Parallel()

	_, err := audio.EncodeClip(nil, 16_000)
	assert.Error(t, err)

	_, err = audio.EncodeClip([]int16{1, 2, 3}, 0)
	assert.Error(t, err)
}
