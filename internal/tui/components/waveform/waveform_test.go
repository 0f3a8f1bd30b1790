package waveform

import (
	"math"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
)

func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

type fixedLevels struct {
	samples []int16
}

func (f fixedLevels) Read() []int16 { return f.samples }

func TestView_EmptySourceShowsBaseline(t *testing.T) {
	m := New(fixedLevels{}, 10, 2)

	out := m.View()
	lines := strings.Split(out, "\n")

	assert.Len(t, lines, 2)
	assert.Equal(t, strings.Repeat(" ", 10), lines[0])
	assert.Equal(t, strings.Repeat("▁", 10), lines[1])
}

func TestView_LoudSignalFillsColumns(t *testing.T) {
	loud := make([]int16, 100)
	for i := range loud {
		loud[i] = math.MaxInt16
	}

	m := New(fixedLevels{samples: loud}, 10, 2)

	out := m.View()

	assert.Contains(t, out, "█")
	assert.NotContains(t, out, "▁")
}

func TestView_NilSource(t *testing.T) {
	m := New(nil, 4, 1)

	assert.Equal(t, strings.Repeat("▁", 4), m.View())
}

func TestCellFill(t *testing.T) {
	// height 2: top row covers levels 8..16, bottom row 0..8.
	assert.Equal(t, 0, cellFill(0, 1, 2))
	assert.Equal(t, 8, cellFill(16, 0, 2))
	assert.Equal(t, 8, cellFill(9, 1, 2))
	assert.Equal(t, 1, cellFill(9, 0, 2))
	assert.Equal(t, 0, cellFill(5, 0, 2))
	assert.Equal(t, 5, cellFill(5, 1, 2))
}

func TestScaleAmplitude(t *testing.T) {
	assert.Equal(t, 0, scaleAmplitude(0, 16))
	assert.Equal(t, 16, scaleAmplitude(math.MaxInt16, 16))

	// The square-root curve keeps quiet audio visible.
	quiet := scaleAmplitude(math.MaxInt16/100, 16)
	assert.Greater(t, quiet, 0)
}

func TestPeak_HandlesMinInt16(t *testing.T) {
	assert.Equal(t, int16(math.MaxInt16), peak([]int16{math.MinInt16}))
	assert.Equal(t, int16(300), peak([]int16{-300, 200, 100}))
}
