// Package waveform renders live audio amplitude as a bar display.
package waveform

import (
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/voxnote/voxnote/internal/tui/style"
	"github.com/voxnote/voxnote/pkg/uictl"
)

// Block characters for amplitude visualization, index 0 is empty and 8 is
// a full cell.
const blockChars = " ▁▂▃▄▅▆▇█"

// TickMsg triggers a waveform redraw.
type TickMsg struct{}

// Model displays recent microphone samples as vertical bars, oldest on the
// left. The source is read once per render.
type Model struct {
	source uictl.Levels[int16]
	width  int
	height int
}

// New creates a waveform of the given character dimensions.
func New(source uictl.Levels[int16], width, height int) Model {
	if height < 1 {
		height = 1
	}

	return Model{
		source: source,
		width:  width,
		height: height,
	}
}

// Init schedules the first redraw.
func (m Model) Init() tea.Cmd {
	return m.tick()
}

// Update handles tick messages for animation.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if _, ok := msg.(TickMsg); ok {
		return m, m.tick()
	}

	return m, nil
}

// tick schedules the next redraw at ~20 FPS.
func (m Model) tick() tea.Cmd {
	return tea.Tick(50*time.Millisecond, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

// View renders the waveform.
func (m Model) View() string {
	var samples []int16
	if m.source != nil {
		samples = m.source.Read()
	}

	if len(samples) == 0 {
		return m.baseline()
	}

	levels := m.columnLevels(samples)
	blocks := []rune(blockChars)

	var sb strings.Builder
	for row := 0; row < m.height; row++ {
		if row > 0 {
			sb.WriteByte('\n')
		}

		var line strings.Builder
		for col := 0; col < m.width; col++ {
			line.WriteRune(blocks[cellFill(levels[col], row, m.height)])
		}

		sb.WriteString(style.Progress.Render(line.String()))
	}

	return sb.String()
}

// columnLevels buckets the samples into width columns and maps each
// bucket's peak amplitude to a level in [0, height*8].
func (m Model) columnLevels(samples []int16) []int {
	levels := make([]int, m.width)
	bucket := max(1, len(samples)/m.width)
	maxLevel := m.height * 8

	for col := range levels {
		start := col * bucket
		if start >= len(samples) {
			break
		}

		end := min(start+bucket, len(samples))
		levels[col] = scaleAmplitude(peak(samples[start:end]), maxLevel)
	}

	return levels
}

// cellFill returns the block index for one display cell. Row 0 is the top
// row; each row represents 8 fill steps.
func cellFill(level, row, height int) int {
	base := (height - 1 - row) * 8

	switch fill := level - base; {
	case fill <= 0:
		return 0
	case fill >= 8:
		return 8
	default:
		return fill
	}
}

// baseline renders the idle display: a flat line on the bottom row.
func (m Model) baseline() string {
	var sb strings.Builder
	for row := 0; row < m.height; row++ {
		if row > 0 {
			sb.WriteByte('\n')
		}

		ch := " "
		if row == m.height-1 {
			ch = "▁"
		}

		sb.WriteString(style.Muted.Render(strings.Repeat(ch, m.width)))
	}

	return sb.String()
}

// peak returns the largest absolute amplitude in the slice.
func peak(samples []int16) int16 {
	var p int16
	for _, s := range samples {
		if s == math.MinInt16 {
			return math.MaxInt16
		}

		if s < 0 {
			s = -s
		}

		if s > p {
			p = s
		}
	}

	return p
}

// scaleAmplitude maps an amplitude to [0, maxLevel] on a square-root curve
// so quiet audio stays visible.
func scaleAmplitude(amp int16, maxLevel int) int {
	if amp == 0 {
		return 0
	}

	normalized := float64(amp) / math.MaxInt16
	scaled := math.Sqrt(normalized) * float64(maxLevel)

	return min(int(scaled), maxLevel)
}
