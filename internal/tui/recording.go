package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/stopwatch"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/voxnote/voxnote/internal/tui/components/waveform"
	"github.com/voxnote/voxnote/internal/tui/style"
	"github.com/voxnote/voxnote/pkg/uictl"
)

var (
	_ uictl.CappedDial[int64] = capturedDial{}
	_ uictl.Levels[int16]     = recentLevels{}
)

const (
	waveWidth    = 60
	waveHeight   = 3
	waveSamples  = 4000
	progressCols = 40
)

// capturedDial adapts the recorder's byte counters to a uictl.CappedDial.
type capturedDial struct {
	rec Recorder
}

func (d capturedDial) Read() int64 {
	n, _ := d.rec.CapturedBytes()
	return n
}

func (d capturedDial) Cap() (int64, int64) {
	return d.rec.CapturedBytes()
}

// recentLevels adapts the recorder's sample window to a uictl.Levels.
type recentLevels struct {
	rec Recorder
}

func (l recentLevels) Read() []int16 {
	return l.rec.ReadLevels(waveSamples)
}

// recordingOverlay is the live view shown while capture is running.
type recordingOverlay struct {
	keys      keyMap
	rec       Recorder
	spinner   spinner.Model
	stopwatch stopwatch.Model
	progress  progress.Model
	wave      waveform.Model
}

func newRecordingOverlay(rec Recorder, keys keyMap) recordingOverlay {
	s := spinner.New()
	s.Spinner = spinner.Points

	p := progress.New(
		progress.WithDefaultGradient(),
		progress.WithWidth(progressCols),
		progress.WithoutPercentage(),
	)

	return recordingOverlay{
		keys:      keys,
		rec:       rec,
		spinner:   s,
		stopwatch: stopwatch.NewWithInterval(time.Second),
		progress:  p,
		wave:      waveform.New(recentLevels{rec: rec}, waveWidth, waveHeight),
	}
}

func (r recordingOverlay) Init() tea.Cmd {
	return tea.Batch(r.spinner.Tick, r.stopwatch.Start(), r.wave.Init())
}

func (r recordingOverlay) Update(msg tea.Msg) (recordingOverlay, tea.Cmd) {
	var cmds []tea.Cmd

	switch typed := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		r.spinner, cmd = r.spinner.Update(typed)
		cmds = append(cmds, cmd)

	case waveform.TickMsg:
		var cmd tea.Cmd
		r.wave, cmd = r.wave.Update(typed)
		cmds = append(cmds, cmd)

	case progress.FrameMsg:
		progressModel, cmd := r.progress.Update(typed)
		r.progress = progressModel.(progress.Model) //nolint:forcetypeassert // bubbles library contract
		cmds = append(cmds, cmd)
	}

	var cmd tea.Cmd
	r.stopwatch, cmd = r.stopwatch.Update(msg)
	if cmd != nil {
		cmds = append(cmds, cmd)
	}

	return r, tea.Batch(cmds...)
}

func (r recordingOverlay) View() string {
	var sb strings.Builder

	sb.WriteString(r.spinner.View())
	sb.WriteString(" ")
	sb.WriteString(style.Title.Render("Recording"))
	sb.WriteString(" ")
	sb.WriteString(style.Subtitle.Render(r.stopwatch.View()))
	sb.WriteString("\n\n")

	sb.WriteString(r.wave.View())
	sb.WriteString("\n\n")

	dial := capturedDial{rec: r.rec}
	current, maxBytes := dial.Cap()
	percent := float64(0)
	if maxBytes > 0 {
		percent = float64(current) / float64(maxBytes)
	}

	sb.WriteString(r.progress.ViewAs(percent))
	sb.WriteString("\n")
	sb.WriteString(style.Subtitle.Render(formatBytes(current, maxBytes)))
	sb.WriteString("\n\n")

	sb.WriteString(style.Help.Render(
		style.Key.Render("space") + " stop and transcribe  " +
			style.Key.Render("esc") + " discard"))

	return sb.String()
}

// formatBytes formats captured size against the cap.
func formatBytes(current, maxBytes int64) string {
	currentMB := float64(current) / (1024 * 1024)
	if maxBytes == 0 {
		return fmt.Sprintf("%.1f MB / unlimited", currentMB)
	}

	maxMB := float64(maxBytes) / (1024 * 1024)
	percent := int(float64(current) / float64(maxBytes) * 100)

	return fmt.Sprintf("%.1f MB / %.1f MB (%d%%)", currentMB, maxMB, percent)
}
