// Package tui implements the interactive note browser and recorder.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/stopwatch"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/voxnote/voxnote/internal/audio"
	"github.com/voxnote/voxnote/internal/export"
	"github.com/voxnote/voxnote/internal/note"
	"github.com/voxnote/voxnote/internal/pipeline"
	"github.com/voxnote/voxnote/internal/session"
	"github.com/voxnote/voxnote/internal/store"
	"github.com/voxnote/voxnote/internal/tui/components/labeledspinner"
	"github.com/voxnote/voxnote/internal/tui/components/waveform"
	"github.com/voxnote/voxnote/internal/tui/style"
)

// Recorder drives the capture session. *session.Session satisfies it.
type Recorder interface {
	Phase() session.Phase
	Active() bool
	Start(ctx context.Context) error
	Finalize(ctx context.Context) (audio.Clip, error)
	Complete()
	Abort(ctx context.Context)
	Elapsed() time.Duration
	ReadLevels(n int) []int16
	CapturedBytes() (int64, int64)
}

// Processor runs the transcription pipeline. *pipeline.Pipeline satisfies
// it.
type Processor interface {
	Process(ctx context.Context, noteID string, clip audio.Clip) (pipeline.Result, error)
}

// ThemeStore persists the theme preference. *store.FileStore satisfies it.
type ThemeStore interface {
	SaveTheme(theme store.Theme) error
}

type confirmKind int

const (
	confirmNone confirmKind = iota
	confirmDelete
	confirmClear
	confirmExportRaw
)

const (
	listWidth   = 32
	statusLimit = 100
)

// Model is the root bubbletea model.
type Model struct {
	ctx       context.Context
	notes     *note.Repository
	recorder  Recorder
	processor Processor
	themes    ThemeStore
	exportDir string

	keys     keyMap
	viewport viewport.Model
	rename   textinput.Model
	busy     labeledspinner.Model
	overlay  recordingOverlay

	renaming bool
	confirm  confirmKind
	showRaw  bool
	theme    store.Theme
	status   string

	width  int
	height int
	ready  bool
}

// Options carries the collaborators the model needs.
type Options struct {
	Notes     *note.Repository
	Recorder  Recorder
	Processor Processor
	Themes    ThemeStore
	Theme     store.Theme
	ExportDir string
}

// New creates the root model. The context bounds all recording and
// pipeline work started from the UI.
func New(ctx context.Context, opts Options) Model {
	rename := textinput.New()
	rename.CharLimit = 120
	rename.Width = 40

	style.ApplyTheme(opts.Theme)

	m := Model{
		ctx:       ctx,
		notes:     opts.Notes,
		recorder:  opts.Recorder,
		processor: opts.Processor,
		themes:    opts.Themes,
		exportDir: opts.ExportDir,
		keys:      defaultKeyMap(),
		rename:    rename,
		busy:      labeledspinner.New(spinner.Points, "Processing", "Transcribing and polishing your note", ""),
		theme:     opts.Theme,
		viewport:  viewport.New(0, 0),
	}
	m.refreshContent()

	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = typed.Width
		m.height = typed.Height
		m.viewport.Width = max(20, typed.Width-listWidth-6)
		m.viewport.Height = max(5, typed.Height-7)
		m.ready = true
		m.refreshContent()

		return m, nil

	case tea.KeyMsg:
		return m.handleKey(typed)

	case recordStartedMsg:
		m.overlay = newRecordingOverlay(m.recorder, m.keys)
		m.status = ""

		return m, m.overlay.Init()

	case recordFailedMsg:
		m.setStatus(deviceStatus(typed.err))

		return m, nil

	case noAudioMsg:
		m.setStatus("No audio captured. Note unchanged.")

		return m, nil

	case clipReadyMsg:
		return m, tea.Batch(m.busy.Init(), m.processCmd(typed.noteID, typed.clip))

	case processedMsg:
		m.recorder.Complete()
		m.refreshContent()
		m.setStatus("Note ready: " + displayTitle(typed.result.Title))

		return m, nil

	case processFailedMsg:
		m.recorder.Complete()
		m.refreshContent()
		m.setStatus(pipeline.StatusMessage(typed.err))

		return m, nil
	}

	return m.routeComponentMsg(msg)
}

// routeComponentMsg forwards animation messages to whichever sub-model is
// on screen.
func (m Model) routeComponentMsg(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch m.recorder.Phase() {
	case session.PhaseRecording, session.PhaseRequestingDevice, session.PhaseStopping:
		var cmd tea.Cmd
		m.overlay, cmd = m.overlay.Update(msg)
		cmds = append(cmds, cmd)

	case session.PhaseProcessing:
		var cmd tea.Cmd
		m.busy, cmd = m.busy.Update(msg)
		cmds = append(cmds, cmd)

	case session.PhaseIdle:
		// Late animation frames after a phase change are dropped.
		switch msg.(type) {
		case spinner.TickMsg, stopwatch.TickMsg, progress.FrameMsg, waveform.TickMsg:
			return m, nil
		}
	}

	if m.renaming {
		var cmd tea.Cmd
		m.rename, cmd = m.rename.Update(msg)
		cmds = append(cmds, cmd)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// ctrl+c always quits, regardless of prompt state.
	if msg.String() == "ctrl+c" {
		if m.recorder.Active() {
			m.recorder.Abort(m.ctx)
		}

		return m, tea.Quit
	}

	if m.renaming {
		return m.handleRenameKey(msg)
	}

	if m.confirm != confirmNone {
		return m.handleConfirmKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		if m.recorder.Active() {
			m.recorder.Abort(m.ctx)
		}

		return m, tea.Quit

	case key.Matches(msg, m.keys.Record):
		return m.handleRecordKey()

	case key.Matches(msg, m.keys.Cancel):
		if m.recorder.Phase() == session.PhaseRecording {
			m.recorder.Abort(m.ctx)
			m.setStatus("Recording discarded.")
		}

		return m, nil

	case key.Matches(msg, m.keys.Up):
		return m.moveSelection(-1), nil

	case key.Matches(msg, m.keys.Down):
		return m.moveSelection(1), nil

	case key.Matches(msg, m.keys.New):
		if m.blockWhileBusy() {
			return m, nil
		}

		n := m.notes.Create()
		m.showRaw = false
		m.refreshContent()
		m.setStatus("Created " + displayTitle(n.Title))

		return m, nil

	case key.Matches(msg, m.keys.Rename):
		if m.blockWhileBusy() {
			return m, nil
		}

		m.renaming = true
		m.rename.SetValue(m.notes.Current().Title)
		m.rename.CursorEnd()

		return m, m.rename.Focus()

	case key.Matches(msg, m.keys.Delete):
		if m.blockWhileBusy() {
			return m, nil
		}

		m.confirm = confirmDelete

		return m, nil

	case key.Matches(msg, m.keys.Clear):
		if m.blockWhileBusy() {
			return m, nil
		}

		m.confirm = confirmClear

		return m, nil

	case key.Matches(msg, m.keys.Export):
		// Exporting only the raw transcript is confirmed first: the file
		// is a fallback format, not the polished note the user may expect.
		current := m.notes.Current()
		if current.PolishedNote == "" && current.RawTranscription != "" {
			m.confirm = confirmExportRaw

			return m, nil
		}

		m.exportCurrent()

		return m, nil

	case key.Matches(msg, m.keys.ToggleRaw):
		m.showRaw = !m.showRaw
		m.refreshContent()

		return m, nil

	case key.Matches(msg, m.keys.Theme):
		m.toggleTheme()

		return m, nil
	}

	return m.routeComponentMsg(msg)
}

func (m Model) handleRecordKey() (tea.Model, tea.Cmd) {
	switch m.recorder.Phase() {
	case session.PhaseIdle:
		return m, m.startRecordingCmd()

	case session.PhaseRecording:
		return m, m.stopRecordingCmd(m.notes.Current().ID)

	case session.PhaseRequestingDevice, session.PhaseStopping, session.PhaseProcessing:
		m.setStatus("Still working on the previous recording.")
	}

	return m, nil
}

func (m Model) handleRenameKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		title := strings.TrimSpace(m.rename.Value())
		if title != "" {
			if _, err := m.notes.Update(m.notes.Current().ID, note.Patch{Title: &title}); err != nil {
				m.setStatus("Rename failed: " + err.Error())
			}
		}

		m.renaming = false
		m.rename.Blur()
		m.refreshContent()

		return m, nil

	case key.Matches(msg, m.keys.Cancel):
		m.renaming = false
		m.rename.Blur()

		return m, nil
	}

	var cmd tea.Cmd
	m.rename, cmd = m.rename.Update(msg)

	return m, cmd
}

func (m Model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		switch m.confirm {
		case confirmDelete:
			current := m.notes.Current()
			if err := m.notes.Delete(current.ID); err != nil {
				m.setStatus("Delete failed: " + err.Error())
			} else {
				m.setStatus("Deleted " + displayTitle(current.Title))
			}

			m.showRaw = false
			m.refreshContent()

		case confirmClear:
			m.notes.ClearAll()
			m.setStatus("All notes cleared.")
			m.showRaw = false
			m.refreshContent()

		case confirmExportRaw:
			m.exportCurrent()

		case confirmNone:
		}

		m.confirm = confirmNone

	case key.Matches(msg, m.keys.Cancel):
		m.confirm = confirmNone
	}

	return m, nil
}

// moveSelection steps the current note up or down the sorted list.
// Switching notes is blocked while a recording is in flight.
func (m Model) moveSelection(delta int) Model {
	if m.recorder.Active() {
		m.setStatus("Finish the current recording before switching notes.")

		return m
	}

	notes := m.notes.Notes()
	currentID := m.notes.Current().ID

	for i, n := range notes {
		if n.ID == currentID {
			next := i + delta
			if next >= 0 && next < len(notes) {
				m.notes.Select(notes[next].ID)
				m.showRaw = false
				m.refreshContent()
			}

			break
		}
	}

	return m
}

func (m *Model) blockWhileBusy() bool {
	if m.recorder.Active() {
		m.setStatus("Finish the current recording first.")

		return true
	}

	return false
}

func (m *Model) exportCurrent() {
	path, err := export.Write(m.exportDir, m.notes.Current())
	if err != nil {
		if errors.Is(err, export.ErrNothingToExport) {
			m.setStatus("Nothing to export yet. Record something first.")

			return
		}

		m.setStatus("Export failed: " + err.Error())

		return
	}

	m.setStatus("Saved " + path)
}

func (m *Model) toggleTheme() {
	if m.theme == store.ThemeDark {
		m.theme = store.ThemeLight
	} else {
		m.theme = store.ThemeDark
	}

	style.ApplyTheme(m.theme)

	if m.themes != nil {
		if err := m.themes.SaveTheme(m.theme); err != nil {
			m.setStatus("Theme not saved: " + err.Error())

			return
		}
	}

	m.setStatus("Theme: " + string(m.theme))
}

func (m *Model) refreshContent() {
	current := m.notes.Current()

	var body string
	switch {
	case m.showRaw && current.RawTranscription != "":
		body = current.RawTranscription
	case !m.showRaw && current.PolishedNote != "":
		body = current.PolishedNote
	case current.RawTranscription != "":
		body = current.RawTranscription
	default:
		body = style.Muted.Render("No content yet. Press space to record.")
	}

	m.viewport.SetContent(body)
	m.viewport.GotoTop()
}

func (m *Model) setStatus(s string) {
	runes := []rune(s)
	if len(runes) > statusLimit {
		s = string(runes[:statusLimit-3]) + "..."
	}

	m.status = s
}

// Commands

func (m Model) startRecordingCmd() tea.Cmd {
	return func() tea.Msg {
		if err := m.recorder.Start(m.ctx); err != nil {
			return recordFailedMsg{err: err}
		}

		return recordStartedMsg{}
	}
}

func (m Model) stopRecordingCmd(noteID string) tea.Cmd {
	return func() tea.Msg {
		clip, err := m.recorder.Finalize(m.ctx)
		if err != nil {
			if errors.Is(err, session.ErrNoAudio) {
				return noAudioMsg{}
			}

			return recordFailedMsg{err: err}
		}

		return clipReadyMsg{noteID: noteID, clip: clip}
	}
}

func (m Model) processCmd(noteID string, clip audio.Clip) tea.Cmd {
	return func() tea.Msg {
		result, err := m.processor.Process(m.ctx, noteID, clip)
		if err != nil {
			return processFailedMsg{noteID: noteID, err: err}
		}

		return processedMsg{noteID: noteID, result: result}
	}
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	var sb strings.Builder

	sb.WriteString(style.Title.Render("voxnote"))
	sb.WriteString(style.Subtitle.Render(fmt.Sprintf("  %d notes", m.notes.Len())))
	sb.WriteString("\n\n")

	switch m.recorder.Phase() {
	case session.PhaseRequestingDevice:
		sb.WriteString(style.Subtitle.Render("Requesting microphone..."))

	case session.PhaseRecording, session.PhaseStopping:
		sb.WriteString(style.Label.Render(displayTitle(m.notes.Current().Title)))
		sb.WriteString("\n\n")
		sb.WriteString(m.overlay.View())

	case session.PhaseProcessing:
		sb.WriteString(m.busy.View())

	case session.PhaseIdle:
		sb.WriteString(m.browseView())
	}

	sb.WriteString("\n")
	sb.WriteString(m.statusBar())

	return sb.String()
}

func (m Model) browseView() string {
	list := m.listView()
	content := style.Viewport.Render(m.viewport.View())
	body := lipgloss.JoinHorizontal(lipgloss.Top, list, " ", content)

	switch {
	case m.renaming:
		return body + "\n" + style.Label.Render("Rename: ") + m.rename.View()

	case m.confirm == confirmDelete:
		return body + "\n" + style.Warning.Render(
			fmt.Sprintf("Delete %q? ", displayTitle(m.notes.Current().Title))) +
			style.Help.Render("enter to confirm, esc to cancel")

	case m.confirm == confirmClear:
		return body + "\n" + style.Warning.Render("Delete ALL notes? ") +
			style.Help.Render("enter to confirm, esc to cancel")

	case m.confirm == confirmExportRaw:
		return body + "\n" + style.Warning.Render("No polished note yet. Export the raw transcript? ") +
			style.Help.Render("enter to confirm, esc to cancel")
	}

	return body + "\n" + m.helpView()
}

func (m Model) listView() string {
	notes := m.notes.Notes()
	currentID := m.notes.Current().ID

	var sb strings.Builder
	for i, n := range notes {
		if i > 0 {
			sb.WriteString("\n")
		}

		title := truncate(displayTitle(n.Title), listWidth-6)
		when := time.UnixMilli(n.Timestamp).Format("Jan 2 15:04")

		if n.ID == currentID {
			sb.WriteString(style.Selected.Render("> " + title))
		} else {
			sb.WriteString("  " + title)
		}

		sb.WriteString("\n")
		sb.WriteString("  " + style.Subtitle.Render(when))
	}

	return lipgloss.NewStyle().Width(listWidth).Render(sb.String())
}

func (m Model) helpView() string {
	pairs := []struct{ key, help string }{
		{"space", "record"},
		{"↑/↓", "switch"},
		{"n", "new"},
		{"t", "rename"},
		{"tab", "raw"},
		{"e", "export"},
		{"d", "delete"},
		{"q", "quit"},
	}

	parts := make([]string, 0, len(pairs))
	for _, p := range pairs {
		parts = append(parts, style.Key.Render(p.key)+" "+style.Help.Render(p.help))
	}

	return strings.Join(parts, "  ")
}

func (m Model) statusBar() string {
	if m.status == "" {
		return ""
	}

	return style.Muted.Render(m.status)
}

func deviceStatus(err error) string {
	var devErr *session.DeviceError
	if errors.As(err, &devErr) {
		return devErr.Message()
	}

	return "Recording failed: " + err.Error()
}

func displayTitle(title string) string {
	if title == "" {
		return "Untitled"
	}

	return title
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}

	return string(runes[:n-1]) + "…"
}
