// Package style defines lipgloss styles for the TUI.
package style

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/voxnote/voxnote/internal/store"
)

// UI styles using lipgloss.
// These are package-level for convenience; lipgloss styles are value types
// and safe for concurrent use.
//
// Variable names intentionally omit "Style" suffix since they're accessed
// via the style package (e.g., style.Title reads better than style.TitleStyle).
var (
	// Title is used for headers and the selected note title.
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("205"))

	// Subtitle is used for secondary text such as timestamps.
	Subtitle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	// Success is used for success messages.
	Success = lipgloss.NewStyle().
		Foreground(lipgloss.Color("42"))

	// Error is used for error messages.
	Error = lipgloss.NewStyle().
		Foreground(lipgloss.Color("196"))

	// Warning is used for warnings and the recording indicator.
	Warning = lipgloss.NewStyle().
		Foreground(lipgloss.Color("214"))

	// Viewport is used for the note content border.
	Viewport = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)

	// Selected marks the current note in the sidebar.
	Selected = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	// Help is used for keyboard shortcut hints.
	Help = lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	// Key is used for highlighting keyboard keys.
	Key = lipgloss.NewStyle().
		Foreground(lipgloss.Color("205")).
		Bold(true)

	// Progress is used for progress indicators and the waveform.
	Progress = lipgloss.NewStyle().
			Foreground(lipgloss.Color("63"))

	// Label is used for inline labels (e.g., "Title:", "Saved:").
	Label = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("255"))

	// Muted is used for de-emphasized text (e.g., file paths).
	Muted = lipgloss.NewStyle().
		Foreground(lipgloss.Color("245"))
)

// ApplyTheme adjusts the palette for the persisted theme preference. The
// defaults above target dark terminals; light mode swaps the grays that
// would otherwise wash out. Dark mode restores the defaults so toggling
// back and forth is lossless.
func ApplyTheme(theme store.Theme) {
	if theme == store.ThemeLight {
		Subtitle = Subtitle.Foreground(lipgloss.Color("240"))
		Help = Help.Foreground(lipgloss.Color("240"))
		Muted = Muted.Foreground(lipgloss.Color("242"))
		Label = Label.Foreground(lipgloss.Color("235"))

		return
	}

	Subtitle = Subtitle.Foreground(lipgloss.Color("241"))
	Help = Help.Foreground(lipgloss.Color("241"))
	Muted = Muted.Foreground(lipgloss.Color("245"))
	Label = Label.Foreground(lipgloss.Color("255"))
}
