package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the key bindings for the note browser.
type keyMap struct {
	Up        key.Binding
	Down      key.Binding
	Record    key.Binding
	New       key.Binding
	Rename    key.Binding
	Delete    key.Binding
	Clear     key.Binding
	Export    key.Binding
	ToggleRaw key.Binding
	Theme     key.Binding
	Confirm   key.Binding
	Cancel    key.Binding
	Quit      key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "previous note"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "next note"),
		),
		Record: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "record/stop"),
		),
		New: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new note"),
		),
		Rename: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "rename"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		Clear: key.NewBinding(
			key.WithKeys("C"),
			key.WithHelp("C", "clear all"),
		),
		Export: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "export"),
		),
		ToggleRaw: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "raw/polished"),
		),
		Theme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "theme"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("enter", "y"),
			key.WithHelp("enter", "confirm"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q"),
			key.WithHelp("q", "quit"),
		),
	}
}
