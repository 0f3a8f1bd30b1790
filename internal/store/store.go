// Package store persists the note collection and related pointers as a
// small key-value substrate on disk: one file per key under the data
// directory. Every save is a full rewrite of the key, written atomically
// via a temp file and rename.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/voxnote/voxnote/internal/note"
)

// Filenames backing each storage key.
const (
	notesFile    = "notes.json"
	lastNoteFile = "lastnote"
	themeFile    = "theme"
)

// Theme is the presentation color scheme. Not a core concern, but it lives
// in the same substrate as the notes.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// DefaultDir returns the default data directory:
//
//	$HOME/.voxnote
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(home, ".voxnote"), nil
}

// FileStore is a file-backed key-value store rooted at a data directory.
type FileStore struct {
	dir string
}

// NewFileStore creates the data directory if needed and returns a store
// rooted there.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, errors.New("data directory cannot be empty")
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory %s: %w", dir, err)
	}

	return &FileStore{dir: dir}, nil
}

// Dir returns the data directory the store is rooted at.
func (s *FileStore) Dir() string {
	return s.dir
}

// LoadNotes reads the persisted collection as raw records; field-level
// repair is the repository's job. A missing file is an empty collection.
// A corrupted file is erased and also treated as empty: fail-safe, not
// fail-loud.
func (s *FileStore) LoadNotes() ([]json.RawMessage, error) {
	path := filepath.Join(s.dir, notesFile)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read notes: %w", err)
	}

	var records []json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		slog.Warn("persisted notes are corrupted, erasing", "path", path, "error", err)

		if rmErr := os.Remove(path); rmErr != nil {
			slog.Warn("failed to erase corrupted notes file", "error", rmErr)
		}

		return nil, nil
	}

	return records, nil
}

// SaveNotes rewrites the whole collection under the notes key. The write is
// atomic from the caller's perspective; failures are returned so the caller
// can surface lost durability without giving up its in-memory state.
func (s *FileStore) SaveNotes(notes []note.Note) error {
	if notes == nil {
		notes = []note.Note{}
	}

	data, err := json.Marshal(notes)
	if err != nil {
		return fmt.Errorf("failed to serialize notes: %w", err)
	}

	return s.writeAtomic(notesFile, data)
}

// LoadLastSelectedID returns the persisted current-note pointer, if any.
func (s *FileStore) LoadLastSelectedID() (string, bool) {
	data, err := os.ReadFile(filepath.Join(s.dir, lastNoteFile))
	if err != nil || len(data) == 0 {
		return "", false
	}

	return string(data), true
}

// SaveLastSelectedID persists the current-note pointer. An empty id removes
// the stored pointer.
func (s *FileStore) SaveLastSelectedID(id string) error {
	path := filepath.Join(s.dir, lastNoteFile)

	if id == "" {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove last-note pointer: %w", err)
		}

		return nil
	}

	return s.writeAtomic(lastNoteFile, []byte(id))
}

// LoadTheme returns the persisted theme, defaulting to dark.
func (s *FileStore) LoadTheme() Theme {
	data, err := os.ReadFile(filepath.Join(s.dir, themeFile))
	if err != nil {
		return ThemeDark
	}

	if Theme(data) == ThemeLight {
		return ThemeLight
	}

	return ThemeDark
}

// SaveTheme persists the theme.
func (s *FileStore) SaveTheme(theme Theme) error {
	return s.writeAtomic(themeFile, []byte(theme))
}

// Clear removes the notes collection and the last-selected pointer.
func (s *FileStore) Clear() error {
	for _, name := range []string{notesFile, lastNoteFile} {
		if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove %s: %w", name, err)
		}
	}

	return nil
}

// writeAtomic writes data to a temp file in the same directory and renames
// it over the target, so readers never observe a partial write.
func (s *FileStore) writeAtomic(name string, data []byte) error {
	path := filepath.Join(s.dir, name)
	tmpPath := path + ".tmp"

	if err := os.WriteFile(tmpPath, data, 0o644); err != nil { //nolint:gosec // Note data is user readable
		return fmt.Errorf("failed to write %s: %w", tmpPath, err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}

	return nil
}
