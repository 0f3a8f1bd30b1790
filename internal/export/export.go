// Package export writes notes to disk as standalone files.
package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/voxnote/voxnote/internal/note"
)

// ErrNothingToExport is returned when a note has neither polished content
// nor a raw transcription.
var ErrNothingToExport = errors.New("note has no content to export")

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// Filename converts a note title to a safe export file name stem.
// Example: "Voice CLI Improvements!" -> "voice_cli_improvements".
func Filename(title string) string {
	name := strings.ToLower(title)
	name = nonAlnum.ReplaceAllString(name, "_")
	name = strings.Trim(name, "_")

	if name == "" {
		name = "note"
	}

	return name
}

// Write saves the note under dir. Polished notes are written as markdown;
// a note with only a raw transcription gets a plain-text file with a _raw
// suffix so the two never collide. Returns the path written.
func Write(dir string, n note.Note) (string, error) {
	name := Filename(n.Title)

	var path, body string
	switch {
	case n.PolishedNote != "":
		path = filepath.Join(dir, name+".md")
		body = n.PolishedNote
	case n.RawTranscription != "":
		path = filepath.Join(dir, name+"_raw.txt")
		body = n.RawTranscription
	default:
		return "", ErrNothingToExport
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}

	return path, nil
}
