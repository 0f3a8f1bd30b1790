// Package note holds the note data model and the in-memory repository
// that keeps the collection consistent with the persistent store.
package note

import (
	"crypto/rand"
	"encoding/hex"
	"strconv"
	"time"
)

// Note is a single durable voice note. Timestamp is the last-modified
// instant in milliseconds since epoch and drives collection ordering.
type Note struct {
	ID               string `json:"id"`
	Title            string `json:"title"`
	RawTranscription string `json:"rawTranscription"`
	PolishedNote     string `json:"polishedNote"`
	Timestamp        int64  `json:"timestamp"`
}

// IsEmpty reports whether the note has no transcribed or polished content.
// Presentation placeholders are not content; only the underlying text
// fields count.
func (n Note) IsEmpty() bool {
	return n.RawTranscription == "" && n.PolishedNote == ""
}

// Patch describes a partial update to a note. Nil fields are left
// unchanged.
type Patch struct {
	Title            *string `json:"title"`
	RawTranscription *string `json:"rawTranscription"`
	PolishedNote     *string `json:"polishedNote"`
}

// String returns a pointer to s, for building patches inline.
func String(s string) *string {
	return &s
}

// NewID generates a collision-resistant note id by combining the current
// millisecond timestamp with a random hex suffix.
func NewID() string {
	suffix := make([]byte, 4)
	_, _ = rand.Read(suffix)

	return strconv.FormatInt(time.Now().UnixMilli(), 10) + "-" + hex.EncodeToString(suffix)
}
