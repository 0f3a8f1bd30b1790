package note

import (
	"encoding/json"
	"log/slog"
)

// Sanitize validates a persisted record field by field. Any field with the
// wrong shape is replaced with its type-appropriate default instead of
// rejecting the whole record: a partially damaged note is still worth more
// than no note. The second return value reports whether any field was
// repaired.
func Sanitize(raw json.RawMessage) (Note, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		// Not even an object. Synthesize a fully-defaulted record rather
		// than dropping it.
		slog.Warn("persisted note is not an object, substituting defaults")

		return Note{ID: NewID()}, true
	}

	repaired := false

	id, ok := stringField(fields, "id")
	if !ok || id == "" {
		id = NewID()
		repaired = true
	}

	title, ok := stringField(fields, "title")
	if !ok {
		title = ""
		repaired = true
	}

	rawText, ok := stringField(fields, "rawTranscription")
	if !ok {
		rawText = ""
		repaired = true
	}

	polished, ok := stringField(fields, "polishedNote")
	if !ok {
		polished = ""
		repaired = true
	}

	timestamp, ok := int64Field(fields, "timestamp")
	if !ok {
		timestamp = 0
		repaired = true
	}

	n := Note{
		ID:               id,
		Title:            title,
		RawTranscription: rawText,
		PolishedNote:     polished,
		Timestamp:        timestamp,
	}

	if repaired {
		slog.Warn("repaired malformed persisted note", "id", n.ID)
	}

	return n, repaired
}

func stringField(fields map[string]json.RawMessage, key string) (string, bool) {
	raw, present := fields[key]
	if !present {
		return "", false
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}

	return s, true
}

func int64Field(fields map[string]json.RawMessage, key string) (int64, bool) {
	raw, present := fields[key]
	if !present {
		return 0, false
	}

	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, false
	}

	return int64(f), true
}
