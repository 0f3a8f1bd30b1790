package note

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"
)

// ErrNoSuchNote is returned when an operation references an id that is not
// in the collection.
var ErrNoSuchNote = errors.New("no such note")

// Store is the persistence boundary the repository synchronizes with.
// Save failures are reported, never thrown: the in-memory collection stays
// authoritative even when durability is lost for a write.
type Store interface {
	LoadNotes() ([]json.RawMessage, error)
	SaveNotes(notes []Note) error
	LoadLastSelectedID() (string, bool)
	SaveLastSelectedID(id string) error
}

// Repository owns the in-memory ordered note collection. The collection is
// kept sorted descending by timestamp after every persisted mutation, at
// most one note is current at a time, and the collection is never empty
// once Load has completed.
//
// All methods must be called from a single logical thread; callers that
// share a repository across goroutines (e.g. the HTTP server) serialize
// access themselves.
type Repository struct {
	store Store

	notes     []Note
	currentID string

	now func() time.Time
}

// NewRepository creates a repository backed by the given store.
func NewRepository(store Store) *Repository {
	return &Repository{
		store: store,
		now:   time.Now,
	}
}

// Load reads the persisted collection, repairing malformed records field by
// field, restores the last-selected pointer, and synthesizes a fresh note
// if the collection is empty. Load never fails: corrupted or unreadable
// state degrades to an empty collection.
func (r *Repository) Load() {
	raw, err := r.store.LoadNotes()
	if err != nil {
		slog.Warn("failed to load persisted notes, starting empty", "error", err)
		raw = nil
	}

	r.notes = make([]Note, 0, len(raw))
	for _, record := range raw {
		n, _ := Sanitize(record)
		r.notes = append(r.notes, n)
	}

	r.sortByTimestamp()

	if len(r.notes) == 0 {
		r.Create()

		return
	}

	if id, ok := r.store.LoadLastSelectedID(); ok {
		r.currentID = id
	}

	r.resolveCurrent()
	r.persistCurrent()
}

// Create makes a new empty note, inserts it at the head of the collection,
// makes it current, and persists.
func (r *Repository) Create() Note {
	n := Note{
		ID:        NewID(),
		Title:     fmt.Sprintf("New Note %d", len(r.notes)+1),
		Timestamp: r.now().UnixMilli(),
	}

	r.notes = append([]Note{n}, r.notes...)
	r.currentID = n.ID

	r.sortByTimestamp()
	r.persist()
	r.persistCurrent()

	return n
}

// Select makes the note with the given id current. An unresolvable id falls
// back to the most-recently-modified note; an empty collection synthesizes
// a fresh note. The current-id pointer is persisted.
func (r *Repository) Select(id string) Note {
	if _, ok := r.find(id); ok {
		r.currentID = id
		r.persistCurrent()

		return r.Current()
	}

	if len(r.notes) == 0 {
		return r.Create()
	}

	// Fallback: collection is sorted descending, head is most recent.
	r.currentID = r.notes[0].ID
	r.persistCurrent()

	return r.notes[0]
}

// Update applies a patch to the note with the given id, bumps its
// timestamp, re-sorts, and persists. A patch that changes nothing is a
// no-op: no timestamp bump, no write.
func (r *Repository) Update(id string, patch Patch) (Note, error) {
	idx, ok := r.find(id)
	if !ok {
		return Note{}, fmt.Errorf("update %s: %w", id, ErrNoSuchNote)
	}

	n := r.notes[idx]
	changed := false

	if patch.Title != nil && *patch.Title != n.Title {
		n.Title = *patch.Title
		changed = true
	}

	if patch.RawTranscription != nil && *patch.RawTranscription != n.RawTranscription {
		n.RawTranscription = *patch.RawTranscription
		changed = true
	}

	if patch.PolishedNote != nil && *patch.PolishedNote != n.PolishedNote {
		n.PolishedNote = *patch.PolishedNote
		changed = true
	}

	if !changed {
		return n, nil
	}

	n.Timestamp = r.now().UnixMilli()
	r.notes[idx] = n

	r.sortByTimestamp()
	r.persist()

	return n, nil
}

// Delete removes the note with the given id. Deleting the current note
// reassigns the selection to the most-recent survivor, synthesizing a new
// note if the collection would become empty. Deleting any other note keeps
// the selection and re-validates it.
func (r *Repository) Delete(id string) error {
	idx, ok := r.find(id)
	if !ok {
		return fmt.Errorf("delete %s: %w", id, ErrNoSuchNote)
	}

	wasCurrent := r.currentID == id
	r.notes = append(r.notes[:idx], r.notes[idx+1:]...)

	if wasCurrent {
		r.currentID = ""
	}

	r.persist()

	if len(r.notes) == 0 {
		r.Create()

		return nil
	}

	if wasCurrent {
		r.currentID = r.notes[0].ID
	}

	// Consistency refresh: re-validate the selection even when a different
	// note was deleted.
	r.resolveCurrent()
	r.persistCurrent()

	return nil
}

// ClearAll empties the collection, clears the current pointer, and
// synthesizes exactly one fresh note.
func (r *Repository) ClearAll() Note {
	r.notes = nil
	r.currentID = ""
	r.persist()

	return r.Create()
}

// Current returns the current note. Load, Create, and every mutation keep
// the selection valid, so there is always one to return.
func (r *Repository) Current() Note {
	idx, ok := r.find(r.currentID)
	if !ok {
		return Note{}
	}

	return r.notes[idx]
}

// Get returns the note with the given id.
func (r *Repository) Get(id string) (Note, bool) {
	idx, ok := r.find(id)
	if !ok {
		return Note{}, false
	}

	return r.notes[idx], true
}

// Notes returns a copy of the collection in display order (most recent
// first).
func (r *Repository) Notes() []Note {
	out := make([]Note, len(r.notes))
	copy(out, r.notes)

	return out
}

// Len returns the collection size.
func (r *Repository) Len() int {
	return len(r.notes)
}

func (r *Repository) find(id string) (int, bool) {
	if id == "" {
		return 0, false
	}

	for i := range r.notes {
		if r.notes[i].ID == id {
			return i, true
		}
	}

	return 0, false
}

// resolveCurrent corrects a dangling or unset current pointer so that any
// read sees a valid selection. Missing/invalid timestamps sort as 0, so the
// fallback is still deterministic.
func (r *Repository) resolveCurrent() {
	if _, ok := r.find(r.currentID); ok {
		return
	}

	if len(r.notes) == 0 {
		r.currentID = ""

		return
	}

	r.currentID = r.notes[0].ID
}

// sortByTimestamp sorts descending by last-modified time. The sort is
// stable so millisecond ties keep their relative insertion order.
func (r *Repository) sortByTimestamp() {
	sort.SliceStable(r.notes, func(i, j int) bool {
		return r.notes[i].Timestamp > r.notes[j].Timestamp
	})
}

func (r *Repository) persist() {
	if err := r.store.SaveNotes(r.notes); err != nil {
		slog.Warn("failed to persist notes, in-memory state remains authoritative", "error", err)
	}
}

func (r *Repository) persistCurrent() {
	if err := r.store.SaveLastSelectedID(r.currentID); err != nil {
		slog.Warn("failed to persist current note pointer", "error", err)
	}
}
