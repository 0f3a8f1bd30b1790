package note

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name         string
		raw          string
		wantRepaired bool
		check        func(t *testing.T, n Note)
	}{
		{
			name:         "well formed record passes through",
			raw:          `{"id":"n1","title":"T","rawTranscription":"r","polishedNote":"p","timestamp":123}`,
			wantRepaired: false,
			check: func(t *testing.T, n Note) {
				t.Helper()
				assert.Equal(t, Note{ID: "n1", Title: "T", RawTranscription: "r", PolishedNote: "p", Timestamp: 123}, n)
			},
		},
		{
			name:         "wrong-typed id is regenerated",
			raw:          `{"id":42,"title":"T","rawTranscription":"","polishedNote":"","timestamp":5}`,
			wantRepaired: true,
			check: func(t *testing.T, n Note) {
				t.Helper()
				assert.NotEmpty(t, n.ID)
				assert.Equal(t, "T", n.Title)
			},
		},
		{
			name:         "wrong-typed timestamp defaults to zero",
			raw:          `{"id":"n2","title":"T","rawTranscription":"","polishedNote":"","timestamp":"later"}`,
			wantRepaired: true,
			check: func(t *testing.T, n Note) {
				t.Helper()
				assert.Zero(t, n.Timestamp)
			},
		},
		{
			name:         "missing fields get defaults",
			raw:          `{"id":"n3"}`,
			wantRepaired: true,
			check: func(t *testing.T, n Note) {
				t.Helper()
				assert.Equal(t, "n3", n.ID)
				assert.Empty(t, n.Title)
				assert.True(t, n.IsEmpty())
			},
		},
		{
			name:         "non-object record becomes a defaulted note",
			raw:          `[1,2,3]`,
			wantRepaired: true,
			check: func(t *testing.T, n Note) {
				t.Helper()
				assert.NotEmpty(t, n.ID)
			},
		},
		{
			name:         "fractional timestamp truncates",
			raw:          `{"id":"n4","title":"","rawTranscription":"","polishedNote":"","timestamp":123.9}`,
			wantRepaired: false,
			check: func(t *testing.T, n Note) {
				t.Helper()
				assert.Equal(t, int64(123), n.Timestamp)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, repaired := Sanitize(json.RawMessage(tt.raw))
			assert.Equal(t, tt.wantRepaired, repaired)
			tt.check(t, n)
		})
	}
}
