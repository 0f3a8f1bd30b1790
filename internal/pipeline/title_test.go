package pipeline

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractTitle(t *testing.T) {
	longLine := strings.Repeat("a", 70)

	tests := []struct {
		name      string
		input     string
		wantTitle string
		wantOK    bool
	}{
		{
			name:      "heading wins",
			input:     "# Meeting Notes\nBody text",
			wantTitle: "Meeting Notes",
			wantOK:    true,
		},
		{
			name:      "heading after prose still wins",
			input:     "Intro paragraph\n# Real Title\nmore",
			wantTitle: "Real Title",
			wantOK:    true,
		},
		{
			name:      "plain first line used verbatim when short",
			input:     "Grocery run\n- milk\n- eggs",
			wantTitle: "Grocery run",
			wantOK:    true,
		},
		{
			name:      "long prose truncated with ellipsis",
			input:     longLine,
			wantTitle: strings.Repeat("a", 60) + "...",
			wantOK:    true,
		},
		{
			name:   "empty text yields nothing",
			input:  "",
			wantOK: false,
		},
		{
			name:   "whitespace only yields nothing",
			input:  "  \n\t\n",
			wantOK: false,
		},
		{
			name:   "markdown-only lines yield nothing",
			input:  "- one\n* two\n> quote",
			wantOK: false,
		},
		{
			name:      "deeper heading is not a title but prose fallback skips it",
			input:     "## Subsection\nActual prose line",
			wantTitle: "Actual prose line",
			wantOK:    true,
		},
		{
			name:   "bare hash heading with no text is skipped",
			input:  "#  \n",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			title, ok := ExtractTitle(tt.input)

			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantTitle, title)
		})
	}
}
