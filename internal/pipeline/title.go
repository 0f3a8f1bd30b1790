package pipeline

import "strings"

// maxTitleLen caps titles derived from body text. Markdown headings are
// taken verbatim.
const maxTitleLen = 60

// markdownLead holds characters that start markdown syntax rather than
// prose; lines opening with one of these are skipped when falling back to
// body text for a title.
const markdownLead = "#*-_`>+|!["

// ExtractTitle derives a note title from polished markdown. A `# ` heading
// anywhere in the text wins; otherwise the first line of plain prose is
// used, truncated to maxTitleLen runes with an ellipsis. Returns false when
// the text yields no usable title, in which case the caller leaves the
// existing title alone.
func ExtractTitle(markdown string) (string, bool) {
	var fallback string

	for _, line := range strings.Split(markdown, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		if rest, ok := strings.CutPrefix(trimmed, "# "); ok {
			if title := strings.TrimSpace(rest); title != "" {
				return title, true
			}

			continue
		}

		if fallback == "" && !strings.ContainsRune(markdownLead, rune(trimmed[0])) {
			fallback = trimmed
		}
	}

	if fallback == "" {
		return "", false
	}

	runes := []rune(fallback)
	if len(runes) > maxTitleLen {
		return string(runes[:maxTitleLen]) + "...", true
	}

	return fallback, true
}
