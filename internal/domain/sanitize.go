package domain

import (
	"strings"
	"unicode"
)

// MaxTranscriptLen bounds transcripts before they reach downstream services.
const MaxTranscriptLen = 500

// Sanitize cleans a raw transcript: control characters other than newline and
// tab are dropped (NUL included), surrounding whitespace is trimmed and the
// result is capped at MaxTranscriptLen runes. Sanitize is idempotent.
func Sanitize(text string) string {
	if text == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if unicode.IsPrint(r) || r == '\n' || r == '\t' {
			b.WriteRune(r)
		}
	}

	cleaned := strings.TrimSpace(b.String())

	runes := []rune(cleaned)
	if len(runes) > MaxTranscriptLen {
		cleaned = string(runes[:MaxTranscriptLen])
	}

	return strings.TrimRightFunc(cleaned, unicode.IsSpace)
}
