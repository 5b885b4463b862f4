package domain

import "strings"

type Intent string

const (
	IntentCancel      Intent = "cancel"
	IntentSendImage   Intent = "send_image"
	IntentMakeAnother Intent = "make_another"
	IntentRandomImage Intent = "random_image"
	IntentMakeImage   Intent = "make_image"
	IntentForward     Intent = "forward"
)

// TableEntry maps one intent to the phrases that trigger it.
type TableEntry struct {
	Intent  Intent
	Phrases []string
}

// Match is the outcome of routing a transcript. Remainder is the transcript
// with the matched phrase removed, which the make-image intent uses as the
// generation prompt.
type Match struct {
	Intent    Intent
	Phrase    string
	Remainder string
}

// DefaultTable returns the phrase table in priority order. Order matters:
// entries are evaluated top to bottom and the first phrase hit wins, so a
// transcript containing both "cancel" and "send" cancels.
func DefaultTable() []TableEntry {
	return []TableEntry{
		{Intent: IntentCancel, Phrases: []string{
			"nevermind",
			"thanks",
			"never mind",
			"stop",
			"cancel that",
			"cancel",
			"nothing",
			"forget it",
		}},
		{Intent: IntentSendImage, Phrases: []string{
			"send",
			"telegram",
		}},
		{Intent: IntentMakeAnother, Phrases: []string{
			"make another",
			"make more",
		}},
		{Intent: IntentRandomImage, Phrases: []string{
			"random",
		}},
		{Intent: IntentMakeImage, Phrases: []string{
			"make image",
		}},
	}
}

// Route picks the first entry in table with a phrase contained in the
// transcript. Matching is case-insensitive. When nothing matches the
// transcript falls through to IntentForward with the full text as remainder.
func Route(transcript string, table []TableEntry) Match {
	lowered := strings.ToLower(transcript)

	for _, entry := range table {
		for _, phrase := range entry.Phrases {
			if strings.Contains(lowered, phrase) {
				return Match{
					Intent:    entry.Intent,
					Phrase:    phrase,
					Remainder: strings.TrimSpace(strings.ReplaceAll(lowered, phrase, "")),
				}
			}
		}
	}

	return Match{Intent: IntentForward, Remainder: strings.TrimSpace(transcript)}
}
