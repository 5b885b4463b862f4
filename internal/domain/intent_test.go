package domain

import "testing"

func TestRoute_PhrasePriority(t *testing.T) {
	// "cancel" rows come first, so a transcript holding both a cancel phrase
	// and a send phrase still cancels.
	m := Route("nevermind, don't send it", DefaultTable())
	if m.Intent != IntentCancel {
		t.Errorf("expected cancel, got %s", m.Intent)
	}
	if m.Phrase != "nevermind" {
		t.Errorf("expected matched phrase %q, got %q", "nevermind", m.Phrase)
	}
}

func TestRoute_CaseInsensitive(t *testing.T) {
	m := Route("SEND that to my phone", DefaultTable())
	if m.Intent != IntentSendImage {
		t.Errorf("expected send_image, got %s", m.Intent)
	}
}

func TestRoute_FirstPhraseWithinEntryWins(t *testing.T) {
	// "cancel that" precedes "cancel" in the table, so the longer phrase is
	// reported even though both are substrings.
	m := Route("ok cancel that please", DefaultTable())
	if m.Intent != IntentCancel {
		t.Fatalf("expected cancel, got %s", m.Intent)
	}
	if m.Phrase != "cancel that" {
		t.Errorf("expected matched phrase %q, got %q", "cancel that", m.Phrase)
	}
}

func TestRoute_RemainderStripsPhrase(t *testing.T) {
	m := Route("Make image a red bicycle", DefaultTable())
	if m.Intent != IntentMakeImage {
		t.Fatalf("expected make_image, got %s", m.Intent)
	}
	if m.Remainder != "a red bicycle" {
		t.Errorf("expected remainder %q, got %q", "a red bicycle", m.Remainder)
	}
}

func TestRoute_MakeAnotherBeforeMakeImage(t *testing.T) {
	m := Route("make another one", DefaultTable())
	if m.Intent != IntentMakeAnother {
		t.Errorf("expected make_another, got %s", m.Intent)
	}
}

func TestRoute_DefaultsToForward(t *testing.T) {
	m := Route("  What's the weather like today?  ", DefaultTable())
	if m.Intent != IntentForward {
		t.Fatalf("expected forward, got %s", m.Intent)
	}
	if m.Phrase != "" {
		t.Errorf("forward match should carry no phrase, got %q", m.Phrase)
	}
	if m.Remainder != "What's the weather like today?" {
		t.Errorf("forward remainder should be the trimmed transcript, got %q", m.Remainder)
	}
}

func TestRoute_EmptyTable(t *testing.T) {
	m := Route("cancel", nil)
	if m.Intent != IntentForward {
		t.Errorf("expected forward with no table, got %s", m.Intent)
	}
}
