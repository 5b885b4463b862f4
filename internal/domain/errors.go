package domain

import "errors"

// Recoverable failure classes of the capture and transcription path. The
// session distinguishes unintelligible speech (the user mumbled) from the
// transcription service being unreachable; both reset to wake-word listening
// but are logged differently.
var (
	ErrUnintelligible     = errors.New("could not understand audio")
	ErrServiceUnavailable = errors.New("speech service unavailable")
)

// ErrNoPrompt is returned when a regeneration is requested before any image
// prompt has been stored in the session.
var ErrNoPrompt = errors.New("no previous image prompt")
