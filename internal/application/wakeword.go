package application

import "context"

// WakeWordEngine creates wake-word handles. A handle is created each time the
// session enters wake-word listening and released when it leaves, so the
// microphone is free for utterance capture in between.
type WakeWordEngine interface {
	Create(ctx context.Context) (WakeWordHandle, error)
}

// WakeWordHandle owns the detector and its audio frame stream. ProcessNext
// reads one frame and reports whether a keyword was spotted.
type WakeWordHandle interface {
	ProcessNext() (bool, error)
	Release() error
}
