package application

import "context"

// ImageGenerator renders a prompt with a named style set and returns the path
// of the saved image. A single attempt is made; failures are logged by the
// caller, never retried.
type ImageGenerator interface {
	Generate(ctx context.Context, prompt string, styles []string) (string, error)
}

// Illustrator derives an image from one user/assistant exchange. Used by the
// background task after a forwarded utterance.
type Illustrator interface {
	Illustrate(ctx context.Context, userText, reply string) (string, error)
}

// SpeechSynthesizer renders text to a playable audio file and returns its path.
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text string) (string, error)
}
