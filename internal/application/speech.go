package application

import (
	"context"
	"time"
)

// Microphone captures a single utterance, bounded by limit. Implementations
// return domain.ErrUnintelligible when no speech was picked up.
type Microphone interface {
	Capture(ctx context.Context, limit time.Duration) ([]byte, error)
}

// SpeechToText turns a captured WAV buffer into a transcript.
// Implementations return domain.ErrUnintelligible for audio the engine could
// not make sense of and domain.ErrServiceUnavailable when the transcription
// backend is unreachable.
type SpeechToText interface {
	Transcribe(ctx context.Context, audio []byte) (string, error)
}
