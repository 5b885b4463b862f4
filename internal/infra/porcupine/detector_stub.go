//go:build !portaudio
// +build !portaudio

package porcupine

import (
	"context"
	"fmt"
	"log/slog"

	"gpt-buddy/internal/application"
)

// Engine stub when portaudio is not available
type Engine struct {
	logger *slog.Logger
}

func NewEngine(accessKey string, keywords []string, logger *slog.Logger) *Engine {
	return &Engine{logger: logger}
}

func (e *Engine) Create(_ context.Context) (application.WakeWordHandle, error) {
	return nil, fmt.Errorf("wake word engine not available: rebuild with -tags portaudio")
}
