//go:build portaudio
// +build portaudio

package porcupine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	pv "github.com/Picovoice/porcupine/binding/go/v3"
	"github.com/gordonklaus/portaudio"

	"gpt-buddy/internal/application"
)

// Engine builds wake-word handles around the Porcupine detector. Each handle
// owns a fresh detector instance plus a portaudio frame stream; both are torn
// down on Release so the microphone is free for utterance capture.
type Engine struct {
	accessKey string
	keywords  []string
	logger    *slog.Logger
}

func NewEngine(accessKey string, keywords []string, logger *slog.Logger) *Engine {
	return &Engine{
		accessKey: accessKey,
		keywords:  keywords,
		logger:    logger,
	}
}

func (e *Engine) Create(_ context.Context) (application.WakeWordHandle, error) {
	builtins := make([]pv.BuiltInKeyword, 0, len(e.keywords))
	for _, k := range e.keywords {
		builtins = append(builtins, pv.BuiltInKeyword(strings.ToLower(k)))
	}

	detector := pv.Porcupine{
		AccessKey:       e.accessKey,
		BuiltInKeywords: builtins,
	}
	if err := detector.Init(); err != nil {
		return nil, fmt.Errorf("initializing porcupine: %w", err)
	}

	if err := portaudio.Initialize(); err != nil {
		detector.Delete()
		return nil, fmt.Errorf("initializing portaudio: %w", err)
	}

	buf := make([]int16, pv.FrameLength)
	stream, err := portaudio.OpenDefaultStream(1, 0, float64(pv.SampleRate), len(buf), buf)
	if err != nil {
		portaudio.Terminate()
		detector.Delete()
		return nil, fmt.Errorf("opening frame stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		detector.Delete()
		return nil, fmt.Errorf("starting frame stream: %w", err)
	}

	e.logger.Debug("wake word handle created", "keywords", e.keywords)
	return &handle{detector: detector, stream: stream, buf: buf, logger: e.logger}, nil
}

type handle struct {
	detector pv.Porcupine
	stream   *portaudio.Stream
	buf      []int16
	logger   *slog.Logger
}

func (h *handle) ProcessNext() (bool, error) {
	if err := h.stream.Read(); err != nil {
		return false, fmt.Errorf("reading frame: %w", err)
	}
	idx, err := h.detector.Process(h.buf)
	if err != nil {
		return false, fmt.Errorf("processing frame: %w", err)
	}
	return idx >= 0, nil
}

func (h *handle) Release() error {
	var firstErr error
	if err := h.stream.Stop(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := h.stream.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	portaudio.Terminate()
	if err := h.detector.Delete(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
