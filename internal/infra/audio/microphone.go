//go:build portaudio
// +build portaudio

package audio

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/gordonklaus/portaudio"

	"gpt-buddy/internal/domain"
)

const (
	framesPerBuffer  = 1024
	silenceThreshold = 500
)

// Microphone records one utterance from the default input device. Recording
// ends after a second of trailing silence once speech has started, or at the
// phrase time limit.
type Microphone struct {
	sampleRate int
	logger     *slog.Logger
}

func NewMicrophone(sampleRate int, logger *slog.Logger) *Microphone {
	return &Microphone{sampleRate: sampleRate, logger: logger}
}

func (m *Microphone) Capture(ctx context.Context, limit time.Duration) ([]byte, error) {
	if limit <= 0 {
		limit = 10 * time.Second
	}

	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("initializing portaudio: %w", err)
	}
	defer portaudio.Terminate()

	buf := make([]int16, framesPerBuffer)
	stream, err := portaudio.OpenDefaultStream(1, 0, float64(m.sampleRate), len(buf), buf)
	if err != nil {
		return nil, fmt.Errorf("opening stream: %w", err)
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return nil, fmt.Errorf("starting stream: %w", err)
	}
	defer stream.Stop()

	m.logger.Info("capturing utterance", "limit", limit)

	maxSamples := int(float64(m.sampleRate) * limit.Seconds())
	samples := make([]int16, 0, maxSamples)

	// one second of silence after speech ends the utterance
	silenceBudget := m.sampleRate
	silence := 0
	speaking := false

	for len(samples) < maxSamples {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if err := stream.Read(); err != nil {
			return nil, fmt.Errorf("reading from stream: %w", err)
		}
		samples = append(samples, buf...)

		if isSilent(buf) {
			silence += len(buf)
		} else {
			speaking = true
			silence = 0
		}
		if speaking && silence > silenceBudget {
			break
		}
	}

	if !speaking {
		return nil, domain.ErrUnintelligible
	}
	return encodeWAV(samples, m.sampleRate)
}

func isSilent(buf []int16) bool {
	for _, sample := range buf {
		if sample > silenceThreshold || sample < -silenceThreshold {
			return false
		}
	}
	return true
}

func encodeWAV(samples []int16, sampleRate int) ([]byte, error) {
	tmp, err := os.CreateTemp("", "utterance-*.wav")
	if err != nil {
		return nil, fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	enc := wav.NewEncoder(tmp, sampleRate, 16, 1, 1)

	data := make([]int, len(samples))
	for i, s := range samples {
		data[i] = int(s)
	}
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		return nil, fmt.Errorf("encoding wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("closing encoder: %w", err)
	}

	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewinding temp file: %w", err)
	}
	return io.ReadAll(tmp)
}
