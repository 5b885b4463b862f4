package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// SpeechClient renders assistant replies to an mp3 clip. The clip path is
// fixed and overwritten on every call; playback finishes before the next
// synthesis starts.
type SpeechClient struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	voice      string
	clipPath   string
}

func NewSpeechClient(apiKey, voice, clipPath string) *SpeechClient {
	return NewSpeechClientWithURL(apiKey, voice, clipPath, "https://api.openai.com/v1")
}

func NewSpeechClientWithURL(apiKey, voice, clipPath, baseURL string) *SpeechClient {
	return &SpeechClient{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		baseURL:    baseURL,
		voice:      voice,
		clipPath:   clipPath,
	}
}

func (c *SpeechClient) Synthesize(ctx context.Context, text string) (string, error) {
	payload, err := json.Marshal(map[string]string{
		"model": "tts-1",
		"voice": c.voice,
		"input": text,
	})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/audio/speech", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("speech API error %d: %s", resp.StatusCode, string(respBody))
	}

	f, err := os.Create(c.clipPath)
	if err != nil {
		return "", fmt.Errorf("creating clip file: %w", err)
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		return "", fmt.Errorf("writing clip: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing clip: %w", err)
	}

	return c.clipPath, nil
}
