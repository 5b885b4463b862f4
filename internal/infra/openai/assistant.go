package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"gpt-buddy/internal/infra"
)

// AssistantClient talks to the OpenAI Assistants v2 API: one thread per
// process, one run per forwarded utterance. Runs are only ever polled; a run
// abandoned on timeout completes on the OpenAI side without us.
type AssistantClient struct {
	apiKey      string
	assistantID string
	httpClient  *http.Client
	baseURL     string
}

func NewAssistantClient(apiKey, assistantID string) *AssistantClient {
	return NewAssistantClientWithURL(apiKey, assistantID, "https://api.openai.com/v1")
}

func NewAssistantClientWithURL(apiKey, assistantID, baseURL string) *AssistantClient {
	return &AssistantClient{
		apiKey:      apiKey,
		assistantID: assistantID,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		baseURL:     baseURL,
	}
}

// Ping verifies API connectivity at startup.
func (c *AssistantClient) Ping(ctx context.Context) error {
	var out json.RawMessage
	return c.do(ctx, http.MethodGet, "/models?limit=1", nil, &out)
}

func (c *AssistantClient) CreateConversation(ctx context.Context) (string, error) {
	var out struct {
		ID string `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, "/threads", map[string]any{}, &out); err != nil {
		return "", fmt.Errorf("creating thread: %w", err)
	}
	return out.ID, nil
}

func (c *AssistantClient) PostMessage(ctx context.Context, conversationID, text string) error {
	body := map[string]any{
		"role":    "user",
		"content": text,
	}
	var out json.RawMessage
	if err := c.do(ctx, http.MethodPost, "/threads/"+conversationID+"/messages", body, &out); err != nil {
		return fmt.Errorf("posting message: %w", err)
	}
	return nil
}

func (c *AssistantClient) StartRun(ctx context.Context, conversationID string) (string, error) {
	body := map[string]any{
		"assistant_id": c.assistantID,
	}
	var out struct {
		ID string `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, "/threads/"+conversationID+"/runs", body, &out); err != nil {
		return "", fmt.Errorf("starting run: %w", err)
	}
	return out.ID, nil
}

func (c *AssistantClient) RunCompleted(ctx context.Context, conversationID, runID string) (bool, error) {
	var out struct {
		Status string `json:"status"`
	}
	if err := c.do(ctx, http.MethodGet, "/threads/"+conversationID+"/runs/"+runID, nil, &out); err != nil {
		return false, fmt.Errorf("retrieving run: %w", err)
	}
	return out.Status == "completed", nil
}

// LatestReply fetches the newest message on the thread; the assistant's
// response is always first in the listing.
func (c *AssistantClient) LatestReply(ctx context.Context, conversationID string) (string, error) {
	var out struct {
		Data []struct {
			Content []struct {
				Text struct {
					Value string `json:"value"`
				} `json:"text"`
			} `json:"content"`
		} `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/threads/"+conversationID+"/messages?limit=1", nil, &out); err != nil {
		return "", fmt.Errorf("listing messages: %w", err)
	}
	if len(out.Data) == 0 || len(out.Data[0].Content) == 0 {
		return "", fmt.Errorf("thread %s has no reply", conversationID)
	}
	return out.Data[0].Content[0].Text.Value, nil
}

func (c *AssistantClient) do(ctx context.Context, method, path string, body any, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
	}

	return infra.WithRetry(ctx, infra.DefaultRetryConfig(), func() error {
		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}

		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		req.Header.Set("OpenAI-Beta", "assistants=v2")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("sending request: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			respBody, _ := io.ReadAll(resp.Body)
			if infra.IsRetryableHTTPStatus(resp.StatusCode) {
				return fmt.Errorf("assistants API error %d: %s (retryable)", resp.StatusCode, string(respBody))
			}
			return fmt.Errorf("assistants API error %d: %s", resp.StatusCode, string(respBody))
		}

		if err = json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
		return nil
	})
}
