package pushover

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

const defaultTitle = "GPT Buddy"

type Client struct {
	token      string
	userKey    string
	baseURL    string
	httpClient *http.Client
}

func NewClient(token, userKey string) *Client {
	return NewClientWithURL(token, userKey, "https://api.pushover.net/1")
}

func NewClientWithURL(token, userKey, baseURL string) *Client {
	return &Client{
		token:      token,
		userKey:    userKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Send pushes a message with an optional image attachment. A client without
// credentials is a silent no-op.
func (c *Client) Send(ctx context.Context, title, message, attachment string) error {
	if c.token == "" || c.userKey == "" {
		return nil
	}
	if title == "" {
		title = defaultTitle
	}
	if message == "" {
		message = "Image from your buddy"
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	fields := map[string]string{
		"token":   c.token,
		"user":    c.userKey,
		"title":   title,
		"message": message,
	}
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return fmt.Errorf("writing field %s: %w", name, err)
		}
	}

	if attachment != "" {
		f, err := os.Open(attachment)
		if err != nil {
			return fmt.Errorf("opening attachment: %w", err)
		}
		defer f.Close()

		part, err := writer.CreateFormFile("attachment", filepath.Base(attachment))
		if err != nil {
			return fmt.Errorf("creating attachment part: %w", err)
		}
		if _, err := io.Copy(part, f); err != nil {
			return fmt.Errorf("copying attachment: %w", err)
		}
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("closing writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/messages.json", body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("pushover error: %s", resp.Status)
	}
	return nil
}
