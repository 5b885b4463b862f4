package sd

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"gpt-buddy/internal/infra"
)

// Client drives the Stable Diffusion webui txt2img endpoint. Images come back
// base64-encoded and are saved straight into the gallery directory under a
// timestamp name, already at panel size.
type Client struct {
	baseURL    string
	steps      int
	outDir     string
	httpClient *http.Client
	now        func() time.Time
}

func NewClient(host string, port, steps int, outDir string) *Client {
	baseURL := ""
	if host != "" {
		baseURL = fmt.Sprintf("http://%s:%d", host, port)
	}
	return NewClientWithURL(baseURL, steps, outDir)
}

func NewClientWithURL(baseURL string, steps int, outDir string) *Client {
	return &Client{
		baseURL:    baseURL,
		steps:      steps,
		outDir:     outDir,
		httpClient: &http.Client{Timeout: 120 * time.Second},
		now:        time.Now,
	}
}

// Configured reports whether a webui endpoint was set at all.
func (c *Client) Configured() bool {
	return c.baseURL != ""
}

// Ping checks that the webui answers. Stable Diffusion is optional; callers
// treat a failure as a warning, not an error.
func (c *Client) Ping(ctx context.Context) error {
	if !c.Configured() {
		return fmt.Errorf("stable diffusion not configured")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("stable diffusion returned status %d", resp.StatusCode)
	}
	return nil
}

type txt2imgRequest struct {
	Prompt         string   `json:"prompt"`
	NegativePrompt string   `json:"negative_prompt"`
	Width          int      `json:"width"`
	Height         int      `json:"height"`
	Steps          int      `json:"steps"`
	CfgScale       float64  `json:"cfg_scale"`
	Styles         []string `json:"styles"`
	SaveImages     bool     `json:"save_images"`
}

type txt2imgResponse struct {
	Images []string `json:"images"`
}

func (c *Client) Generate(ctx context.Context, prompt string, styles []string) (string, error) {
	if !c.Configured() {
		return "", fmt.Errorf("stable diffusion not configured")
	}

	payload, err := json.Marshal(txt2imgRequest{
		Prompt:         prompt,
		NegativePrompt: "ugly, out of frame",
		Width:          infra.PanelWidth,
		Height:         infra.PanelHeight,
		Steps:          c.steps,
		CfgScale:       2,
		Styles:         styles,
		SaveImages:     true,
	})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/sdapi/v1/txt2img", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("txt2img error %d: %s", resp.StatusCode, string(respBody))
	}

	var result txt2imgResponse
	if err = json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}
	if len(result.Images) == 0 {
		return "", fmt.Errorf("txt2img returned no images")
	}

	raw, err := base64.StdEncoding.DecodeString(result.Images[0])
	if err != nil {
		return "", fmt.Errorf("decoding image data: %w", err)
	}

	path := filepath.Join(c.outDir, c.now().Format("20060102-150405")+".png")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return "", fmt.Errorf("saving image: %w", err)
	}
	return path, nil
}
