package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"io"
	"net/http"
	"os"
	"time"

	"golang.org/x/image/draw"

	"gpt-buddy/internal/infra"
)

// illustrationPrompt frames the exchange for the image model. The user text
// and reply are appended verbatim.
const illustrationPrompt = "Draw a single vivid scene inspired by this exchange between a person and their assistant. No text in the image."

// DalleClient generates an illustration for an exchange, downloads it and
// resizes a copy to the panel dimensions. One attempt per request; image
// generation failures are not retried.
type DalleClient struct {
	apiKey      string
	httpClient  *http.Client
	baseURL     string
	model       string
	fullPath    string
	resizedPath string
}

func NewDalleClient(apiKey, model, fullPath, resizedPath string) *DalleClient {
	return NewDalleClientWithURL(apiKey, model, fullPath, resizedPath, "https://api.openai.com/v1")
}

func NewDalleClientWithURL(apiKey, model, fullPath, resizedPath, baseURL string) *DalleClient {
	return &DalleClient{
		apiKey:      apiKey,
		httpClient:  &http.Client{Timeout: 60 * time.Second},
		baseURL:     baseURL,
		model:       model,
		fullPath:    fullPath,
		resizedPath: resizedPath,
	}
}

type imageRequest struct {
	Model   string `json:"model"`
	Prompt  string `json:"prompt"`
	Size    string `json:"size"`
	Quality string `json:"quality"`
	N       int    `json:"n"`
}

type imageResponse struct {
	Data []struct {
		URL string `json:"url"`
	} `json:"data"`
}

func (c *DalleClient) Illustrate(ctx context.Context, userText, reply string) (string, error) {
	prompt := fmt.Sprintf("%s\n%s\n%s", illustrationPrompt, userText, reply)

	payload, err := json.Marshal(imageRequest{
		Model:   c.model,
		Prompt:  prompt,
		Size:    "1024x1024",
		Quality: "standard",
		N:       1,
	})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/images/generations", bytes.NewReader(payload))
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
		return "", fmt.Errorf("images API error %d: %s", resp.StatusCode, string(respBody))
	}

	var result imageResponse
	if err = json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}
	if len(result.Data) == 0 || result.Data[0].URL == "" {
		return "", fmt.Errorf("images API returned no image")
	}

	img, err := c.download(ctx, result.Data[0].URL)
	if err != nil {
		return "", err
	}

	if err := writePNG(c.fullPath, img); err != nil {
		return "", fmt.Errorf("saving full image: %w", err)
	}

	resized := image.NewRGBA(image.Rect(0, 0, infra.PanelWidth, infra.PanelHeight))
	draw.CatmullRom.Scale(resized, resized.Bounds(), img, img.Bounds(), draw.Src, nil)
	if err := writePNG(c.resizedPath, resized); err != nil {
		return "", fmt.Errorf("saving resized image: %w", err)
	}

	return c.resizedPath, nil
}

func (c *DalleClient) download(ctx context.Context, url string) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating download request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("downloading image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("downloading image: HTTP %d", resp.StatusCode)
	}

	img, _, err := image.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}
	return img, nil
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
