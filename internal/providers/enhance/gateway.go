// Package enhance calls an OpenAI-compatible AI gateway to touch up an
// existing thumbnail image (lighting, sharpness, color).
package enhance

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Pradeep20056/thumbnail-genie/internal/domain"
)

const defaultTimeout = 60 * time.Second

const defaultModel = "google/gemini-2.5-flash-image-preview"

// DefaultInstruction is used when the caller supplies no enhancement prompt.
const DefaultInstruction = "Enhance this image for a YouTube thumbnail: improve lighting, increase sharpness, make colors more vibrant, and ensure professional quality suitable for thumbnails."

type Options struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
}

// Gateway posts multimodal chat-completion requests that return an edited image.
type Gateway struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

type chatRequest struct {
	Model      string        `json:"model"`
	Messages   []chatMessage `json:"messages"`
	Modalities []string      `json:"modalities"`
}

type chatMessage struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Images []struct {
				ImageURL imageURL `json:"image_url"`
			} `json:"images"`
		} `json:"message"`
	} `json:"choices"`
}

func NewGateway(opts Options) (*Gateway, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("enhance: api key is required")
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://ai.gateway.lovable.dev/v1"
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = defaultModel
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &Gateway{
		apiKey:  strings.TrimSpace(opts.APIKey),
		model:   model,
		baseURL: baseURL,
		client:  client,
	}, nil
}

// Enhance submits the image (a data URI or URL) with the instruction and
// returns the edited image reference. No retry: the gateway meters usage per
// call and a duplicate submit bills twice.
func (g *Gateway) Enhance(ctx context.Context, imageData, instruction string) (string, error) {
	if strings.TrimSpace(imageData) == "" {
		return "", errors.New("enhance: image data is required")
	}
	if strings.TrimSpace(instruction) == "" {
		instruction = DefaultInstruction
	}

	payload := chatRequest{
		Model: g.model,
		Messages: []chatMessage{{
			Role: "user",
			Content: []contentPart{
				{Type: "text", Text: instruction},
				{Type: "image_url", ImageURL: &imageURL{URL: imageData}},
			},
		}},
		Modalities: []string{"image", "text"},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("enhance: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("enhance: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("enhance: http request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("enhance: read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", fmt.Errorf("enhance: status %d: %w", resp.StatusCode, domain.ErrRateLimited)
	case resp.StatusCode == http.StatusPaymentRequired:
		return "", fmt.Errorf("enhance: status %d: %w", resp.StatusCode, domain.ErrQuotaExhausted)
	case resp.StatusCode >= 300:
		return "", fmt.Errorf("enhance: status %d: %s: %w", resp.StatusCode, strings.TrimSpace(string(raw[:min(len(raw), 256)])), domain.ErrProviderFailure)
	}

	var decoded chatResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", fmt.Errorf("enhance: decode response: %w", err)
	}
	if len(decoded.Choices) == 0 || len(decoded.Choices[0].Message.Images) == 0 {
		return "", fmt.Errorf("enhance: no image in response: %w", domain.ErrProviderFailure)
	}
	url := strings.TrimSpace(decoded.Choices[0].Message.Images[0].ImageURL.URL)
	if url == "" {
		return "", fmt.Errorf("enhance: empty image url: %w", domain.ErrProviderFailure)
	}
	return url, nil
}
