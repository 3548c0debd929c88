// Package pollinations wraps the Pollinations text-to-image HTTP API. The
// service is keyless; image bytes come back directly on the prompt URL.
package pollinations

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Pradeep20056/thumbnail-genie/internal/domain"
	"github.com/Pradeep20056/thumbnail-genie/internal/infra"
)

// Options configures the Pollinations client.
type Options struct {
	BaseURL        string
	Width          int
	Height         int
	HTTPClient     *http.Client
	Logger         *infra.Logger
	RequestTimeout time.Duration
}

// Client performs HTTP calls against the Pollinations image endpoint.
type Client struct {
	baseURL    string
	width      int
	height     int
	httpClient *http.Client
	logger     *infra.Logger
}

// ImageResult is the normalized response: raw bytes plus the reported MIME.
type ImageResult struct {
	Data   []byte
	Format string
	Width  int
	Height int
}

// NewClient constructs a client with sane defaults and injected dependencies.
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 45 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://image.pollinations.ai"
	}
	width, height := opts.Width, opts.Height
	if width <= 0 || height <= 0 {
		width, height = 1280, 720
	}
	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	return &Client{
		baseURL:    baseURL,
		width:      width,
		height:     height,
		httpClient: httpClient,
		logger:     logger,
	}
}

// GenerateImage fetches one image for the prompt. Provider throttling and
// billing caps surface as domain.ErrRateLimited / domain.ErrQuotaExhausted so
// callers can skip retries that cannot succeed.
func (c *Client) GenerateImage(ctx context.Context, prompt string) (*ImageResult, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, errors.New("pollinations: prompt is required")
	}

	endpoint := fmt.Sprintf("%s/prompt/%s?width=%d&height=%d&nologo=true",
		c.baseURL, url.PathEscape(prompt), c.width, c.height)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("pollinations: build request: %w", err)
	}
	req.Header.Set("Accept", "image/jpeg, image/png")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pollinations: http request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("pollinations: status %d: %w", resp.StatusCode, domain.ErrRateLimited)
	case resp.StatusCode == http.StatusPaymentRequired || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("pollinations: status %d: %w", resp.StatusCode, domain.ErrQuotaExhausted)
	case resp.StatusCode >= 300:
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("pollinations: status %d: %s: %w", resp.StatusCode, strings.TrimSpace(string(raw)), domain.ErrProviderFailure)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("pollinations: read image: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("pollinations: empty image payload: %w", domain.ErrProviderFailure)
	}

	format := resp.Header.Get("Content-Type")
	if format == "" {
		format = "image/jpeg"
	}

	c.logger.Debug().
		Int("bytes", len(data)).
		Str("format", format).
		Msg("pollinations: generated image")

	return &ImageResult{Data: data, Format: format, Width: c.width, Height: c.height}, nil
}
