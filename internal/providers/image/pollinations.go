package image

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"

	"github.com/Pradeep20056/thumbnail-genie/internal/providers/pollinations"
)

type pollinationsClient interface {
	GenerateImage(ctx context.Context, prompt string) (*pollinations.ImageResult, error)
}

// PollinationsGenerator fulfils the Generator contract on top of the raw
// Pollinations client: bounded retry with backoff, a circuit breaker against
// a flapping upstream, and a short-lived result cache so an identical
// immediate re-submit does not hit the provider twice.
type PollinationsGenerator struct {
	client  pollinationsClient
	breaker *gobreaker.CircuitBreaker[*pollinations.ImageResult]
	cache   *gocache.Cache
	logger  zerolog.Logger
}

// NewPollinationsGenerator wires the generator with its protection layers.
func NewPollinationsGenerator(client pollinationsClient, logger zerolog.Logger) *PollinationsGenerator {
	settings := gobreaker.Settings{
		Name:    "pollinations",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("image provider breaker state changed")
		},
	}
	return &PollinationsGenerator{
		client:  client,
		breaker: gobreaker.NewCircuitBreaker[*pollinations.ImageResult](settings),
		cache:   gocache.New(2*time.Minute, 5*time.Minute),
		logger:  logger,
	}
}

// Generate fulfils the Generator interface.
func (g *PollinationsGenerator) Generate(ctx context.Context, req GenerateRequest) (*Asset, error) {
	if g == nil || g.client == nil {
		return nil, fmt.Errorf("pollinations generator not configured")
	}

	key := cacheKey(req.Prompt)
	if cached, ok := g.cache.Get(key); ok {
		if asset, ok := cached.(*Asset); ok {
			g.logger.Debug().Str("request_id", req.RequestID).Msg("image served from prompt cache")
			return asset, nil
		}
	}

	result, err := runWithRetry(ctx, maxAttempts, NewBackoff(), func(ctx context.Context) (*pollinations.ImageResult, error) {
		return g.breaker.Execute(func() (*pollinations.ImageResult, error) {
			return g.client.GenerateImage(ctx, req.Prompt)
		})
	})
	if err != nil {
		return nil, err
	}

	asset := &Asset{
		DataURI: dataURI(result.Format, result.Data),
		Data:    result.Data,
		Format:  result.Format,
		Width:   result.Width,
		Height:  result.Height,
	}
	g.cache.SetDefault(key, asset)
	return asset, nil
}

func cacheKey(prompt string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(prompt)))
	return hex.EncodeToString(sum[:])
}

func dataURI(format string, data []byte) string {
	format = strings.TrimSpace(format)
	if !strings.HasPrefix(format, "image/") {
		format = "image/jpeg"
	}
	return "data:" + format + ";base64," + base64.StdEncoding.EncodeToString(data)
}

var _ Generator = (*PollinationsGenerator)(nil)
