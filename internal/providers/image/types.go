package image

import "context"

// GenerateRequest describes a normalized request passed to an image provider.
type GenerateRequest struct {
	Prompt    string
	RequestID string
}

// Asset represents one generated background image.
type Asset struct {
	DataURI string
	Data    []byte
	Format  string
	Width   int
	Height  int
}

// Generator is the contract implemented by all image providers.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (*Asset, error)
}
