package ocr

import (
	"context"
	"log/slog"
	"strings"

	"github.com/mcodersir/axkhan/internal/models"
	"github.com/mcodersir/axkhan/internal/providers"
)

// Client sends extraction requests to a vision model provider
type Client struct {
	provider providers.Provider
	envKey   string
}

// NewClient creates a client. envKey is the fallback used when a call
// supplies no key of its own.
func NewClient(provider providers.Provider, envKey string) *Client {
	return &Client{
		provider: provider,
		envKey:   strings.TrimSpace(envKey),
	}
}

// ResolveKey picks the explicit key over the environment default
func (c *Client) ResolveKey(apiKey string) string {
	if k := strings.TrimSpace(apiKey); k != "" {
		return k
	}
	return c.envKey
}

// HasKey reports whether Extract could resolve a key for apiKey
func (c *Client) HasKey(apiKey string) bool {
	return c.ResolveKey(apiKey) != ""
}

// Extract makes exactly one provider call for req. Failures are returned
// as *Error; nothing is retried. Empty text is a valid result.
func (c *Client) Extract(ctx context.Context, req models.ExtractionRequest, apiKey string) (string, error) {
	key := c.ResolveKey(apiKey)
	if key == "" {
		return "", &Error{Kind: KindMissingKey, Message: MsgMissingKey}
	}

	text, err := c.provider.ExtractText(ctx, providers.Config{
		APIKey:      key,
		Model:       req.Model,
		Temperature: 0.0, // Zero temperature for exact OCR
		Prompt:      req.Prompt,
		ImageBase64: req.ImageBase64,
		MimeType:    req.MimeType,
	})
	if err != nil {
		classified := Classify(err)
		slog.Error("Extraction failed", "model", req.Model, "kind", classified.Kind, "err", err)
		return "", classified
	}

	return text, nil
}
