package gemini

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/mcodersir/axkhan/internal/providers"
	"google.golang.org/api/option"
)

// Gemini is a provider for Google Gemini
type Gemini struct {
	opts []option.ClientOption
}

// New returns a new Gemini provider. Extra client options are appended
// after the API key, e.g. option.WithEndpoint for a proxy.
func New(opts ...option.ClientOption) *Gemini {
	return &Gemini{opts: opts}
}

// ExtractText sends the prompt and image to Gemini and returns the text of
// the first candidate. A response without text is an empty result, not
// an error.
func (g *Gemini) ExtractText(ctx context.Context, config providers.Config) (string, error) {
	if config.APIKey == "" {
		return "", fmt.Errorf("gemini api key not provided")
	}

	data, err := base64.StdEncoding.DecodeString(config.ImageBase64)
	if err != nil {
		return "", fmt.Errorf("failed to decode image payload: %w", err)
	}

	client, err := genai.NewClient(ctx, append([]option.ClientOption{option.WithAPIKey(config.APIKey)}, g.opts...)...)
	if err != nil {
		return "", fmt.Errorf("failed to create new gemini client: %w", err)
	}
	defer client.Close()

	model := client.GenerativeModel(config.Model)
	model.SetTemperature(float32(config.Temperature))

	resp, err := model.GenerateContent(ctx,
		genai.Blob{MIMEType: config.MimeType, Data: data},
		genai.Text(config.Prompt),
	)
	if err != nil {
		return "", providers.Remote(err)
	}

	text := responseText(resp)
	slog.Info("Extracted text", "provider", "gemini", "model", config.Model, "length", len(text))
	return text, nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil {
		return ""
	}

	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	return sb.String()
}
