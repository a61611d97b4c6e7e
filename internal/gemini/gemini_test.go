package gemini

import (
	"context"
	"errors"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/mcodersir/axkhan/internal/providers"
)

func TestResponseText(t *testing.T) {
	tests := []struct {
		name     string
		resp     *genai.GenerateContentResponse
		expected string
	}{
		{
			name:     "nil response",
			resp:     nil,
			expected: "",
		},
		{
			name:     "no candidates",
			resp:     &genai.GenerateContentResponse{},
			expected: "",
		},
		{
			name: "candidate without content",
			resp: &genai.GenerateContentResponse{
				Candidates: []*genai.Candidate{{}},
			},
			expected: "",
		},
		{
			name: "joins text parts",
			resp: &genai.GenerateContentResponse{
				Candidates: []*genai.Candidate{{
					Content: &genai.Content{Parts: []genai.Part{
						genai.Text("سلام "),
						genai.Blob{MIMEType: "image/png"},
						genai.Text("دنیا"),
					}},
				}},
			},
			expected: "سلام دنیا",
		},
		{
			name: "uses first candidate only",
			resp: &genai.GenerateContentResponse{
				Candidates: []*genai.Candidate{
					{Content: &genai.Content{Parts: []genai.Part{genai.Text("first")}}},
					{Content: &genai.Content{Parts: []genai.Part{genai.Text("second")}}},
				},
			},
			expected: "first",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := responseText(tt.resp); got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestExtractTextRejectsBadInputBeforeNetwork(t *testing.T) {
	g := New()

	if _, err := g.ExtractText(context.Background(), providers.Config{ImageBase64: "aGk="}); err == nil {
		t.Error("Expected error for missing key")
	}

	_, err := g.ExtractText(context.Background(), providers.Config{APIKey: "k", ImageBase64: "%%%"})
	if err == nil {
		t.Fatal("Expected error for invalid base64")
	}
	var remote *providers.RemoteError
	if errors.As(err, &remote) {
		t.Error("Local decode failure must not be marked remote")
	}
}
