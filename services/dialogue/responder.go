// File: tempobook/services/dialogue/responder.go
package dialogue

import (
	"context"
	"fmt"
	"strings"

	genai "github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Responder is the language engine behind the bridge. It turns a prompt into
// raw text; everything else about the conversation is decided here, not in
// the model.
type Responder interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeminiResponder implements Responder on the Gemini API.
type GeminiResponder struct {
	model *genai.GenerativeModel
}

func NewGeminiResponder(ctx context.Context, apiKey string) (*GeminiResponder, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel("models/gemini-1.5-pro")
	return &GeminiResponder{model: model}, nil
}

func (g *GeminiResponder) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generate error: %w", err)
	}
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("gemini returned no candidates")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if textPart, ok := part.(genai.Text); ok {
			sb.WriteString(string(textPart))
		}
	}
	return sb.String(), nil
}
