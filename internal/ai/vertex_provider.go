package ai

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/vertexai/genai"

	"github.com/amishk599/hirecall/internal/model"
)

// contentGenerator is the slice of *genai.GenerativeModel the provider uses.
type contentGenerator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// VertexProvider calls Gemini through Vertex AI. Chat history is flattened
// into one prompt: system content, a blank line, then the user content.
type VertexProvider struct {
	client *genai.Client
	model  contentGenerator
}

// NewVertexProvider creates a Gemini client for project/location.
// Credentials come from Application Default Credentials.
func NewVertexProvider(ctx context.Context, project, location, modelName string, jsonMode bool) (*VertexProvider, error) {
	client, err := genai.NewClient(ctx, project, location)
	if err != nil {
		return nil, fmt.Errorf("create vertex ai client: %w", err)
	}

	m := client.GenerativeModel(modelName)
	m.SetTemperature(0)
	m.SetTopP(0.95)
	m.SetMaxOutputTokens(2048)
	if jsonMode {
		m.ResponseMIMEType = "application/json"
	}

	return &VertexProvider{client: client, model: m}, nil
}

// Complete sends the flattened messages and concatenates the text parts of
// the first candidate.
func (p *VertexProvider) Complete(ctx context.Context, messages []model.Message) (string, error) {
	resp, err := p.model.GenerateContent(ctx, genai.Text(Flatten(messages)))
	if err != nil {
		return "", fmt.Errorf("vertex generate content: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("vertex returned no candidates")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return sb.String(), nil
}

// Close releases the underlying client.
func (p *VertexProvider) Close() error {
	if p.client == nil {
		return nil
	}
	return p.client.Close()
}
