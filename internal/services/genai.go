package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// TextGenerator is the one-shot completion call the chat service depends on.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GenAIClient wraps the Gemini SDK. It is constructed once at startup and
// injected wherever a TextGenerator is needed.
type GenAIClient struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

func NewGenAIClient(ctx context.Context, apiKey, modelName string) (*GenAIClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)

	return &GenAIClient{client: client, model: model}, nil
}

func (c *GenAIClient) Close() {
	c.client.Close()
}

// Generate sends a single prompt and returns the generated text. Every
// failure mode, including an empty candidate set, surfaces as *UpstreamError
// so callers can distinguish it from internal errors.
func (c *GenAIClient) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", &UpstreamError{Message: "AI service is unavailable", Err: err}
	}

	text := extractText(resp)
	if text == "" {
		return "", &UpstreamError{Message: "AI service returned an empty response"}
	}
	return text, nil
}

func extractText(resp *genai.GenerateContentResponse) string {
	var text strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if t, ok := part.(genai.Text); ok {
					text.WriteString(string(t))
				}
			}
		}
	}
	return text.String()
}
