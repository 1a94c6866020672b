package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/outfitlens/backend/internal/domain"
)

// GeminiClient talks to the Google Gemini API
type GeminiClient struct {
	client *genai.Client
	model  string
}

// NewGeminiClient creates a Gemini client
func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &GeminiClient{
		client: client,
		model:  model,
	}, nil
}

// Close releases the underlying API connection
func (c *GeminiClient) Close() error {
	return c.client.Close()
}

// Generate sends the examples as the system instruction and the instruction as content
func (c *GeminiClient) Generate(ctx context.Context, req domain.GenerationRequest) (string, error) {
	model := c.client.GenerativeModel(c.model)
	if req.Temperature > 0 {
		model.SetTemperature(req.Temperature)
	}
	if req.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(req.MaxTokens))
	}
	if req.Examples != "" {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(req.Examples)},
		}
	}

	resp, err := model.GenerateContent(ctx, genai.Text(req.Instruction))
	if err != nil {
		return "", fmt.Errorf("%w: gemini: %v", domain.ErrGenerationFailed, err)
	}

	var sb strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if txt, ok := part.(genai.Text); ok {
				sb.WriteString(string(txt))
			}
		}
		if sb.Len() > 0 {
			return sb.String(), nil
		}
	}
	return "", fmt.Errorf("%w: gemini: no response candidates or content", domain.ErrGenerationFailed)
}
