// Package llm adapts hosted text-generation services to domain.TextGenerator.
package llm

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"

	"github.com/outfitlens/backend/internal/domain"
)

// OpenAIClient talks to the OpenAI chat completions API or any compatible server
type OpenAIClient struct {
	client *openai.Client
	model  string
}

// NewOpenAIClient creates an OpenAI client. An empty baseURL uses the public API.
func NewOpenAIClient(apiKey, model, baseURL string) *OpenAIClient {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &OpenAIClient{
		client: openai.NewClientWithConfig(config),
		model:  model,
	}
}

// Generate sends the examples as the system message and the instruction as the user turn
func (c *OpenAIClient) Generate(ctx context.Context, req domain.GenerationRequest) (string, error) {
	var messages []openai.ChatCompletionMessage
	if req.Examples != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.Examples,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Instruction,
	})

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("%w: openai: %v", domain.ErrGenerationFailed, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: openai: no response choices", domain.ErrGenerationFailed)
	}
	return resp.Choices[0].Message.Content, nil
}
