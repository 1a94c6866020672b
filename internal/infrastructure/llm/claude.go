package llm

import (
	"context"
	"fmt"

	"github.com/liushuangls/go-anthropic/v2"

	"github.com/outfitlens/backend/internal/domain"
)

const defaultClaudeMaxTokens = 400

// ClaudeClient talks to the Anthropic messages API
type ClaudeClient struct {
	client *anthropic.Client
	model  string
}

// NewClaudeClient creates a Claude client. An empty baseURL uses the public API.
func NewClaudeClient(apiKey, model, baseURL string) *ClaudeClient {
	var opts []anthropic.ClientOption
	if baseURL != "" {
		opts = append(opts, anthropic.WithBaseURL(baseURL))
	}
	return &ClaudeClient{
		client: anthropic.NewClient(apiKey, opts...),
		model:  model,
	}
}

// Generate sends the examples as the system prompt and the instruction as the user turn
func (c *ClaudeClient) Generate(ctx context.Context, req domain.GenerationRequest) (string, error) {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		// The messages API rejects requests without max_tokens
		maxTokens = defaultClaudeMaxTokens
	}

	msgReq := anthropic.MessagesRequest{
		Model:  anthropic.Model(c.model),
		System: req.Examples,
		Messages: []anthropic.Message{
			{
				Role: anthropic.RoleUser,
				Content: []anthropic.MessageContent{
					anthropic.NewTextMessageContent(req.Instruction),
				},
			},
		},
		MaxTokens: maxTokens,
	}
	if req.Temperature > 0 {
		temperature := req.Temperature
		msgReq.Temperature = &temperature
	}

	resp, err := c.client.CreateMessages(ctx, msgReq)
	if err != nil {
		return "", fmt.Errorf("%w: claude: %v", domain.ErrGenerationFailed, err)
	}
	for _, content := range resp.Content {
		if content.Text != nil {
			return *content.Text, nil
		}
	}
	return "", fmt.Errorf("%w: claude: no response content", domain.ErrGenerationFailed)
}
