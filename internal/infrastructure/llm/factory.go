package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/outfitlens/backend/internal/domain"
)

// Supported providers
const (
	ProviderOpenAI = "openai"
	ProviderClaude = "claude"
	ProviderGemini = "gemini"
	ProviderOllama = "ollama"
	ProviderNone   = "none"
)

// Config selects and configures a text-generation provider
type Config struct {
	Provider          string
	Model             string
	APIKey            string
	BaseURL           string
	RequestsPerMinute int
	MaxAttempts       int
}

// NewGenerator builds the configured generator wrapped in rate limiting.
// The "none" provider returns a nil generator so callers use fallback keywords.
func NewGenerator(ctx context.Context, cfg Config) (domain.TextGenerator, error) {
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))

	var gen domain.TextGenerator
	switch provider {
	case "", ProviderNone:
		return nil, nil

	case ProviderOpenAI:
		gen = NewOpenAIClient(cfg.APIKey, cfg.Model, cfg.BaseURL)

	case ProviderClaude:
		gen = NewClaudeClient(cfg.APIKey, cfg.Model, cfg.BaseURL)

	case ProviderGemini:
		c, err := NewGeminiClient(ctx, cfg.APIKey, cfg.Model)
		if err != nil {
			return nil, err
		}
		gen = c

	case ProviderOllama:
		// Ollama serves an OpenAI-compatible API under /v1
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = "http://localhost:11434"
		}
		if !strings.HasSuffix(baseURL, "/v1") {
			baseURL = strings.TrimRight(baseURL, "/") + "/v1"
		}
		apiKey := cfg.APIKey
		if apiKey == "" {
			apiKey = "ollama"
		}
		gen = NewOpenAIClient(apiKey, cfg.Model, baseURL)

	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", cfg.Provider)
	}

	log.Ctx(ctx).Info().
		Str("provider", provider).
		Str("model", cfg.Model).
		Int("requests_per_minute", cfg.RequestsPerMinute).
		Msg("text generation configured")

	return NewLimitedGenerator(gen, cfg.RequestsPerMinute, cfg.MaxAttempts), nil
}
