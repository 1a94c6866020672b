package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/outfitlens/backend/internal/domain"
	"github.com/outfitlens/backend/internal/prompts"
)

// Package-level compiled regex patterns for cache keys
var (
	nonAlphanumericRegex = regexp.MustCompile(`[^\p{L}\p{N}\s]`)
	multipleSpacesRegex  = regexp.MustCompile(`\s+`)
)

const (
	defaultGenerationTimeout = 5 * time.Second
	defaultExpansionCacheTTL = time.Hour
	keywordCachePrefix       = "keywords:"
)

// ExpanderConfig holds configuration for the keyword expander
type ExpanderConfig struct {
	Prompt             prompts.KeywordPrompt
	Timeout            time.Duration
	CacheTTL           time.Duration
	EnableDebugLogging bool
}

// KeywordExpander turns a shopper message into a KeywordBundle using the
// text-generation service, falling back to a fixed vocabulary on any failure
type KeywordExpander struct {
	generator          domain.TextGenerator
	cache              domain.CacheRepository
	preprocessor       *QueryPreprocessor
	prompt             prompts.KeywordPrompt
	timeout            time.Duration
	cacheTTL           time.Duration
	enableDebugLogging bool
}

// NewKeywordExpander creates a keyword expander. generator and cache may be nil.
func NewKeywordExpander(
	generator domain.TextGenerator,
	cache domain.CacheRepository,
	config ExpanderConfig,
) *KeywordExpander {
	prompt := config.Prompt
	if strings.TrimSpace(prompt.Instruction) == "" {
		prompt = prompts.Default().Keywords
	}

	timeout := config.Timeout
	if timeout <= 0 {
		timeout = defaultGenerationTimeout
	}

	cacheTTL := config.CacheTTL
	if cacheTTL <= 0 {
		cacheTTL = defaultExpansionCacheTTL
	}

	return &KeywordExpander{
		generator:          generator,
		cache:              cache,
		preprocessor:       NewQueryPreprocessor(config.EnableDebugLogging),
		prompt:             prompt,
		timeout:            timeout,
		cacheTTL:           cacheTTL,
		enableDebugLogging: config.EnableDebugLogging,
	}
}

// Expand returns the keyword bundle for message. It never fails: any error from
// the text-generation service results in the deterministic fallback bundle.
func (e *KeywordExpander) Expand(ctx context.Context, message string) domain.KeywordBundle {
	logger := log.Ctx(ctx).With().Str("component", "expander").Logger()

	cacheKey := expansionCacheKey(message)
	if bundle, ok := e.fromCache(ctx, cacheKey); ok {
		if e.enableDebugLogging {
			logger.Debug().Str("key", cacheKey).Msg("keyword bundle served from cache")
		}
		return bundle
	}

	raw, err := e.generate(ctx, message)
	if err != nil {
		logger.Warn().Err(err).Msg("text generation failed, using fallback keywords")
		return e.Fallback(message)
	}

	bundle, err := ParseKeywordBundle(raw)
	if err != nil {
		logger.Warn().Err(err).Msg("unusable generation response, using fallback keywords")
		return e.Fallback(message)
	}

	e.toCache(ctx, cacheKey, raw)

	if e.enableDebugLogging {
		logger.Debug().Interface("bundle", bundle).Msg("keyword bundle generated")
	}
	return bundle
}

// generate performs the bounded outbound call
func (e *KeywordExpander) generate(ctx context.Context, message string) (string, error) {
	if e.generator == nil {
		return "", domain.ErrGeneratorUnavailable
	}

	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	raw, err := e.generator.Generate(callCtx, domain.GenerationRequest{
		Instruction: e.prompt.Render(message),
		Examples:    e.prompt.Examples,
		Temperature: e.prompt.Temperature,
		MaxTokens:   e.prompt.MaxTokens,
	})
	if err != nil {
		if errors.Is(err, domain.ErrGenerationFailed) {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", domain.ErrGenerationFailed, err)
	}
	return raw, nil
}

func (e *KeywordExpander) fromCache(ctx context.Context, key string) (domain.KeywordBundle, bool) {
	if e.cache == nil || key == "" {
		return domain.KeywordBundle{}, false
	}

	raw, err := e.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrCacheMiss) {
			log.Ctx(ctx).Warn().Err(err).Str("component", "expander").Msg("cache read failed")
		}
		return domain.KeywordBundle{}, false
	}

	bundle, err := ParseKeywordBundle(string(raw))
	if err != nil {
		_ = e.cache.Delete(ctx, key)
		return domain.KeywordBundle{}, false
	}
	return bundle, true
}

func (e *KeywordExpander) toCache(ctx context.Context, key, raw string) {
	if e.cache == nil || key == "" {
		return
	}
	if err := e.cache.Set(ctx, key, []byte(raw), e.cacheTTL); err != nil {
		// A failed write only costs a future generation call
		log.Ctx(ctx).Warn().Err(err).Str("component", "expander").Msg("cache write failed")
	}
}

// bundleFields are the JSON keys a generated bundle may carry
var bundleFields = []string{
	"keywords", "colors", "occasions", "styles", "categories", "materials",
	"mood", "price_range", "explanation",
}

// ParseKeywordBundle decodes the first balanced JSON object found in raw.
// Missing or mistyped fields take their defaults; a response with no
// object, invalid JSON or none of the bundle fields is malformed.
func ParseKeywordBundle(raw string) (domain.KeywordBundle, error) {
	object, ok := firstJSONObject(raw)
	if !ok {
		return domain.KeywordBundle{}, fmt.Errorf("%w: no JSON object found", domain.ErrMalformedResponse)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(object), &fields); err != nil {
		return domain.KeywordBundle{}, fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}

	known := 0
	for _, name := range bundleFields {
		if _, ok := fields[name]; ok {
			known++
		}
	}
	if known == 0 {
		return domain.KeywordBundle{}, fmt.Errorf("%w: no keyword fields present", domain.ErrMalformedResponse)
	}

	return domain.NewKeywordBundle(domain.KeywordBundle{
		Keywords:    decodeTerms(fields["keywords"]),
		Colors:      decodeTerms(fields["colors"]),
		Occasions:   decodeTerms(fields["occasions"]),
		Styles:      decodeTerms(fields["styles"]),
		Categories:  decodeTerms(fields["categories"]),
		Materials:   decodeTerms(fields["materials"]),
		Mood:        decodeText(fields["mood"]),
		PriceRange:  decodeText(fields["price_range"]),
		Explanation: decodeText(fields["explanation"]),
	}), nil
}

// decodeTerms accepts a JSON array of strings or a single string
func decodeTerms(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list
	}

	var mixed []interface{}
	if err := json.Unmarshal(raw, &mixed); err == nil {
		for _, v := range mixed {
			if s, ok := v.(string); ok {
				list = append(list, s)
			}
		}
		return list
	}

	if s := decodeText(raw); s != "" {
		return strings.Split(s, ",")
	}
	return nil
}

func decodeText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// firstJSONObject returns the first balanced {...} region of s.
// Braces inside JSON strings are ignored.
func firstJSONObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}

	return "", false
}

// expansionCacheKey hashes the normalized message. It is empty, and the
// cache is bypassed, when the message has no letters or digits.
func expansionCacheKey(message string) string {
	normalized := normalizeForCacheKey(message)
	if normalized == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(normalized))
	return keywordCachePrefix + hex.EncodeToString(sum[:])
}

// normalizeForCacheKey normalizes a string for use as cache key component.
// Converts to lowercase, removes punctuation in any script, and trims whitespace.
func normalizeForCacheKey(s string) string {
	if s == "" {
		return ""
	}
	result := strings.ToLower(s)
	result = nonAlphanumericRegex.ReplaceAllString(result, "")
	result = multipleSpacesRegex.ReplaceAllString(result, " ")
	return strings.TrimSpace(result)
}
