package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/outfitlens/backend/internal/domain"
)

// Defaults for outfit limits
const (
	defaultOutfitLimit         = 3
	defaultMaxOutfitLimit      = 10
	defaultCandidateMultiplier = 3
)

// RecommendationServiceConfig holds configuration for the recommendation service
type RecommendationServiceConfig struct {
	DefaultLimit        int
	MaxLimit            int
	CandidateMultiplier int
	QueryTimeout        time.Duration
	ImageBaseURL        string
	ProductBaseURL      string
	EnableDebugLogging  bool
}

// RecommendResult is the outcome of one recommendation call
type RecommendResult struct {
	Outfits  []domain.OutfitCandidate `json:"outfits"`
	Keywords domain.KeywordBundle     `json:"keywords"`
	Stages   []StageOutcome           `json:"stages,omitempty"`
}

// RecommendationService turns a shopper message into ranked outfits
type RecommendationService struct {
	catalog             domain.CatalogStore
	expander            *KeywordExpander
	coordinator         *SearchCoordinator
	composer            *OutfitComposer
	defaultLimit        int
	maxLimit            int
	candidateMultiplier int
	enableDebugLogging  bool
}

// NewRecommendationService creates a new recommendation service with dependencies
func NewRecommendationService(
	catalog domain.CatalogStore,
	expander *KeywordExpander,
	config RecommendationServiceConfig,
) *RecommendationService {
	defaultLimit := config.DefaultLimit
	if defaultLimit <= 0 {
		defaultLimit = defaultOutfitLimit
	}

	maxLimit := config.MaxLimit
	if maxLimit <= 0 {
		maxLimit = defaultMaxOutfitLimit
	}
	if defaultLimit > maxLimit {
		defaultLimit = maxLimit
	}

	multiplier := config.CandidateMultiplier
	if multiplier <= 0 {
		multiplier = defaultCandidateMultiplier
	}

	if expander == nil {
		expander = NewKeywordExpander(nil, nil, ExpanderConfig{EnableDebugLogging: config.EnableDebugLogging})
	}

	return &RecommendationService{
		catalog:  catalog,
		expander: expander,
		coordinator: NewSearchCoordinator(SearchConfig{
			QueryTimeout:       config.QueryTimeout,
			EnableDebugLogging: config.EnableDebugLogging,
		}),
		composer: NewOutfitComposer(ComposerConfig{
			ImageBaseURL:   config.ImageBaseURL,
			ProductBaseURL: config.ProductBaseURL,
		}),
		defaultLimit:        defaultLimit,
		maxLimit:            maxLimit,
		candidateMultiplier: multiplier,
		enableDebugLogging:  config.EnableDebugLogging,
	}
}

// EffectiveLimit applies the default and maximum outfit limits
func (s *RecommendationService) EffectiveLimit(limit int) int {
	if limit <= 0 {
		return s.defaultLimit
	}
	if limit > s.maxLimit {
		return s.maxLimit
	}
	return limit
}

// Recommend runs the pipeline for one message.
// Flow: expand keywords -> search catalog -> diversify -> compose -> rank.
// It never fails: every internal failure degrades to fewer or no outfits.
// If ctx ends mid-way, results gathered so far are discarded.
func (s *RecommendationService) Recommend(ctx context.Context, message string, limit int) RecommendResult {
	result := RecommendResult{Outfits: []domain.OutfitCandidate{}}
	message = strings.TrimSpace(message)
	if message == "" {
		result.Keywords = domain.NewKeywordBundle(domain.KeywordBundle{})
		return result
	}

	logger := log.Ctx(ctx).With().Str("component", "recommend").Logger()
	start := time.Now()
	limit = s.EffectiveLimit(limit)

	bundle := s.expander.Expand(ctx, message)
	result.Keywords = bundle
	if ctx.Err() != nil {
		logger.Warn().Err(ctx.Err()).Msg("request ended during keyword expansion")
		return result
	}

	if s.catalog == nil {
		logger.Error().Err(domain.ErrCatalogUnavailable).Msg("no catalog store configured")
		return result
	}

	session, err := s.catalog.Acquire(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("catalog session unavailable")
		return result
	}
	defer func() {
		if err := session.Close(); err != nil {
			logger.Warn().Err(err).Msg("catalog session release failed")
		}
	}()

	search := s.coordinator.Search(ctx, session, bundle, limit*s.candidateMultiplier)
	result.Stages = search.Stages
	if ctx.Err() != nil {
		logger.Warn().Err(ctx.Err()).Msg("request ended during catalog search, discarding results")
		return result
	}

	candidates := Diversify(search.Records)
	result.Outfits = s.composer.Compose(candidates, bundle, limit)

	event := logger.Info()
	if s.enableDebugLogging {
		event = event.Int("candidates", len(search.Records)).Int("diversified", len(candidates))
	}
	event.Int("outfits", len(result.Outfits)).Int("limit", limit).
		Dur("took", time.Since(start)).Msg("recommendation complete")

	return result
}
