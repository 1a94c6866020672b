package main

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"

	"github.com/outfitlens/backend/config"
	"github.com/outfitlens/backend/internal/domain"
	"github.com/outfitlens/backend/internal/infrastructure/cache"
	"github.com/outfitlens/backend/internal/infrastructure/catalog"
	"github.com/outfitlens/backend/internal/infrastructure/llm"
	"github.com/outfitlens/backend/internal/prompts"
	"github.com/outfitlens/backend/internal/usecase"
)

// app owns the wired dependencies of one process
type app struct {
	service *usecase.RecommendationService
	closers []func() error
}

// newApp wires infrastructure into the recommendation service
func newApp(ctx context.Context, cfg *config.Config) (_ *app, err error) {
	a := &app{}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	store, err := catalog.Open(ctx, catalog.Config{
		Driver:          cfg.Catalog.Driver,
		DSN:             cfg.Catalog.DSN,
		MaxOpenConns:    cfg.Catalog.MaxOpenConns,
		MaxIdleConns:    cfg.Catalog.MaxIdleConns,
		ConnMaxLifetime: cfg.Catalog.ConnMaxLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	a.closers = append(a.closers, store.Close)

	var cacheRepo domain.CacheRepository
	switch cfg.Cache.Type {
	case "memory":
		memoryCache := cache.NewMemoryCache()
		a.closers = append(a.closers, memoryCache.Close)
		cacheRepo = memoryCache
	case "redis":
		redisCache, err := cache.NewRedisCache(ctx, cache.RedisConfig{URL: cfg.Cache.RedisURL})
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, redisCache.Close)
		cacheRepo = redisCache
	}

	promptSet, err := prompts.Load(cfg.LLM.PromptsFile)
	if err != nil {
		return nil, err
	}

	generator, err := llm.NewGenerator(ctx, llm.Config{
		Provider:          cfg.LLM.Provider,
		Model:             cfg.LLM.Model,
		APIKey:            cfg.LLM.APIKey,
		BaseURL:           cfg.LLM.BaseURL,
		RequestsPerMinute: cfg.RateLimit.LLM,
		MaxAttempts:       cfg.LLM.MaxAttempts,
	})
	if err != nil {
		return nil, err
	}
	if generator == nil {
		log.Ctx(ctx).Warn().Msg("no text generation provider configured, using fallback keywords only")
	}
	if closer, ok := generator.(io.Closer); ok {
		a.closers = append(a.closers, closer.Close)
	}

	expander := usecase.NewKeywordExpander(generator, cacheRepo, usecase.ExpanderConfig{
		Prompt:             promptSet.Keywords,
		Timeout:            cfg.LLM.Timeout,
		CacheTTL:           cfg.Cache.TTL,
		EnableDebugLogging: cfg.Recommend.EnableDebugLogging,
	})

	a.service = usecase.NewRecommendationService(store, expander, usecase.RecommendationServiceConfig{
		DefaultLimit:        cfg.Recommend.DefaultLimit,
		MaxLimit:            cfg.Recommend.MaxLimit,
		CandidateMultiplier: cfg.Recommend.CandidateMultiplier,
		QueryTimeout:        cfg.Catalog.QueryTimeout,
		ImageBaseURL:        cfg.Catalog.ImageBaseURL,
		ProductBaseURL:      cfg.Catalog.ProductBaseURL,
		EnableDebugLogging:  cfg.Recommend.EnableDebugLogging,
	})

	log.Ctx(ctx).Info().
		Str("catalog_driver", cfg.Catalog.Driver).
		Str("cache", cfg.Cache.Type).
		Dur("cache_ttl", cfg.Cache.TTL).
		Int("default_limit", cfg.Recommend.DefaultLimit).
		Bool("debug", cfg.Recommend.EnableDebugLogging).
		Msg("recommendation service ready")

	return a, nil
}

// Close releases dependencies in reverse order of acquisition
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			log.Warn().Err(err).Msg("failed to release dependency")
		}
	}
	a.closers = nil
}
