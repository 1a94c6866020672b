package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// GenerationRequest is one call to the text-generation service
type GenerationRequest struct {
	Instruction string
	Examples    string
	Temperature float32
	MaxTokens   int
}

// TextGenerator defines the interface for the external text-generation service
type TextGenerator interface {
	Generate(ctx context.Context, req GenerationRequest) (string, error)
}

// CatalogStore hands out per-request catalog sessions
type CatalogStore interface {
	Acquire(ctx context.Context) (CatalogSession, error)
}

// CatalogSession is a read-only view of the catalog bound to one connection.
// Close must be called on every exit path.
type CatalogSession interface {
	SearchByKeywords(ctx context.Context, keywords []string, limit int) ([]CatalogRecord, error)
	FindByCategory(ctx context.Context, q CategoryQuery) ([]CatalogRecord, error)
	Close() error
}
