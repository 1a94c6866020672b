package domain

import "errors"

var (
	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrGenerationFailed is returned when the text-generation service call fails
	ErrGenerationFailed = errors.New("text generation request failed")

	// ErrMalformedResponse is returned when generated text holds no usable JSON object
	ErrMalformedResponse = errors.New("malformed text generation response")

	// ErrGeneratorUnavailable is returned when no text-generation service is configured
	ErrGeneratorUnavailable = errors.New("text generation service not configured")

	// ErrCatalogQuery is returned when a catalog store query fails
	ErrCatalogQuery = errors.New("catalog query failed")

	// ErrCatalogUnavailable is returned when a catalog session cannot be acquired
	ErrCatalogUnavailable = errors.New("catalog store unavailable")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrRateLimited is returned when rate limit is exceeded
	ErrRateLimited = errors.New("rate limit exceeded")
)
