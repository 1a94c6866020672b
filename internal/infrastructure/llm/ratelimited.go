package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/outfitlens/backend/internal/domain"
)

const (
	defaultMaxAttempts = 2
	retryBackoffStep   = 500 * time.Millisecond
)

// LimitedGenerator throttles outbound generation calls and retries transient failures
type LimitedGenerator struct {
	next        domain.TextGenerator
	rateLimiter *rate.Limiter
	maxAttempts int
	backoff     time.Duration
}

// NewLimitedGenerator wraps next with a limiter allowing requestsPerMinute calls.
// A non-positive requestsPerMinute disables throttling.
func NewLimitedGenerator(next domain.TextGenerator, requestsPerMinute, maxAttempts int) *LimitedGenerator {
	limiter := rate.NewLimiter(rate.Inf, 0)
	if requestsPerMinute > 0 {
		// rate.Limit is requests per second
		burst := requestsPerMinute / 10
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60.0), burst)
	}
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}

	return &LimitedGenerator{
		next:        next,
		rateLimiter: limiter,
		maxAttempts: maxAttempts,
		backoff:     retryBackoffStep,
	}
}

// Close closes the wrapped generator when it holds a connection
func (g *LimitedGenerator) Close() error {
	if c, ok := g.next.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Generate waits for the limiter then calls the wrapped generator,
// retrying with linear backoff until the context ends
func (g *LimitedGenerator) Generate(ctx context.Context, req domain.GenerationRequest) (string, error) {
	logger := log.Ctx(ctx).With().Str("component", "llm").Logger()

	var lastErr error
	for attempt := 1; attempt <= g.maxAttempts; attempt++ {
		if err := g.rateLimiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("%w: %v", domain.ErrRateLimited, err)
		}

		text, err := g.next.Generate(ctx, req)
		if err == nil {
			return text, nil
		}
		lastErr = err

		if ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return "", err
		}
		logger.Warn().Err(err).Int("attempt", attempt).Msg("generation attempt failed")

		if attempt < g.maxAttempts {
			select {
			case <-ctx.Done():
				return "", lastErr
			case <-time.After(time.Duration(attempt) * g.backoff):
			}
		}
	}

	return "", lastErr
}
