package datasource

import (
	"context"
	"fmt"
	"io"

	"golang.org/x/time/rate"
)

// RateLimitedSource wraps a DocumentSource with rate limiting
type RateLimitedSource struct {
	source  DocumentSource
	limiter *rate.Limiter
	name    string
}

// NewRateLimitedSource creates a new rate limited document source
// rps is the maximum requests per second allowed (can be fractional for less than 1 request per second)
// burst is the maximum burst size allowed
func NewRateLimitedSource(source DocumentSource, rps float64, burst int) *RateLimitedSource {
	return &RateLimitedSource{
		source:  source,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		name:    fmt.Sprintf("%s [Rate Limited]", source.Name()),
	}
}

// FetchDocument opens a forecast document, respecting rate limits
func (r *RateLimitedSource) FetchDocument(ctx context.Context, locationID string) (io.ReadCloser, error) {
	// Wait for rate limiter permission or context cancellation
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait canceled: %w", err)
	}

	// Forward to the underlying source
	return r.source.FetchDocument(ctx, locationID)
}

// Name returns the source name
func (r *RateLimitedSource) Name() string {
	return r.name
}

// Verify that our rate limited type implements the required interface
var _ DocumentSource = (*RateLimitedSource)(nil)
