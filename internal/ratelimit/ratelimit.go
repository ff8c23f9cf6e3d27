// Package ratelimit throttles outbound HTTP traffic. The scraper talks to a
// third-party API with an unpublished rate limit; pacing requests locally
// keeps the session token from being flagged.
package ratelimit

import (
	"context"
	"fmt"
	"io"

	"golang.org/x/time/rate"

	"github.com/chapmanwm/printsync-web/internal/adapter"
)

// HTTPClient wraps an adapter.HTTPClient, blocking each request until the
// limiter grants a token
type HTTPClient struct {
	inner   adapter.HTTPClient
	limiter *rate.Limiter
}

// NewHTTPClient creates a rate-limited HTTP client allowing rps requests per
// second with the given burst
func NewHTTPClient(inner adapter.HTTPClient, rps float64, burst int) *HTTPClient {
	return &HTTPClient{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

func (c *HTTPClient) wait(ctx context.Context) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}
	return nil
}

// Get waits for a token, then delegates
func (c *HTTPClient) Get(ctx context.Context, url string, headers map[string]string, result interface{}) error {
	if err := c.wait(ctx); err != nil {
		return err
	}
	return c.inner.Get(ctx, url, headers, result)
}

// GetBytes waits for a token, then delegates
func (c *HTTPClient) GetBytes(ctx context.Context, url string, headers map[string]string) ([]byte, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	return c.inner.GetBytes(ctx, url, headers)
}

// Post waits for a token, then delegates
func (c *HTTPClient) Post(ctx context.Context, url string, contentType string, headers map[string]string, body io.Reader) ([]byte, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	return c.inner.Post(ctx, url, contentType, headers, body)
}
