// ABOUTME: This file provides the shared outbound HTTP client for all adapters
// ABOUTME: Applies per-host rate limiting and maps bad statuses to HTTPError
package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/andrewvu270/MindForge-sub000/config"
	"github.com/andrewvu270/MindForge-sub000/domain"
	"github.com/andrewvu270/MindForge-sub000/utils/rate_limiter"
)

// Client wraps the outbound HTTP transport shared by every adapter.
// Each request body is closed on every exit path.
type Client struct {
	http      *http.Client
	limiter   *rate_limiter.HostRateLimiter
	userAgent string
}

// NewClient builds the shared adapter HTTP client from config.
// Per-attempt timeouts come from context deadlines set by the retry
// executor, not from http.Client.Timeout.
func NewClient(cfg config.HTTPConfig) *Client {
	transport := &http.Transport{
		MaxIdleConns:        cfg.MaxIdleConns,
		MaxIdleConnsPerHost: cfg.MaxIdleConnsPerHost,
		IdleConnTimeout:     cfg.IdleConnTimeout,
	}

	return &Client{
		http:      &http.Client{Transport: transport},
		limiter:   rate_limiter.NewHostRateLimiter(cfg.RateLimitInterval),
		userAgent: cfg.UserAgent,
	}
}

// HTTPClient exposes the underlying client for libraries that accept one
// directly (the gofeed parser).
func (c *Client) HTTPClient() *http.Client {
	return c.http
}

// GetJSON performs a rate-limited GET and decodes the JSON response into out.
// Non-2xx statuses become *domain.HTTPError so the retry classifier can
// distinguish transient provider failures from client mistakes.
func (c *Client) GetJSON(ctx context.Context, rawURL string, header http.Header, out any) error {
	if err := c.limiter.WaitForHost(ctx, rawURL); err != nil {
		return fmt.Errorf("rate limit wait failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	for key, values := range header {
		for _, v := range values {
			req.Header.Set(key, v)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return &domain.HTTPError{StatusCode: resp.StatusCode, Message: resp.Status}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
