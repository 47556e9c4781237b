// Package marketdata is a client for the GeckoTerminal-style market data API
// used for historical candles, fallback price polls and pool lookups.
package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"solana-price-chart/internal/observability"
)

// Default configuration values.
const (
	DefaultBaseURL = "https://api.geckoterminal.com/api/v2/networks/solana"
	DefaultTimeout = 10 * time.Second
	// The public API allows 30 calls per minute, shared by every chart.
	DefaultRateLimit = rate.Limit(0.5)
	DefaultBurst     = 5
)

// Client talks to the market data REST API. Requests are never retried here;
// callers decide whether to try again.
type Client struct {
	http    *resty.Client
	limiter *rate.Limiter
}

// ClientOption configures Client.
type ClientOption func(*Client)

// WithBaseURL sets the API base URL.
func WithBaseURL(url string) ClientOption {
	return func(c *Client) {
		c.http.SetBaseURL(url)
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.http.SetTimeout(d)
	}
}

// WithRateLimit sets the request rate shared by all callers of this client.
func WithRateLimit(limit rate.Limit, burst int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(limit, burst)
	}
}

// WithHTTPClient sets the underlying http.Client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.http = resty.NewWithClient(client).SetBaseURL(c.http.BaseURL)
		configure(c.http)
	}
}

// NewClient creates a market data client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		http:    resty.New().SetBaseURL(DefaultBaseURL).SetTimeout(DefaultTimeout),
		limiter: rate.NewLimiter(DefaultRateLimit, DefaultBurst),
	}
	configure(c.http)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// configure applies headers and middleware shared by every resty client.
func configure(r *resty.Client) {
	r.SetHeaders(map[string]string{
		"Accept":          "application/json",
		"Accept-Encoding": "br, gzip",
	})
	r.SetRetryCount(0)
	r.OnAfterResponse(decompressBody)
}

// get performs a rate limited GET and decodes the JSON body into out.
func (c *Client) get(ctx context.Context, endpoint, path string, pathParams, query map[string]string, out interface{}) error {
	start := time.Now()
	err := c.doGet(ctx, path, pathParams, query, out)
	observability.RecordAPICall(endpoint, time.Since(start).Seconds(), err)
	return err
}

func (c *Client) doGet(ctx context.Context, path string, pathParams, query map[string]string, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParams(pathParams).
		SetQueryParams(query).
		Get(path)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}

	if !resp.IsSuccess() {
		return &StatusError{Code: resp.StatusCode(), Body: truncate(resp.String(), 256)}
	}

	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
