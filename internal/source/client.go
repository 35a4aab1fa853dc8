package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const defaultTimeout = 30 * time.Second

// client holds the HTTP plumbing shared by both metadata sources.
type client struct {
	httpClient *http.Client
	baseURL    string
	mailto     string
	userAgent  string
}

// Option configures a source client.
type Option func(*client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *client) {
		c.httpClient = hc
	}
}

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(url string) Option {
	return func(c *client) {
		c.baseURL = url
	}
}

// WithMailto sets the contact email forwarded to the upstream source.
// Both public APIs use it to route requests into their polite pools with
// higher rate limits.
func WithMailto(email string) Option {
	return func(c *client) {
		c.mailto = email
	}
}

// WithUserAgent overrides the default User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *client) {
		c.userAgent = ua
	}
}

func newClient(baseURL string, opts ...Option) client {
	c := client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		baseURL:    baseURL,
		userAgent:  "litriage/1.0 (https://github.com/hollis/litriage)",
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

func (c *client) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return &APIError{StatusCode: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
