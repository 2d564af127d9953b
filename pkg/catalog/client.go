// Package catalog provides a client for a retail product catalog search API,
// used to discover the package size and shelf price of an ingredient.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/sells-group/recipe-cost/internal/resilience"
)

// Client looks up retail products by ingredient name.
type Client interface {
	// Lookup returns the best matching product, or nil when the catalog has
	// no product for the name.
	Lookup(ctx context.Context, name string) (*Product, error)
}

// Product is the subset of catalog metadata used for package resolution.
type Product struct {
	Name        string   `json:"name"`
	Brand       string   `json:"brand,omitempty"`
	PackageSize string   `json:"package_size,omitempty"`
	ServingSize string   `json:"serving_size,omitempty"`
	Price       *float64 `json:"price,omitempty"`
}

type searchResponse struct {
	Products []Product `json:"products"`
}

// Option configures the catalog client.
type Option func(*httpClient)

// WithBaseURL sets the API base URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) { c.baseURL = u }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) { c.http = hc }
}

// WithRateLimit caps outbound requests per second.
func WithRateLimit(perSec float64, burst int) Option {
	return func(c *httpClient) { c.limiter = rate.NewLimiter(rate.Limit(perSec), burst) }
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a catalog client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey: apiKey,
		http: &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		limiter: rate.NewLimiter(5, 5),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) Lookup(ctx context.Context, name string) (*Product, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "catalog: rate limiter wait")
	}

	q := url.Values{}
	q.Set("q", name)
	q.Set("limit", "1")
	reqURL := fmt.Sprintf("%s/products/search?%s", c.baseURL, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "catalog: create request")
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "catalog: request failed")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "catalog: read response body")
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, nil
	case resilience.IsTransientHTTPStatus(resp.StatusCode):
		return nil, resilience.NewTransientError(
			eris.Errorf("catalog: status %d: %s", resp.StatusCode, string(body)), resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, eris.Errorf("catalog: unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var result searchResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrap(err, "catalog: unmarshal response")
	}
	if len(result.Products) == 0 {
		return nil, nil
	}
	return &result.Products[0], nil
}
