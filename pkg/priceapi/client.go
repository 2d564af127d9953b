// Package priceapi provides a client for the ingredient unit-price service.
package priceapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/recipe-cost/internal/resilience"
)

// Client fetches unit prices for ingredients.
type Client interface {
	// Price returns the current quote for name. A quote with a nil Price
	// means the service has no data for the ingredient.
	Price(ctx context.Context, name string) (*Quote, error)
}

// Quote is a unit price as reported by the service.
type Quote struct {
	Price  *float64 `json:"price"`
	Unit   string   `json:"unit"`
	Source string   `json:"source"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL sets the API base URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) { c.baseURL = u }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) { c.http = hc }
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates a price API client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey: apiKey,
		http:   &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) Price(ctx context.Context, name string) (*Quote, error) {
	reqURL := fmt.Sprintf("%s/prices?ingredient=%s", c.baseURL, url.QueryEscape(name))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "priceapi: create request")
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "priceapi: request failed")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "priceapi: read response body")
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return &Quote{Source: "priceapi"}, nil
	case resilience.IsTransientHTTPStatus(resp.StatusCode):
		return nil, resilience.NewTransientError(
			eris.Errorf("priceapi: status %d: %s", resp.StatusCode, string(body)), resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, eris.Errorf("priceapi: unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var q Quote
	if err := json.Unmarshal(body, &q); err != nil {
		return nil, eris.Wrap(err, "priceapi: unmarshal response")
	}
	if q.Source == "" {
		q.Source = "priceapi"
	}
	return &q, nil
}
