// Package connector implements the HTTP Source Connector client. Each client
// talks to one storefront's scraper endpoint and returns raw listings; the
// page-rendering machinery behind that endpoint is not this service's concern.
package connector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/compareit/backend/internal/domain"
)

var _ domain.SourceConnector = (*Client)(nil)

// Client fetches raw listings for one source from its scraper endpoint
type Client struct {
	httpClient  *http.Client
	source      string
	baseURL     string
	rateLimiter *rate.Limiter
	debug       bool
}

// NewClient creates a connector client for one source. requestsPerMinute
// bounds how hard the scraper endpoint is driven; zero disables limiting.
func NewClient(source, baseURL string, requestsPerMinute int) *Client {
	limit := rate.Inf
	if requestsPerMinute > 0 {
		limit = rate.Limit(float64(requestsPerMinute) / 60.0)
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		source:      source,
		baseURL:     baseURL,
		rateLimiter: rate.NewLimiter(limit, 5),
	}
}

// SetDebug enables request/response logging
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

// Source returns the source identifier this client fetches for.
func (c *Client) Source() string {
	return c.source
}

// Fetch retrieves raw listings for a query. Failures are classified into the
// connector error taxonomy: ErrSourceTimeout, ErrSourceNetwork or
// ErrSourceParse, all wrapped with detail. Retrying is the orchestrator's
// job, not the client's.
func (c *Client) Fetch(ctx context.Context, query string) ([]domain.RawListing, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limiter: %v", domain.ErrSourceTimeout, err)
	}

	params := url.Values{}
	params.Add("q", query)
	reqURL := fmt.Sprintf("%s/search?%s", c.baseURL, params.Encode())

	if c.debug {
		log.Printf("[SCRAPE] %s GET %s", c.source, reqURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", domain.ErrSourceNetwork, err)
	}
	req.Header.Set("User-Agent", "CompareIt/1.0")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classifyTransportError(err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s returned status %d", domain.ErrSourceNetwork, c.source, resp.StatusCode)
	}

	var wire struct {
		Listings []domain.RawListing `json:"listings"`
	}
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSourceParse, err)
	}

	// Stamp the source: scraper payloads are not trusted to label themselves.
	for i := range wire.Listings {
		wire.Listings[i].Source = c.source
	}

	if c.debug {
		log.Printf("[SCRAPE] %s returned %d listings for %q", c.source, len(wire.Listings), query)
	}

	return wire.Listings, nil
}

// classifyTransportError maps Go HTTP transport failures onto the connector
// error taxonomy.
func classifyTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", domain.ErrSourceTimeout, err)
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return fmt.Errorf("%w: %v", domain.ErrSourceTimeout, err)
	}
	return fmt.Errorf("%w: %v", domain.ErrSourceNetwork, err)
}
