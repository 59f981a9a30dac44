package usecase

import (
	"context"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/compareit/backend/internal/domain"
)

// OrchestratorConfig holds retry and timeout policy for source fetches
type OrchestratorConfig struct {
	MaxRetries       int
	RetryDelay       time.Duration
	PerSourceTimeout time.Duration
}

// FetchOrchestrator fans a query out to every requested source connector
// concurrently, retries each source independently and collects whatever
// succeeded. One slow or dead source never fails the whole fetch.
type FetchOrchestrator struct {
	connectors       map[string]domain.SourceConnector
	order            []string
	maxRetries       int
	retryDelay       time.Duration
	perSourceTimeout time.Duration
}

// NewFetchOrchestrator creates an orchestrator over the given connectors.
// Connector registration order defines the input order used for downstream
// tie-breaking.
func NewFetchOrchestrator(connectors []domain.SourceConnector, config OrchestratorConfig) *FetchOrchestrator {
	maxRetries := config.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}
	retryDelay := config.RetryDelay
	if retryDelay <= 0 {
		retryDelay = time.Second
	}
	perSourceTimeout := config.PerSourceTimeout
	if perSourceTimeout <= 0 {
		perSourceTimeout = 30 * time.Second
	}

	byName := make(map[string]domain.SourceConnector, len(connectors))
	order := make([]string, 0, len(connectors))
	for _, c := range connectors {
		byName[c.Source()] = c
		order = append(order, c.Source())
	}

	return &FetchOrchestrator{
		connectors:       byName,
		order:            order,
		maxRetries:       maxRetries,
		retryDelay:       retryDelay,
		perSourceTimeout: perSourceTimeout,
	}
}

// Sources returns the registered source names in registration order.
func (o *FetchOrchestrator) Sources() []string {
	out := make([]string, len(o.order))
	copy(out, o.order)
	return out
}

// FetchAll runs one fetch per requested source concurrently and joins on all
// of them. Sources that exhaust their retry budget contribute an empty slice;
// listings are returned flattened in source request order so aggregation
// tie-breaks stay stable. Unknown source names yield ErrSourceUnknown before
// any fetch is issued.
func (o *FetchOrchestrator) FetchAll(ctx context.Context, query string, sources []string) ([]domain.RawListing, error) {
	if len(sources) == 0 {
		sources = o.order
	}
	for _, name := range sources {
		if _, ok := o.connectors[name]; !ok {
			return nil, domain.ErrSourceUnknown
		}
	}

	results := make([][]domain.RawListing, len(sources))

	// Join barrier over all sources: fetchWithRetry never returns an error,
	// so a failing source cannot cancel its siblings. Cancelling ctx still
	// tears down every pending attempt.
	g, gctx := errgroup.WithContext(ctx)
	for i, name := range sources {
		connector := o.connectors[name]
		g.Go(func() error {
			results[i] = o.fetchWithRetry(gctx, connector, query)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var listings []domain.RawListing
	for _, r := range results {
		listings = append(listings, r...)
	}
	return listings, nil
}

// fetchWithRetry attempts one source up to maxRetries times with linear
// backoff between attempts, each attempt bounded by the per-source timeout.
// Timeout, network and parse failures are retried alike; exhausting the
// budget degrades to an empty listing set for that source only.
func (o *FetchOrchestrator) fetchWithRetry(ctx context.Context, connector domain.SourceConnector, query string) []domain.RawListing {
	source := connector.Source()

	var lastErr error
	for attempt := 1; attempt <= o.maxRetries; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, o.perSourceTimeout)
		listings, err := connector.Fetch(attemptCtx, query)
		cancel()

		if err == nil {
			return listings
		}
		lastErr = err
		log.Printf("[SCRAPE] %s attempt %d/%d failed: %v", source, attempt, o.maxRetries, err)

		if ctx.Err() != nil {
			break
		}
		if attempt < o.maxRetries {
			select {
			case <-time.After(o.retryDelay * time.Duration(attempt)):
			case <-ctx.Done():
				return nil
			}
		}
	}

	log.Printf("[SCRAPE] %s gave up after %d attempts: %v", source, o.maxRetries, lastErr)
	return nil
}
