package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/compareit/backend/internal/domain"
)

// SearchServiceConfig holds configuration for the search service
type SearchServiceConfig struct {
	CacheTTL           time.Duration
	RequestTimeout     time.Duration
	EnableDebugLogging bool
}

// SearchService is the aggregation entry point: it validates the query,
// serves repeats from the TTL cache, coalesces concurrent identical requests
// into a single fetch, and otherwise runs the full pipeline:
// fetch -> aggregate -> verify.
type SearchService struct {
	cache              domain.CacheRepository
	orchestrator       *FetchOrchestrator
	aggregator         *AggregationService
	inflight           singleflight.Group
	cacheTTL           time.Duration
	requestTimeout     time.Duration
	enableDebugLogging bool
}

// searchOutcome is what one underlying computation produces; shared verbatim
// with every coalesced caller.
type searchOutcome struct {
	products  []domain.CanonicalProduct
	unmatched []domain.UnmatchedEntry
}

// NewSearchService creates a search service with dependencies
func NewSearchService(
	cache domain.CacheRepository,
	orchestrator *FetchOrchestrator,
	aggregator *AggregationService,
	config SearchServiceConfig,
) *SearchService {
	cacheTTL := config.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 5 * time.Minute
	}

	return &SearchService{
		cache:              cache,
		orchestrator:       orchestrator,
		aggregator:         aggregator,
		cacheTTL:           cacheTTL,
		requestTimeout:     config.RequestTimeout,
		enableDebugLogging: config.EnableDebugLogging,
	}
}

// Search aggregates listings for a query across the requested sources.
// Flow: validate -> cache -> single-flight compute -> cache store -> result.
// Per-source scraping failures never fail the request; only a malformed
// query (or an unknown source name) produces Success=false.
func (s *SearchService) Search(ctx context.Context, query string, sources []string) domain.SearchResult {
	query = strings.TrimSpace(query)
	if query == "" {
		return domain.SearchResult{
			Success:  false,
			Products: []domain.CanonicalProduct{},
			Error:    domain.ErrInvalidQuery.Error(),
		}
	}
	if len(sources) == 0 {
		sources = s.orchestrator.Sources()
	}

	key := cacheKey(query, sources)

	if cached, err := s.cache.Get(ctx, key); err == nil {
		if s.enableDebugLogging {
			log.Printf("[CACHE] hit for %q", key)
		}
		return domain.SearchResult{Success: true, Products: cached}
	}

	outcome, err := s.getOrCompute(ctx, key, query, sources)
	if err != nil {
		if errors.Is(err, domain.ErrSourceUnknown) {
			return domain.SearchResult{
				Success:  false,
				Products: []domain.CanonicalProduct{},
				Error:    err.Error(),
			}
		}
		// Orchestration degraded entirely (e.g. caller context cancelled):
		// empty result, not a hard failure.
		log.Printf("[SEARCH] %q degraded to empty result: %v", query, err)
		return domain.SearchResult{Success: true, Products: []domain.CanonicalProduct{}}
	}

	return domain.SearchResult{
		Success:   true,
		Products:  outcome.products,
		Unmatched: outcome.unmatched,
	}
}

// getOrCompute collapses concurrent identical requests into one underlying
// fetch and caches successful non-empty outcomes. Failed attempts are never
// cached, so the next request retries.
func (s *SearchService) getOrCompute(ctx context.Context, key, query string, sources []string) (searchOutcome, error) {
	v, err, shared := s.inflight.Do(key, func() (interface{}, error) {
		outcome, err := s.compute(ctx, query, sources)
		if err != nil {
			return searchOutcome{}, err
		}
		if len(outcome.products) > 0 {
			if err := s.cache.Set(ctx, key, outcome.products, s.cacheTTL); err != nil {
				log.Printf("[CACHE] store failed for %q: %v", key, err)
			}
		}
		return outcome, nil
	})
	if err != nil {
		return searchOutcome{}, err
	}
	if shared && s.enableDebugLogging {
		log.Printf("[CACHE] coalesced concurrent request for %q", key)
	}
	return v.(searchOutcome), nil
}

// compute runs the fetch/aggregate/verify pipeline once.
func (s *SearchService) compute(ctx context.Context, query string, sources []string) (searchOutcome, error) {
	if s.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.requestTimeout)
		defer cancel()
	}

	listings, err := s.orchestrator.FetchAll(ctx, query, sources)
	if err != nil {
		return searchOutcome{}, err
	}

	products := s.aggregator.Aggregate(listings)

	var outcome searchOutcome
	outcome.products = make([]domain.CanonicalProduct, 0, len(products))
	for _, product := range products {
		verified, unmatched := s.aggregator.VerifyPrices(product)
		outcome.products = append(outcome.products, verified)
		outcome.unmatched = append(outcome.unmatched, unmatched...)
	}

	if s.enableDebugLogging {
		log.Printf("[SEARCH] %q: %d listings -> %d products (%d unmatched entries)",
			query, len(listings), len(outcome.products), len(outcome.unmatched))
	}

	return outcome, nil
}

// cacheKey canonicalizes (query, sources) so that source order and query case
// never cause duplicate cache entries or duplicate in-flight fetches.
func cacheKey(query string, sources []string) string {
	sorted := make([]string, len(sources))
	copy(sorted, sources)
	sort.Strings(sorted)
	return fmt.Sprintf("search:%s:%s", strings.ToLower(query), strings.Join(sorted, ","))
}
