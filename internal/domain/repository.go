package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching aggregated search results
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]CanonicalProduct, error)
	Set(ctx context.Context, key string, products []CanonicalProduct, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// SourceConnector yields raw listings for one storefront. Implementations
// wrap the actual page-rendering/extraction machinery; the aggregation core
// only depends on this contract. Fetch fails with ErrSourceTimeout,
// ErrSourceNetwork or ErrSourceParse (possibly wrapped); the orchestrator
// treats all three identically for retry purposes.
type SourceConnector interface {
	Fetch(ctx context.Context, query string) ([]RawListing, error)
	Source() string
}
