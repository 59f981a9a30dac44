package domain

import "errors"

var (
	// ErrInvalidQuery is returned when the search query is empty or malformed
	ErrInvalidQuery = errors.New("invalid search query")

	// ErrSourceTimeout is returned when a source connector call times out
	ErrSourceTimeout = errors.New("source request timed out")

	// ErrSourceNetwork is returned when a source connector call fails at the network level
	ErrSourceNetwork = errors.New("source network error")

	// ErrSourceParse is returned when a source returns a malformed payload
	ErrSourceParse = errors.New("source response parse error")

	// ErrSourceUnknown is returned when a requested source is not configured
	ErrSourceUnknown = errors.New("unknown source")

	// ErrNoListings is returned when no source produced a usable listing
	ErrNoListings = errors.New("no listings found")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrRateLimited is returned when rate limit is exceeded
	ErrRateLimited = errors.New("rate limit exceeded")
)
