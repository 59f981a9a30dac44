package domain

// RawListing represents an as-scraped product record from one source,
// pre-normalization. Listings are ephemeral: they are discarded once folded
// into a CanonicalProduct.
type RawListing struct {
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	OriginalPrice float64 `json:"originalPrice,omitempty"`
	Image         string  `json:"image"`
	Weight        string  `json:"weight"`
	InStock       bool    `json:"inStock"`
	Source        string  `json:"source"` // e.g. "zepto", "blinkit", "swiggymart"
	DeliveryETA   string  `json:"deliveryEta,omitempty"`
	ProductURL    string  `json:"productUrl"`
}

// PriceEntry is one source's offer inside a CanonicalProduct. Entries are
// immutable once the aggregation run that created them completes.
type PriceEntry struct {
	Source        string  `json:"source"`
	Price         float64 `json:"price"`
	OriginalPrice float64 `json:"originalPrice,omitempty"`
	InStock       bool    `json:"inStock"`
	DeliveryETA   string  `json:"deliveryEta,omitempty"`
	ProductURL    string  `json:"productUrl"`
	// Per-source presentation fields carried along for pairwise verification.
	Name   string `json:"productName,omitempty"`
	Weight string `json:"weight,omitempty"`
	Image  string `json:"image,omitempty"`
}

// CanonicalProduct is the merged, source-independent representation of a
// real-world product with one price list. Prices are sorted ascending by
// price; out-of-stock entries are included and distinguished by InStock.
type CanonicalProduct struct {
	ID       string       `json:"id"`
	Name     string       `json:"name"`
	Image    string       `json:"image"`
	Weight   string       `json:"weight"`
	Category string       `json:"category,omitempty"`
	Prices   []PriceEntry `json:"prices"`
}

// MatchScore is the weighted confidence in [0,1] that two listings denote the
// same product, with a human-readable reason for every signal that fell
// short. An empty Reasons list implies a strong match.
type MatchScore struct {
	Value   float64  `json:"score"`
	Reasons []string `json:"reasons,omitempty"`
}

// Comparable is the minimal view of a product the matcher scores: free-text
// name, free-text weight, and an image URL carried for fallback display.
type Comparable struct {
	Name   string
	Weight string
	Image  string
}

// Comparable returns the matcher view of a canonical product.
func (p *CanonicalProduct) Comparable() Comparable {
	return Comparable{Name: p.Name, Weight: p.Weight, Image: p.Image}
}

// UnmatchedEntry records a per-source price that failed verification against
// its canonical product, with the matcher's reasons, so callers can audit
// false negatives instead of seeing entries silently dropped.
type UnmatchedEntry struct {
	Source string `json:"source"`
	Reason string `json:"reason"`
}

// SearchResult is the aggregation entry point's response envelope.
// Success is false only for unrecoverable orchestration failures (malformed
// query); per-source scraping failures degrade to partial results.
type SearchResult struct {
	Success   bool               `json:"success"`
	Products  []CanonicalProduct `json:"products"`
	Unmatched []UnmatchedEntry   `json:"unmatched,omitempty"`
	Error     string             `json:"error,omitempty"`
}
