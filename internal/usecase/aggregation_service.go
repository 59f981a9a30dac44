package usecase

import (
	"fmt"
	"log"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/compareit/backend/internal/domain"
)

// Listing validation bounds, applied before any grouping
const (
	minNameLength = 3
	maxNameLength = 200
	maxPrice      = 100000
)

// weightPattern accepts weights like "500 g", "1.5kg", "200ml", "1 l"
var weightPattern = regexp.MustCompile(`^\d+(\.\d+)?\s*(g|kg|ml|l)$`)

// angleBracketsReplacer strips characters scraped pages sometimes leak into names
var angleBracketsReplacer = strings.NewReplacer("<", "", ">", "")

// AggregationService folds raw listings into canonical products and maintains
// the sorted price-comparison view.
type AggregationService struct {
	matcher            *MatchingService
	enableDebugLogging bool
}

// NewAggregationService creates an aggregation service that uses the given
// matcher for pairwise price verification.
func NewAggregationService(matcher *MatchingService, enableDebugLogging bool) *AggregationService {
	return &AggregationService{
		matcher:            matcher,
		enableDebugLogging: enableDebugLogging,
	}
}

// SanitizeListing trims scraped text fields, strips angle brackets from the
// name, rounds the price to two decimals and lowercases the weight.
func SanitizeListing(listing domain.RawListing) domain.RawListing {
	listing.Name = angleBracketsReplacer.Replace(strings.TrimSpace(listing.Name))
	listing.Price = math.Round(listing.Price*100) / 100
	listing.Weight = strings.ToLower(strings.TrimSpace(listing.Weight))
	listing.Image = strings.TrimSpace(listing.Image)
	listing.Source = strings.TrimSpace(listing.Source)
	listing.DeliveryETA = strings.TrimSpace(listing.DeliveryETA)
	listing.ProductURL = strings.TrimSpace(listing.ProductURL)
	return listing
}

// ValidateListing reports whether a sanitized listing is usable: name within
// bounds, price positive and plausible, weight in a recognizable unit form.
// Invalid listings are filtered input, not errors.
func ValidateListing(listing domain.RawListing) bool {
	if len(listing.Name) < minNameLength || len(listing.Name) > maxNameLength {
		return false
	}
	if listing.Price <= 0 || listing.Price > maxPrice {
		return false
	}
	if !weightPattern.MatchString(listing.Weight) {
		return false
	}
	return true
}

// Aggregate groups raw listings into canonical products by the exact key
// (normalizedName, normalizedWeight). Listings are sanitized and validated
// first; each surviving group becomes one product with prices sorted
// ascending. Input order is preserved within a group so downstream
// tie-breaks stay stable, and products are emitted in first-seen key order.
func (s *AggregationService) Aggregate(listings []domain.RawListing) []domain.CanonicalProduct {
	groups := make(map[string][]domain.RawListing)
	var keyOrder []string

	dropped := 0
	for _, raw := range listings {
		listing := SanitizeListing(raw)
		if !ValidateListing(listing) {
			dropped++
			continue
		}
		key := groupingKey(listing.Name, listing.Weight)
		if _, seen := groups[key]; !seen {
			keyOrder = append(keyOrder, key)
		}
		groups[key] = append(groups[key], listing)
	}

	if s.enableDebugLogging && dropped > 0 {
		log.Printf("[AGGREGATE] dropped %d invalid listings of %d", dropped, len(listings))
	}

	products := make([]domain.CanonicalProduct, 0, len(keyOrder))
	for _, key := range keyOrder {
		group := groups[key]
		base := group[0]

		prices := make([]domain.PriceEntry, 0, len(group))
		for _, listing := range group {
			prices = append(prices, domain.PriceEntry{
				Source:        listing.Source,
				Price:         listing.Price,
				OriginalPrice: listing.OriginalPrice,
				InStock:       listing.InStock,
				DeliveryETA:   listing.DeliveryETA,
				ProductURL:    listing.ProductURL,
				Name:          listing.Name,
				Weight:        listing.Weight,
				Image:         listing.Image,
			})
		}
		sortPricesAscending(prices)

		products = append(products, domain.CanonicalProduct{
			ID:       key,
			Name:     base.Name,
			Image:    base.Image,
			Weight:   base.Weight,
			Category: InferCategory(base.Name),
			Prices:   prices,
		})
	}

	return products
}

// VerifyPrices re-checks every price entry of a canonical product against the
// product itself in pairwise-matching mode. Entries that pass stay in the
// product's price list (still sorted ascending); entries that fail are
// returned separately with the matcher's reasons rather than dropped.
func (s *AggregationService) VerifyPrices(product domain.CanonicalProduct) (domain.CanonicalProduct, []domain.UnmatchedEntry) {
	verified := make([]domain.PriceEntry, 0, len(product.Prices))
	var unmatched []domain.UnmatchedEntry

	for _, entry := range product.Prices {
		candidate := comparableFromEntry(product, entry)
		ok, score := s.matcher.IsMatch(product.Comparable(), candidate)
		if !ok {
			unmatched = append(unmatched, domain.UnmatchedEntry{
				Source: entry.Source,
				Reason: strings.Join(score.Reasons, ", "),
			})
			if s.enableDebugLogging {
				log.Printf("[AGGREGATE] %s entry for %q excluded: score=%.2f reasons=%v",
					entry.Source, product.Name, score.Value, score.Reasons)
			}
			continue
		}
		verified = append(verified, entry)
	}

	product.Prices = verified
	sortPricesAscending(product.Prices)
	return product, unmatched
}

// comparableFromEntry synthesizes the matcher view of one source's entry,
// falling back to the canonical product's fields where the entry carries none.
func comparableFromEntry(product domain.CanonicalProduct, entry domain.PriceEntry) domain.Comparable {
	c := domain.Comparable{Name: entry.Name, Weight: entry.Weight, Image: entry.Image}
	if c.Name == "" {
		c.Name = product.Name
	}
	if c.Weight == "" {
		c.Weight = product.Weight
	}
	if c.Image == "" {
		c.Image = product.Image
	}
	return c
}

// BestPrice returns the in-stock entry with the lowest price. Ties go to the
// earliest entry in list order. The second return is false when no entry is
// in stock: absence of a best price, not an error.
func BestPrice(product domain.CanonicalProduct) (domain.PriceEntry, bool) {
	var best domain.PriceEntry
	found := false
	for _, entry := range product.Prices {
		if !entry.InStock {
			continue
		}
		if !found || entry.Price < best.Price {
			best = entry
			found = true
		}
	}
	return best, found
}

// SavingsPercent computes the rounded discount percentage for an entry that
// carries an original price. The second return is false when the entry has no
// original price or a non-positive one.
func SavingsPercent(entry domain.PriceEntry) (int, bool) {
	if entry.OriginalPrice <= 0 {
		return 0, false
	}
	return int(math.Round((entry.OriginalPrice - entry.Price) / entry.OriginalPrice * 100)), true
}

// groupingKey derives the canonical product identity for one scrape run.
func groupingKey(name, weight string) string {
	return fmt.Sprintf("%s-%s", NormalizeText(name), NormalizeWeight(weight))
}

// sortPricesAscending orders entries by price, cheapest first, keeping the
// original order among equal prices.
func sortPricesAscending(prices []domain.PriceEntry) {
	sort.SliceStable(prices, func(i, j int) bool {
		return prices[i].Price < prices[j].Price
	})
}
