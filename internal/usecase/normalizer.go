package usecase

import (
	"regexp"
	"strings"
)

// Package-level compiled regex patterns for performance
var (
	nonAlphanumericRegex = regexp.MustCompile(`[^a-z0-9\s]`)
	multipleSpacesRegex  = regexp.MustCompile(`\s+`)
)

// defaultBrands is the closed gazetteer of brand tokens recognized inside
// product names. Lookup is a plain substring test, not NLP: false negatives
// are acceptable, false positives are what the ordering below guards against.
var defaultBrands = []string{
	"tata", "amul", "fortune", "maggi", "colgate", "surf", "red label", "aashirvaad",
}

// weightAliases rewrites unit spellings to their short form. Order matters:
// "kilogram" must rewrite before "gram", and both "liter" and "litre" map to
// "l". Short units (g, kg, ml, l) pass through untouched.
var weightAliases = []struct{ from, to string }{
	{"kilogram", "kg"},
	{"gram", "g"},
	{"liter", "l"},
	{"litre", "l"},
}

// NormalizeText canonicalizes free text for comparison: lowercase, strip
// everything outside [a-z0-9 ], collapse whitespace runs, trim. Total and
// idempotent.
func NormalizeText(s string) string {
	result := strings.ToLower(s)
	result = nonAlphanumericRegex.ReplaceAllString(result, "")
	result = multipleSpacesRegex.ReplaceAllString(result, " ")
	return strings.TrimSpace(result)
}

// NormalizeWeight canonicalizes a weight/quantity string: lowercase, strip
// all whitespace, apply unit-alias rewrites. Two listings are weight-equal
// iff their normalized strings are exactly equal; there is no numeric unit
// conversion, so "1000g" and "1kg" stay distinct.
func NormalizeWeight(weight string) string {
	result := strings.ToLower(weight)
	result = multipleSpacesRegex.ReplaceAllString(result, "")
	for _, alias := range weightAliases {
		result = strings.ReplaceAll(result, alias.from, alias.to)
	}
	return result
}

// BrandExtractor finds a known brand token inside free-text product names.
type BrandExtractor struct {
	brands []string
}

// NewBrandExtractor creates a brand extractor over the given gazetteer.
// An empty gazetteer falls back to the built-in brand list.
func NewBrandExtractor(brands []string) *BrandExtractor {
	if len(brands) == 0 {
		brands = defaultBrands
	}
	normalized := make([]string, 0, len(brands))
	for _, b := range brands {
		if nb := NormalizeText(b); nb != "" {
			normalized = append(normalized, nb)
		}
	}
	return &BrandExtractor{brands: normalized}
}

// Extract returns the first gazetteer brand found as a substring of the
// normalized product name, or "" when none match.
func (e *BrandExtractor) Extract(productName string) string {
	normalized := NormalizeText(productName)
	for _, brand := range e.brands {
		if strings.Contains(normalized, brand) {
			return brand
		}
	}
	return ""
}

// categoryKeywords maps display categories to the keywords that imply them.
// Evaluated in categoryOrder so inference is deterministic.
var categoryKeywords = map[string][]string{
	"Groceries":     {"rice", "dal", "flour", "atta", "oil", "ghee", "spices"},
	"Dairy":         {"milk", "butter", "cheese", "curd", "paneer", "yogurt"},
	"Beverages":     {"tea", "coffee", "juice", "drink", "soda", "water"},
	"Snacks":        {"chips", "biscuits", "cookies", "namkeen", "chocolate"},
	"Personal Care": {"soap", "shampoo", "toothpaste", "lotion", "cream"},
	"Household":     {"cleaner", "detergent", "freshener", "brush", "mop"},
	"Instant Food":  {"noodles", "pasta", "ready to eat", "frozen"},
}

var categoryOrder = []string{
	"Groceries", "Dairy", "Beverages", "Snacks",
	"Personal Care", "Household", "Instant Food",
}

// InferCategory guesses a display category from keywords in the product name.
// Returns "Others" when nothing matches.
func InferCategory(productName string) string {
	normalized := strings.ToLower(productName)
	for _, category := range categoryOrder {
		for _, keyword := range categoryKeywords[category] {
			if strings.Contains(normalized, keyword) {
				return category
			}
		}
	}
	return "Others"
}
