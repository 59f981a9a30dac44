package usecase

import (
	"fmt"
	"log"
	"math"

	"github.com/compareit/backend/internal/domain"
)

// Signal weights for the composite match score
const (
	nameWeight   = 0.40 // Levenshtein similarity over normalized names
	brandWeight  = 0.30 // exact brand-token equality, when both sides have one
	weightWeight = 0.30 // exact normalized-weight equality, when both sides have one

	// When either side lacks weight text, half the weight signal is
	// redistributed to name similarity and half to brand equality.
	fallbackNameWeight  = 0.15
	fallbackBrandWeight = 0.15

	// Name similarity below this ratio gets a reason recorded even though it
	// still contributes proportionally to the score.
	lowNameSimilarity = 0.70
)

// MatchConfig holds configuration for the matching service
type MatchConfig struct {
	MinMatchScore      float64
	Brands             []string
	EnableDebugLogging bool
}

// MatchingService decides whether two listings denote the same real-world
// product. Pure and stateless after construction; safe for concurrent use.
type MatchingService struct {
	minMatchScore      float64
	brands             *BrandExtractor
	enableDebugLogging bool
}

// NewMatchingService creates a new matching service with the given configuration
func NewMatchingService(config MatchConfig) *MatchingService {
	threshold := config.MinMatchScore
	if threshold <= 0 {
		threshold = 0.8 // Default 80% confidence
	}

	return &MatchingService{
		minMatchScore:      threshold,
		brands:             NewBrandExtractor(config.Brands),
		enableDebugLogging: config.EnableDebugLogging,
	}
}

// MinMatchScore returns the confidence threshold the service decides against.
func (s *MatchingService) MinMatchScore() float64 {
	return s.minMatchScore
}

// Score computes the weighted similarity between two comparable products.
// The result is always in [0,1]; Reasons holds one entry per signal that fell
// short of fully satisfying its criterion.
func (s *MatchingService) Score(a, b domain.Comparable) domain.MatchScore {
	total := 0.0
	var reasons []string

	// 1. Name similarity
	nameA := NormalizeText(a.Name)
	nameB := NormalizeText(b.Name)
	nameRatio := stringSimilarity(nameA, nameB)
	total += nameRatio * nameWeight

	if nameRatio < lowNameSimilarity {
		reasons = append(reasons, fmt.Sprintf("Low name similarity: %d%%", int(math.Round(nameRatio*100))))
	}

	// 2. Brand match, only when both sides yield a brand token
	brandA := s.brands.Extract(a.Name)
	brandB := s.brands.Extract(b.Name)
	brandsMatch := brandA != "" && brandA == brandB

	if brandA != "" && brandB != "" {
		if brandsMatch {
			total += brandWeight
		} else {
			reasons = append(reasons, fmt.Sprintf("Brand mismatch: %s vs %s", brandA, brandB))
		}
	}

	// 3. Weight match, only when both sides carry weight text. When either
	// side is missing it, the weight signal is redistributed to name and
	// brand instead of being dropped. Changing this redistribution shifts
	// match sensitivity near the threshold; tests pin the behavior.
	if a.Weight != "" && b.Weight != "" {
		if NormalizeWeight(a.Weight) == NormalizeWeight(b.Weight) {
			total += weightWeight
		} else {
			reasons = append(reasons, fmt.Sprintf("Weight mismatch: %s vs %s", a.Weight, b.Weight))
		}
	} else {
		reasons = append(reasons, "Weight information missing for comparison")
		total += nameRatio * fallbackNameWeight
		// The fallback compares brand tokens directly, so two brandless
		// names still collect the brand portion here.
		if brandA == brandB {
			total += fallbackBrandWeight
		}
	}

	if s.enableDebugLogging {
		log.Printf("[MATCH] %q vs %q | score=%.3f name=%.2f brand=%q/%q reasons=%v",
			a.Name, b.Name, total, nameRatio, brandA, brandB, reasons)
	}

	return domain.MatchScore{Value: total, Reasons: reasons}
}

// IsMatch reports whether two products score at or above the confidence
// threshold, along with the full score for auditing.
func (s *MatchingService) IsMatch(a, b domain.Comparable) (bool, domain.MatchScore) {
	score := s.Score(a, b)
	return score.Value >= s.minMatchScore, score
}

// stringSimilarity converts Levenshtein distance to a similarity ratio in
// [0,1]: 1 - distance/max(len). Two empty strings are a perfect match.
func stringSimilarity(s1, s2 string) float64 {
	r1 := []rune(s1)
	r2 := []rune(s2)
	maxLen := len(r1)
	if len(r2) > maxLen {
		maxLen = len(r2)
	}
	if maxLen == 0 {
		return 1.0
	}
	return 1.0 - float64(levenshteinDistance(r1, r2))/float64(maxLen)
}

// levenshteinDistance calculates the edit distance between two rune slices
// using the classic insert/delete/substitute DP with two rows.
func levenshteinDistance(r1, r2 []rune) int {
	if len(r1) == 0 {
		return len(r2)
	}
	if len(r2) == 0 {
		return len(r1)
	}

	n := len(r2)
	prev := make([]int, n+1)
	curr := make([]int, n+1)

	for j := 0; j <= n; j++ {
		prev[j] = j
	}

	for i := 1; i <= len(r1); i++ {
		curr[0] = i
		for j := 1; j <= n; j++ {
			cost := 0
			if r1[i-1] != r2[j-1] {
				cost = 1
			}
			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[n]
}
