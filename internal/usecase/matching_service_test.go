package usecase

import (
	"math"
	"testing"

	"github.com/compareit/backend/internal/domain"
)

func TestNewMatchingService(t *testing.T) {
	t.Run("creates service with provided threshold", func(t *testing.T) {
		svc := NewMatchingService(MatchConfig{MinMatchScore: 0.9})
		if svc.MinMatchScore() != 0.9 {
			t.Errorf("MinMatchScore() = %v, want 0.9", svc.MinMatchScore())
		}
	})

	t.Run("uses default threshold when zero", func(t *testing.T) {
		svc := NewMatchingService(MatchConfig{})
		if svc.MinMatchScore() != 0.8 {
			t.Errorf("MinMatchScore() = %v, want 0.8 (default)", svc.MinMatchScore())
		}
	})

	t.Run("uses default threshold when negative", func(t *testing.T) {
		svc := NewMatchingService(MatchConfig{MinMatchScore: -1})
		if svc.MinMatchScore() != 0.8 {
			t.Errorf("MinMatchScore() = %v, want 0.8 (default)", svc.MinMatchScore())
		}
	})
}

func TestScoreReflexive(t *testing.T) {
	svc := NewMatchingService(MatchConfig{})
	products := []domain.Comparable{
		{Name: "Tata Salt", Weight: "1kg"},
		{Name: "Amul Butter 500g", Weight: "500 g"},
		{Name: "Surf Excel Detergent", Weight: "1 kilogram"},
	}

	for _, p := range products {
		score := svc.Score(p, p)
		if score.Value != 1.0 {
			t.Errorf("Score(%q, itself).Value = %v, want 1.0", p.Name, score.Value)
		}
		if len(score.Reasons) != 0 {
			t.Errorf("Score(%q, itself).Reasons = %v, want empty", p.Name, score.Reasons)
		}
	}
}

func TestScoreSymmetric(t *testing.T) {
	svc := NewMatchingService(MatchConfig{})
	pairs := [][2]domain.Comparable{
		{{Name: "Tata Salt", Weight: "1kg"}, {Name: "tata salt!!", Weight: "1 KG"}},
		{{Name: "Tata Salt", Weight: "1kg"}, {Name: "Amul Butter", Weight: "500g"}},
		{{Name: "Maggi Noodles", Weight: ""}, {Name: "Maggi Noodles Masala", Weight: "280g"}},
	}

	for _, pair := range pairs {
		ab := svc.Score(pair[0], pair[1])
		ba := svc.Score(pair[1], pair[0])
		if math.Abs(ab.Value-ba.Value) > 1e-9 {
			t.Errorf("Score asymmetric for %q vs %q: %v != %v", pair[0].Name, pair[1].Name, ab.Value, ba.Value)
		}
	}
}

func TestIsMatch(t *testing.T) {
	svc := NewMatchingService(MatchConfig{})

	t.Run("same product with formatting noise matches", func(t *testing.T) {
		a := domain.Comparable{Name: "Tata Salt", Weight: "1kg"}
		b := domain.Comparable{Name: "tata salt!!", Weight: "1 KG"}

		ok, score := svc.IsMatch(a, b)
		if !ok {
			t.Errorf("IsMatch() = false (score %v, reasons %v), want true", score.Value, score.Reasons)
		}
	})

	t.Run("different products do not match and carry reasons", func(t *testing.T) {
		a := domain.Comparable{Name: "Tata Salt", Weight: "1kg"}
		b := domain.Comparable{Name: "Amul Butter", Weight: "500g"}

		ok, score := svc.IsMatch(a, b)
		if ok {
			t.Errorf("IsMatch() = true (score %v), want false", score.Value)
		}
		if len(score.Reasons) == 0 {
			t.Error("Reasons is empty, want at least one mismatch reason")
		}
	})

	t.Run("score stays within [0,1]", func(t *testing.T) {
		comparables := []domain.Comparable{
			{Name: "Tata Salt", Weight: "1kg"},
			{Name: "tata salt iodized", Weight: ""},
			{Name: "", Weight: ""},
			{Name: "Amul Butter", Weight: "500g"},
		}
		for _, a := range comparables {
			for _, b := range comparables {
				score := svc.Score(a, b)
				if score.Value < 0 || score.Value > 1 {
					t.Errorf("Score(%q, %q).Value = %v, out of [0,1]", a.Name, b.Name, score.Value)
				}
			}
		}
	})
}

func TestScoreBrandSignal(t *testing.T) {
	svc := NewMatchingService(MatchConfig{})

	t.Run("brand mismatch records a reason", func(t *testing.T) {
		a := domain.Comparable{Name: "Tata Tea Gold", Weight: "250g"}
		b := domain.Comparable{Name: "Red Label Tea Gold", Weight: "250g"}

		score := svc.Score(a, b)
		found := false
		for _, r := range score.Reasons {
			if r == "Brand mismatch: tata vs red label" {
				found = true
			}
		}
		if !found {
			t.Errorf("Reasons = %v, want a brand mismatch entry", score.Reasons)
		}
	})

	t.Run("brand signal skipped when one side has no brand", func(t *testing.T) {
		// Identical names and weights apart from the brand token; the brand
		// signal must not be awarded, so the score is name(0.4 scaled) + weight.
		a := domain.Comparable{Name: "Rock Salt Crystal", Weight: "1kg"}
		b := domain.Comparable{Name: "Rock Salt Crystal", Weight: "1kg"}

		score := svc.Score(a, b)
		want := nameWeight + weightWeight // 0.7: brand weight not redistributed
		if math.Abs(score.Value-want) > 1e-9 {
			t.Errorf("Score = %v, want %v", score.Value, want)
		}
	})
}

func TestScoreMissingWeightFallback(t *testing.T) {
	svc := NewMatchingService(MatchConfig{})

	t.Run("identical names with matching brand and missing weight", func(t *testing.T) {
		a := domain.Comparable{Name: "Tata Salt", Weight: ""}
		b := domain.Comparable{Name: "Tata Salt", Weight: "1kg"}

		score := svc.Score(a, b)
		// name 1.0*0.4 + brand 0.3 + fallback 1.0*0.15 + 0.15 = 1.0
		if math.Abs(score.Value-1.0) > 1e-9 {
			t.Errorf("Score = %v, want 1.0", score.Value)
		}
		if len(score.Reasons) != 1 || score.Reasons[0] != "Weight information missing for comparison" {
			t.Errorf("Reasons = %v, want exactly the missing-weight note", score.Reasons)
		}
	})

	t.Run("brandless identical names still earn the brand fallback", func(t *testing.T) {
		// The fallback compares brand tokens directly, so empty equals empty.
		a := domain.Comparable{Name: "Rock Salt Crystal", Weight: ""}
		b := domain.Comparable{Name: "Rock Salt Crystal", Weight: "1kg"}

		score := svc.Score(a, b)
		want := nameWeight + fallbackNameWeight + fallbackBrandWeight // 0.7
		if math.Abs(score.Value-want) > 1e-9 {
			t.Errorf("Score = %v, want %v", score.Value, want)
		}
	})

	t.Run("brand fallback withheld when only one side has a brand", func(t *testing.T) {
		a := domain.Comparable{Name: "Tata Rock Salt", Weight: ""}
		b := domain.Comparable{Name: "Rock Salt", Weight: "1kg"}

		score := svc.Score(a, b)
		ratio := stringSimilarity("tata rock salt", "rock salt")
		want := ratio*nameWeight + ratio*fallbackNameWeight
		if math.Abs(score.Value-want) > 1e-9 {
			t.Errorf("Score = %v, want %v", score.Value, want)
		}
	})

	t.Run("fallback applies when both weights are missing", func(t *testing.T) {
		a := domain.Comparable{Name: "Amul Butter", Weight: ""}
		b := domain.Comparable{Name: "Amul Butter", Weight: ""}

		score := svc.Score(a, b)
		// name 0.4 + brand 0.3 + fallback 0.15 + 0.15
		if math.Abs(score.Value-1.0) > 1e-9 {
			t.Errorf("Score = %v, want 1.0", score.Value)
		}
	})
}

func TestScoreLowNameSimilarityReason(t *testing.T) {
	svc := NewMatchingService(MatchConfig{})

	a := domain.Comparable{Name: "Tata Salt", Weight: "1kg"}
	b := domain.Comparable{Name: "Amul Butter", Weight: "1kg"}

	score := svc.Score(a, b)
	found := false
	for _, r := range score.Reasons {
		if len(r) > 0 && r[0] == 'L' { // "Low name similarity: NN%"
			found = true
		}
	}
	if !found {
		t.Errorf("Reasons = %v, want a low-name-similarity entry", score.Reasons)
	}
}

func TestStringSimilarity(t *testing.T) {
	tests := []struct {
		name string
		s1   string
		s2   string
		want float64
	}{
		{"both empty", "", "", 1.0},
		{"identical", "tata salt", "tata salt", 1.0},
		{"one empty", "salt", "", 0.0},
		{"single substitution", "salt", "sale", 0.75},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := stringSimilarity(tt.s1, tt.s2)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("stringSimilarity(%q, %q) = %v, want %v", tt.s1, tt.s2, got, tt.want)
			}
		})
	}
}

func TestLevenshteinDistance(t *testing.T) {
	tests := []struct {
		s1   string
		s2   string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"kitten", "sitting", 3},
		{"tata salt", "tata salt", 0},
		{"salt", "salt 1kg", 4},
	}

	for _, tt := range tests {
		got := levenshteinDistance([]rune(tt.s1), []rune(tt.s2))
		if got != tt.want {
			t.Errorf("levenshteinDistance(%q, %q) = %d, want %d", tt.s1, tt.s2, got, tt.want)
		}
	}
}
