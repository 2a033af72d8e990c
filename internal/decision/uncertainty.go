package decision

import (
	"fmt"
	"math"
	"sort"

	"issue-classifier/internal/domain/entity"
)

// UncertaintyAnalyzer flags distributions that do not point at any known class.
type UncertaintyAnalyzer struct {
	th entity.Thresholds
}

// NewUncertaintyAnalyzer creates an analyzer with the given bounds.
func NewUncertaintyAnalyzer(th entity.Thresholds) *UncertaintyAnalyzer {
	return &UncertaintyAnalyzer{th: th}
}

// Analyze checks entropy, then the top probability, then the top-two margin.
// The first rule that fires is reported.
func (a *UncertaintyAnalyzer) Analyze(probs entity.Probabilities) entity.UncertaintyVerdict {
	entropy := Entropy(probs, a.th.ProbabilityFloor)

	if len(probs) == 0 {
		return entity.UncertaintyVerdict{IsUnrelated: true, Reason: "Empty probability distribution", Entropy: entropy}
	}

	top, second := topTwo(probs)

	if entropy > a.th.MaxEntropy {
		return entity.UncertaintyVerdict{
			IsUnrelated: true,
			Reason:      fmt.Sprintf("High uncertainty (entropy: %.2f)", entropy),
			Entropy:     entropy,
		}
	}
	// NaN compares false everywhere, so it has to be caught explicitly.
	if top < a.th.MinTopProbability || math.IsNaN(top) {
		return entity.UncertaintyVerdict{
			IsUnrelated: true,
			Reason:      fmt.Sprintf("Low confidence (%.0f%%)", top*100),
			Entropy:     entropy,
		}
	}
	if top > 0 && second > 0 && second/top > a.th.MaxSecondaryRatio {
		return entity.UncertaintyVerdict{
			IsUnrelated: true,
			Reason:      fmt.Sprintf("Ambiguous classification (top two: %.0f%% vs %.0f%%)", top*100, second*100),
			Entropy:     entropy,
		}
	}

	return entity.UncertaintyVerdict{Entropy: entropy}
}

// Entropy returns the Shannon entropy (natural log) of probs, each value
// clamped to [floor, 1] first.
func Entropy(probs entity.Probabilities, floor float64) float64 {
	var h float64
	for _, p := range probs {
		p = math.Min(math.Max(p, floor), 1)
		h -= p * math.Log(p)
	}
	return h
}

func topTwo(probs entity.Probabilities) (top, second float64) {
	sorted := make([]float64, len(probs))
	copy(sorted, probs)
	sort.Sort(sort.Reverse(sort.Float64Slice(sorted)))

	top = sorted[0]
	if len(sorted) > 1 {
		second = sorted[1]
	}
	return top, second
}
