package engine

import (
	"fmt"
	"math"

	"github.com/custodia-labs/comply/internal/core/domain"
)

// unclearBand is how far below the threshold a similarity may fall and still
// be Unclear under the similarity policy.
const unclearBand = 0.10

// unclearPercent is the lowest match score classified Unclear under the
// percent policy.
const unclearPercent = 80

// Normalise rescales similarity against threshold into a 0-100 match score
// and classifies it with policy. Similarity is clamped to [0, 1]. An unknown
// policy falls back to domain.DefaultStatusPolicy.
func Normalise(similarity, threshold float64, policy domain.StatusPolicy) (int, domain.Status, error) {
	if threshold <= 0 || math.IsNaN(threshold) {
		return 0, domain.StatusNotMet, fmt.Errorf("%w: threshold must be positive, got %v", domain.ErrInvalidInput, threshold)
	}

	sim := clamp(similarity)
	score := int(math.Round(math.Min(1, sim/threshold) * 100))

	if !policy.IsValid() {
		policy = domain.DefaultStatusPolicy
	}

	var status domain.Status
	switch policy {
	case domain.StatusPolicySimilarity:
		switch {
		case sim >= threshold:
			status = domain.StatusLikelyMet
		case sim >= threshold-unclearBand:
			status = domain.StatusUnclear
		default:
			status = domain.StatusNotMet
		}
	default:
		switch {
		case score >= 100:
			status = domain.StatusLikelyMet
		case score >= unclearPercent:
			status = domain.StatusUnclear
		default:
			status = domain.StatusNotMet
		}
	}

	return score, status, nil
}

func clamp(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
