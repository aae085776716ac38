package engine

import "github.com/custodia-labs/comply/internal/core/domain"

// BuildReport normalises each aggregated match and returns the report in
// requirement order. Every result that is not LikelyMet is marked eligible
// for advice. Reported similarity is clamped to [0, 1] like the score.
func BuildReport(framework string, best []Best, policy domain.StatusPolicy) (*domain.ComplianceReport, error) {
	report := &domain.ComplianceReport{
		Framework: framework,
		Results:   make([]domain.MatchResult, 0, len(best)),
	}

	for _, b := range best {
		score, status, err := Normalise(b.Similarity, b.Threshold, policy)
		if err != nil {
			return nil, err
		}

		report.Results = append(report.Results, domain.MatchResult{
			ID:             b.ID,
			Section:        b.Section,
			Question:       b.Question,
			Similarity:     clamp(b.Similarity),
			TopChunk:       b.TopChunk,
			Threshold:      b.Threshold,
			MatchScore:     score,
			Status:         status,
			AdviceEligible: status != domain.StatusLikelyMet,
		})
	}

	return report, nil
}
