package domain

import "fmt"

// Status is the three-level classification of a requirement match.
type Status int

// Match statuses, ordered from worst to best.
const (
	StatusNotMet Status = iota
	StatusUnclear
	StatusLikelyMet
)

// String returns the human-readable label used on the wire.
func (s Status) String() string {
	switch s {
	case StatusNotMet:
		return "Not Met"
	case StatusUnclear:
		return "Unclear"
	case StatusLikelyMet:
		return "Likely Met"
	default:
		return "Unknown"
	}
}

// MarshalText encodes the status as its label.
func (s Status) MarshalText() ([]byte, error) {
	switch s {
	case StatusNotMet, StatusUnclear, StatusLikelyMet:
		return []byte(s.String()), nil
	default:
		return nil, fmt.Errorf("invalid status %d", int(s))
	}
}

// UnmarshalText decodes a status label.
func (s *Status) UnmarshalText(text []byte) error {
	switch string(text) {
	case "Not Met":
		*s = StatusNotMet
	case "Unclear":
		*s = StatusUnclear
	case "Likely Met":
		*s = StatusLikelyMet
	default:
		return fmt.Errorf("%w: unknown status %q", ErrInvalidInput, string(text))
	}
	return nil
}

// MatchResult is the scored outcome for one requirement after aggregating
// all of its variants.
type MatchResult struct {
	ID         string
	Section    string
	Question   string
	Similarity float64
	TopChunk   string
	Threshold  float64

	// MatchScore is the similarity rescaled against the threshold, 0 to 100.
	MatchScore int

	Status Status

	// AdviceEligible is set for every result that is not LikelyMet.
	AdviceEligible bool

	// Advice is filled in by the generation step; empty when it failed or was skipped.
	Advice string
}

// ComplianceReport is the ordered list of results for one document, one per
// requirement in checklist order.
type ComplianceReport struct {
	Framework string
	Results   []MatchResult
}

// NeedsAdvice returns the indexes of results eligible for advice generation.
func (r *ComplianceReport) NeedsAdvice() []int {
	var idx []int
	for i := range r.Results {
		if r.Results[i].AdviceEligible {
			idx = append(idx, i)
		}
	}
	return idx
}

// Summary counts results per status.
func (r *ComplianceReport) Summary() map[Status]int {
	counts := make(map[Status]int, 3)
	for i := range r.Results {
		counts[r.Results[i].Status]++
	}
	return counts
}

// Draft is a generated paragraph proposed for a disclosure requirement.
type Draft struct {
	// Text is the proposed disclosure paragraph.
	Text string

	// LowMatch is set when no document chunk was relevant enough to ground the draft.
	LowMatch bool

	// TopScore is the best chunk similarity against the requirement.
	TopScore float64
}
