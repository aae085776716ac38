package engine

import (
	"fmt"

	"github.com/custodia-labs/comply/internal/core/domain"
)

// Best is the strongest variant match for one requirement.
type Best struct {
	ID         string
	Section    string
	Question   string
	Threshold  float64
	Similarity float64
	TopChunk   string
}

// Aggregate reduces variant matches to one Best per requirement ID, in the
// order IDs are first seen. matches[i] belongs to variants[i]; ChunkIndex
// refers to chunks. The first variant to reach the maximum wins.
func Aggregate(variants []domain.Variant, matches []Match, chunks []domain.Chunk) ([]Best, error) {
	if len(variants) != len(matches) {
		return nil, fmt.Errorf("%w: %d variants but %d matches", domain.ErrInvalidInput, len(variants), len(matches))
	}

	index := make(map[string]int, len(variants))
	var out []Best

	for i, v := range variants {
		m := matches[i]
		if m.ChunkIndex < 0 || m.ChunkIndex >= len(chunks) {
			return nil, fmt.Errorf("%w: chunk index %d out of range", domain.ErrInvalidInput, m.ChunkIndex)
		}

		pos, seen := index[v.ID]
		if !seen {
			index[v.ID] = len(out)
			out = append(out, Best{
				ID:         v.ID,
				Section:    v.Section,
				Question:   v.Question,
				Threshold:  v.Threshold,
				Similarity: m.Similarity,
				TopChunk:   chunks[m.ChunkIndex].Text,
			})
			continue
		}

		if m.Similarity > out[pos].Similarity {
			out[pos].Similarity = m.Similarity
			out[pos].TopChunk = chunks[m.ChunkIndex].Text
		}
	}

	return out, nil
}
