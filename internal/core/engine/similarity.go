package engine

import (
	"context"
	"fmt"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/comply/internal/core/domain"
)

// Match is the best chunk found for one query vector.
type Match struct {
	Similarity float64
	ChunkIndex int
}

// Cosine returns the cosine similarity of a and b. A zero-magnitude vector
// has similarity 0 with everything, and so do vectors of different length;
// callers reject those with CheckDimensions first.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// CheckDimensions returns the common length of every vector in sets. All
// vectors must be non-empty and equally long, and when want > 0 that length
// must be want. A violation is an ErrUpstream: the embedding service returned
// vectors that cannot be compared.
func CheckDimensions(want int, sets ...[][]float32) (int, error) {
	dim := want
	for _, vecs := range sets {
		for i, v := range vecs {
			switch {
			case len(v) == 0:
				return 0, fmt.Errorf("%w: vector %d is empty", domain.ErrUpstream, i)
			case dim <= 0:
				dim = len(v)
			case len(v) != dim:
				return 0, fmt.Errorf("%w: vector %d has %d dimensions, want %d",
					domain.ErrUpstream, i, len(v), dim)
			}
		}
	}
	return dim, nil
}

// ScoreVariants scans every corpus vector for every query vector and returns
// the best match per query. The scan starts at chunk 0 and only a strictly
// greater similarity replaces the current best, so the earliest chunk wins ties.
// Queries are divided between at most workers goroutines; workers <= 0 means
// runtime.GOMAXPROCS(0).
func ScoreVariants(ctx context.Context, corpus, queries [][]float32, workers int) ([]Match, error) {
	if len(corpus) == 0 {
		return nil, errNoChunks
	}

	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(queries) {
		workers = len(queries)
	}

	matches := make([]Match, len(queries))
	if len(queries) == 0 {
		return matches, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	batch := (len(queries) + workers - 1) / workers

	for start := 0; start < len(queries); start += batch {
		end := start + batch
		if end > len(queries) {
			end = len(queries)
		}

		g.Go(func() error {
			for q := start; q < end; q++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				matches[q] = bestMatch(corpus, queries[q])
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return matches, nil
}

func bestMatch(corpus [][]float32, query []float32) Match {
	best := Match{Similarity: Cosine(corpus[0], query), ChunkIndex: 0}
	for i := 1; i < len(corpus); i++ {
		if sim := Cosine(corpus[i], query); sim > best.Similarity {
			best = Match{Similarity: sim, ChunkIndex: i}
		}
	}
	return best
}
