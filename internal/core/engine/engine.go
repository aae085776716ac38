package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/comply/internal/core/domain"
	"github.com/custodia-labs/comply/internal/core/ports/driven"
	"github.com/custodia-labs/comply/internal/logger"
)

var errNoChunks = errors.New("no chunks to score against")

// Engine scores a document against a checklist.
// It holds no per-request state and may be shared between goroutines.
type Engine struct {
	embedder driven.EmbeddingService
	splitter driven.TextSplitter
	workers  int
}

// Option configures an Engine.
type Option func(*Engine)

// WithWorkers sets the number of goroutines used for the similarity scan.
// Zero or less means runtime.GOMAXPROCS(0).
func WithWorkers(n int) Option {
	return func(e *Engine) {
		e.workers = n
	}
}

// New creates an engine that chunks with splitter and embeds with embedder.
func New(embedder driven.EmbeddingService, splitter driven.TextSplitter, opts ...Option) *Engine {
	e := &Engine{
		embedder: embedder,
		splitter: splitter,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Chunks splits document text the same way ScoreChecklist does.
func (e *Engine) Chunks(docText string) []domain.Chunk {
	return e.splitter.Split(docText)
}

// ScoreChecklist chunks docText, embeds the chunks and the checklist variants
// concurrently, and returns one result per requirement in checklist order.
// Any embedding failure fails the whole report.
func (e *Engine) ScoreChecklist(
	ctx context.Context, docText string, checklist *domain.Checklist, policy domain.StatusPolicy,
) (*domain.ComplianceReport, error) {
	if strings.TrimSpace(docText) == "" {
		return nil, fmt.Errorf("%w: document text is required", domain.ErrInvalidInput)
	}
	if checklist == nil {
		return nil, fmt.Errorf("%w: checklist is required", domain.ErrInvalidInput)
	}
	if e.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	logger.Section("Compliance Scoring")

	chunks := e.splitter.Split(docText)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: document has no scorable text", domain.ErrInvalidInput)
	}

	variants := Expand(checklist)
	logger.Debug("Framework %s: %d chunks, %d variants", checklist.Framework, len(chunks), len(variants))

	if len(variants) == 0 {
		return &domain.ComplianceReport{Framework: checklist.Framework, Results: []domain.MatchResult{}}, nil
	}

	corpus, queries, err := e.embedBoth(ctx, chunkTexts(chunks), Phrasings(variants))
	if err != nil {
		logger.Error("embedding failed for framework %s: %v", checklist.Framework, err)
		return nil, err
	}

	matches, err := ScoreVariants(ctx, corpus, queries, e.workers)
	if err != nil {
		return nil, fmt.Errorf("score variants: %w", err)
	}

	best, err := Aggregate(variants, matches, chunks)
	if err != nil {
		return nil, fmt.Errorf("aggregate matches: %w", err)
	}

	report, err := BuildReport(checklist.Framework, best, policy)
	if err != nil {
		return nil, fmt.Errorf("build report: %w", err)
	}

	logger.Debug("Scored %d requirements", len(report.Results))
	return report, nil
}

// embedBoth issues the chunk batch and the variant batch concurrently and
// checks that each response matches its input length and that every vector
// has the embedder's dimension.
func (e *Engine) embedBoth(ctx context.Context, chunks, phrasings []string) ([][]float32, [][]float32, error) {
	var corpus, queries [][]float32

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		vecs, err := e.embedder.EmbedBatch(gctx, chunks)
		if err != nil {
			return fmt.Errorf("%w: embed chunks: %w", domain.ErrUpstream, err)
		}
		if len(vecs) != len(chunks) {
			return fmt.Errorf("%w: embed chunks: got %d vectors for %d texts", domain.ErrUpstream, len(vecs), len(chunks))
		}
		corpus = vecs
		return nil
	})
	g.Go(func() error {
		vecs, err := e.embedder.EmbedBatch(gctx, phrasings)
		if err != nil {
			return fmt.Errorf("%w: embed variants: %w", domain.ErrUpstream, err)
		}
		if len(vecs) != len(phrasings) {
			return fmt.Errorf("%w: embed variants: got %d vectors for %d texts", domain.ErrUpstream, len(vecs), len(phrasings))
		}
		queries = vecs
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	if _, err := CheckDimensions(e.embedder.Dimensions(), corpus, queries); err != nil {
		return nil, nil, err
	}
	return corpus, queries, nil
}

func chunkTexts(chunks []domain.Chunk) []string {
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	return texts
}
