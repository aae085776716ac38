package driven

import (
	"context"

	"github.com/custodia-labs/comply/internal/core/domain"
)

// PostProcessor processes document content to produce chunks.
// PostProcessors are chained in a pipeline (e.g., normalisation, chunking).
type PostProcessor interface {
	// Name returns the processor name for logging and configuration.
	Name() string

	// Process takes a document's text and returns chunks.
	// If the processor creates chunks (e.g., chunker), it receives nil and returns new chunks.
	// If the processor modifies chunks, it receives and returns chunks.
	Process(ctx context.Context, doc *domain.Document, text string, chunks []domain.Chunk) ([]domain.Chunk, error)
}

// PostProcessorPipeline chains multiple PostProcessors.
type PostProcessorPipeline interface {
	// Process runs the document text through all processors in order.
	// Returns the final chunks after all processing.
	Process(ctx context.Context, doc *domain.Document, text string) ([]domain.Chunk, error)
}
