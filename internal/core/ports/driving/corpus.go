package driving

import (
	"context"

	"github.com/custodia-labs/comply/internal/core/domain"
)

// CorpusService indexes documents for chat and answers questions about them.
type CorpusService interface {
	// Index chunks, embeds and stores text under name, replacing earlier content.
	// Returns the number of chunks stored.
	Index(ctx context.Context, name, text string) (int, error)

	// Documents lists indexed documents.
	Documents(ctx context.Context) ([]domain.Document, error)

	// Remove deletes an indexed document.
	Remove(ctx context.Context, name string) error

	// Retrieve returns the topK passages most similar to query, with citations.
	// topK <= 0 uses the configured default.
	Retrieve(ctx context.Context, name, query string, topK int) (*domain.Retrieval, error)

	// Ask answers the last user message using passages retrieved from the named document.
	Ask(ctx context.Context, name string, messages []domain.ChatMessage) (*domain.ChatAnswer, error)
}
