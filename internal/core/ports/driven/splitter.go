package driven

import "github.com/custodia-labs/comply/internal/core/domain"

// TextSplitter splits plain document text into ordered chunks.
// Implementations must be pure and safe for concurrent use.
type TextSplitter interface {
	Split(text string) []domain.Chunk
}
