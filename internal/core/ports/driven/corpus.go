package driven

import (
	"context"

	"github.com/custodia-labs/comply/internal/core/domain"
)

// CorpusStore persists indexed document chunks with their embeddings for
// chat-context retrieval.
type CorpusStore interface {
	// Replace stores doc and its chunks, removing any document previously
	// indexed under the same name. vectors[i] belongs to chunks[i].
	Replace(ctx context.Context, doc domain.Document, chunks []domain.Chunk, vectors [][]float32) error

	// Documents lists indexed documents ordered by name.
	Documents(ctx context.Context) ([]domain.Document, error)

	// Vectors returns every stored chunk of the named document with its vector,
	// in chunk order. An empty name returns chunks of all documents.
	Vectors(ctx context.Context, name string) ([]StoredChunk, error)

	// Delete removes a document and its chunks.
	// Returns domain.ErrNotFound if no document has that name.
	Delete(ctx context.Context, name string) error
}

// StoredChunk is a corpus chunk with its owning document name and vector.
// Model and Dimensions are copied from the owning document.
type StoredChunk struct {
	Document   string
	Model      string
	Dimensions int
	Chunk      domain.Chunk
	Vector     []float32
}
