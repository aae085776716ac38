// Package memory provides an in-memory chat corpus store for tests and
// ephemeral sessions. Nothing survives the process.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/comply/internal/core/domain"
	"github.com/custodia-labs/comply/internal/core/ports/driven"
)

// Ensure CorpusStore implements the interface.
var _ driven.CorpusStore = (*CorpusStore)(nil)

type entry struct {
	doc    domain.Document
	chunks []driven.StoredChunk
}

// CorpusStore is an in-memory implementation of driven.CorpusStore.
type CorpusStore struct {
	mu      sync.RWMutex
	entries map[string]entry
}

// NewCorpusStore creates a new in-memory corpus store.
func NewCorpusStore() *CorpusStore {
	return &CorpusStore{
		entries: make(map[string]entry),
	}
}

// Replace stores a document and its chunks, dropping any previous document
// with the same name.
func (s *CorpusStore) Replace(_ context.Context, doc domain.Document, chunks []domain.Chunk, vectors [][]float32) error {
	if doc.Name == "" {
		return fmt.Errorf("%w: document name is required", domain.ErrInvalidInput)
	}
	if len(vectors) != len(chunks) {
		return fmt.Errorf("%w: %d vectors for %d chunks", domain.ErrInvalidInput, len(vectors), len(chunks))
	}
	if doc.ID == "" {
		doc.ID = uuid.New().String()
	}
	if doc.IndexedAt.IsZero() {
		doc.IndexedAt = time.Now().UTC()
	}
	doc.Chunks = len(chunks)

	stored := make([]driven.StoredChunk, len(chunks))
	for i, chunk := range chunks {
		if chunk.ID == "" {
			chunk.ID = uuid.New().String()
		}
		chunk.DocumentID = doc.ID
		vec := make([]float32, len(vectors[i]))
		copy(vec, vectors[i])
		stored[i] = driven.StoredChunk{
			Document:   doc.Name,
			Model:      doc.EmbeddingModel,
			Dimensions: doc.Dimensions,
			Chunk:      chunk,
			Vector:     vec,
		}
	}
	sort.SliceStable(stored, func(i, j int) bool {
		return stored[i].Chunk.Index < stored[j].Chunk.Index
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[doc.Name] = entry{doc: doc, chunks: stored}
	return nil
}

// Documents lists indexed documents ordered by name.
func (s *CorpusStore) Documents(_ context.Context) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := make([]domain.Document, 0, len(s.entries))
	for _, e := range s.entries {
		docs = append(docs, e.doc)
	}
	sort.Slice(docs, func(i, j int) bool {
		return docs[i].Name < docs[j].Name
	})
	return docs, nil
}

// Vectors returns stored chunks in document name, then chunk order.
// An empty name selects every document.
func (s *CorpusStore) Vectors(_ context.Context, name string) ([]driven.StoredChunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if name != "" {
		e, ok := s.entries[name]
		if !ok {
			return nil, nil
		}
		return append([]driven.StoredChunk(nil), e.chunks...), nil
	}

	names := make([]string, 0, len(s.entries))
	for n := range s.entries {
		names = append(names, n)
	}
	sort.Strings(names)

	var out []driven.StoredChunk
	for _, n := range names {
		out = append(out, s.entries[n].chunks...)
	}
	return out, nil
}

// Delete removes a document and its chunks.
func (s *CorpusStore) Delete(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[name]; !ok {
		return fmt.Errorf("document %q: %w", name, domain.ErrNotFound)
	}
	delete(s.entries, name)
	return nil
}
