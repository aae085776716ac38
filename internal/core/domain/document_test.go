package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestDocument_Fields tests Document structure fields
func TestDocument_Fields(t *testing.T) {
	now := time.Now()

	doc := Document{
		ID:        "doc-123",
		Name:      "annual-2024.txt",
		Chunks:    42,
		IndexedAt: now,
	}

	assert.Equal(t, "doc-123", doc.ID)
	assert.Equal(t, "annual-2024.txt", doc.Name)
	assert.Equal(t, 42, doc.Chunks)
	assert.Equal(t, now, doc.IndexedAt)
}

// TestChunk_ScoringChunk tests that scoring chunks only carry position and text
func TestChunk_ScoringChunk(t *testing.T) {
	chunk := Chunk{Index: 3, Text: "Scope 1 emissions fell."}

	assert.Equal(t, 3, chunk.Index)
	assert.Equal(t, "Scope 1 emissions fell.", chunk.Text)
	assert.Empty(t, chunk.ID)
	assert.Empty(t, chunk.DocumentID)
	assert.Zero(t, chunk.Page)
}

// TestChunk_CorpusChunk tests corpus chunk citation fields
func TestChunk_CorpusChunk(t *testing.T) {
	chunk := Chunk{
		ID:         "chunk-1",
		DocumentID: "doc-123",
		Index:      0,
		Text:       "The board reviews climate risk.",
		Page:       2,
	}

	assert.Equal(t, "doc-123", chunk.DocumentID)
	assert.Equal(t, 2, chunk.Page)
}
