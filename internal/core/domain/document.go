package domain

import "time"

// Document is a text indexed into the chat corpus under a namespace.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// Name is the namespace the document was indexed under, usually the file name.
	Name string

	// Chunks is the number of chunks stored for the document.
	Chunks int

	// EmbeddingModel names the model that embedded the chunks.
	// Empty for documents indexed before it was recorded.
	EmbeddingModel string

	// Dimensions is the length of every stored chunk vector.
	Dimensions int

	// IndexedAt is when the document was last indexed.
	IndexedAt time.Time
}

// Chunk is a bounded-size contiguous slice of document text.
// Chunks produced for a scoring request only carry Index and Text.
type Chunk struct {
	// Index is the ordinal position within the document, starting at zero.
	Index int

	// Text is the chunk content.
	Text string

	// ID is the unique identifier for corpus chunks.
	ID string

	// DocumentID links a corpus chunk to its Document.
	DocumentID string

	// Page is the 1-based page number recorded for corpus citations.
	Page int
}
