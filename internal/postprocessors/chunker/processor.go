// Package chunker provides a fixed-width text chunking processor used when
// indexing documents into the chat corpus.
package chunker

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/comply/internal/core/domain"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 500

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 0

// Processor splits each line of document text into fixed-width chunks.
// Line breaks always end a chunk; empty lines produce nothing.
// It implements the PostProcessor interface.
type Processor struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(p)
	}

	// Ensure overlap doesn't exceed chunk size
	if p.overlap >= p.chunkSize {
		p.overlap = p.chunkSize / 4
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// Process splits the document text into chunks numbered as pages from 1.
// Input chunks are ignored; this processor creates new chunks from the text.
func (p *Processor) Process(_ context.Context, doc *domain.Document, text string, _ []domain.Chunk) ([]domain.Chunk, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	documentID := ""
	if doc != nil {
		documentID = doc.ID
	}

	step := p.chunkSize - p.overlap
	var chunks []domain.Chunk

	for _, line := range strings.Split(text, "\n") {
		runes := []rune(strings.TrimRight(line, "\r"))

		for start := 0; start < len(runes); start += step {
			end := start + p.chunkSize
			if end > len(runes) {
				end = len(runes)
			}

			content := string(runes[start:end])
			if strings.TrimSpace(content) != "" {
				chunks = append(chunks, domain.Chunk{
					ID:         uuid.New().String(),
					DocumentID: documentID,
					Index:      len(chunks),
					Text:       content,
					Page:       len(chunks) + 1,
				})
			}

			if end == len(runes) {
				break
			}
		}
	}

	return chunks, nil
}
