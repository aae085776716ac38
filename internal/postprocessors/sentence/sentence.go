// Package sentence provides the sentence-bounded chunker used for scoring.
package sentence

import (
	"context"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/custodia-labs/comply/internal/core/domain"
	"github.com/custodia-labs/comply/internal/core/ports/driven"
)

// DefaultMaxWords is the word count a chunk must exceed before it is emitted.
const DefaultMaxWords = 200

var (
	_ driven.PostProcessor = (*Processor)(nil)
	_ driven.TextSplitter  = (*Processor)(nil)
)

var (
	blankLines  = regexp.MustCompile(`\n{2,}`)
	pageMarker  = regexp.MustCompile(`(?i)Page\s+\d+`)
	spaceRepeat = regexp.MustCompile(` {2,}`)
)

// Processor groups whole sentences into chunks of roughly maxWords words.
type Processor struct {
	maxWords int
}

// Option configures the sentence processor.
type Option func(*Processor)

// WithMaxWords sets the word count a chunk must exceed to be emitted.
func WithMaxWords(n int) Option {
	return func(p *Processor) {
		if n > 0 {
			p.maxWords = n
		}
	}
}

// New creates a new sentence processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{maxWords: DefaultMaxWords}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "sentence"
}

// MaxWords returns the configured chunk bound.
func (p *Processor) MaxWords() int {
	return p.maxWords
}

// Split implements driven.TextSplitter.
func (p *Processor) Split(text string) []domain.Chunk {
	return Split(text, p.maxWords)
}

// Process chunks the document text for corpus indexing. Input chunks are ignored.
func (p *Processor) Process(_ context.Context, doc *domain.Document, text string, _ []domain.Chunk) ([]domain.Chunk, error) {
	chunks := Split(text, p.maxWords)
	for i := range chunks {
		chunks[i].ID = uuid.New().String()
		chunks[i].Page = chunks[i].Index + 1
		if doc != nil {
			chunks[i].DocumentID = doc.ID
		}
	}
	return chunks, nil
}

// Normalise collapses blank lines, strips "Page N" markers and collapses
// repeated spaces, in that order, then trims the result.
func Normalise(text string) string {
	text = blankLines.ReplaceAllString(text, "\n")
	text = pageMarker.ReplaceAllString(text, "")
	text = spaceRepeat.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// Sentences splits normalised text after '.', '?' or '!' when followed by
// whitespace. The whitespace run between sentences is dropped.
func Sentences(text string) []string {
	if text == "" {
		return nil
	}

	var out []string
	start := 0
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		i += size
		if r != '.' && r != '?' && r != '!' {
			continue
		}

		end := i
		j := i
		for j < len(text) {
			next, n := utf8.DecodeRuneInString(text[j:])
			if !unicode.IsSpace(next) {
				break
			}
			j += n
		}
		if j == end {
			continue
		}

		out = append(out, text[start:end])
		start = j
		i = j
	}
	if start < len(text) {
		out = append(out, text[start:])
	}
	return out
}

// Split normalises text and accumulates sentences into chunks. A chunk is
// emitted as soon as its word count exceeds maxWords; the remainder forms the
// final chunk. Empty input yields no chunks.
func Split(text string, maxWords int) []domain.Chunk {
	if maxWords <= 0 {
		maxWords = DefaultMaxWords
	}

	sentences := Sentences(Normalise(text))
	if len(sentences) == 0 {
		return nil
	}

	var (
		chunks  []domain.Chunk
		current []string
		words   int
	)
	emit := func() {
		chunks = append(chunks, domain.Chunk{
			Index: len(chunks),
			Text:  strings.Join(current, " "),
		})
		current = current[:0]
		words = 0
	}

	for _, s := range sentences {
		current = append(current, s)
		words += len(strings.Fields(s))
		if words > maxWords {
			emit()
		}
	}
	if len(current) > 0 {
		emit()
	}

	return chunks
}
