package sentence

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/comply/internal/core/domain"
)

func TestNormalise(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "collapses blank lines", input: "a\n\n\nb", expected: "a\nb"},
		{name: "removes page markers", input: "Intro Page 12 body", expected: "Intro body"},
		{name: "page markers are case insensitive", input: "x PAGE\n3 y", expected: "x y"},
		{name: "collapses repeated spaces", input: "one    two", expected: "one two"},
		{name: "trims", input: "  \n text \n ", expected: "text"},
		{name: "keeps single newlines", input: "line one\nline two", expected: "line one\nline two"},
		{name: "page marker spanning collapsed blank lines", input: "Page\n\n\n7 end", expected: "end"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalise(tt.input))
		})
	}
}

func TestSentences(t *testing.T) {
	t.Run("splits on terminal punctuation followed by whitespace", func(t *testing.T) {
		got := Sentences("One. Two? Three!\nFour")
		assert.Equal(t, []string{"One.", "Two?", "Three!", "Four"}, got)
	})

	t.Run("does not split inside numbers", func(t *testing.T) {
		got := Sentences("Emissions fell 3.5 percent. Water use rose.")
		assert.Equal(t, []string{"Emissions fell 3.5 percent.", "Water use rose."}, got)
	})

	t.Run("trailing punctuation stays attached", func(t *testing.T) {
		assert.Equal(t, []string{"Done."}, Sentences("Done."))
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Nil(t, Sentences(""))
	})
}

func TestSplit_EmptyInput(t *testing.T) {
	assert.Empty(t, Split("", 200))
	assert.Empty(t, Split("   \n\n  ", 200))
	assert.Empty(t, Split("Page 4", 200))
}

func TestSplit_ShortTextIsOneChunk(t *testing.T) {
	chunks := Split("The company reported 12,000 tonnes of Scope 1 emissions in 2023.", 200)

	require.Len(t, chunks, 1)
	assert.Equal(t, 0, chunks[0].Index)
	assert.Equal(t, "The company reported 12,000 tonnes of Scope 1 emissions in 2023.", chunks[0].Text)
}

func TestSplit_EmitsOnceWordCountExceedsMax(t *testing.T) {
	// Each sentence has three words.
	text := "a b c. d e f. g h i. j k l."

	chunks := Split(text, 5)

	require.Len(t, chunks, 2)
	assert.Equal(t, "a b c. d e f.", chunks[0].Text)
	assert.Equal(t, "g h i. j k l.", chunks[1].Text)
	assert.Equal(t, 1, chunks[1].Index)
}

func TestSplit_ExactlyMaxWordsIsNotEmitted(t *testing.T) {
	chunks := Split("a b c. d e f.", 6)
	require.Len(t, chunks, 1)
}

func TestSplit_PreservesAllWords(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 120; i++ {
		b.WriteString("Scope emissions were reported for site number ")
		b.WriteString(strings.Repeat("x", i%7+1))
		b.WriteString(". ")
		if i%10 == 0 {
			b.WriteString("\n\nPage 3\n\n")
		}
	}
	text := b.String()

	for _, maxWords := range []int{1, 7, 50, 200, 10000} {
		chunks := Split(text, maxWords)
		require.NotEmpty(t, chunks)

		var rejoined []string
		for _, c := range chunks {
			assert.NotEmpty(t, c.Text)
			rejoined = append(rejoined, c.Text)
		}
		assert.Equal(t,
			strings.Fields(Normalise(text)),
			strings.Fields(strings.Join(rejoined, " ")),
			"maxWords=%d", maxWords)
	}
}

func TestSplit_ChunksAreMaximal(t *testing.T) {
	text := strings.Repeat("This sentence has exactly six words. ", 40)
	maxWords := 20

	chunks := Split(text, maxWords)
	require.Greater(t, len(chunks), 1)

	for i, c := range chunks[:len(chunks)-1] {
		assert.Greater(t, len(strings.Fields(c.Text)), maxWords, "chunk %d emitted early", i)
		assert.Equal(t, i, c.Index)
	}
}

func TestSplit_NonPositiveMaxWordsUsesDefault(t *testing.T) {
	text := strings.Repeat("word ", 150) + "end."
	assert.Len(t, Split(text, 0), 1)
}

func TestProcessor(t *testing.T) {
	p := New(WithMaxWords(3))
	assert.Equal(t, "sentence", p.Name())
	assert.Equal(t, 3, p.MaxWords())

	assert.Equal(t, DefaultMaxWords, New(WithMaxWords(-4)).MaxWords())

	doc := &domain.Document{ID: "doc-1", Name: "report.txt"}
	chunks, err := p.Process(context.Background(), doc, "a b c d. e f g h.", nil)
	require.NoError(t, err)
	require.Len(t, chunks, 2)

	for i, c := range chunks {
		assert.NotEmpty(t, c.ID)
		assert.Equal(t, "doc-1", c.DocumentID)
		assert.Equal(t, i+1, c.Page)
	}
	assert.NotEqual(t, chunks[0].ID, chunks[1].ID)

	assert.Equal(t, Split("a b c d. e f g h.", 3), p.Split("a b c d. e f g h."))
}
