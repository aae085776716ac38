package sqlite

import (
	"context"
	"database/sql"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/comply/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/comply/internal/core/domain"
)

// setupTestStore creates a SQLite store in a temporary directory.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	require.NotNil(t, store)
	t.Cleanup(func() { assert.NoError(t, store.Close()) })

	return store
}

func testChunks(texts ...string) ([]domain.Chunk, [][]float32) {
	chunks := make([]domain.Chunk, len(texts))
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		chunks[i] = domain.Chunk{Index: i, Text: text, Page: i + 1}
		vectors[i] = []float32{float32(i), 0.5, -1}
	}
	return chunks, vectors
}

// ==================== Store Creation Tests ====================

func TestNewStore_CreatesDatabase(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")

	store, err := NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, filepath.Join(dir, DBName), store.Path())
	_, err = os.Stat(store.Path())
	assert.NoError(t, err)
}

func TestNewStore_ReopenKeepsData(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := NewStore(dir)
	require.NoError(t, err)
	chunks, vectors := testChunks("first")
	require.NoError(t, store.CorpusStore().Replace(ctx, domain.Document{Name: "report.txt"}, chunks, vectors))
	require.NoError(t, store.Close())

	reopened, err := NewStore(dir)
	require.NoError(t, err)
	defer reopened.Close()

	docs, err := reopened.CorpusStore().Documents(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "report.txt", docs[0].Name)
}

func TestMigrate_RecordsVersion(t *testing.T) {
	store := setupTestStore(t)

	var version int
	require.NoError(t, store.db.QueryRow("SELECT MAX(version) FROM schema_migrations").Scan(&version))
	assert.Equal(t, 2, version)
}

func TestMigrate_UpgradeKeepsDocumentsWithoutModel(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	db, err := sql.Open("sqlite", filepath.Join(dir, DBName))
	require.NoError(t, err)
	v1, err := fs.ReadFile(migrations.FS, "001_corpus.up.sql")
	require.NoError(t, err)
	old := &Store{db: db}
	require.NoError(t, old.migrate(fstest.MapFS{"001_corpus.up.sql": {Data: v1}}))
	_, err = db.Exec(`INSERT INTO documents (id, name, chunk_count, indexed_at) VALUES ('d1', 'old.txt', 0, ?)`,
		time.Now().UTC())
	require.NoError(t, err)
	require.NoError(t, db.Close())

	store, err := NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	docs, err := store.CorpusStore().Documents(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "old.txt", docs[0].Name)
	assert.Empty(t, docs[0].EmbeddingModel)
	assert.Zero(t, docs[0].Dimensions)
}

// ==================== Corpus Store Tests ====================

func TestCorpusStore_ReplaceAndVectors(t *testing.T) {
	store := setupTestStore(t).CorpusStore()
	ctx := context.Background()

	chunks, vectors := testChunks("alpha", "beta", "gamma")
	indexedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	doc := domain.Document{Name: "esg.txt", IndexedAt: indexedAt, EmbeddingModel: "nomic-embed-text", Dimensions: 3}
	err := store.Replace(ctx, doc, chunks, vectors)
	require.NoError(t, err)

	stored, err := store.Vectors(ctx, "esg.txt")
	require.NoError(t, err)
	require.Len(t, stored, 3)
	for i, sc := range stored {
		assert.Equal(t, "esg.txt", sc.Document)
		assert.Equal(t, "nomic-embed-text", sc.Model)
		assert.Equal(t, 3, sc.Dimensions)
		assert.Equal(t, i, sc.Chunk.Index)
		assert.Equal(t, i+1, sc.Chunk.Page)
		assert.Equal(t, chunks[i].Text, sc.Chunk.Text)
		assert.Equal(t, vectors[i], sc.Vector)
		assert.NotEmpty(t, sc.Chunk.ID)
		assert.NotEmpty(t, sc.Chunk.DocumentID)
	}

	docs, err := store.Documents(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, 3, docs[0].Chunks)
	assert.True(t, indexedAt.Equal(docs[0].IndexedAt))
	assert.Equal(t, "nomic-embed-text", docs[0].EmbeddingModel)
	assert.Equal(t, 3, docs[0].Dimensions)
}

func TestCorpusStore_ReplaceOverwritesSameName(t *testing.T) {
	store := setupTestStore(t).CorpusStore()
	ctx := context.Background()

	chunks, vectors := testChunks("old one", "old two")
	require.NoError(t, store.Replace(ctx, domain.Document{Name: "a.txt"}, chunks, vectors))
	chunks, vectors = testChunks("new")
	require.NoError(t, store.Replace(ctx, domain.Document{Name: "a.txt"}, chunks, vectors))

	stored, err := store.Vectors(ctx, "a.txt")
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "new", stored[0].Chunk.Text)

	docs, err := store.Documents(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, 1, docs[0].Chunks)
}

func TestCorpusStore_VectorsAllDocuments(t *testing.T) {
	store := setupTestStore(t).CorpusStore()
	ctx := context.Background()

	chunks, vectors := testChunks("b1", "b2")
	require.NoError(t, store.Replace(ctx, domain.Document{Name: "b.txt"}, chunks, vectors))
	chunks, vectors = testChunks("a1")
	require.NoError(t, store.Replace(ctx, domain.Document{Name: "a.txt"}, chunks, vectors))

	stored, err := store.Vectors(ctx, "")
	require.NoError(t, err)
	require.Len(t, stored, 3)
	assert.Equal(t, "a.txt", stored[0].Document)
	assert.Equal(t, "b1", stored[1].Chunk.Text)
	assert.Equal(t, "b2", stored[2].Chunk.Text)

	none, err := store.Vectors(ctx, "missing.txt")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestCorpusStore_ReplaceValidation(t *testing.T) {
	store := setupTestStore(t).CorpusStore()
	ctx := context.Background()
	chunks, vectors := testChunks("x", "y")

	t.Run("missing name", func(t *testing.T) {
		err := store.Replace(ctx, domain.Document{}, chunks, vectors)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("vector count mismatch", func(t *testing.T) {
		err := store.Replace(ctx, domain.Document{Name: "x.txt"}, chunks, vectors[:1])
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestCorpusStore_Delete(t *testing.T) {
	store := setupTestStore(t).CorpusStore()
	ctx := context.Background()

	chunks, vectors := testChunks("x")
	require.NoError(t, store.Replace(ctx, domain.Document{Name: "gone.txt"}, chunks, vectors))

	require.NoError(t, store.Delete(ctx, "gone.txt"))

	docs, err := store.Documents(ctx)
	require.NoError(t, err)
	assert.Empty(t, docs)
	stored, err := store.Vectors(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, stored)

	err = store.Delete(ctx, "gone.txt")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ==================== Helper Tests ====================

func TestFloat32Bytes_RoundTrip(t *testing.T) {
	in := []float32{0, 1.5, -2.25, 3.4028235e38}

	assert.Equal(t, in, bytesToFloat32Slice(float32SliceToBytes(in)))
	assert.Nil(t, float32SliceToBytes(nil))
	assert.Nil(t, bytesToFloat32Slice(nil))
}
