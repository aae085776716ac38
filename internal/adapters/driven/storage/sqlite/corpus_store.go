package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/comply/internal/core/domain"
	"github.com/custodia-labs/comply/internal/core/ports/driven"
)

// corpusStore implements driven.CorpusStore.
type corpusStore struct {
	store *Store
}

var _ driven.CorpusStore = (*corpusStore)(nil)

// Replace stores a document and its chunks in one transaction, dropping any
// document previously indexed under the same name.
func (s *corpusStore) Replace(ctx context.Context, doc domain.Document, chunks []domain.Chunk, vectors [][]float32) error {
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

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM chunks WHERE document_id IN (SELECT id FROM documents WHERE name = ?)", doc.Name); err != nil {
		return fmt.Errorf("deleting previous chunks: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM documents WHERE name = ?", doc.Name); err != nil {
		return fmt.Errorf("deleting previous document: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO documents (id, name, chunk_count, indexed_at, embedding_model, dimensions)
		VALUES (?, ?, ?, ?, ?, ?)
	`, doc.ID, doc.Name, len(chunks), doc.IndexedAt, doc.EmbeddingModel, doc.Dimensions); err != nil {
		return fmt.Errorf("saving document: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, document_id, position, page, content, embedding)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for i, chunk := range chunks {
		id := chunk.ID
		if id == "" {
			id = uuid.New().String()
		}
		if _, err := stmt.ExecContext(ctx, id, doc.ID, chunk.Index, chunk.Page,
			chunk.Text, float32SliceToBytes(vectors[i])); err != nil {
			return fmt.Errorf("saving chunk %d: %w", chunk.Index, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Documents lists indexed documents ordered by name.
func (s *corpusStore) Documents(ctx context.Context) ([]domain.Document, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, name, chunk_count, indexed_at, embedding_model, dimensions
		FROM documents ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document //nolint:prealloc // size unknown from query
	for rows.Next() {
		var doc domain.Document
		if err := rows.Scan(&doc.ID, &doc.Name, &doc.Chunks, &doc.IndexedAt,
			&doc.EmbeddingModel, &doc.Dimensions); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}
	return docs, nil
}

// Vectors returns stored chunks with their vectors in document name, then
// chunk order. An empty name selects every document.
func (s *corpusStore) Vectors(ctx context.Context, name string) ([]driven.StoredChunk, error) {
	query := `
		SELECT d.name, d.embedding_model, d.dimensions,
		       c.id, c.document_id, c.position, c.page, c.content, c.embedding
		FROM chunks c JOIN documents d ON d.id = c.document_id`
	var args []any
	if name != "" {
		query += " WHERE d.name = ?"
		args = append(args, name)
	}
	query += " ORDER BY d.name, c.position"

	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var out []driven.StoredChunk //nolint:prealloc // size unknown from query
	for rows.Next() {
		var sc driven.StoredChunk
		var blob []byte
		if err := rows.Scan(&sc.Document, &sc.Model, &sc.Dimensions, &sc.Chunk.ID, &sc.Chunk.DocumentID, &sc.Chunk.Index,
			&sc.Chunk.Page, &sc.Chunk.Text, &blob); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		sc.Vector = bytesToFloat32Slice(blob)
		out = append(out, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}
	return out, nil
}

// Delete removes a document and its chunks.
func (s *corpusStore) Delete(ctx context.Context, name string) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM chunks WHERE document_id IN (SELECT id FROM documents WHERE name = ?)", name); err != nil {
		return fmt.Errorf("deleting chunks: %w", err)
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM documents WHERE name = ?", name)
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("document %q: %w", name, domain.ErrNotFound)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}
