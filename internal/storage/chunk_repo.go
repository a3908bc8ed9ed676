package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// ChunkRepo provides read access to stored chunks.
type ChunkRepo struct {
	db *sql.DB
}

// NewChunkRepo creates a new ChunkRepo.
func NewChunkRepo(db *sql.DB) *ChunkRepo {
	return &ChunkRepo{db: db}
}

// ListByDocument returns all chunks of a document ordered by chunk_index.
// Returns an empty slice if the document has no chunks (not an error).
func (r *ChunkRepo) ListByDocument(ctx context.Context, documentID string) ([]ChunkRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT document_id, chunk_index, page, text, embedding FROM chunks WHERE document_id = ? ORDER BY chunk_index",
		documentID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query chunks: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var chunks []ChunkRecord
	for rows.Next() {
		var chunk ChunkRecord
		var blob []byte
		if err := rows.Scan(&chunk.DocumentID, &chunk.ChunkIndex, &chunk.Page, &chunk.Text, &blob); err != nil {
			return nil, fmt.Errorf("failed to scan chunk: %w", err)
		}
		chunk.Embedding = decodeVector(blob)
		chunks = append(chunks, chunk)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return chunks, nil
}

// Get returns one chunk by document id and chunk index.
// Returns ErrNotFound if it does not exist.
func (r *ChunkRepo) Get(ctx context.Context, documentID string, chunkIndex int) (*ChunkRecord, error) {
	var chunk ChunkRecord
	err := r.db.QueryRowContext(ctx,
		"SELECT document_id, chunk_index, page, text FROM chunks WHERE document_id = ? AND chunk_index = ?",
		documentID, chunkIndex,
	).Scan(&chunk.DocumentID, &chunk.ChunkIndex, &chunk.Page, &chunk.Text)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query chunk: %w", err)
	}

	return &chunk, nil
}
