package storage

import "time"

// DocumentRecord is one ingested document in the catalog. Records are
// immutable after creation; identifiers are never reused.
type DocumentRecord struct {
	ID        string // UUID assigned at upload
	Filename  string
	PageCount int
	CreatedAt time.Time
}

// ChunkRecord is one chunk of a document's text. Chunks are created in
// bulk during ingestion and never mutated afterwards; chunk_index is
// unique within a document and reflects original order.
type ChunkRecord struct {
	DocumentID string
	ChunkIndex int
	Page       int // 0-based page the chunk starts on
	Text       string
	Embedding  []float32 // unit vector produced at ingest time
}
