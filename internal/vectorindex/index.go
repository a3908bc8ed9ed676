package vectorindex

import (
	"context"
	"errors"
)

// DefaultK is the number of neighbors returned when the caller passes k <= 0.
const DefaultK = 4

// ErrDimensionMismatch is returned when a vector's dimensionality differs
// from the index's fixed dimensionality. It indicates a programming error
// (mixed embedding strategies), not a recoverable condition.
var ErrDimensionMismatch = errors.New("vector dimension mismatch")

// Meta is the citation payload stored alongside each vector: enough to
// reconstruct a source reference without re-reading the chunk catalog.
type Meta struct {
	DocumentID string
	ChunkIndex int
	Page       int // 0-based
	Snippet    string
}

// Entry pairs an embedding with its citation metadata.
type Entry struct {
	Vector []float32
	Meta   Meta
}

// Result is one search hit, scored by cosine similarity.
type Result struct {
	Meta  Meta
	Score float32
}

// Index stores (vector, metadata) pairs and answers k-nearest-neighbor
// queries by cosine similarity. Implementations are additive-only; entries
// live for the process lifetime.
type Index interface {
	// Add inserts all entries, or none of them on validation failure.
	Add(ctx context.Context, entries []Entry) error

	// Search returns up to k entries ranked by descending similarity to
	// query. documentID == "" searches the whole corpus; otherwise only
	// entries tagged with that document are considered. An empty index
	// yields an empty result, not an error.
	Search(ctx context.Context, query []float32, k int, documentID string) ([]Result, error)
}
