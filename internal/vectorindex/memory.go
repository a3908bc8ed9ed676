package vectorindex

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
)

// normTolerance bounds how far an inserted vector may deviate from unit
// length before it is rejected.
const normTolerance = 1e-3

// Memory is an in-process Index: an append-only arena of unit-normalized
// vectors stored flat, with a parallel metadata table keyed by the same
// offset. Search is a brute-force dot-product scan, which on unit vectors
// equals cosine similarity.
type Memory struct {
	mu      sync.RWMutex
	dim     int
	vectors []float32 // flat arena, dim floats per entry
	meta    []Meta
}

// NewMemory creates an empty index with the given fixed dimensionality.
func NewMemory(dim int) (*Memory, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("dimension must be greater than 0, got %d", dim)
	}
	return &Memory{dim: dim}, nil
}

// Add validates every entry before mutating anything, so a failed call
// leaves the index untouched and a concurrent reader never observes a
// partial batch.
func (m *Memory) Add(_ context.Context, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for i, e := range entries {
		if len(e.Vector) != m.dim {
			return fmt.Errorf("entry %d has dimension %d, index expects %d: %w",
				i, len(e.Vector), m.dim, ErrDimensionMismatch)
		}
		var norm float64
		for _, v := range e.Vector {
			norm += float64(v) * float64(v)
		}
		if math.Abs(math.Sqrt(norm)-1) > normTolerance {
			return fmt.Errorf("entry %d is not unit-normalized (norm %.6f)", i, math.Sqrt(norm))
		}
	}

	for _, e := range entries {
		m.vectors = append(m.vectors, e.Vector...)
		m.meta = append(m.meta, e.Meta)
	}
	return nil
}

// Search scans the arena and returns the top k hits by descending score,
// ties broken by insertion order (earlier wins).
func (m *Memory) Search(_ context.Context, query []float32, k int, documentID string) ([]Result, error) {
	if k <= 0 {
		k = DefaultK
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(query) != m.dim {
		return nil, fmt.Errorf("query has dimension %d, index expects %d: %w",
			len(query), m.dim, ErrDimensionMismatch)
	}
	if len(m.meta) == 0 {
		return []Result{}, nil
	}

	candidates := make([]Result, 0, len(m.meta))
	for i, meta := range m.meta {
		if documentID != "" && meta.DocumentID != documentID {
			continue
		}
		row := m.vectors[i*m.dim : (i+1)*m.dim]
		var score float32
		for j, q := range query {
			score += row[j] * q
		}
		candidates = append(candidates, Result{Meta: meta, Score: score})
	}

	// Stable sort keeps insertion order among equal scores.
	sort.SliceStable(candidates, func(a, b int) bool {
		return candidates[a].Score > candidates[b].Score
	})

	if len(candidates) > k {
		candidates = candidates[:k]
	}
	return candidates, nil
}

// Len reports the number of stored entries.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.meta)
}
