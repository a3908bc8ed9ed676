package vectorindex

import (
	"context"
	"errors"
	"math"
	"testing"
)

// unit builds a unit vector pointing mostly along axis, with a small
// component elsewhere so scores are distinguishable.
func unit(dim, axis int) []float32 {
	v := make([]float32, dim)
	v[axis] = 1
	return v
}

// blend returns the normalized combination a*x + b*y of two axes.
func blend(dim, x, y int, a, b float64) []float32 {
	v := make([]float32, dim)
	norm := math.Sqrt(a*a + b*b)
	v[x] = float32(a / norm)
	v[y] = float32(b / norm)
	return v
}

func mustAdd(t *testing.T, idx *Memory, entries []Entry) {
	t.Helper()
	if err := idx.Add(context.Background(), entries); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
}

func TestNewMemory(t *testing.T) {
	if _, err := NewMemory(0); err == nil {
		t.Error("NewMemory(0) expected error, got nil")
	}
	idx, err := NewMemory(8)
	if err != nil {
		t.Fatalf("NewMemory(8) error = %v", err)
	}
	if idx.Len() != 0 {
		t.Errorf("new index Len() = %d, want 0", idx.Len())
	}
}

func TestMemory_SearchRanking(t *testing.T) {
	const dim = 4
	idx, _ := NewMemory(dim)

	mustAdd(t, idx, []Entry{
		{Vector: unit(dim, 0), Meta: Meta{DocumentID: "d1", ChunkIndex: 0}},
		{Vector: blend(dim, 0, 1, 1, 1), Meta: Meta{DocumentID: "d1", ChunkIndex: 1}},
		{Vector: unit(dim, 1), Meta: Meta{DocumentID: "d2", ChunkIndex: 0}},
	})

	results, err := idx.Search(context.Background(), unit(dim, 0), 2, "")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].Meta.ChunkIndex != 0 || results[0].Meta.DocumentID != "d1" {
		t.Errorf("top result = %+v, want d1 chunk 0", results[0].Meta)
	}
	if results[1].Meta.ChunkIndex != 1 {
		t.Errorf("second result = %+v, want d1 chunk 1", results[1].Meta)
	}
	if results[0].Score < results[1].Score {
		t.Errorf("scores not descending: %v then %v", results[0].Score, results[1].Score)
	}
}

func TestMemory_TieBreakByInsertionOrder(t *testing.T) {
	const dim = 4
	idx, _ := NewMemory(dim)

	// Two entries orthogonal to the query score identically (0); the one
	// inserted first must rank first.
	mustAdd(t, idx, []Entry{
		{Vector: unit(dim, 1), Meta: Meta{DocumentID: "first"}},
		{Vector: unit(dim, 2), Meta: Meta{DocumentID: "second"}},
	})

	results, err := idx.Search(context.Background(), unit(dim, 0), 2, "")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if results[0].Meta.DocumentID != "first" || results[1].Meta.DocumentID != "second" {
		t.Errorf("tie order = %s, %s; want first, second",
			results[0].Meta.DocumentID, results[1].Meta.DocumentID)
	}
}

func TestMemory_SearchIdempotent(t *testing.T) {
	const dim = 8
	idx, _ := NewMemory(dim)
	mustAdd(t, idx, []Entry{
		{Vector: unit(dim, 0), Meta: Meta{DocumentID: "a", ChunkIndex: 0}},
		{Vector: blend(dim, 0, 3, 2, 1), Meta: Meta{DocumentID: "a", ChunkIndex: 1}},
		{Vector: blend(dim, 0, 5, 1, 3), Meta: Meta{DocumentID: "b", ChunkIndex: 0}},
	})

	query := blend(dim, 0, 3, 1, 1)
	first, err := idx.Search(context.Background(), query, 3, "")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	second, err := idx.Search(context.Background(), query, 3, "")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	if len(first) != len(second) {
		t.Fatalf("result counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("result %d differs between identical queries: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestMemory_DocumentFilter(t *testing.T) {
	const dim = 4
	idx, _ := NewMemory(dim)
	mustAdd(t, idx, []Entry{
		{Vector: unit(dim, 0), Meta: Meta{DocumentID: "d1", ChunkIndex: 0}},
		{Vector: unit(dim, 0), Meta: Meta{DocumentID: "d2", ChunkIndex: 0}},
		{Vector: unit(dim, 1), Meta: Meta{DocumentID: "d2", ChunkIndex: 1}},
	})

	results, err := idx.Search(context.Background(), unit(dim, 0), 10, "d2")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	for _, r := range results {
		if r.Meta.DocumentID != "d2" {
			t.Errorf("filtered search returned entry from %s", r.Meta.DocumentID)
		}
	}
	if len(results) != 2 {
		t.Errorf("got %d results, want 2", len(results))
	}
}

func TestMemory_DimensionMismatch(t *testing.T) {
	idx, _ := NewMemory(4)

	if err := idx.Add(context.Background(), []Entry{{Vector: unit(8, 0)}}); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("Add() error = %v, want ErrDimensionMismatch", err)
	}
	if idx.Len() != 0 {
		t.Errorf("failed Add mutated the index: Len() = %d", idx.Len())
	}

	if _, err := idx.Search(context.Background(), unit(8, 0), 1, ""); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("Search() error = %v, want ErrDimensionMismatch", err)
	}
}

func TestMemory_RejectsNonUnitVectors(t *testing.T) {
	idx, _ := NewMemory(4)

	long := []float32{2, 0, 0, 0}
	err := idx.Add(context.Background(), []Entry{
		{Vector: unit(4, 0)},
		{Vector: long},
	})
	if err == nil {
		t.Fatal("Add() accepted a non-unit vector")
	}
	// Validation happens before mutation: the valid entry must not have
	// been inserted either.
	if idx.Len() != 0 {
		t.Errorf("partial batch inserted: Len() = %d, want 0", idx.Len())
	}
}

func TestMemory_EmptyIndexAndDefaultK(t *testing.T) {
	const dim = 4
	idx, _ := NewMemory(dim)

	results, err := idx.Search(context.Background(), unit(dim, 0), 0, "")
	if err != nil {
		t.Fatalf("Search() on empty index error = %v", err)
	}
	if len(results) != 0 {
		t.Errorf("empty index returned %d results", len(results))
	}

	// DefaultK caps the result count when k <= 0.
	entries := make([]Entry, DefaultK+3)
	for i := range entries {
		entries[i] = Entry{Vector: unit(dim, i%dim), Meta: Meta{ChunkIndex: i}}
	}
	mustAdd(t, idx, entries)

	results, err = idx.Search(context.Background(), unit(dim, 0), 0, "")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != DefaultK {
		t.Errorf("got %d results with k=0, want DefaultK=%d", len(results), DefaultK)
	}
}
