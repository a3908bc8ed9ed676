package chunker

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		overlap int
		wantErr bool
	}{
		{name: "valid settings", size: 1000, overlap: 200, wantErr: false},
		{name: "zero size", size: 0, overlap: 0, wantErr: true},
		{name: "negative overlap", size: 100, overlap: -1, wantErr: true},
		{name: "overlap equals size", size: 100, overlap: 100, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.size, tt.overlap)
			if (err != nil) != tt.wantErr {
				t.Errorf("New(%d, %d) error = %v, wantErr %v", tt.size, tt.overlap, err, tt.wantErr)
			}
		})
	}
}

func TestChunker_ChunkPages(t *testing.T) {
	c, err := New(1000, 200)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	tests := []struct {
		name  string
		pages []string
		check func(t *testing.T, chunks []Chunk)
	}{
		{
			name:  "no pages",
			pages: nil,
			check: func(t *testing.T, chunks []Chunk) {
				if len(chunks) != 0 {
					t.Errorf("got %d chunks, want 0", len(chunks))
				}
			},
		},
		{
			name:  "all pages empty",
			pages: []string{"", "   ", "\n\n"},
			check: func(t *testing.T, chunks []Chunk) {
				if len(chunks) != 0 {
					t.Errorf("got %d chunks, want 0", len(chunks))
				}
			},
		},
		{
			name:  "page shorter than overlap still yields a chunk",
			pages: []string{"tiny"},
			check: func(t *testing.T, chunks []Chunk) {
				if len(chunks) != 1 {
					t.Fatalf("got %d chunks, want 1", len(chunks))
				}
				if chunks[0].Text != "tiny" || chunks[0].Page != 0 {
					t.Errorf("chunk = %+v", chunks[0])
				}
			},
		},
		{
			name:  "empty middle page contributes nothing",
			pages: []string{"first page text", "", "third page text"},
			check: func(t *testing.T, chunks []Chunk) {
				if len(chunks) != 2 {
					t.Fatalf("got %d chunks, want 2", len(chunks))
				}
				if chunks[0].Page != 0 || chunks[1].Page != 2 {
					t.Errorf("pages = %d, %d; want 0, 2", chunks[0].Page, chunks[1].Page)
				}
				if chunks[0].Index != 0 || chunks[1].Index != 1 {
					t.Errorf("indexes = %d, %d; want 0, 1", chunks[0].Index, chunks[1].Index)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, c.ChunkPages(tt.pages))
		})
	}
}

func TestChunker_ChunkPages_CoverageAndOverlap(t *testing.T) {
	const size, overlap = 1000, 200
	c, err := New(size, overlap)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	// Build a page of sentences long enough to need several chunks.
	var sb strings.Builder
	for i := 0; i < 200; i++ {
		sb.WriteString("The quick brown fox jumps over the lazy dog near the riverbank. ")
	}
	page := strings.TrimSpace(sb.String())

	chunks := c.ChunkPages([]string{page})
	if len(chunks) < 2 {
		t.Fatalf("got %d chunks, want at least 2", len(chunks))
	}

	for i, chunk := range chunks {
		if n := utf8.RuneCountInString(chunk.Text); n > size {
			t.Errorf("chunk[%d] is %d runes, exceeds max %d", i, n, size)
		}
	}

	// Consecutive chunks share exactly `overlap` runes, so stripping the
	// shared prefix from each successor must reconstruct the page.
	rebuilt := chunks[0].Text
	for i := 1; i < len(chunks); i++ {
		prev := []rune(chunks[i-1].Text)
		tail := string(prev[len(prev)-overlap:])
		if !strings.HasPrefix(chunks[i].Text, tail) {
			t.Fatalf("chunk[%d] does not start with the %d-rune tail of chunk[%d]", i, overlap, i-1)
		}
		rebuilt += string([]rune(chunks[i].Text)[overlap:])
	}
	if rebuilt != page {
		t.Error("reconstructed text does not match the original page")
	}
}

func TestChunker_ChunkPages_PrefersSentenceBoundaries(t *testing.T) {
	c, err := New(100, 20)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	var sb strings.Builder
	for i := 0; i < 20; i++ {
		sb.WriteString("A short sentence ends here. ")
	}
	chunks := c.ChunkPages([]string{strings.TrimSpace(sb.String())})
	if len(chunks) < 2 {
		t.Fatalf("got %d chunks, want at least 2", len(chunks))
	}

	// Every chunk except the last should end at a sentence boundary
	// rather than a hard mid-word cut.
	for i := 0; i < len(chunks)-1; i++ {
		if !strings.HasSuffix(chunks[i].Text, ". ") && !strings.HasSuffix(chunks[i].Text, ".") {
			t.Errorf("chunk[%d] ends mid-sentence: %q", i, chunks[i].Text)
		}
	}
}
