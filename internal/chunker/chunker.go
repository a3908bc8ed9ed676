package chunker

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Chunk is a bounded contiguous span of a document's text, the unit of
// embedding and retrieval.
type Chunk struct {
	Index int    // position within the document, starts at 0
	Page  int    // 0-based page the chunk starts on
	Text  string
}

var newlinePattern = regexp.MustCompile(`\r\n|\r`)

// Chunker splits page texts into overlapping segments with bounded size.
// Size and Overlap are measured in runes.
type Chunker struct {
	size    int
	overlap int
}

// New builds a chunker with validated settings.
func New(size, overlap int) (*Chunker, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunker: size must be greater than zero")
	}
	if overlap < 0 {
		return nil, fmt.Errorf("chunker: overlap cannot be negative")
	}
	if overlap >= size {
		return nil, fmt.Errorf("chunker: overlap %d must be smaller than size %d", overlap, size)
	}
	return &Chunker{size: size, overlap: overlap}, nil
}

// ChunkPages splits the per-page texts of one document into an ordered
// sequence of chunks. Chunk indexes run across the whole document; each
// chunk records the page it starts on. Empty pages contribute no chunks,
// so a document with no extractable text yields an empty slice.
func (c *Chunker) ChunkPages(pages []string) []Chunk {
	var chunks []Chunk
	index := 0
	for pageNum, page := range pages {
		text := strings.TrimSpace(newlinePattern.ReplaceAllString(page, "\n"))
		if text == "" {
			continue
		}
		for _, segment := range c.split(text) {
			chunks = append(chunks, Chunk{
				Index: index,
				Page:  pageNum,
				Text:  segment,
			})
			index++
		}
	}
	return chunks
}

// split cuts text into segments of at most c.size runes with c.overlap
// runes shared between consecutive segments. Cut points prefer paragraph,
// then line, then sentence boundaries; only boundaries past the midpoint
// of the window are taken so segments stay reasonably full.
func (c *Chunker) split(text string) []string {
	runes := []rune(text)
	if len(runes) <= c.size {
		return []string{text}
	}

	var segments []string
	start := 0
	for start < len(runes) {
		end := start + c.size
		if end >= len(runes) {
			segments = append(segments, string(runes[start:]))
			break
		}

		window := string(runes[start:end])
		cut := c.size // relative rune offset of the cut within the window
		if r := boundaryOffset(window, "\n\n"); r > c.size/2 {
			cut = r
		} else if r := boundaryOffset(window, "\n"); r > c.size/2 {
			cut = r
		} else if r := boundaryOffset(window, ". "); r > c.size/2 {
			cut = r
		}

		segments = append(segments, string(runes[start:start+cut]))
		next := start + cut - c.overlap
		if next <= start {
			// Overlap would swallow the whole segment; advance without it.
			next = start + cut
		}
		start = next
	}
	return segments
}

// boundaryOffset returns the rune offset just past the last occurrence of
// sep in window, or -1 if sep does not occur.
func boundaryOffset(window, sep string) int {
	i := strings.LastIndex(window, sep)
	if i < 0 {
		return -1
	}
	return utf8.RuneCountInString(window[:i+len(sep)])
}
