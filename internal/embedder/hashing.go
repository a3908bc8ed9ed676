package embedder

import (
	"context"
	"hash/fnv"
	"regexp"
	"strings"
)

// HashingEmbedder is the self-contained degraded-mode strategy: a hashed
// bag-of-terms projected onto a fixed dimensionality and unit-normalized.
// It needs no external provider and is fully deterministic, so the system
// keeps working (with degraded relevance) when the provider is down.
type HashingEmbedder struct {
	dim          int
	tokenPattern *regexp.Regexp
	stopwords    map[string]struct{}
}

// NewHashing creates a hashing embedder with the given dimensionality.
func NewHashing(dim int) *HashingEmbedder {
	return &HashingEmbedder{
		dim:          dim,
		tokenPattern: regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*|\p{N}+`),
		stopwords:    defaultStopwords(),
	}
}

// Embed projects the text's term frequencies into the fixed-size vector.
// Each term is FNV-hashed to a bucket; a second hash bit picks the sign so
// colliding terms partially cancel instead of always reinforcing.
func (e *HashingEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, e.dim)
	for _, token := range e.tokenize(text) {
		h := fnv.New64a()
		_, _ = h.Write([]byte(token))
		sum := h.Sum64()
		bucket := int(sum % uint64(e.dim))
		sign := float32(1)
		if (sum>>32)&1 == 1 {
			sign = -1
		}
		vec[bucket] += sign
	}

	normalize(vec)
	if isZero(vec) {
		// No usable terms (e.g. all stopwords). Keep the unit-length
		// invariant with a fixed degenerate direction.
		vec[0] = 1
	}
	return vec, nil
}

// EmbedBatch embeds each text independently.
func (e *HashingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	result := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := e.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		result[i] = vec
	}
	return result, nil
}

// Dimension returns the fixed output dimensionality.
func (e *HashingEmbedder) Dimension() int { return e.dim }

// Name identifies the strategy.
func (e *HashingEmbedder) Name() string { return "hashing" }

func (e *HashingEmbedder) tokenize(text string) []string {
	raw := e.tokenPattern.FindAllString(strings.ToLower(text), -1)
	out := raw[:0]
	for _, t := range raw {
		if _, isStop := e.stopwords[t]; isStop {
			continue
		}
		out = append(out, t)
	}
	return out
}

func isZero(v []float32) bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in",
		"on", "at", "by", "with", "as", "is", "are", "was", "were", "be", "been", "being",
		"it", "this", "that", "these", "those", "from", "up", "down", "over", "under",
		"than", "so", "such", "into", "about", "between", "through", "during", "before",
		"after", "above", "below", "out", "off", "own", "same", "too", "very", "can",
		"will", "just", "should", "now",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
