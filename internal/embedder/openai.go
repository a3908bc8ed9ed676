package embedder

import (
	"context"
	"fmt"
	"math"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIEmbedder calls an OpenAI-compatible embeddings endpoint.
// Transient failures are retried a small fixed number of times with
// exponential backoff before ErrProviderUnavailable is surfaced.
type OpenAIEmbedder struct {
	Model         string
	ExpectedDim   int
	Timeout       time.Duration
	RetryAttempts int
	RetryBackoff  time.Duration

	client *openai.Client
}

// NewOpenAI creates an embedder backed by the provider at baseURL.
func NewOpenAI(baseURL, apiKey, model string, dim int, timeout time.Duration) *OpenAIEmbedder {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIEmbedder{
		Model:         model,
		ExpectedDim:   dim,
		Timeout:       timeout,
		RetryAttempts: 3,
		RetryBackoff:  500 * time.Millisecond,
		client:        openai.NewClientWithConfig(cfg),
	}
}

// Embed returns the unit-normalized embedding for one text.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch embeds all texts in a single provider request, retrying the
// whole request on failure.
func (e *OpenAIEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("empty input")
	}

	var lastErr error
	backoff := e.RetryBackoff
	for attempt := 0; attempt < e.RetryAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		vecs, err := e.request(ctx, texts)
		if err == nil {
			return vecs, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}

	return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, lastErr)
}

func (e *OpenAIEmbedder) request(ctx context.Context, texts []string) ([][]float32, error) {
	callCtx, cancel := context.WithTimeout(ctx, e.Timeout)
	defer cancel()

	resp, err := e.client.CreateEmbeddings(callCtx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(e.Model),
		Input: texts,
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(resp.Data))
	}

	result := make([][]float32, len(resp.Data))
	for i, data := range resp.Data {
		if len(data.Embedding) != e.ExpectedDim {
			return nil, fmt.Errorf("embedding %d has dimension %d, expected %d", i, len(data.Embedding), e.ExpectedDim)
		}
		vec := make([]float32, len(data.Embedding))
		for j, v := range data.Embedding {
			vec[j] = float32(v)
		}
		normalize(vec)
		result[i] = vec
	}
	return result, nil
}

// Dimension returns the fixed output dimensionality.
func (e *OpenAIEmbedder) Dimension() int { return e.ExpectedDim }

// Name identifies the strategy.
func (e *OpenAIEmbedder) Name() string { return "openai:" + e.Model }

// normalize scales v to unit L2 length in place.
func normalize(v []float32) {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return
	}
	inv := float32(1 / math.Sqrt(sum))
	for i := range v {
		v[i] *= inv
	}
}
