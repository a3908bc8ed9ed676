package embedder

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// ErrProviderUnavailable is returned when the external embedding provider
// keeps failing after the capped retries.
var ErrProviderUnavailable = errors.New("embedding provider unavailable")

// Embedder maps text to a fixed-dimension unit-normalized vector.
// Output is deterministic for identical input; the dimensionality is fixed
// for the lifetime of the embedder. A process picks one embedder at startup
// and never mixes strategies within one index, since mixed dimensionality
// or semantics would corrupt similarity comparisons.
type Embedder interface {
	// Embed returns the embedding for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)
	// EmbedBatch returns one embedding per input text, in input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	// Dimension returns the fixed output dimensionality.
	Dimension() int
	// Name identifies the strategy (for logging and health reporting).
	Name() string
}

// Config holds the provider settings needed to choose and build an embedder.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Dimension   int
	FallbackDim int
	Timeout     time.Duration
}

// Select picks the embedding strategy for this session. It probes the
// external provider once; if the probe fails after retries (or no API key
// is configured), the deterministic hashing fallback is used for the whole
// session so the system stays usable with degraded relevance. The choice
// is final: switching mid-session would invalidate stored vectors.
func Select(ctx context.Context, cfg Config, logger *slog.Logger) Embedder {
	if cfg.APIKey == "" {
		logger.Warn("no provider API key configured, using hashing embedder for this session")
		return NewHashing(cfg.FallbackDim)
	}

	primary := NewOpenAI(cfg.BaseURL, cfg.APIKey, cfg.Model, cfg.Dimension, cfg.Timeout)
	if _, err := primary.Embed(ctx, "connectivity probe"); err != nil {
		logger.Warn("embedding provider probe failed, using hashing embedder for this session",
			"error", err, "model", cfg.Model)
		return NewHashing(cfg.FallbackDim)
	}

	logger.Info("embedding provider ready", "model", cfg.Model, "dimension", cfg.Dimension)
	return primary
}
