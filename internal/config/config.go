package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
// Provider credentials and the ranked model list are read once at startup
// and treated as read-only afterwards.
type Config struct {
	ProviderAPIKey  string
	ProviderBaseURL string
	ModelCandidates []string
	EmbeddingModel  string
	EmbeddingDim    int
	FallbackDim     int

	ChunkSize    int
	ChunkOverlap int
	TopK         int

	SummaryContextBudget int
	EmbedTimeout         time.Duration
	GenerateTimeout      time.Duration

	DBPath           string
	VectorBackend    string
	QdrantURL        string
	QdrantCollection string

	APIPort   string
	LogLevel  slog.Level
	LogFormat string
}

// Load reads configuration from environment variables and returns a Config.
// It applies defaults for optional fields and validates the rest.
// If a .env file exists in the current directory or a parent, it is loaded
// first; environment variables already set take precedence.
func Load() (*Config, error) {
	_ = godotenv.Load()

	// Walk up from the working directory looking for a project-root .env.
	if wd, err := os.Getwd(); err == nil {
		dir := wd
		for i := 0; i < 5; i++ {
			envPath := filepath.Join(dir, ".env")
			if _, err := os.Stat(envPath); err == nil {
				_ = godotenv.Load(envPath)
				break
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}

	cfg := &Config{
		ProviderAPIKey:  getEnv("PROVIDER_API_KEY", ""),
		ProviderBaseURL: getEnv("PROVIDER_BASE_URL", "https://api.groq.com/openai/v1"),
		EmbeddingModel:  getEnv("EMBEDDING_MODEL", "text-embedding-3-small"),

		DBPath:           getEnv("DB_PATH", "./data/docchat.db"),
		VectorBackend:    strings.ToLower(getEnv("VECTOR_BACKEND", "memory")),
		QdrantURL:        getEnv("QDRANT_URL", "http://localhost:6333"),
		QdrantCollection: getEnv("QDRANT_COLLECTION", "chunks"),

		APIPort:   getEnv("API_PORT", "9000"),
		LogFormat: strings.ToLower(getEnv("LOG_FORMAT", "text")),
	}

	// Ranked candidate list, primary first. The defaults mirror the models
	// the default provider endpoint actually serves.
	models := getEnv("MODEL_CANDIDATES", "llama-3.1-8b-instant,llama-3.3-70b-versatile,mixtral-8x7b-32768")
	for _, m := range strings.Split(models, ",") {
		if m = strings.TrimSpace(m); m != "" {
			cfg.ModelCandidates = append(cfg.ModelCandidates, m)
		}
	}
	if len(cfg.ModelCandidates) == 0 {
		return nil, fmt.Errorf("MODEL_CANDIDATES must name at least one model")
	}

	var err error
	if cfg.EmbeddingDim, err = getEnvInt("EMBEDDING_DIM", 1536); err != nil {
		return nil, err
	}
	if cfg.FallbackDim, err = getEnvInt("FALLBACK_DIM", 384); err != nil {
		return nil, err
	}
	if cfg.ChunkSize, err = getEnvInt("CHUNK_SIZE", 1000); err != nil {
		return nil, err
	}
	if cfg.ChunkOverlap, err = getEnvInt("CHUNK_OVERLAP", 200); err != nil {
		return nil, err
	}
	if cfg.TopK, err = getEnvInt("TOP_K", 4); err != nil {
		return nil, err
	}
	if cfg.SummaryContextBudget, err = getEnvInt("SUMMARY_CONTEXT_BUDGET", 12000); err != nil {
		return nil, err
	}
	if cfg.EmbeddingDim <= 0 || cfg.FallbackDim <= 0 {
		return nil, fmt.Errorf("embedding dimensions must be greater than 0")
	}
	if cfg.ChunkSize <= 0 {
		return nil, fmt.Errorf("CHUNK_SIZE must be greater than 0")
	}
	if cfg.ChunkOverlap < 0 || cfg.ChunkOverlap >= cfg.ChunkSize {
		return nil, fmt.Errorf("CHUNK_OVERLAP must be in [0, CHUNK_SIZE)")
	}
	if cfg.TopK <= 0 {
		return nil, fmt.Errorf("TOP_K must be greater than 0")
	}
	if cfg.SummaryContextBudget <= 0 {
		return nil, fmt.Errorf("SUMMARY_CONTEXT_BUDGET must be greater than 0")
	}

	if cfg.EmbedTimeout, err = getEnvDuration("EMBED_TIMEOUT", 15*time.Second); err != nil {
		return nil, err
	}
	if cfg.GenerateTimeout, err = getEnvDuration("GENERATE_TIMEOUT", 60*time.Second); err != nil {
		return nil, err
	}

	switch cfg.VectorBackend {
	case "memory", "qdrant":
	default:
		return nil, fmt.Errorf("VECTOR_BACKEND must be \"memory\" or \"qdrant\", got %q", cfg.VectorBackend)
	}

	switch level := strings.ToLower(getEnv("LOG_LEVEL", "info")); level {
	case "debug":
		cfg.LogLevel = slog.LevelDebug
	case "info":
		cfg.LogLevel = slog.LevelInfo
	case "warn":
		cfg.LogLevel = slog.LevelWarn
	case "error":
		cfg.LogLevel = slog.LevelError
	default:
		return nil, fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error; got %q", level)
	}

	// Create the data directory for the catalog database if needed.
	dataDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return cfg, nil
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer: %w", key, err)
	}
	return n, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid duration: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive", key)
	}
	return d, nil
}
