package main

import (
	"context"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"

	"docchat/internal/chunker"
	"docchat/internal/config"
	"docchat/internal/docstore"
	"docchat/internal/embedder"
	"docchat/internal/extractor"
	"docchat/internal/http"
	"docchat/internal/llm"
	"docchat/internal/rag"
	"docchat/internal/storage"
	"docchat/internal/vectorindex"
)

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Configure structured logging with configurable level and format
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)

	// Initialize database
	db, err := storage.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	if err := storage.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	slog.Info("Database initialized", "path", cfg.DBPath)

	docRepo := storage.NewDocumentRepo(db)
	chunkRepo := storage.NewChunkRepo(db)

	ctx := context.Background()

	// Pick the embedding strategy for this session. The choice fixes the
	// vector dimensionality, so it happens before the index is created.
	emb := embedder.Select(ctx, embedder.Config{
		APIKey:      cfg.ProviderAPIKey,
		BaseURL:     cfg.ProviderBaseURL,
		Model:       cfg.EmbeddingModel,
		Dimension:   cfg.EmbeddingDim,
		FallbackDim: cfg.FallbackDim,
		Timeout:     cfg.EmbedTimeout,
	}, logger)
	slog.Info("Embedder selected", "name", emb.Name(), "dimension", emb.Dimension())

	var index vectorindex.Index
	switch cfg.VectorBackend {
	case "qdrant":
		qdrantIndex, err := vectorindex.NewQdrant(cfg.QdrantURL, cfg.QdrantCollection)
		if err != nil {
			log.Fatalf("Failed to create Qdrant client: %v", err)
		}
		if err := qdrantIndex.EnsureCollection(ctx, emb.Dimension()); err != nil {
			log.Fatalf("Failed to ensure Qdrant collection: %v", err)
		}
		slog.Info("Qdrant collection ready", "collection", cfg.QdrantCollection, "vector_size", emb.Dimension())
		index = qdrantIndex
	default:
		memIndex, err := vectorindex.NewMemory(emb.Dimension())
		if err != nil {
			log.Fatalf("Failed to create vector index: %v", err)
		}
		index = memIndex
	}

	ch, err := chunker.New(cfg.ChunkSize, cfg.ChunkOverlap)
	if err != nil {
		log.Fatalf("Failed to create chunker: %v", err)
	}

	store := docstore.New(ch, emb, index, docRepo, chunkRepo)

	// Qdrant keeps its own vectors across restarts; the in-memory index
	// starts empty and is refilled from the catalog so documents ingested
	// by a previous process stay searchable.
	if cfg.VectorBackend != "qdrant" {
		restored, err := store.RebuildIndex(ctx)
		if err != nil {
			log.Fatalf("Failed to rebuild vector index: %v", err)
		}
		slog.Info("Vector index rebuilt from catalog", "documents", restored)
	}

	// Create LLM client and generator with ranked model fallback
	llmClient := llm.NewClient(cfg.ProviderBaseURL, cfg.ProviderAPIKey, cfg.GenerateTimeout)
	generator := llm.NewGenerator(llmClient, cfg.ModelCandidates, cfg.SummaryContextBudget)

	ragService := rag.NewService(store, generator, cfg.TopK)
	slog.Info("RAG service initialized", "models", cfg.ModelCandidates)

	deps := &http.Deps{
		Store:         store,
		RAG:           ragService,
		Extract:       extractor.ExtractPages,
		EmbedderName:  emb.Name(),
		VectorBackend: cfg.VectorBackend,
	}
	router := http.NewRouter(deps)

	addr := ":" + cfg.APIPort
	slog.Info("Starting API server", "addr", addr)
	if err := nethttp.ListenAndServe(addr, router); err != nil {
		log.Fatalf("API server failed to start: %v", err)
	}
}
