package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"docchat/internal/docstore"
	"docchat/internal/extractor"
	"docchat/internal/handlers"
	"docchat/internal/rag"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	Store         docstore.Store
	RAG           rag.Service
	Extract       extractor.Func
	EmbedderName  string
	VectorBackend string
}

// NewRouter creates the HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(LoggerMiddleware)
	r.Use(CORS)

	upload := handlers.NewUploadHandler(deps.Store, deps.Extract)
	list := handlers.NewListDocumentsHandler(deps.Store)
	summarize := handlers.NewSummarizeHandler(deps.RAG)
	ask := handlers.NewAskHandler(deps.RAG)
	health := handlers.NewHealthHandler(deps.Store, deps.EmbedderName, deps.VectorBackend)

	r.Route("/api", func(r chi.Router) {
		r.Method(http.MethodPost, "/documents/upload", upload)
		r.Method(http.MethodGet, "/documents", list)
		r.Method(http.MethodPost, "/documents/{docID}/summarize", summarize)
		r.Method(http.MethodPost, "/ask", ask)
		r.Method(http.MethodGet, "/health", health)
	})

	return r
}
