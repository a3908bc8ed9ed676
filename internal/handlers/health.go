package handlers

import (
	"net/http"
	"time"

	"docchat/internal/docstore"
)

// HealthHandler reports service status and the active pipeline strategy.
type HealthHandler struct {
	store         docstore.Store
	embedderName  string
	vectorBackend string
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(store docstore.Store, embedderName, vectorBackend string) *HealthHandler {
	return &HealthHandler{
		store:         store,
		embedderName:  embedderName,
		vectorBackend: vectorBackend,
	}
}

// HealthResponse is the health check reply.
type HealthResponse struct {
	Status        string `json:"status"`
	Timestamp     string `json:"timestamp"`
	Documents     int    `json:"documents"`
	Embedder      string `json:"embedder"`
	VectorBackend string `json:"vector_backend"`
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	status := "healthy"
	count, err := h.store.CountDocuments(r.Context())
	if err != nil {
		status = "degraded"
	}

	writeJSON(w, http.StatusOK, HealthResponse{
		Status:        status,
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		Documents:     count,
		Embedder:      h.embedderName,
		VectorBackend: h.vectorBackend,
	})
}
