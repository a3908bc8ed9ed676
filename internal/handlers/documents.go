package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"docchat/internal/contextutil"
	"docchat/internal/docstore"
	"docchat/internal/rag"
)

// DocumentSummary is the catalog view of one document in list responses.
type DocumentSummary struct {
	Filename string `json:"filename"`
	NumPages int    `json:"num_pages"`
}

// ListDocumentsHandler returns the document catalog.
type ListDocumentsHandler struct {
	store docstore.Store
}

// NewListDocumentsHandler creates a new ListDocumentsHandler.
func NewListDocumentsHandler(store docstore.Store) *ListDocumentsHandler {
	return &ListDocumentsHandler{store: store}
}

func (h *ListDocumentsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	docs, err := h.store.List(r.Context())
	if err != nil {
		contextutil.LoggerFromContext(r.Context()).Error("failed to list documents", "error", err)
		writeMappedError(w, err, "Failed to list documents")
		return
	}

	resp := make(map[string]DocumentSummary, len(docs))
	for id, info := range docs {
		resp[id] = DocumentSummary{Filename: info.Filename, NumPages: info.PageCount}
	}

	writeJSON(w, http.StatusOK, resp)
}

// SummarizeHandler produces a summary of one document.
type SummarizeHandler struct {
	svc rag.Service
}

// NewSummarizeHandler creates a new SummarizeHandler.
func NewSummarizeHandler(svc rag.Service) *SummarizeHandler {
	return &SummarizeHandler{svc: svc}
}

// ServeHTTP handles POST requests for /documents/{docID}/summarize.
func (h *SummarizeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	docID := chi.URLParam(r, "docID")
	if docID == "" {
		writeError(w, http.StatusBadRequest, "Document id is required")
		return
	}

	resp, err := h.svc.Summarize(r.Context(), docID)
	if err != nil {
		contextutil.LoggerFromContext(r.Context()).Error("summarize failed", "doc_id", docID, "error", err)
		writeMappedError(w, err, "Failed to summarize document")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
