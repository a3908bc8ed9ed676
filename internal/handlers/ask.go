package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"docchat/internal/contextutil"
	"docchat/internal/rag"
)

// AskHandler handles question answering over the ingested corpus.
type AskHandler struct {
	svc rag.Service
}

// NewAskHandler creates a new AskHandler.
func NewAskHandler(svc rag.Service) *AskHandler {
	return &AskHandler{svc: svc}
}

// ServeHTTP handles POST requests with a rag.AskRequest body.
func (h *AskHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req rag.AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.Question = strings.TrimSpace(req.Question)
	if req.Question == "" {
		writeError(w, http.StatusBadRequest, "Question is required")
		return
	}
	if req.K < 0 {
		writeError(w, http.StatusBadRequest, "k cannot be negative")
		return
	}

	resp, err := h.svc.Ask(r.Context(), req)
	if err != nil {
		contextutil.LoggerFromContext(r.Context()).Error("ask failed", "error", err)
		writeMappedError(w, err, "Failed to answer question")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
