package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"docchat/internal/docstore"
	"docchat/internal/embedder"
	"docchat/internal/extractor"
	"docchat/internal/llm"
	"docchat/internal/storage"
)

// ErrorResponse is the JSON body of every error reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: message})
}

// writeJSON writes a JSON response body.
func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(v)
}

// writeMappedError translates pipeline sentinel errors to HTTP statuses.
func writeMappedError(w http.ResponseWriter, err error, defaultMsg string) {
	switch {
	case errors.Is(err, extractor.ErrExtractionFailed):
		writeError(w, http.StatusBadRequest, "Failed to extract text from PDF")
	case errors.Is(err, docstore.ErrEmptyDocument):
		writeError(w, http.StatusBadRequest, "Document contains no extractable text")
	case errors.Is(err, docstore.ErrDuplicateDocument):
		writeError(w, http.StatusConflict, "Document already ingested")
	case errors.Is(err, docstore.ErrAlreadyIngesting):
		writeError(w, http.StatusConflict, "Document ingestion already in progress")
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, "Document not found")
	case errors.Is(err, embedder.ErrProviderUnavailable):
		writeError(w, http.StatusBadGateway, "Embedding provider unavailable")
	case errors.Is(err, llm.ErrGenerationUnavailable):
		writeError(w, http.StatusBadGateway, "Generation service unavailable")
	default:
		writeError(w, http.StatusInternalServerError, defaultMsg)
	}
}
