package handlers

import (
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"docchat/internal/contextutil"
	"docchat/internal/docstore"
	"docchat/internal/extractor"
)

// maxUploadSize is the largest accepted upload.
const maxUploadSize = 64 << 20 // 64 MiB

// UploadHandler handles PDF uploads.
type UploadHandler struct {
	store    docstore.Store
	extract  extractor.Func
	maxBytes int64
}

// NewUploadHandler creates a new UploadHandler.
func NewUploadHandler(store docstore.Store, extract extractor.Func) *UploadHandler {
	return &UploadHandler{store: store, extract: extract, maxBytes: maxUploadSize}
}

// UploadResponse reports what an accepted upload produced.
type UploadResponse struct {
	DocID     string `json:"doc_id"`
	Filename  string `json:"filename"`
	NumPages  int    `json:"num_pages"`
	NumChunks int    `json:"num_chunks"`
}

// ServeHTTP handles POST requests carrying one PDF as multipart form data
// under the "file" field.
func (h *UploadHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	logger := contextutil.LoggerFromContext(r.Context())

	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Missing file field")
		return
	}
	defer func() {
		_ = file.Close()
	}()

	filename := filepath.Base(header.Filename)
	if !strings.EqualFold(filepath.Ext(filename), ".pdf") {
		writeError(w, http.StatusBadRequest, "Only PDF files are supported")
		return
	}

	// One byte past the limit distinguishes an oversize file from one that
	// is exactly at it.
	data, err := io.ReadAll(io.LimitReader(file, h.maxBytes+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read uploaded file")
		return
	}
	if int64(len(data)) > h.maxBytes {
		writeError(w, http.StatusRequestEntityTooLarge, "File exceeds the upload size limit")
		return
	}

	pages, err := h.extract(data)
	if err != nil {
		logger.Warn("text extraction failed", "filename", filename, "error", err)
		writeMappedError(w, err, "Failed to process upload")
		return
	}

	id := uuid.New().String()
	result, err := h.store.Ingest(r.Context(), id, filename, pages)
	if err != nil {
		logger.Error("ingestion failed", "doc_id", id, "filename", filename, "error", err)
		writeMappedError(w, err, "Failed to ingest document")
		return
	}

	writeJSON(w, http.StatusCreated, UploadResponse{
		DocID:     id,
		Filename:  filename,
		NumPages:  result.NumPages,
		NumChunks: result.NumChunks,
	})
}
