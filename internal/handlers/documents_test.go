package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/mock/gomock"

	"docchat/internal/docstore"
	"docchat/internal/docstore/mocks"
	"docchat/internal/rag"
	"docchat/internal/storage"
)

func TestListDocumentsHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mocks.NewMockStore(ctrl)
	store.EXPECT().List(gomock.Any()).Return(map[string]docstore.DocumentInfo{
		"doc-1": {Filename: "a.pdf", PageCount: 3},
		"doc-2": {Filename: "b.pdf", PageCount: 1},
	}, nil)

	handler := NewListDocumentsHandler(store)

	req := httptest.NewRequest(http.MethodGet, "/api/documents", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var resp map[string]DocumentSummary
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp) != 2 {
		t.Fatalf("got %d documents, want 2", len(resp))
	}
	if resp["doc-1"].Filename != "a.pdf" || resp["doc-1"].NumPages != 3 {
		t.Errorf("doc-1 = %+v", resp["doc-1"])
	}
}

func TestListDocumentsHandler_Empty(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mocks.NewMockStore(ctrl)
	store.EXPECT().List(gomock.Any()).Return(map[string]docstore.DocumentInfo{}, nil)

	handler := NewListDocumentsHandler(store)

	req := httptest.NewRequest(http.MethodGet, "/api/documents", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var resp map[string]DocumentSummary
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp) != 0 {
		t.Errorf("got %d documents, want 0", len(resp))
	}
}

// summarizeRouter mounts the handler behind chi so URL params resolve.
func summarizeRouter(handler http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Method(http.MethodPost, "/api/documents/{docID}/summarize", handler)
	return r
}

func TestSummarizeHandler_Success(t *testing.T) {
	svc := &fakeRAGService{
		summarizeResp: &rag.SummarizeResponse{
			DocID:    "doc-1",
			Filename: "paper.pdf",
			Summary:  "- key point",
			Model:    "test-model",
		},
	}
	router := summarizeRouter(NewSummarizeHandler(svc))

	req := httptest.NewRequest(http.MethodPost, "/api/documents/doc-1/summarize", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	if svc.lastDocID != "doc-1" {
		t.Errorf("docID forwarded = %q, want doc-1", svc.lastDocID)
	}
	var resp rag.SummarizeResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Summary != "- key point" || resp.Filename != "paper.pdf" {
		t.Errorf("response = %+v", resp)
	}
}

func TestSummarizeHandler_NotFound(t *testing.T) {
	svc := &fakeRAGService{summarizeErr: storage.ErrNotFound}
	router := summarizeRouter(NewSummarizeHandler(svc))

	req := httptest.NewRequest(http.MethodPost, "/api/documents/missing/summarize", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}
