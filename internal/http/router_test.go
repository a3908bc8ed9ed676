package http

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"docchat/internal/docstore"
	"docchat/internal/docstore/mocks"
	"docchat/internal/rag"

	"go.uber.org/mock/gomock"
)

type stubRAGService struct{}

func (stubRAGService) Ask(ctx context.Context, req rag.AskRequest) (*rag.AskResponse, error) {
	return &rag.AskResponse{Answer: "stub answer"}, nil
}

func (stubRAGService) Summarize(ctx context.Context, documentID string) (*rag.SummarizeResponse, error) {
	return &rag.SummarizeResponse{DocID: documentID, Summary: "stub summary"}, nil
}

func testRouter(t *testing.T) (http.Handler, *mocks.MockStore) {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	store := mocks.NewMockStore(ctrl)
	router := NewRouter(&Deps{
		Store: store,
		RAG:   stubRAGService{},
		Extract: func(data []byte) ([]string, error) {
			return []string{"page text"}, nil
		},
		EmbedderName:  "hashing",
		VectorBackend: "memory",
	})
	return router, store
}

func TestRouter_Routes(t *testing.T) {
	router, store := testRouter(t)
	store.EXPECT().CountDocuments(gomock.Any()).Return(0, nil).AnyTimes()
	store.EXPECT().List(gomock.Any()).Return(map[string]docstore.DocumentInfo{}, nil).AnyTimes()

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
	}{
		{"health", http.MethodGet, "/api/health", "", http.StatusOK},
		{"upload without multipart body", http.MethodPost, "/api/documents/upload", "", http.StatusBadRequest},
		{"list documents", http.MethodGet, "/api/documents", "", http.StatusOK},
		{"summarize", http.MethodPost, "/api/documents/doc-1/summarize", "", http.StatusOK},
		{"unknown route", http.MethodGet, "/api/nope", "", http.StatusNotFound},
		{"wrong method on ask", http.MethodGet, "/api/ask", "", http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, bytes.NewReader([]byte(tt.body)))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("%s %s: status = %d, want %d", tt.method, tt.path, rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestRouter_AskRoute(t *testing.T) {
	router, store := testRouter(t)
	store.EXPECT().CountDocuments(gomock.Any()).Return(1, nil).AnyTimes()

	body := []byte(`{"question": "what is this about?"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/ask", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body %s", rec.Code, http.StatusOK, rec.Body.String())
	}
}

func TestRouter_CORSPreflight(t *testing.T) {
	router, _ := testRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/ask", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNoContent)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
}
