package rag

import (
	"context"
	"errors"
	"fmt"

	"docchat/internal/contextutil"
	"docchat/internal/docstore"
	"docchat/internal/llm"
)

// Canned answers for states where generation is not attempted or failed.
const (
	noDocumentsAnswer = "I don't have enough information to answer that question. Please upload relevant documents first."
	noMatchAnswer     = "I couldn't find anything relevant to that question in the uploaded documents."
	unavailableAnswer = "The answer service is temporarily unavailable. Please try again later."
)

// generator is the slice of llm.Generator the service needs.
type generator interface {
	Answer(ctx context.Context, question string, contexts []string) (*llm.Result, error)
	Summarize(ctx context.Context, text string) (*llm.Result, error)
}

// Service answers questions and summarizes documents over the ingested corpus.
type Service interface {
	// Ask retrieves the most relevant chunks and generates a grounded answer.
	Ask(ctx context.Context, req AskRequest) (*AskResponse, error)
	// Summarize produces a summary of one document's full text.
	Summarize(ctx context.Context, documentID string) (*SummarizeResponse, error)
}

type service struct {
	store docstore.Store
	gen   generator
	topK  int
}

// NewService creates the retrieval-then-generate Service. topK is the
// retrieval depth used when a request does not set its own.
func NewService(store docstore.Store, gen generator, topK int) Service {
	return &service{store: store, gen: gen, topK: topK}
}

func (s *service) Ask(ctx context.Context, req AskRequest) (*AskResponse, error) {
	logger := contextutil.LoggerFromContext(ctx)

	// With an empty corpus there is nothing to retrieve; answer without
	// spending an embedding or generation call.
	count, err := s.store.CountDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count documents: %w", err)
	}
	if count == 0 {
		return &AskResponse{Answer: noDocumentsAnswer}, nil
	}

	k := req.K
	if k <= 0 {
		k = s.topK
	}
	results, err := s.store.Search(ctx, req.Question, k, req.DocumentID)
	if err != nil {
		return nil, fmt.Errorf("retrieval failed: %w", err)
	}

	var contexts []string
	var sources []Source
	kept := results[:0]
	for _, r := range results {
		text, err := s.store.GetChunk(ctx, r.Meta.DocumentID, r.Meta.ChunkIndex)
		if err != nil {
			// Indexed but never cataloged, from an ingest that failed after
			// indexing. Skip it rather than cite content we cannot show.
			logger.Warn("skipping unresolvable index entry",
				"doc_id", r.Meta.DocumentID, "chunk_index", r.Meta.ChunkIndex, "error", err)
			continue
		}
		contexts = append(contexts, text)
		kept = append(kept, r)
	}

	if len(contexts) == 0 {
		return &AskResponse{Answer: noMatchAnswer}, nil
	}

	result, err := s.gen.Answer(ctx, req.Question, contexts)
	if err != nil {
		if errors.Is(err, llm.ErrGenerationUnavailable) {
			logger.Error("all generation candidates failed", "error", err)
			return &AskResponse{Answer: unavailableAnswer}, nil
		}
		return nil, fmt.Errorf("generation failed: %w", err)
	}

	resp := &AskResponse{Answer: result.Text, Model: result.Model}
	if req.IncludeSources {
		docs, err := s.store.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve source filenames: %w", err)
		}
		for _, r := range kept {
			name := r.Meta.DocumentID
			if info, ok := docs[r.Meta.DocumentID]; ok {
				name = info.Filename
			}
			sources = append(sources, Source{
				Source:  name,
				Page:    r.Meta.Page + 1,
				Snippet: r.Meta.Snippet,
			})
		}
		resp.Sources = sources
	}
	return resp, nil
}

func (s *service) Summarize(ctx context.Context, documentID string) (*SummarizeResponse, error) {
	info, err := s.store.GetDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}

	text, err := s.store.GetFullText(ctx, documentID)
	if err != nil {
		return nil, err
	}

	result, err := s.gen.Summarize(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("summarization failed: %w", err)
	}

	return &SummarizeResponse{
		DocID:    documentID,
		Filename: info.Filename,
		Summary:  result.Text,
		Model:    result.Model,
	}, nil
}
