package docstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"docchat/internal/chunker"
	"docchat/internal/contextutil"
	"docchat/internal/embedder"
	"docchat/internal/storage"
	"docchat/internal/vectorindex"
)

var (
	// ErrEmptyDocument is returned when a document yields no extractable text.
	ErrEmptyDocument = errors.New("document contains no extractable text")

	// ErrDuplicateDocument is returned when a document id is already in the catalog.
	ErrDuplicateDocument = errors.New("document already ingested")

	// ErrAlreadyIngesting is returned when an ingest for the same document id
	// is still in flight.
	ErrAlreadyIngesting = errors.New("document ingestion already in progress")
)

// snippetLen bounds the citation snippet stored in the vector index, in runes.
const snippetLen = 200

// DocumentInfo is the catalog view of one ingested document.
type DocumentInfo struct {
	Filename  string
	PageCount int
	CreatedAt time.Time
}

// IngestResult reports what an ingest produced.
type IngestResult struct {
	NumPages  int
	NumChunks int
}

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_store.go -package=mocks docchat/internal/docstore Store

// Store owns the ingestion pipeline and read access to ingested content.
// Ingestion is all-or-nothing per document: the catalog never holds a
// partially ingested document.
type Store interface {
	// Ingest chunks, embeds, indexes and catalogs one document's pages.
	Ingest(ctx context.Context, id, filename string, pages []string) (*IngestResult, error)

	// GetDocument returns catalog info for one document.
	GetDocument(ctx context.Context, id string) (*DocumentInfo, error)

	// List returns catalog info for all documents, keyed by document id.
	List(ctx context.Context) (map[string]DocumentInfo, error)

	// GetFullText returns the document's chunks joined in original order.
	GetFullText(ctx context.Context, id string) (string, error)

	// GetChunk returns the full text of one chunk.
	GetChunk(ctx context.Context, id string, chunkIndex int) (string, error)

	// Search embeds the query and returns the nearest chunks, corpus-wide
	// when documentID is empty.
	Search(ctx context.Context, query string, k int, documentID string) ([]vectorindex.Result, error)

	// CountDocuments returns the number of documents in the catalog.
	CountDocuments(ctx context.Context) (int, error)

	// RebuildIndex repopulates the vector index from embeddings stored in
	// the catalog, so documents ingested by a previous process stay
	// searchable. Documents whose stored vectors no longer fit the index
	// dimension are dropped from the catalog and must be uploaded again.
	// Returns the number of documents restored.
	RebuildIndex(ctx context.Context) (int, error)
}

type store struct {
	chunker  *chunker.Chunker
	embedder embedder.Embedder
	index    vectorindex.Index
	docs     *storage.DocumentRepo
	chunks   *storage.ChunkRepo

	mu       sync.Mutex
	inflight map[string]struct{}
}

// New creates a Store wired to the given pipeline components.
func New(ch *chunker.Chunker, emb embedder.Embedder, idx vectorindex.Index, docs *storage.DocumentRepo, chunks *storage.ChunkRepo) Store {
	return &store{
		chunker:  ch,
		embedder: emb,
		index:    idx,
		docs:     docs,
		chunks:   chunks,
		inflight: make(map[string]struct{}),
	}
}

func (s *store) Ingest(ctx context.Context, id, filename string, pages []string) (*IngestResult, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if err := s.begin(ctx, id); err != nil {
		return nil, err
	}
	defer s.finish(id)

	chunks := s.chunker.ChunkPages(pages)
	if len(chunks) == 0 {
		return nil, ErrEmptyDocument
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	// Embedding happens before anything is committed, so a provider failure
	// leaves no trace of the document.
	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to embed document %s: %w", id, err)
	}

	entries := make([]vectorindex.Entry, len(chunks))
	records := make([]storage.ChunkRecord, len(chunks))
	for i, c := range chunks {
		entries[i] = vectorindex.Entry{
			Vector: vectors[i],
			Meta: vectorindex.Meta{
				DocumentID: id,
				ChunkIndex: c.Index,
				Page:       c.Page,
				Snippet:    snippet(c.Text),
			},
		}
		records[i] = storage.ChunkRecord{
			DocumentID: id,
			ChunkIndex: c.Index,
			Page:       c.Page,
			Text:       c.Text,
			Embedding:  vectors[i],
		}
	}

	if err := s.index.Add(ctx, entries); err != nil {
		return nil, fmt.Errorf("failed to index document %s: %w", id, err)
	}

	doc := &storage.DocumentRecord{
		ID:        id,
		Filename:  filename,
		PageCount: len(pages),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.docs.Create(ctx, doc, records); err != nil {
		// Index entries from this ingest become unreachable: reads resolve
		// chunk text through the catalog, which never saw this document.
		return nil, fmt.Errorf("failed to store document %s: %w", id, err)
	}

	logger.Info("document ingested",
		"doc_id", id,
		"filename", filename,
		"num_pages", len(pages),
		"num_chunks", len(chunks),
	)

	return &IngestResult{NumPages: len(pages), NumChunks: len(chunks)}, nil
}

// begin claims the document id for ingestion, rejecting duplicates and
// concurrent ingests of the same id.
func (s *store) begin(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, busy := s.inflight[id]; busy {
		return ErrAlreadyIngesting
	}

	exists, err := s.docs.Exists(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check document %s: %w", id, err)
	}
	if exists {
		return ErrDuplicateDocument
	}

	s.inflight[id] = struct{}{}
	return nil
}

func (s *store) finish(id string) {
	s.mu.Lock()
	delete(s.inflight, id)
	s.mu.Unlock()
}

func (s *store) GetDocument(ctx context.Context, id string) (*DocumentInfo, error) {
	doc, err := s.docs.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &DocumentInfo{
		Filename:  doc.Filename,
		PageCount: doc.PageCount,
		CreatedAt: doc.CreatedAt,
	}, nil
}

func (s *store) List(ctx context.Context) (map[string]DocumentInfo, error) {
	docs, err := s.docs.List(ctx)
	if err != nil {
		return nil, err
	}
	infos := make(map[string]DocumentInfo, len(docs))
	for _, doc := range docs {
		infos[doc.ID] = DocumentInfo{
			Filename:  doc.Filename,
			PageCount: doc.PageCount,
			CreatedAt: doc.CreatedAt,
		}
	}
	return infos, nil
}

func (s *store) GetFullText(ctx context.Context, id string) (string, error) {
	if _, err := s.docs.Get(ctx, id); err != nil {
		return "", err
	}
	chunks, err := s.chunks.ListByDocument(ctx, id)
	if err != nil {
		return "", err
	}
	parts := make([]string, len(chunks))
	for i, c := range chunks {
		parts[i] = c.Text
	}
	return strings.Join(parts, "\n\n"), nil
}

func (s *store) GetChunk(ctx context.Context, id string, chunkIndex int) (string, error) {
	chunk, err := s.chunks.Get(ctx, id, chunkIndex)
	if err != nil {
		return "", err
	}
	return chunk.Text, nil
}

func (s *store) Search(ctx context.Context, query string, k int, documentID string) ([]vectorindex.Result, error) {
	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	results, err := s.index.Search(ctx, vec, k, documentID)
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (s *store) CountDocuments(ctx context.Context) (int, error) {
	return s.docs.Count(ctx)
}

func (s *store) RebuildIndex(ctx context.Context) (int, error) {
	logger := contextutil.LoggerFromContext(ctx)

	docs, err := s.docs.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list documents: %w", err)
	}

	restored := 0
	for _, doc := range docs {
		records, err := s.chunks.ListByDocument(ctx, doc.ID)
		if err != nil {
			return restored, fmt.Errorf("failed to load chunks for document %s: %w", doc.ID, err)
		}

		entries := make([]vectorindex.Entry, len(records))
		for i, rec := range records {
			entries[i] = vectorindex.Entry{
				Vector: rec.Embedding,
				Meta: vectorindex.Meta{
					DocumentID: rec.DocumentID,
					ChunkIndex: rec.ChunkIndex,
					Page:       rec.Page,
					Snippet:    snippet(rec.Text),
				},
			}
		}

		if err := s.index.Add(ctx, entries); err != nil {
			if errors.Is(err, vectorindex.ErrDimensionMismatch) {
				// The embedding strategy changed between sessions. A document
				// that cannot be indexed must not stay visible in the catalog.
				logger.Warn("dropping document with stale embeddings",
					"doc_id", doc.ID,
					"filename", doc.Filename,
				)
				if err := s.docs.Delete(ctx, doc.ID); err != nil {
					return restored, fmt.Errorf("failed to drop document %s: %w", doc.ID, err)
				}
				continue
			}
			return restored, fmt.Errorf("failed to index document %s: %w", doc.ID, err)
		}
		restored++
	}

	return restored, nil
}

// snippet truncates text to the citation snippet length without splitting
// a rune.
func snippet(text string) string {
	runes := []rune(text)
	if len(runes) <= snippetLen {
		return text
	}
	return string(runes[:snippetLen])
}
