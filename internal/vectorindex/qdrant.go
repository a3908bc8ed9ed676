package vectorindex

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"

	"docchat/internal/contextutil"
)

// Qdrant is an Index backed by a Qdrant collection, for deployments that
// want the corpus to outlive the process. Selected with VECTOR_BACKEND=qdrant;
// the in-memory index remains the default.
type Qdrant struct {
	client     *qdrant.Client
	collection string
}

// NewQdrant creates a Qdrant-backed index. urlStr is the HTTP URL of the
// Qdrant instance ("http://host:port"); the gRPC port is derived from it.
func NewQdrant(urlStr, collection string) (*Qdrant, error) {
	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	host := parsedURL.Hostname()
	if host == "" {
		host = "localhost"
	}

	port := 6334 // default gRPC port
	if parsedURL.Port() != "" {
		if httpPort, err := strconv.Atoi(parsedURL.Port()); err == nil {
			// gRPC port is conventionally the HTTP port + 1.
			port = httpPort + 1
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host: host,
		Port: port,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Qdrant client: %w", err)
	}

	return &Qdrant{client: client, collection: collection}, nil
}

// EnsureCollection creates the collection if missing and validates its
// vector size when it already exists.
func (q *Qdrant) EnsureCollection(ctx context.Context, dim int) error {
	logger := contextutil.LoggerFromContext(ctx)

	exists, err := q.client.CollectionExists(ctx, q.collection)
	if err != nil {
		return fmt.Errorf("failed to check collection existence: %w", err)
	}

	if !exists {
		logger.InfoContext(ctx, "creating collection", "collection", q.collection, "dimension", dim)
		err := q.client.CreateCollection(ctx, &qdrant.CreateCollection{
			CollectionName: q.collection,
			VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
				Size:     uint64(dim),
				Distance: qdrant.Distance_Cosine,
			}),
		})
		if err != nil {
			return fmt.Errorf("failed to create collection: %w", err)
		}
		return nil
	}

	info, err := q.client.GetCollectionInfo(ctx, q.collection)
	if err != nil {
		return fmt.Errorf("failed to get collection info: %w", err)
	}
	config := info.Config
	if config == nil || config.Params == nil {
		return fmt.Errorf("collection config is invalid")
	}
	vectorsConfig := config.Params.GetVectorsConfig()
	if vectorsConfig == nil {
		return fmt.Errorf("collection vectors config is invalid")
	}
	params := vectorsConfig.GetParams()
	if params == nil {
		return fmt.Errorf("collection vector params are invalid")
	}
	if int(params.Size) != dim {
		return fmt.Errorf("collection vector size mismatch: expected %d, got %d: %w",
			dim, params.Size, ErrDimensionMismatch)
	}
	return nil
}

// Add upserts all entries as points with citation payloads.
func (q *Qdrant) Add(ctx context.Context, entries []Entry) error {
	logger := contextutil.LoggerFromContext(ctx)

	if len(entries) == 0 {
		return nil
	}

	points := make([]*qdrant.PointStruct, 0, len(entries))
	for _, e := range entries {
		points = append(points, &qdrant.PointStruct{
			Id:      qdrant.NewID(uuid.New().String()),
			Vectors: qdrant.NewVectors(e.Vector...),
			Payload: qdrant.NewValueMap(map[string]any{
				"document_id": e.Meta.DocumentID,
				"chunk_index": e.Meta.ChunkIndex,
				"page":        e.Meta.Page,
				"snippet":     e.Meta.Snippet,
			}),
		})
	}

	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.collection,
		Points:         points,
	})
	if err != nil {
		logger.ErrorContext(ctx, "failed to upsert points", "collection", q.collection, "count", len(entries), "error", err)
		return fmt.Errorf("failed to upsert points: %w", err)
	}

	logger.DebugContext(ctx, "upserted points", "collection", q.collection, "count", len(entries))
	return nil
}

// Search performs a filtered similarity query against the collection.
func (q *Qdrant) Search(ctx context.Context, query []float32, k int, documentID string) ([]Result, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if k <= 0 {
		k = DefaultK
	}

	limit := uint64(k)
	queryReq := &qdrant.QueryPoints{
		CollectionName: q.collection,
		Query:          qdrant.NewQuery(query...),
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
	}
	if documentID != "" {
		queryReq.Filter = &qdrant.Filter{
			Must: []*qdrant.Condition{
				qdrant.NewMatch("document_id", documentID),
			},
		}
	}

	scoredPoints, err := q.client.Query(ctx, queryReq)
	if err != nil {
		logger.ErrorContext(ctx, "failed to search points", "collection", q.collection, "k", k, "error", err)
		return nil, fmt.Errorf("failed to search points: %w", err)
	}

	results := make([]Result, 0, len(scoredPoints))
	for _, point := range scoredPoints {
		meta := Meta{}
		if point.Payload != nil {
			if v, ok := point.Payload["document_id"]; ok {
				meta.DocumentID = v.GetStringValue()
			}
			if v, ok := point.Payload["chunk_index"]; ok {
				meta.ChunkIndex = int(v.GetIntegerValue())
			}
			if v, ok := point.Payload["page"]; ok {
				meta.Page = int(v.GetIntegerValue())
			}
			if v, ok := point.Payload["snippet"]; ok {
				meta.Snippet = v.GetStringValue()
			}
		}
		results = append(results, Result{Meta: meta, Score: point.Score})
	}

	return results, nil
}
