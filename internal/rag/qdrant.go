package rag

import (
	"context"
	"fmt"
	"math"

	"github.com/qdrant/go-client/qdrant"

	"github.com/54b3r/legalqa-go/internal/corpus"
)

// sparseVectorName is the named sparse vector every point carries.
const sparseVectorName = "tfidf"

// QdrantConfig holds connection parameters for a Qdrant instance.
type QdrantConfig struct {
	// Host is the Qdrant server hostname (default: localhost).
	Host string

	// Port is the Qdrant gRPC port (default: 6334).
	Port int

	// Collection is the collection the corpus is mirrored into
	// (default: legalqa_tfidf). It is recreated on every start.
	Collection string

	// APIKey is the optional Qdrant API key for authenticated clusters.
	APIKey string

	// UseTLS enables TLS for the gRPC connection.
	UseTLS bool
}

// QdrantRetriever implements Retriever on top of Qdrant sparse vectors. The
// TF-IDF statistics are still computed locally; Qdrant stores the normalised
// document vectors and ranks by dot product, which on unit vectors is the
// cosine similarity.
type QdrantRetriever struct {
	// client is the underlying Qdrant gRPC client.
	client *qdrant.Client

	// cfg holds the resolved configuration.
	cfg *QdrantConfig

	// index supplies the vocabulary ids used to encode queries.
	index *Index

	// docs is the number of points pushed at startup.
	docs int

	// defaultTopK is the number of results to return when the caller passes 0.
	defaultTopK int
}

// NewQdrantRetriever indexes the corpus, recreates the target collection and
// upserts one point per document.
func NewQdrantRetriever(ctx context.Context, c *corpus.Corpus, cfg *QdrantConfig, defaultTopK int) (*QdrantRetriever, error) {
	if c == nil {
		return nil, fmt.Errorf("rag: corpus must not be nil")
	}
	if cfg == nil {
		cfg = &QdrantConfig{}
	}
	if cfg.Host == "" {
		cfg.Host = "localhost"
	}
	if cfg.Port == 0 {
		cfg.Port = 6334
	}
	if cfg.Collection == "" {
		cfg.Collection = "legalqa_tfidf"
	}
	if defaultTopK <= 0 {
		defaultTopK = DefaultTopK
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant: failed to create client: %w", err)
	}

	r := &QdrantRetriever{
		client:      client,
		cfg:         cfg,
		index:       NewIndex(c.Texts()),
		docs:        c.Len(),
		defaultTopK: defaultTopK,
	}
	if err := r.sync(ctx, c); err != nil {
		_ = client.Close()
		return nil, err
	}
	return r, nil
}

// sync drops any previous copy of the collection and uploads the corpus.
func (r *QdrantRetriever) sync(ctx context.Context, c *corpus.Corpus) error {
	exists, err := r.client.CollectionExists(ctx, r.cfg.Collection)
	if err != nil {
		return fmt.Errorf("qdrant: failed to check collection existence: %w", err)
	}
	if exists {
		if err := r.client.DeleteCollection(ctx, r.cfg.Collection); err != nil {
			return fmt.Errorf("qdrant: failed to drop stale collection %q: %w", r.cfg.Collection, err)
		}
	}

	err = r.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: r.cfg.Collection,
		SparseVectorsConfig: qdrant.NewSparseVectorsConfig(map[string]*qdrant.SparseVectorParams{
			sparseVectorName: {},
		}),
	})
	if err != nil {
		return fmt.Errorf("qdrant: failed to create collection %q: %w", r.cfg.Collection, err)
	}

	if c.Len() == 0 {
		return nil
	}

	points := make([]*qdrant.PointStruct, 0, c.Len())
	for i, doc := range c.Documents {
		indices, values := r.index.Sparse(r.index.DocumentVector(i))
		points = append(points, &qdrant.PointStruct{
			Id: qdrant.NewIDNum(uint64(i)),
			Vectors: qdrant.NewVectorsMap(map[string]*qdrant.Vector{
				sparseVectorName: qdrant.NewVectorSparse(indices, values),
			}),
			Payload: qdrant.NewValueMap(map[string]any{
				"filename": doc.Filename,
				"text":     doc.Text,
			}),
		})
	}

	_, err = r.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: r.cfg.Collection,
		Wait:           qdrant.PtrOf(true),
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("qdrant: upsert failed: %w", err)
	}
	return nil
}

// Len returns the number of documents pushed to the collection.
func (r *QdrantRetriever) Len() int { return r.docs }

// Client exposes the underlying client for readiness probes.
func (r *QdrantRetriever) Client() *qdrant.Client { return r.client }

// Retrieve runs a sparse dot-product query. Only documents sharing at least
// one term with the query are returned, so the result may be shorter than
// topK and is empty when nothing overlaps.
func (r *QdrantRetriever) Retrieve(ctx context.Context, query string, topK int) ([]Result, error) {
	if r.docs == 0 {
		return nil, ErrEmptyIndex
	}
	if topK <= 0 {
		topK = r.defaultTopK
	}

	indices, values := r.index.Sparse(QueryVector(query))
	if len(indices) == 0 {
		logResults(ctx, "qdrant", query, nil)
		return []Result{}, nil
	}

	limit := uint64(topK)
	points, err := r.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: r.cfg.Collection,
		Query:          qdrant.NewQuerySparse(indices, values),
		Using:          qdrant.PtrOf(sparseVectorName),
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant: search failed: %w", err)
	}

	results := make([]Result, 0, len(points))
	for _, p := range points {
		res := Result{Score: math.Min(float64(p.GetScore()), 1)}
		if payload := p.GetPayload(); payload != nil {
			res.Filename = payload["filename"].GetStringValue()
			res.Text = payload["text"].GetStringValue()
		}
		results = append(results, res)
	}

	logResults(ctx, "qdrant", query, results)
	return results, nil
}

// Close closes the underlying gRPC connection.
func (r *QdrantRetriever) Close() error {
	if err := r.client.Close(); err != nil {
		return fmt.Errorf("qdrant: close: %w", err)
	}
	return nil
}
