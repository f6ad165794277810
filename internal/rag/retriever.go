package rag

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/54b3r/legalqa-go/internal/corpus"
	"github.com/54b3r/legalqa-go/internal/logging"
)

// MemoryRetriever implements Retriever by scoring every document's in-memory
// TF-IDF vector against the query on each call.
type MemoryRetriever struct {
	// docs is the corpus the index was built from, in index order.
	docs []corpus.Document

	// index holds the precomputed document vectors.
	index *Index

	// defaultTopK is the number of results to return when the caller passes 0.
	defaultTopK int
}

// NewMemoryRetriever indexes the corpus. defaultTopK sets the fallback result
// count when Retrieve is called with topK <= 0.
func NewMemoryRetriever(c *corpus.Corpus, defaultTopK int) (*MemoryRetriever, error) {
	if c == nil {
		return nil, fmt.Errorf("rag: corpus must not be nil")
	}
	if defaultTopK <= 0 {
		defaultTopK = DefaultTopK
	}
	return &MemoryRetriever{
		docs:        c.Documents,
		index:       NewIndex(c.Texts()),
		defaultTopK: defaultTopK,
	}, nil
}

// Len returns the number of indexed documents.
func (r *MemoryRetriever) Len() int { return len(r.docs) }

// Retrieve scores every document against query and returns the best topK.
// Documents with equal scores keep their corpus order.
func (r *MemoryRetriever) Retrieve(ctx context.Context, query string, topK int) ([]Result, error) {
	if len(r.docs) == 0 {
		return nil, ErrEmptyIndex
	}
	if topK <= 0 {
		topK = r.defaultTopK
	}

	qv := QueryVector(query)
	results := make([]Result, len(r.docs))
	for i, doc := range r.docs {
		results[i] = Result{
			Text:     doc.Text,
			Filename: doc.Filename,
			Score:    Cosine(qv, r.index.DocumentVector(i)),
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > topK {
		results = results[:topK]
	}

	logResults(ctx, "memory", query, results)
	return results, nil
}

// logResults records the ranking produced for query.
func logResults(ctx context.Context, backend, query string, results []Result) {
	log := logging.FromContext(ctx)

	top := 0.0
	if len(results) > 0 {
		top = results[0].Score
	}
	log.Info("rag: documents retrieved",
		slog.String("backend", backend),
		slog.String("query", query),
		slog.Int("count", len(results)),
		slog.Float64("top_score", top),
	)
	for i, res := range results {
		log.Debug("rag: ranked document",
			slog.Int("rank", i+1),
			slog.String("filename", res.Filename),
			slog.String("score", fmt.Sprintf("%.4f", res.Score)),
		)
	}
}
