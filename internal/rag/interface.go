// Package rag ranks the legal corpus against a question. Documents and
// queries are turned into sparse TF-IDF vectors and compared with cosine
// similarity; the best matches become the context handed to the LLM.
//
// Two Retriever implementations exist: MemoryRetriever keeps the document
// vectors in process memory, QdrantRetriever pushes the same vectors into a
// Qdrant collection as sparse vectors and lets Qdrant do the scoring.
package rag

import (
	"context"
	"errors"
)

// DefaultTopK is the number of documents returned when the caller passes
// topK <= 0 and no other default was configured.
const DefaultTopK = 3

// ErrEmptyIndex is returned by Retrieve when the corpus holds no documents.
var ErrEmptyIndex = errors.New("rag: documents not loaded")

// Result is one ranked document.
type Result struct {
	// Text is the full document content.
	Text string `json:"text"`
	// Filename is the corpus file the text came from.
	Filename string `json:"filename"`
	// Score is the cosine similarity to the query, in [0, 1].
	Score float64 `json:"score"`
}

// Retriever fetches the documents most relevant to a question.
// Implementations must be safe to call from multiple goroutines.
type Retriever interface {
	// Retrieve returns at most topK results ordered by descending score.
	// topK <= 0 selects the implementation's default.
	Retrieve(ctx context.Context, query string, topK int) ([]Result, error)

	// Len returns the number of indexed documents.
	Len() int
}
