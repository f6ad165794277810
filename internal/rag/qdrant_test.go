package rag

import (
	"context"
	"errors"
	"testing"
)

// The branches below return before any RPC, so no client is needed.

func TestQdrantRetrieve_NoOverlapReturnsEmpty(t *testing.T) {
	t.Parallel()

	c := legalCorpus()
	r := &QdrantRetriever{
		cfg:         &QdrantConfig{Collection: "unused"},
		index:       NewIndex(c.Texts()),
		docs:        c.Len(),
		defaultTopK: DefaultTopK,
	}

	results, err := r.Retrieve(context.Background(), "quantum chromodynamics gluon", 3)
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if results == nil || len(results) != 0 {
		t.Errorf("expected a non-nil empty slice, got %#v", results)
	}
}

func TestQdrantRetrieve_EmptyCorpus(t *testing.T) {
	t.Parallel()

	r := &QdrantRetriever{index: NewIndex(nil), defaultTopK: DefaultTopK}

	_, err := r.Retrieve(context.Background(), "contract", 3)
	if !errors.Is(err, ErrEmptyIndex) {
		t.Errorf("expected ErrEmptyIndex, got %v", err)
	}
	if r.Len() != 0 {
		t.Errorf("Len: got %d", r.Len())
	}
}

func TestNewQdrantRetriever_NilCorpus(t *testing.T) {
	t.Parallel()

	if _, err := NewQdrantRetriever(context.Background(), nil, nil, 3); err == nil {
		t.Error("expected error for nil corpus")
	}
}
