//
// Tencent is pleased to support the open source community by making trpc-rageval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rageval-go is licensed under the Apache License Version 2.0.
//
//

package retriever

import (
	"context"
	"testing"

	"trpc.group/trpc-go/trpc-rageval-go/knowledge/document"
	"trpc.group/trpc-go/trpc-rageval-go/knowledge/vectorstore/inmemory"
)

// dummyEmbedder returns a constant vector.
type dummyEmbedder struct{}

func (dummyEmbedder) GetEmbedding(ctx context.Context, text string) ([]float64, error) {
	return []float64{1, 0, 0}, nil
}
func (dummyEmbedder) GetDimensions() int { return 3 }

func TestDefaultRetriever(t *testing.T) {
	vs := inmemory.New()
	doc := &document.Document{ID: "doc1", Content: "hello"}
	if err := vs.Add(context.Background(), doc, []float64{1, 0, 0}); err != nil {
		t.Fatalf("add doc: %v", err)
	}

	r, err := New(
		WithEmbedder(dummyEmbedder{}),
		WithVectorStore(vs),
	)
	if err != nil {
		t.Fatalf("new retriever: %v", err)
	}

	res, err := r.Retrieve(context.Background(), &Query{Text: "hi", Limit: 5})
	if err != nil {
		t.Fatalf("retrieve err: %v", err)
	}
	if len(res.Documents) != 1 || res.Documents[0].Document.ID != "doc1" {
		t.Fatalf("unexpected results")
	}

	if err := r.Close(); err != nil {
		t.Fatalf("close should not return error: %v", err)
	}
}

func TestNewValidation(t *testing.T) {
	if _, err := New(WithEmbedder(dummyEmbedder{})); err == nil {
		t.Fatal("expected error when vector store is missing")
	}
	if _, err := New(WithVectorStore(inmemory.New())); err == nil {
		t.Fatal("expected error when embedder is missing")
	}
}

func TestPassthroughRewriter(t *testing.T) {
	q, err := PassthroughRewriter{}.Rewrite(context.Background(), "what is up", nil)
	if err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	if q != "what is up" {
		t.Fatalf("expected question unchanged, got %q", q)
	}
}
