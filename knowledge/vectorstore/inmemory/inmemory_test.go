//
// Tencent is pleased to support the open source community by making trpc-rageval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rageval-go is licensed under the Apache License Version 2.0.
//
//

package inmemory

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"testing"

	"trpc.group/trpc-go/trpc-rageval-go/knowledge/document"
	"trpc.group/trpc-go/trpc-rageval-go/knowledge/vectorstore"
)

func addDoc(t *testing.T, s *Store, id string, vec []float64) {
	t.Helper()
	doc := &document.Document{ID: id, Content: "content " + id}
	if err := s.Add(context.Background(), doc, vec); err != nil {
		t.Fatalf("add %s: %v", id, err)
	}
}

func TestAddGetDelete(t *testing.T) {
	s := New()
	addDoc(t, s, "doc1", []float64{1, 0, 0})

	doc, err := s.Get(context.Background(), "doc1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if doc.Content != "content doc1" {
		t.Fatalf("unexpected content %q", doc.Content)
	}

	count, err := s.Count(context.Background())
	if err != nil || count != 1 {
		t.Fatalf("count = %d, err = %v", count, err)
	}

	if err := s.Delete(context.Background(), "doc1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Get(context.Background(), "doc1"); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected os.ErrNotExist, got %v", err)
	}
}

func TestSimilaritySearchOrdering(t *testing.T) {
	s := New()
	addDoc(t, s, "close", []float64{1, 0, 0})
	addDoc(t, s, "far", []float64{0, 1, 0})
	addDoc(t, s, "middle", []float64{1, 1, 0})

	res, err := s.Search(context.Background(), &vectorstore.SearchQuery{
		Vector:   []float64{1, 0, 0},
		Limit:    2,
		Strategy: vectorstore.StrategySimilarity,
	})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(res.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(res.Results))
	}
	if res.Results[0].Document.ID != "close" {
		t.Fatalf("expected doc close first, got %s", res.Results[0].Document.ID)
	}
	if res.Results[1].Document.ID != "middle" {
		t.Fatalf("expected doc middle second, got %s", res.Results[1].Document.ID)
	}
}

func TestMMRSearchPrefersDiversity(t *testing.T) {
	s := New()
	// Two near-duplicate relevant docs plus one diverse doc. With the
	// redundancy weight dominating, a2's near-total overlap with a1 costs
	// more than b's lower relevance.
	addDoc(t, s, "a1", []float64{1, 0, 0})
	addDoc(t, s, "a2", []float64{1, 0.001, 0})
	addDoc(t, s, "b", []float64{0.5, 0.866, 0})

	res, err := s.Search(context.Background(), &vectorstore.SearchQuery{
		Vector:    []float64{1, 0, 0},
		Limit:     2,
		Strategy:  vectorstore.StrategyMMR,
		MMRLambda: 0.3,
	})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(res.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(res.Results))
	}
	// First pick is the most relevant, second pick should be the diverse doc.
	if res.Results[0].Document.ID == "b" {
		t.Fatalf("most relevant doc should come first, got b")
	}
	if res.Results[1].Document.ID != "b" {
		t.Fatalf("expected diverse doc b second, got %s", res.Results[1].Document.ID)
	}
}

func TestSearchConcurrentWithAdd(t *testing.T) {
	s := New()
	addDoc(t, s, "seed", []float64{1, 0, 0})
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			doc := &document.Document{ID: fmt.Sprintf("doc%d", i)}
			if err := s.Add(context.Background(), doc, []float64{1, 0, 0}); err != nil {
				t.Errorf("add: %v", err)
				return
			}
		}
	}()
	// Default limit derives from the entry count and must observe the same
	// lock as the writers.
	for i := 0; i < 100; i++ {
		if _, err := s.Search(context.Background(), &vectorstore.SearchQuery{
			Vector: []float64{1, 0, 0},
		}); err != nil {
			t.Fatalf("search: %v", err)
		}
	}
	<-done
}

func TestSearchValidation(t *testing.T) {
	s := New()
	if _, err := s.Search(context.Background(), nil); err == nil {
		t.Fatal("expected error for nil query")
	}
	if _, err := s.Search(context.Background(), &vectorstore.SearchQuery{
		Vector:   []float64{1},
		Strategy: "bogus",
	}); err == nil {
		t.Fatal("expected error for unknown strategy")
	}
}

func TestCosineSimilarity(t *testing.T) {
	if got := cosineSimilarity([]float64{1, 0}, []float64{1, 0}); math.Abs(got-1) > 1e-9 {
		t.Fatalf("identical vectors = %f; want 1", got)
	}
	if got := cosineSimilarity([]float64{1, 0}, []float64{0, 1}); math.Abs(got) > 1e-9 {
		t.Fatalf("orthogonal vectors = %f; want 0", got)
	}
	if got := cosineSimilarity([]float64{1}, []float64{1, 0}); got != 0 {
		t.Fatalf("mismatched lengths = %f; want 0", got)
	}
}
