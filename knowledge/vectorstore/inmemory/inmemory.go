//
// Tencent is pleased to support the open source community by making trpc-rageval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rageval-go is licensed under the Apache License Version 2.0.
//
//

// Package inmemory provides an in-memory vector store implementation.
package inmemory

import (
	"context"
	"fmt"
	"math"
	"os"
	"sort"
	"sync"

	"trpc.group/trpc-go/trpc-rageval-go/knowledge/document"
	"trpc.group/trpc-go/trpc-rageval-go/knowledge/vectorstore"
)

// entry pairs a stored document with its embedding.
type entry struct {
	doc       *document.Document
	embedding []float64
}

// Store implements vectorstore.Store with an in-memory index.
type Store struct {
	mu      sync.RWMutex
	entries map[string]*entry
	order   []string
}

// New creates a new in-memory vector store.
func New() *Store {
	return &Store{
		entries: make(map[string]*entry),
	}
}

// Add stores a document with its embedding.
func (s *Store) Add(_ context.Context, doc *document.Document, embedding []float64) error {
	if doc == nil || doc.ID == "" {
		return fmt.Errorf("document is nil or has empty id")
	}
	if len(embedding) == 0 {
		return fmt.Errorf("embedding is empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[doc.ID]; !ok {
		s.order = append(s.order, doc.ID)
	}
	vec := make([]float64, len(embedding))
	copy(vec, embedding)
	s.entries[doc.ID] = &entry{doc: doc.Clone(), embedding: vec}
	return nil
}

// Get returns the stored document with the given ID.
func (s *Store) Get(_ context.Context, id string) (*document.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[id]
	if !ok {
		return nil, fmt.Errorf("%w: document %s", os.ErrNotExist, id)
	}
	return e.doc.Clone(), nil
}

// Delete removes the document with the given ID.
func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[id]; !ok {
		return fmt.Errorf("%w: document %s", os.ErrNotExist, id)
	}
	delete(s.entries, id)
	for i, docID := range s.order {
		if docID == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// Count returns the number of stored documents.
func (s *Store) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries), nil
}

// Close releases owned resources.
func (s *Store) Close() error {
	return nil
}

// Search returns ranked documents for the query.
func (s *Store) Search(_ context.Context, query *vectorstore.SearchQuery) (*vectorstore.SearchResult, error) {
	if query == nil || len(query.Vector) == 0 {
		return nil, fmt.Errorf("query vector is empty")
	}
	strategy := query.Strategy
	if strategy == "" {
		strategy = vectorstore.StrategySimilarity
	}
	if !strategy.IsValid() {
		return nil, fmt.Errorf("unknown search strategy %q", strategy)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	limit := query.Limit
	if limit <= 0 {
		limit = len(s.entries)
	}
	candidates := s.rankBySimilarity(query.Vector, query.MinScore)
	if strategy == vectorstore.StrategyMMR {
		lambda := query.MMRLambda
		if lambda <= 0 {
			lambda = vectorstore.DefaultMMRLambda
		}
		candidates = s.rerankMMR(candidates, lambda, limit)
	}
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	results := make([]*vectorstore.ScoredDocument, 0, len(candidates))
	for _, c := range candidates {
		results = append(results, &vectorstore.ScoredDocument{
			Document: c.entry.doc.Clone(),
			Score:    c.score,
		})
	}
	return &vectorstore.SearchResult{Results: results}, nil
}

// candidate is an entry with its query similarity.
type candidate struct {
	entry *entry
	score float64
}

// rankBySimilarity orders all entries by cosine similarity to the query vector.
func (s *Store) rankBySimilarity(vector []float64, minScore float64) []*candidate {
	candidates := make([]*candidate, 0, len(s.entries))
	for _, id := range s.order {
		e := s.entries[id]
		score := cosineSimilarity(vector, e.embedding)
		if score < minScore {
			continue
		}
		candidates = append(candidates, &candidate{entry: e, score: score})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})
	return candidates
}

// rerankMMR greedily selects candidates by maximal marginal relevance:
// lambda weighs query similarity, (1-lambda) penalizes similarity to
// already-selected passages.
func (s *Store) rerankMMR(candidates []*candidate, lambda float64, limit int) []*candidate {
	if len(candidates) == 0 {
		return candidates
	}
	selected := make([]*candidate, 0, limit)
	remaining := make([]*candidate, len(candidates))
	copy(remaining, candidates)
	for len(selected) < limit && len(remaining) > 0 {
		bestIdx := 0
		bestScore := math.Inf(-1)
		for i, c := range remaining {
			redundancy := 0.0
			for _, sel := range selected {
				sim := cosineSimilarity(c.entry.embedding, sel.entry.embedding)
				if sim > redundancy {
					redundancy = sim
				}
			}
			mmr := lambda*c.score - (1-lambda)*redundancy
			if mmr > bestScore {
				bestScore = mmr
				bestIdx = i
			}
		}
		selected = append(selected, remaining[bestIdx])
		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)
	}
	return selected
}

// cosineSimilarity computes the cosine similarity of two vectors.
// Mismatched lengths and zero vectors score 0.
func cosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
