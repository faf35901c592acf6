//
// Tencent is pleased to support the open source community by making trpc-rageval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rageval-go is licensed under the Apache License Version 2.0.
//
//

// Package vectorstore defines the vector store abstraction used by retrieval.
package vectorstore

import (
	"context"
	"fmt"

	"trpc.group/trpc-go/trpc-rageval-go/knowledge/document"
)

// SearchStrategy selects how ranked results are assembled.
type SearchStrategy string

// Supported search strategies.
const (
	// StrategySimilarity ranks purely by vector similarity.
	StrategySimilarity SearchStrategy = "similarity"
	// StrategyMMR re-ranks by maximal marginal relevance, trading relevance
	// against diversity among the selected passages.
	StrategyMMR SearchStrategy = "mmr"
)

// IsValid checks if the strategy is one of the defined constants.
func (s SearchStrategy) IsValid() bool {
	switch s {
	case StrategySimilarity, StrategyMMR:
		return true
	default:
		return false
	}
}

// ParseStrategy converts a string into a SearchStrategy.
func ParseStrategy(s string) (SearchStrategy, error) {
	strategy := SearchStrategy(s)
	if !strategy.IsValid() {
		return "", fmt.Errorf("unknown search strategy %q", s)
	}
	return strategy, nil
}

// DefaultMMRLambda balances relevance against diversity for MMR search.
const DefaultMMRLambda = 0.5

// SearchQuery describes one vector search request.
type SearchQuery struct {
	// Vector is the query embedding.
	Vector []float64
	// Limit is the maximum number of results to return.
	Limit int
	// MinScore filters out results scoring below the threshold.
	MinScore float64
	// Strategy selects the ranking strategy. Defaults to StrategySimilarity.
	Strategy SearchStrategy
	// MMRLambda is the relevance/diversity trade-off for StrategyMMR,
	// in [0, 1]. Zero value selects DefaultMMRLambda.
	MMRLambda float64
}

// ScoredDocument pairs a document with its similarity score.
type ScoredDocument struct {
	// Document is the matched chunk.
	Document *document.Document
	// Score is the similarity score in [0, 1], higher is more relevant.
	Score float64
}

// SearchResult contains ranked search results.
type SearchResult struct {
	// Results are ordered from most to least relevant.
	Results []*ScoredDocument
}

// Store is the vector store consumed by the retriever.
type Store interface {
	// Add stores a document with its embedding.
	Add(ctx context.Context, doc *document.Document, embedding []float64) error
	// Get returns the stored document with the given ID.
	Get(ctx context.Context, id string) (*document.Document, error)
	// Delete removes the document with the given ID.
	Delete(ctx context.Context, id string) error
	// Search returns ranked documents for the query.
	Search(ctx context.Context, query *SearchQuery) (*SearchResult, error)
	// Count returns the number of stored documents.
	Count(ctx context.Context) (int, error)
	// Close releases owned resources.
	Close() error
}
