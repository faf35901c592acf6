//
// Tencent is pleased to support the open source community by making trpc-rageval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rageval-go is licensed under the Apache License Version 2.0.
//
//

// Package retriever performs embedding-based passage retrieval against a vector store.
package retriever

import (
	"context"
	"fmt"

	"trpc.group/trpc-go/trpc-rageval-go/knowledge/document"
	"trpc.group/trpc-go/trpc-rageval-go/knowledge/embedder"
	"trpc.group/trpc-go/trpc-rageval-go/knowledge/vectorstore"
	"trpc.group/trpc-go/trpc-rageval-go/model"
)

// Query describes one retrieval request.
type Query struct {
	// Text is the search query text.
	Text string
	// Limit is the maximum number of passages to return.
	Limit int
	// Strategy selects the vector store ranking strategy.
	Strategy vectorstore.SearchStrategy
	// MinScore filters out results scoring below the threshold.
	MinScore float64
}

// RelevantDocument pairs a retrieved passage with its score.
type RelevantDocument struct {
	// Document is the retrieved passage.
	Document *document.Document
	// Score is the relevance score.
	Score float64
}

// Result contains ordered retrieval results.
type Result struct {
	// Documents are ordered from most to least relevant.
	Documents []*RelevantDocument
}

// Retriever embeds queries and searches the configured vector store.
type Retriever interface {
	// Retrieve returns ranked passages for the query.
	Retrieve(ctx context.Context, query *Query) (*Result, error)
	// Close releases owned resources.
	Close() error
}

// QueryRewriter turns a bare question plus prior conversation turns into a
// single retrieval-oriented query string. Implementations typically call a
// model; the harness only defines the contract.
type QueryRewriter interface {
	// Rewrite returns the search query for the question and history.
	Rewrite(ctx context.Context, question string, history []model.Message) (string, error)
}

// PassthroughRewriter returns the question unchanged.
type PassthroughRewriter struct{}

// Rewrite returns the question as the search query.
func (PassthroughRewriter) Rewrite(_ context.Context, question string, _ []model.Message) (string, error) {
	return question, nil
}

// defaultRetriever is the default Retriever implementation.
type defaultRetriever struct {
	embedder embedder.Embedder
	store    vectorstore.Store
}

// New creates a Retriever from the supplied options.
func New(opt ...Option) (Retriever, error) {
	opts := newOptions(opt...)
	if opts.embedder == nil {
		return nil, fmt.Errorf("embedder is nil")
	}
	if opts.store == nil {
		return nil, fmt.Errorf("vector store is nil")
	}
	return &defaultRetriever{
		embedder: opts.embedder,
		store:    opts.store,
	}, nil
}

// Retrieve returns ranked passages for the query.
func (r *defaultRetriever) Retrieve(ctx context.Context, query *Query) (*Result, error) {
	if query == nil || query.Text == "" {
		return nil, fmt.Errorf("query text is empty")
	}
	vector, err := r.embedder.GetEmbedding(ctx, query.Text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	searchResult, err := r.store.Search(ctx, &vectorstore.SearchQuery{
		Vector:   vector,
		Limit:    query.Limit,
		Strategy: query.Strategy,
		MinScore: query.MinScore,
	})
	if err != nil {
		return nil, fmt.Errorf("search vector store: %w", err)
	}
	docs := make([]*RelevantDocument, 0, len(searchResult.Results))
	for _, scored := range searchResult.Results {
		docs = append(docs, &RelevantDocument{
			Document: scored.Document,
			Score:    scored.Score,
		})
	}
	return &Result{Documents: docs}, nil
}

// Close releases owned resources.
func (r *defaultRetriever) Close() error {
	return r.store.Close()
}
