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
	"trpc.group/trpc-go/trpc-rageval-go/knowledge/embedder"
	"trpc.group/trpc-go/trpc-rageval-go/knowledge/vectorstore"
)

// options holds the configuration for the default retriever.
type options struct {
	embedder embedder.Embedder
	store    vectorstore.Store
}

// Option configures the default retriever.
type Option func(*options)

// newOptions applies the provided options.
func newOptions(opt ...Option) *options {
	opts := &options{}
	for _, o := range opt {
		o(opts)
	}
	return opts
}

// WithEmbedder sets the query embedder.
func WithEmbedder(e embedder.Embedder) Option {
	return func(o *options) {
		o.embedder = e
	}
}

// WithVectorStore sets the vector store.
func WithVectorStore(s vectorstore.Store) Option {
	return func(o *options) {
		o.store = s
	}
}
