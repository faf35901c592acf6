//
// Tencent is pleased to support the open source community by making trpc-rageval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rageval-go is licensed under the Apache License Version 2.0.
//
//

// Package embedder defines the text embedding abstraction.
package embedder

import "context"

// Embedder converts text into a vector representation.
type Embedder interface {
	// GetEmbedding returns the embedding vector for the given text.
	GetEmbedding(ctx context.Context, text string) ([]float64, error)
	// GetDimensions returns the dimensionality of produced vectors.
	GetDimensions() int
}
