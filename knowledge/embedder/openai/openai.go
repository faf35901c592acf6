//
// Tencent is pleased to support the open source community by making trpc-rageval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rageval-go is licensed under the Apache License Version 2.0.
//
//

// Package openai provides an OpenAI-compatible embedder implementation.
package openai

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	openaiopt "github.com/openai/openai-go/option"
)

// defaultDimensions matches text-embedding-3-small.
const defaultDimensions = 1536

// Embedder implements embedder.Embedder backed by an OpenAI-compatible API.
type Embedder struct {
	client     openai.Client
	model      string
	dimensions int
}

// New creates an OpenAI-compatible embedder.
func New(opt ...Option) *Embedder {
	opts := newOptions(opt...)
	var clientOpts []openaiopt.RequestOption
	if opts.apiKey != "" {
		clientOpts = append(clientOpts, openaiopt.WithAPIKey(opts.apiKey))
	}
	if opts.baseURL != "" {
		clientOpts = append(clientOpts, openaiopt.WithBaseURL(opts.baseURL))
	}
	return &Embedder{
		client:     openai.NewClient(clientOpts...),
		model:      opts.model,
		dimensions: opts.dimensions,
	}
}

// GetEmbedding returns the embedding vector for the given text.
func (e *Embedder) GetEmbedding(ctx context.Context, text string) ([]float64, error) {
	if text == "" {
		return nil, fmt.Errorf("text cannot be empty")
	}
	request := openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{OfString: openai.String(text)},
		Model: e.model,
	}
	response, err := e.client.Embeddings.New(ctx, request)
	if err != nil {
		return nil, fmt.Errorf("create embedding: %w", err)
	}
	if len(response.Data) == 0 {
		return nil, fmt.Errorf("no embedding data in response")
	}
	return response.Data[0].Embedding, nil
}

// GetDimensions returns the dimensionality of produced vectors.
func (e *Embedder) GetDimensions() int {
	return e.dimensions
}
