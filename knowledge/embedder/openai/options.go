//
// Tencent is pleased to support the open source community by making trpc-rageval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rageval-go is licensed under the Apache License Version 2.0.
//
//

package openai

// defaultModel is the embedding model used when none is configured.
const defaultModel = "text-embedding-3-small"

// options holds the configuration for the OpenAI embedder.
type options struct {
	model      string
	apiKey     string
	baseURL    string
	dimensions int
}

// Option configures the OpenAI embedder.
type Option func(*options)

// newOptions applies the provided options on top of the defaults.
func newOptions(opt ...Option) *options {
	opts := &options{
		model:      defaultModel,
		dimensions: defaultDimensions,
	}
	for _, o := range opt {
		o(opts)
	}
	return opts
}

// WithModel sets the embedding model name.
func WithModel(model string) Option {
	return func(o *options) {
		o.model = model
	}
}

// WithAPIKey sets the API key.
func WithAPIKey(apiKey string) Option {
	return func(o *options) {
		o.apiKey = apiKey
	}
}

// WithBaseURL sets a custom API endpoint.
func WithBaseURL(baseURL string) Option {
	return func(o *options) {
		o.baseURL = baseURL
	}
}

// WithDimensions sets the embedding dimensionality.
func WithDimensions(dimensions int) Option {
	return func(o *options) {
		if dimensions > 0 {
			o.dimensions = dimensions
		}
	}
}
