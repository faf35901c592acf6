//
// Tencent is pleased to support the open source community by making trpc-rageval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rageval-go is licensed under the Apache License Version 2.0.
//
//

package openai

import openaiopt "github.com/openai/openai-go/option"

// options holds the configuration for the OpenAI model.
type options struct {
	apiKey         string
	baseURL        string
	requestOptions []openaiopt.RequestOption
}

// Option configures the OpenAI model.
type Option func(*options)

// newOptions applies the provided options on top of the defaults.
func newOptions(opt ...Option) *options {
	opts := &options{}
	for _, o := range opt {
		o(opts)
	}
	return opts
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

// WithRequestOptions appends extra OpenAI request options.
func WithRequestOptions(requestOptions ...openaiopt.RequestOption) Option {
	return func(o *options) {
		o.requestOptions = append(o.requestOptions, requestOptions...)
	}
}
