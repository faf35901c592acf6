//
// Tencent is pleased to support the open source community by making trpc-rageval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rageval-go is licensed under the Apache License Version 2.0.
//
//

package judge

import (
	"time"

	"trpc.group/trpc-go/trpc-rageval-go/internal/retry"
	"trpc.group/trpc-go/trpc-rageval-go/model"
)

const (
	defaultMaxAttempts    = 3
	defaultInitialBackoff = time.Second
)

// options holds the configuration for the judge.
type options struct {
	model            model.Model
	generationConfig model.GenerationConfig
	retryPolicy      *retry.Policy
}

// Option configures the judge.
type Option func(*options)

// newOptions applies opts over the defaults.
func newOptions(m model.Model, opt ...Option) *options {
	opts := &options{
		model:       m,
		retryPolicy: retry.NewPolicy(defaultMaxAttempts, defaultInitialBackoff),
	}
	for _, o := range opt {
		o(opts)
	}
	return opts
}

// WithGenerationConfig sets the sampling parameters for judge calls.
func WithGenerationConfig(cfg model.GenerationConfig) Option {
	return func(o *options) {
		o.generationConfig = cfg
	}
}

// WithRetryPolicy overrides the retry schedule for judge calls.
func WithRetryPolicy(p *retry.Policy) Option {
	return func(o *options) {
		o.retryPolicy = p
	}
}
