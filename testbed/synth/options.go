//
// Tencent is pleased to support the open source community by making trpc-rageval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rageval-go is licensed under the Apache License Version 2.0.
//
//

package synth

import (
	"time"

	"trpc.group/trpc-go/trpc-rageval-go/internal/retry"
	"trpc.group/trpc-go/trpc-rageval-go/model"
)

// Retry defaults: one retry with backoff per seed.
const (
	defaultMaxAttempts    = 2
	defaultInitialBackoff = 500 * time.Millisecond
)

// options holds the configuration for the synthesizer.
type options struct {
	model            model.Model
	generationConfig model.GenerationConfig
	retryPolicy      *retry.Policy
}

// Option configures the synthesizer.
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

// WithGenerationConfig sets the sampling parameters for generation calls.
func WithGenerationConfig(cfg model.GenerationConfig) Option {
	return func(o *options) {
		o.generationConfig = cfg
	}
}

// WithRetryPolicy overrides the per-seed retry schedule.
func WithRetryPolicy(p *retry.Policy) Option {
	return func(o *options) {
		o.retryPolicy = p
	}
}
