//
// Tencent is pleased to support the open source community by making trpc-rageval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rageval-go is licensed under the Apache License Version 2.0.
//
//

package runner

import (
	"time"

	"golang.org/x/time/rate"

	"trpc.group/trpc-go/trpc-rageval-go/internal/retry"
	"trpc.group/trpc-go/trpc-rageval-go/knowledge/retriever"
	"trpc.group/trpc-go/trpc-rageval-go/knowledge/vectorstore"
	"trpc.group/trpc-go/trpc-rageval-go/model"
)

const (
	defaultParallelism       = 4
	defaultTopK              = 4
	defaultRequestsPerMinute = 60
	defaultMaxAttempts       = 3
	defaultInitialBackoff    = time.Second
)

// options holds the configuration for the runner.
type options struct {
	model            model.Model
	generationConfig model.GenerationConfig
	retriever        retriever.Retriever
	rewriter         retriever.QueryRewriter
	strategy         vectorstore.SearchStrategy
	topK             int
	parallelism      int
	limiter          *rate.Limiter
	retryPolicy      *retry.Policy
}

// Option configures the runner.
type Option func(*options)

// newOptions applies opts over the defaults.
func newOptions(m model.Model, opt ...Option) *options {
	opts := &options{
		model:       m,
		rewriter:    retriever.PassthroughRewriter{},
		strategy:    vectorstore.StrategySimilarity,
		topK:        defaultTopK,
		parallelism: defaultParallelism,
		limiter:     newRPMLimiter(defaultRequestsPerMinute),
		retryPolicy: retry.NewPolicy(defaultMaxAttempts, defaultInitialBackoff),
	}
	for _, o := range opt {
		o(opts)
	}
	return opts
}

func newRPMLimiter(rpm int) *rate.Limiter {
	return rate.NewLimiter(rate.Limit(float64(rpm)/60.0), rpm)
}

// WithRetriever enables retrieval through the given retriever. Leaving it
// unset runs the no-retrieval baseline.
func WithRetriever(r retriever.Retriever) Option {
	return func(o *options) {
		o.retriever = r
	}
}

// WithQueryRewriter sets the query rewriter applied before retrieval.
func WithQueryRewriter(rw retriever.QueryRewriter) Option {
	return func(o *options) {
		if rw != nil {
			o.rewriter = rw
		}
	}
}

// WithStrategy sets the vector search strategy.
func WithStrategy(s vectorstore.SearchStrategy) Option {
	return func(o *options) {
		o.strategy = s
	}
}

// WithTopK sets how many passages are retrieved per question.
func WithTopK(k int) Option {
	return func(o *options) {
		if k > 0 {
			o.topK = k
		}
	}
}

// WithParallelism bounds the number of cases inferred concurrently.
func WithParallelism(n int) Option {
	return func(o *options) {
		o.parallelism = n
	}
}

// WithRequestsPerMinute caps the outbound model call rate across all
// workers.
func WithRequestsPerMinute(rpm int) Option {
	return func(o *options) {
		if rpm > 0 {
			o.limiter = newRPMLimiter(rpm)
		}
	}
}

// WithGenerationConfig sets the sampling parameters for answer generation.
func WithGenerationConfig(cfg model.GenerationConfig) Option {
	return func(o *options) {
		o.generationConfig = cfg
	}
}

// WithRetryPolicy overrides the per-case retry schedule.
func WithRetryPolicy(p *retry.Policy) Option {
	return func(o *options) {
		o.retryPolicy = p
	}
}
