//
// Tencent is pleased to support the open source community by making trpc-rageval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rageval-go is licensed under the Apache License Version 2.0.
//
//

package seed

import "math/rand"

// defaultMinChunkLength filters out fragments too short to ground a
// question/answer pair.
const defaultMinChunkLength = 32

// options holds the configuration for the extractor.
type options struct {
	minChunkLength int
	shuffle        func(n int, swap func(i, j int))
}

// Option configures the extractor.
type Option func(*options)

// newOptions applies opts over the defaults.
func newOptions(opt ...Option) *options {
	opts := &options{
		minChunkLength: defaultMinChunkLength,
		shuffle:        rand.Shuffle,
	}
	for _, o := range opt {
		o(opts)
	}
	return opts
}

// WithMinChunkLength sets the minimum trimmed length a chunk must have to be
// considered usable.
func WithMinChunkLength(n int) Option {
	return func(o *options) {
		o.minChunkLength = n
	}
}

// WithRand sets the random source used for sampling. Useful for
// deterministic tests.
func WithRand(r *rand.Rand) Option {
	return func(o *options) {
		o.shuffle = r.Shuffle
	}
}
