//
// Tencent is pleased to support the open source community by making trpc-rageval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rageval-go is licensed under the Apache License Version 2.0.
//
//

package local

const defaultBaseDir = "./runs"

// options holds the configuration for the local run manager.
type options struct {
	baseDir string
}

// Option configures the local run manager.
type Option func(*options)

// newOptions applies opts over the defaults.
func newOptions(opt ...Option) *options {
	opts := &options{
		baseDir: defaultBaseDir,
	}
	for _, o := range opt {
		o(opts)
	}
	return opts
}

// WithBaseDir sets the directory runs are stored under.
func WithBaseDir(dir string) Option {
	return func(o *options) {
		o.baseDir = dir
	}
}
