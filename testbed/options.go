//
// Tencent is pleased to support the open source community by making trpc-rageval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rageval-go is licensed under the Apache License Version 2.0.
//
//

package testbed

import (
	"trpc.group/trpc-go/trpc-rageval-go/testbed/dataset"
	"trpc.group/trpc-go/trpc-rageval-go/testbed/evalrun"
	"trpc.group/trpc-go/trpc-rageval-go/testbed/judge"
	"trpc.group/trpc-go/trpc-rageval-go/testbed/runner"
	"trpc.group/trpc-go/trpc-rageval-go/testbed/seed"
	"trpc.group/trpc-go/trpc-rageval-go/testbed/synth"
	"trpc.group/trpc-go/trpc-rageval-go/testbed/topic"
)

// generatorOptions holds the configuration for the generator.
type generatorOptions struct {
	extractor      *seed.Extractor
	synthesizer    *synth.Synthesizer
	tagger         *topic.Tagger
	datasetManager dataset.Manager
}

// GeneratorOption configures the generator.
type GeneratorOption func(*generatorOptions)

// newGeneratorOptions applies opts over the defaults.
func newGeneratorOptions(opt ...GeneratorOption) *generatorOptions {
	opts := &generatorOptions{
		extractor: seed.New(),
	}
	for _, o := range opt {
		o(opts)
	}
	return opts
}

// WithExtractor sets the seed extractor.
func WithExtractor(e *seed.Extractor) GeneratorOption {
	return func(o *generatorOptions) {
		o.extractor = e
	}
}

// WithSynthesizer sets the Q&A synthesizer.
func WithSynthesizer(s *synth.Synthesizer) GeneratorOption {
	return func(o *generatorOptions) {
		o.synthesizer = s
	}
}

// WithTagger sets the topic tagger.
func WithTagger(t *topic.Tagger) GeneratorOption {
	return func(o *generatorOptions) {
		o.tagger = t
	}
}

// WithDatasetManager sets the dataset store the generator writes to.
func WithDatasetManager(m dataset.Manager) GeneratorOption {
	return func(o *generatorOptions) {
		o.datasetManager = m
	}
}

const defaultJudgeParallelism = 4

// harnessOptions holds the configuration for the harness.
type harnessOptions struct {
	runner           *runner.Runner
	judge            *judge.Judge
	datasetManager   dataset.Manager
	runManager       evalrun.Manager
	judgeParallelism int
}

// HarnessOption configures the harness.
type HarnessOption func(*harnessOptions)

// newHarnessOptions applies opts over the defaults.
func newHarnessOptions(opt ...HarnessOption) *harnessOptions {
	opts := &harnessOptions{
		judgeParallelism: defaultJudgeParallelism,
	}
	for _, o := range opt {
		o(opts)
	}
	return opts
}

// WithRunner sets the inference runner.
func WithRunner(r *runner.Runner) HarnessOption {
	return func(o *harnessOptions) {
		o.runner = r
	}
}

// WithJudge sets the judge.
func WithJudge(j *judge.Judge) HarnessOption {
	return func(o *harnessOptions) {
		o.judge = j
	}
}

// WithHarnessDatasetManager sets the dataset store the harness reads from.
func WithHarnessDatasetManager(m dataset.Manager) HarnessOption {
	return func(o *harnessOptions) {
		o.datasetManager = m
	}
}

// WithRunManager sets the run history store.
func WithRunManager(m evalrun.Manager) HarnessOption {
	return func(o *harnessOptions) {
		o.runManager = m
	}
}

// WithJudgeParallelism bounds the number of cases judged concurrently.
func WithJudgeParallelism(n int) HarnessOption {
	return func(o *harnessOptions) {
		o.judgeParallelism = n
	}
}
