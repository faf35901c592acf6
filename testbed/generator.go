//
// Tencent is pleased to support the open source community by making trpc-rageval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rageval-go is licensed under the Apache License Version 2.0.
//
//

// Package testbed wires the generation and evaluation pipelines together:
// seed extraction, Q&A synthesis and topic tagging on one side, inference,
// judging and run storage on the other.
package testbed

import (
	"context"
	"errors"
	"fmt"

	"trpc.group/trpc-go/trpc-rageval-go/knowledge/document"
	"trpc.group/trpc-go/trpc-rageval-go/log"
	"trpc.group/trpc-go/trpc-rageval-go/testbed/dataset"
	"trpc.group/trpc-go/trpc-rageval-go/testbed/seed"
	"trpc.group/trpc-go/trpc-rageval-go/testbed/synth"
)

// GenerateRequest describes one dataset generation batch.
type GenerateRequest struct {
	// Name of the dataset to create.
	Name string
	// DocumentID identifies the source document.
	DocumentID string
	// Chunks is the document's chunk sequence, in stable order.
	Chunks []*document.Document
	// Count is the requested number of test cases.
	Count int
	// Mix is the target question-type distribution.
	Mix synth.Mix
}

// GenerateReport describes what a generation batch could not deliver. A
// non-nil report with entries is not a failure; the dataset holds whatever
// was produced.
type GenerateReport struct {
	// PartialYield is set when the document ran out of usable chunks.
	PartialYield *seed.PartialYieldError
	// Failures lists the seeds dropped after synthesis retries.
	Failures []*synth.GenerationFailure
}

// Generator turns a source document into a stored dataset.
type Generator struct {
	opts *generatorOptions
}

// NewGenerator creates a generator from the supplied options. Extractor,
// synthesizer, tagger and dataset manager are all required.
func NewGenerator(opt ...GeneratorOption) (*Generator, error) {
	opts := newGeneratorOptions(opt...)
	if opts.extractor == nil {
		return nil, errors.New("extractor is nil")
	}
	if opts.synthesizer == nil {
		return nil, errors.New("synthesizer is nil")
	}
	if opts.tagger == nil {
		return nil, errors.New("tagger is nil")
	}
	if opts.datasetManager == nil {
		return nil, errors.New("dataset manager is nil")
	}
	return &Generator{opts: opts}, nil
}

// Generate runs the generation pipeline: sample seeds, synthesize pairs, tag
// topics, store the dataset. Seeds that fail synthesis are dropped from the
// dataset but reported; a document too small for the requested count yields
// a smaller dataset, also reported.
func (g *Generator) Generate(ctx context.Context, req *GenerateRequest) (*dataset.Dataset, *GenerateReport, error) {
	if req == nil {
		return nil, nil, errors.New("request is nil")
	}
	report := &GenerateReport{}
	passages, err := g.opts.extractor.Extract(req.Chunks, req.Count)
	if err != nil {
		var partial *seed.PartialYieldError
		if !errors.As(err, &partial) {
			return nil, nil, fmt.Errorf("extract seeds: %w", err)
		}
		report.PartialYield = partial
		log.Warnf("document %s yielded %d of %d requested seeds",
			req.DocumentID, partial.Yielded, partial.Requested)
	}
	if len(passages) == 0 {
		return nil, nil, fmt.Errorf("document %s has no usable chunks", req.DocumentID)
	}
	cases, failures, err := g.opts.synthesizer.SynthesizeBatch(ctx, passages, req.Mix)
	if err != nil {
		return nil, nil, fmt.Errorf("synthesize cases: %w", err)
	}
	report.Failures = failures
	if len(cases) == 0 {
		return nil, nil, fmt.Errorf("all %d seeds failed synthesis", len(passages))
	}
	if err := g.opts.tagger.Tag(ctx, cases); err != nil {
		return nil, nil, fmt.Errorf("tag topics: %w", err)
	}
	ds, err := g.opts.datasetManager.Create(ctx, &dataset.Dataset{
		Name:       req.Name,
		DocumentID: req.DocumentID,
		Cases:      cases,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("create dataset: %w", err)
	}
	return ds, report, nil
}
