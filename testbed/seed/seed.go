//
// Tencent is pleased to support the open source community by making trpc-rageval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rageval-go is licensed under the Apache License Version 2.0.
//
//

// Package seed samples candidate context passages from a chunked source
// document for dataset generation.
package seed

import (
	"errors"
	"fmt"
	"strings"

	"trpc.group/trpc-go/trpc-rageval-go/knowledge/document"
)

// ErrPartialYield signals that the document supplied fewer usable chunks
// than requested. The passages that could be sampled are still returned.
var ErrPartialYield = errors.New("partial yield")

// PartialYieldError reports how far short the extraction fell.
type PartialYieldError struct {
	// Requested is the sample count that was asked for.
	Requested int
	// Yielded is the number of passages actually returned.
	Yielded int
}

// Error implements the error interface.
func (e *PartialYieldError) Error() string {
	return fmt.Sprintf("partial yield: requested %d passages, yielded %d", e.Requested, e.Yielded)
}

// Unwrap makes the error match ErrPartialYield.
func (e *PartialYieldError) Unwrap() error {
	return ErrPartialYield
}

// Passage is a sampled seed passage.
type Passage struct {
	// Text is the chunk content, verbatim.
	Text string
	// SeedDocumentID is the stable index of the chunk in the source
	// document's chunk sequence.
	SeedDocumentID int
}

// Extractor samples seed passages from a document's chunk sequence.
type Extractor struct {
	opts *options
}

// New creates a seed extractor.
func New(opt ...Option) *Extractor {
	return &Extractor{opts: newOptions(opt...)}
}

// Extract samples n distinct usable passages from chunks. Chunk order defines
// the stable seed ids, so the same document always produces the same ids
// regardless of sampling order. When fewer than n usable chunks exist all of
// them are returned together with a PartialYieldError; the batch goes on with
// what is available.
func (e *Extractor) Extract(chunks []*document.Document, n int) ([]*Passage, error) {
	if n <= 0 {
		return nil, fmt.Errorf("requested count must be positive, got %d", n)
	}
	usable := e.usable(chunks)
	e.opts.shuffle(len(usable), func(i, j int) {
		usable[i], usable[j] = usable[j], usable[i]
	})
	if len(usable) >= n {
		return usable[:n], nil
	}
	if len(usable) == 0 {
		return nil, &PartialYieldError{Requested: n, Yielded: 0}
	}
	return usable, &PartialYieldError{Requested: n, Yielded: len(usable)}
}

// usable filters the chunk sequence down to sampling candidates while
// preserving each chunk's original index.
func (e *Extractor) usable(chunks []*document.Document) []*Passage {
	var passages []*Passage
	for i, chunk := range chunks {
		if chunk == nil {
			continue
		}
		text := strings.TrimSpace(chunk.Content)
		if len(text) < e.opts.minChunkLength {
			continue
		}
		passages = append(passages, &Passage{Text: chunk.Content, SeedDocumentID: i})
	}
	return passages
}
