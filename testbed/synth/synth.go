//
// Tencent is pleased to support the open source community by making trpc-rageval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rageval-go is licensed under the Apache License Version 2.0.
//
//

// Package synth turns seed passages into question/reference-answer pairs
// through a generation model.
package synth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"

	"trpc.group/trpc-go/trpc-rageval-go/log"
	"trpc.group/trpc-go/trpc-rageval-go/model"
	"trpc.group/trpc-go/trpc-rageval-go/testbed/dataset"
	"trpc.group/trpc-go/trpc-rageval-go/testbed/prompt"
	"trpc.group/trpc-go/trpc-rageval-go/testbed/seed"
)

// ErrGenerationFailure signals that a seed could not be turned into a valid
// pair after the retry budget.
var ErrGenerationFailure = errors.New("generation failure")

// GenerationFailure records a seed that was dropped from the batch. The seed
// id is retained for diagnosis.
type GenerationFailure struct {
	// SeedDocumentID identifies the failed seed passage.
	SeedDocumentID int
	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *GenerationFailure) Error() string {
	return fmt.Sprintf("generation failure for seed %d: %v", e.SeedDocumentID, e.Err)
}

// Unwrap makes the error match ErrGenerationFailure.
func (e *GenerationFailure) Unwrap() error {
	return ErrGenerationFailure
}

// Mix is the target question-type distribution for a batch.
type Mix struct {
	// ComplexRatio is the fraction of complex questions, in [0, 1].
	ComplexRatio float64
}

// pair is the JSON shape the generation model is instructed to output.
type pair struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Synthesizer produces TestCase drafts from seed passages.
type Synthesizer struct {
	opts *options
}

// New creates a synthesizer. The generation model is required.
func New(m model.Model, opt ...Option) (*Synthesizer, error) {
	if m == nil {
		return nil, errors.New("model is required")
	}
	return &Synthesizer{opts: newOptions(m, opt...)}, nil
}

// Synthesize generates one TestCase draft from the passage. The draft's
// reference context is the passage text verbatim and its topic is left empty
// for the tagger.
func (s *Synthesizer) Synthesize(ctx context.Context, passage *seed.Passage,
	questionType dataset.QuestionType) (*dataset.TestCase, error) {
	if passage == nil {
		return nil, errors.New("passage is nil")
	}
	if !questionType.IsValid() {
		return nil, fmt.Errorf("invalid question type: %s", questionType)
	}
	var p pair
	err := s.opts.retryPolicy.DoAll(ctx, "synthesize", func(ctx context.Context) error {
		generated, err := s.generate(ctx, passage, questionType)
		if err != nil {
			return err
		}
		p = *generated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &dataset.TestCase{
		ID:               uuid.NewString(),
		Question:         p.Question,
		ReferenceAnswer:  p.Answer,
		ReferenceContext: passage.Text,
		Metadata: dataset.Metadata{
			QuestionType:   questionType,
			SeedDocumentID: passage.SeedDocumentID,
		},
	}, nil
}

// SynthesizeBatch generates one draft per passage according to the target
// mix. A failed seed never aborts the batch: it is logged and reported as a
// GenerationFailure while the rest of the passages proceed. Cancellation
// stops the batch and returns what was produced so far.
func (s *Synthesizer) SynthesizeBatch(ctx context.Context, passages []*seed.Passage,
	mix Mix) ([]*dataset.TestCase, []*GenerationFailure, error) {
	types := questionTypes(len(passages), mix)
	var cases []*dataset.TestCase
	var failures []*GenerationFailure
	for i, passage := range passages {
		if err := ctx.Err(); err != nil {
			return cases, failures, err
		}
		tc, err := s.Synthesize(ctx, passage, types[i])
		if err != nil {
			if ctx.Err() != nil {
				return cases, failures, ctx.Err()
			}
			log.Warnf("dropping seed %d after failed synthesis: %v", passage.SeedDocumentID, err)
			failures = append(failures, &GenerationFailure{
				SeedDocumentID: passage.SeedDocumentID,
				Err:            err,
			})
			continue
		}
		cases = append(cases, tc)
	}
	return cases, failures, nil
}

// generate performs one model call and parses its output.
func (s *Synthesizer) generate(ctx context.Context, passage *seed.Passage,
	questionType dataset.QuestionType) (*pair, error) {
	text, err := prompt.Synthesis(prompt.SynthesisData{
		Passage:      passage.Text,
		QuestionType: string(questionType),
		Complex:      questionType == dataset.QuestionTypeComplex,
	})
	if err != nil {
		return nil, err
	}
	rsp, err := s.opts.model.GenerateContent(ctx, &model.Request{
		Messages:         []model.Message{model.NewUserMessage(text)},
		GenerationConfig: s.opts.generationConfig,
	})
	if err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}
	if rsp.Error != nil {
		return nil, fmt.Errorf("generate content: %s", rsp.Error.Message)
	}
	return parsePair(rsp.Content())
}

// parsePair extracts the question/answer JSON object from model output,
// tolerating code fences and surrounding prose.
func parsePair(content string) (*pair, error) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end < start {
		return nil, fmt.Errorf("no JSON object in model output: %q", truncate(content))
	}
	var p pair
	if err := json.Unmarshal([]byte(content[start:end+1]), &p); err != nil {
		return nil, fmt.Errorf("decode model output: %w", err)
	}
	if strings.TrimSpace(p.Question) == "" {
		return nil, errors.New("model output has empty question")
	}
	if strings.TrimSpace(p.Answer) == "" {
		return nil, errors.New("model output has empty answer")
	}
	return &p, nil
}

// questionTypes spreads the complex quota evenly over the batch.
func questionTypes(n int, mix Mix) []dataset.QuestionType {
	ratio := mix.ComplexRatio
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}
	types := make([]dataset.QuestionType, n)
	assigned := 0
	for i := range types {
		want := int(math.Round(float64(i+1) * ratio))
		if want > assigned {
			types[i] = dataset.QuestionTypeComplex
			assigned++
		} else {
			types[i] = dataset.QuestionTypeSimple
		}
	}
	return types
}

func truncate(s string) string {
	const limit = 120
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
