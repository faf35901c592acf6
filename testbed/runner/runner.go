//
// Tencent is pleased to support the open source community by making trpc-rageval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rageval-go is licensed under the Apache License Version 2.0.
//
//

// Package runner answers a dataset's questions through the configured RAG
// pipeline. It performs inference only; judging happens afterwards.
package runner

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"

	"trpc.group/trpc-go/trpc-rageval-go/knowledge/retriever"
	"trpc.group/trpc-go/trpc-rageval-go/log"
	"trpc.group/trpc-go/trpc-rageval-go/model"
	"trpc.group/trpc-go/trpc-rageval-go/testbed/dataset"
	"trpc.group/trpc-go/trpc-rageval-go/testbed/evalrun"
	"trpc.group/trpc-go/trpc-rageval-go/testbed/prompt"
	"trpc.group/trpc-go/trpc-rageval-go/telemetry"
)

// Runner produces one answer per active test case. A case that fails after
// retries gets a result with RunnerError set and a nil answer; it never
// aborts the rest of the run.
type Runner struct {
	opts *options
	pool *ants.PoolWithFunc
}

// New creates a runner. The chat model is required; a nil retriever runs the
// no-retrieval baseline.
func New(m model.Model, opt ...Option) (*Runner, error) {
	if m == nil {
		return nil, errors.New("model is required")
	}
	opts := newOptions(m, opt...)
	if opts.parallelism <= 0 {
		return nil, errors.New("parallelism must be greater than 0")
	}
	r := &Runner{opts: opts}
	pool, err := createCaseInferencePool(opts.parallelism)
	if err != nil {
		return nil, err
	}
	r.pool = pool
	return r, nil
}

// Run answers every case. Results keep the dataset's case order. On
// cancellation the answers produced so far are returned; unstarted cases are
// simply absent.
func (r *Runner) Run(ctx context.Context, cases []*dataset.TestCase) []*evalrun.CaseResult {
	results := make([]*evalrun.CaseResult, len(cases))
	var wg sync.WaitGroup
	for i, tc := range cases {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		param := caseInferenceParamPool.Get().(*caseInferenceParam)
		param.idx = i
		param.ctx = ctx
		param.runner = r
		param.testCase = tc
		param.results = results
		param.wg = &wg
		if err := r.pool.Invoke(param); err != nil {
			// Submission failed; account for the case synchronously.
			results[i] = &evalrun.CaseResult{
				CaseID:      tc.ID,
				Topic:       tc.Metadata.Topic,
				RunnerError: fmt.Sprintf("submit case: %v", err),
			}
			param.reset()
			caseInferenceParamPool.Put(param)
			wg.Done()
		}
	}
	wg.Wait()
	compacted := make([]*evalrun.CaseResult, 0, len(results))
	for _, res := range results {
		if res != nil {
			compacted = append(compacted, res)
		}
	}
	return compacted
}

// Close releases the worker pool.
func (r *Runner) Close() error {
	if r.pool != nil {
		r.pool.Release()
	}
	return nil
}

// inferCase answers one case. Returns nil when cancelled before the model
// call so the case is not misreported as a failure.
func (r *Runner) inferCase(ctx context.Context, tc *dataset.TestCase) *evalrun.CaseResult {
	if ctx.Err() != nil {
		return nil
	}
	result := &evalrun.CaseResult{
		CaseID: tc.ID,
		Topic:  tc.Metadata.Topic,
	}
	answer, err := r.answer(ctx, tc)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		log.Warnf("case %s failed after retries: %v", tc.ID, err)
		result.RunnerError = err.Error()
		return result
	}
	result.AgentAnswer = &answer
	return result
}

// answer runs the retrieval-augmented pipeline for one question.
func (r *Runner) answer(ctx context.Context, tc *dataset.TestCase) (string, error) {
	ctx, span := telemetry.StartSpan(ctx, telemetry.SpanCaseInference, telemetry.KeyCaseID.String(tc.ID))
	defer span.End()
	query, err := r.opts.rewriter.Rewrite(ctx, tc.Question, tc.ConversationHistory)
	if err != nil {
		return "", fmt.Errorf("rewrite query: %w", err)
	}
	var docs []string
	if r.opts.retriever != nil {
		err = r.opts.retryPolicy.Do(ctx, "retrieval", func(ctx context.Context) error {
			if err := r.opts.limiter.Wait(ctx); err != nil {
				return err
			}
			var rerr error
			docs, rerr = r.retrieve(ctx, query)
			return rerr
		})
		if err != nil {
			return "", fmt.Errorf("retrieve context: %w", err)
		}
	}
	text, err := prompt.Answer(prompt.AnswerData{Documents: docs, Question: tc.Question})
	if err != nil {
		return "", err
	}
	var answer string
	err = r.opts.retryPolicy.Do(ctx, "case inference", func(ctx context.Context) error {
		if err := r.opts.limiter.Wait(ctx); err != nil {
			return err
		}
		telemetry.CountModelCall(ctx, r.opts.model.Info().Name)
		rsp, err := r.opts.model.GenerateContent(ctx, &model.Request{
			Messages:         []model.Message{model.NewUserMessage(text)},
			GenerationConfig: r.opts.generationConfig,
		})
		if err != nil {
			return fmt.Errorf("generate content: %w", err)
		}
		if rsp.Error != nil {
			return fmt.Errorf("generate content: %s", rsp.Error.Message)
		}
		answer = rsp.Content()
		return nil
	})
	if err != nil {
		return "", err
	}
	return answer, nil
}

func (r *Runner) retrieve(ctx context.Context, query string) ([]string, error) {
	ctx, span := telemetry.StartSpan(ctx, telemetry.SpanRetrieval)
	defer span.End()
	res, err := r.opts.retriever.Retrieve(ctx, &retriever.Query{
		Text:     query,
		Limit:    r.opts.topK,
		Strategy: r.opts.strategy,
	})
	if err != nil {
		return nil, err
	}
	docs := make([]string, 0, len(res.Documents))
	for _, rd := range res.Documents {
		docs = append(docs, rd.Document.Content)
	}
	return docs, nil
}
