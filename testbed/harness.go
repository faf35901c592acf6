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
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"trpc.group/trpc-go/trpc-rageval-go/log"
	"trpc.group/trpc-go/trpc-rageval-go/testbed/dataset"
	"trpc.group/trpc-go/trpc-rageval-go/testbed/evalrun"
	"trpc.group/trpc-go/trpc-rageval-go/testbed/judge"
	"trpc.group/trpc-go/trpc-rageval-go/telemetry"
)

// Harness evaluates a dataset: it answers every active case through the
// runner, judges the answers, and persists the run.
type Harness struct {
	opts      *harnessOptions
	judgePool *ants.PoolWithFunc
}

// NewHarness creates a harness from the supplied options. Runner, judge,
// dataset manager and run manager are all required.
func NewHarness(opt ...HarnessOption) (*Harness, error) {
	opts := newHarnessOptions(opt...)
	if opts.runner == nil {
		return nil, errors.New("runner is nil")
	}
	if opts.judge == nil {
		return nil, errors.New("judge is nil")
	}
	if opts.datasetManager == nil {
		return nil, errors.New("dataset manager is nil")
	}
	if opts.runManager == nil {
		return nil, errors.New("run manager is nil")
	}
	if opts.judgeParallelism <= 0 {
		return nil, errors.New("judge parallelism must be greater than 0")
	}
	h := &Harness{opts: opts}
	pool, err := createJudgePool(opts.judgeParallelism)
	if err != nil {
		return nil, err
	}
	h.judgePool = pool
	return h, nil
}

// Close releases the judge pool.
func (h *Harness) Close() error {
	if h.judgePool != nil {
		h.judgePool.Release()
	}
	return nil
}

// Evaluate runs the dataset under the given configuration snapshot and
// stores the run. Excluded cases are skipped. Per-case failures are recorded
// in the run, never raised. On cancellation the stored run keeps every
// result produced so far and is flagged cancelled; no error is returned for
// that.
func (h *Harness) Evaluate(ctx context.Context, datasetID string, cfg evalrun.RunConfig) (*evalrun.Run, error) {
	ds, err := h.opts.datasetManager.Get(ctx, datasetID)
	if err != nil {
		return nil, fmt.Errorf("get dataset %s: %w", datasetID, err)
	}
	active := ds.ActiveCases()
	run, err := h.opts.runManager.Create(ctx, &evalrun.Run{
		DatasetID: datasetID,
		Config:    cfg,
		Status:    evalrun.RunStatusRunning,
	})
	if err != nil {
		return nil, fmt.Errorf("create run: %w", err)
	}

	results := h.opts.runner.Run(ctx, active)
	h.judgeResults(ctx, active, results)

	run.Results = results
	run.CompletionTimestamp = time.Now()
	if ctx.Err() != nil {
		run.Status = evalrun.RunStatusCancelled
		log.Infof("run %s cancelled with %d of %d results", run.ID, len(results), len(active))
	} else {
		run.Status = evalrun.RunStatusCompleted
	}
	stored, err := h.opts.runManager.Update(context.WithoutCancel(ctx), run)
	if err != nil {
		return nil, fmt.Errorf("store run %s: %w", run.ID, err)
	}
	return stored, nil
}

// judgeResults applies the judge to every answered case in place.
func (h *Harness) judgeResults(ctx context.Context, cases []*dataset.TestCase, results []*evalrun.CaseResult) {
	byID := make(map[string]*dataset.TestCase, len(cases))
	for _, tc := range cases {
		byID[tc.ID] = tc
	}
	var wg sync.WaitGroup
	for _, res := range results {
		if res.AgentAnswer == nil {
			continue
		}
		tc, ok := byID[res.CaseID]
		if !ok {
			continue
		}
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		param := judgeParamPool.Get().(*judgeParam)
		param.ctx = ctx
		param.harness = h
		param.testCase = tc
		param.result = res
		param.wg = &wg
		if err := h.judgePool.Invoke(param); err != nil {
			log.Errorf("submit case %s to judge pool: %v", res.CaseID, err)
			param.reset()
			judgeParamPool.Put(param)
			wg.Done()
		}
	}
	wg.Wait()
}

// judgeCase scores one answered case. Judge transport failures leave the
// verdict indeterminate so the case is counted but not scored.
func (h *Harness) judgeCase(ctx context.Context, tc *dataset.TestCase, res *evalrun.CaseResult) {
	if ctx.Err() != nil {
		return
	}
	ctx, span := telemetry.StartSpan(ctx, telemetry.SpanJudge, telemetry.KeyCaseID.String(tc.ID))
	defer span.End()
	verdict, err := h.opts.judge.Evaluate(ctx, tc.Question, tc.ReferenceAnswer, *res.AgentAnswer)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		log.Warnf("judging case %s failed: %v", res.CaseID, err)
		res.Verdict = judge.VerdictIndeterminate
		telemetry.CountVerdict(ctx, res.Verdict.String())
		return
	}
	res.Verdict = verdict.Verdict
	res.Reason = verdict.Reason
	telemetry.CountVerdict(ctx, res.Verdict.String())
}
