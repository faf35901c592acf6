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
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"

	"trpc.group/trpc-go/trpc-rageval-go/testbed/dataset"
	"trpc.group/trpc-go/trpc-rageval-go/testbed/evalrun"
)

type caseInferenceParam struct {
	idx      int
	ctx      context.Context
	runner   *Runner
	testCase *dataset.TestCase
	results  []*evalrun.CaseResult
	wg       *sync.WaitGroup
}

func (p *caseInferenceParam) reset() {
	p.idx = 0
	p.ctx = nil
	p.runner = nil
	p.testCase = nil
	p.results = nil
	p.wg = nil
}

var caseInferenceParamPool = &sync.Pool{
	New: func() any { return new(caseInferenceParam) },
}

func createCaseInferencePool(size int) (*ants.PoolWithFunc, error) {
	if size <= 0 {
		return nil, errors.New("pool size must be greater than 0")
	}
	pool, err := ants.NewPoolWithFunc(size, func(args any) {
		param, ok := args.(*caseInferenceParam)
		if !ok {
			panic("case inference pool args type error")
		}
		wg := param.wg
		defer func() {
			wg.Done()
			param.reset()
			caseInferenceParamPool.Put(param)
		}()
		param.results[param.idx] = param.runner.inferCase(param.ctx, param.testCase)
	})
	if err != nil {
		return nil, fmt.Errorf("create case inference pool: %w", err)
	}
	return pool, nil
}
