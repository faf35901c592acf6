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

	"github.com/panjf2000/ants/v2"

	"trpc.group/trpc-go/trpc-rageval-go/testbed/dataset"
	"trpc.group/trpc-go/trpc-rageval-go/testbed/evalrun"
)

type judgeParam struct {
	ctx      context.Context
	harness  *Harness
	testCase *dataset.TestCase
	result   *evalrun.CaseResult
	wg       *sync.WaitGroup
}

func (p *judgeParam) reset() {
	p.ctx = nil
	p.harness = nil
	p.testCase = nil
	p.result = nil
	p.wg = nil
}

var judgeParamPool = &sync.Pool{
	New: func() any { return new(judgeParam) },
}

func createJudgePool(size int) (*ants.PoolWithFunc, error) {
	if size <= 0 {
		return nil, errors.New("pool size must be greater than 0")
	}
	pool, err := ants.NewPoolWithFunc(size, func(args any) {
		param, ok := args.(*judgeParam)
		if !ok {
			panic("judge pool args type error")
		}
		wg := param.wg
		defer func() {
			wg.Done()
			param.reset()
			judgeParamPool.Put(param)
		}()
		param.harness.judgeCase(param.ctx, param.testCase, param.result)
	})
	if err != nil {
		return nil, fmt.Errorf("create judge pool: %w", err)
	}
	return pool, nil
}
