//
// Tencent is pleased to support the open source community by making trpc-rageval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rageval-go is licensed under the Apache License Version 2.0.
//
//

package judge

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"trpc.group/trpc-go/trpc-rageval-go/internal/retry"
	"trpc.group/trpc-go/trpc-rageval-go/model"
)

// fakeModel replays scripted outputs, one per call.
type fakeModel struct {
	outputs []string
	errs    []error
	calls   int
}

func (m *fakeModel) GenerateContent(_ context.Context, _ *model.Request) (*model.Response, error) {
	i := m.calls
	m.calls++
	if i < len(m.errs) && m.errs[i] != nil {
		return nil, m.errs[i]
	}
	out := ""
	if i < len(m.outputs) {
		out = m.outputs[i]
	}
	return &model.Response{
		Choices: []model.Choice{{Message: model.NewAssistantMessage(out)}},
	}, nil
}

func (m *fakeModel) Info() model.Info { return model.Info{Name: "fake-judge"} }

func fastRetry() Option {
	return WithRetryPolicy(retry.NewPolicy(2, time.Millisecond))
}

func TestEvaluateCorrect(t *testing.T) {
	fm := &fakeModel{outputs: []string{
		"reasoning: the key entity Paris is present\nverdict: correct",
	}}
	j, err := New(fm, fastRetry())
	require.NoError(t, err)
	res, err := j.Evaluate(context.Background(), "capital of France?", "Paris", "It is Paris.")
	require.NoError(t, err)
	require.Equal(t, VerdictCorrect, res.Verdict)
	// Correct answers carry no justification.
	require.Empty(t, res.Reason)
}

func TestEvaluateIncorrect(t *testing.T) {
	fm := &fakeModel{outputs: []string{
		"reasoning: units mismatch, miles vs km\nverdict: incorrect",
	}}
	j, err := New(fm, fastRetry())
	require.NoError(t, err)
	res, err := j.Evaluate(context.Background(), "q", "100 miles", "100 km")
	require.NoError(t, err)
	require.Equal(t, VerdictIncorrect, res.Verdict)
	require.Equal(t, "units mismatch, miles vs km", res.Reason)
}

func TestEvaluateUnparsableYieldsIndeterminate(t *testing.T) {
	fm := &fakeModel{outputs: []string{"I think the answer looks fine overall."}}
	j, err := New(fm, fastRetry())
	require.NoError(t, err)
	res, err := j.Evaluate(context.Background(), "q", "ref", "ans")
	require.NoError(t, err)
	require.Equal(t, VerdictIndeterminate, res.Verdict)
	require.Empty(t, res.Reason)
}

func TestEvaluateUnknownLabelYieldsIndeterminate(t *testing.T) {
	fm := &fakeModel{outputs: []string{"reasoning: hard to say\nverdict: maybe"}}
	j, err := New(fm, fastRetry())
	require.NoError(t, err)
	res, err := j.Evaluate(context.Background(), "q", "ref", "ans")
	require.NoError(t, err)
	require.Equal(t, VerdictIndeterminate, res.Verdict)
}

func TestEvaluateRetriesTransportErrors(t *testing.T) {
	fm := &fakeModel{
		errs:    []error{errors.New("status 429 too many requests")},
		outputs: []string{"", "reasoning: ok\nverdict: correct"},
	}
	j, err := New(fm, fastRetry())
	require.NoError(t, err)
	res, err := j.Evaluate(context.Background(), "q", "ref", "ans")
	require.NoError(t, err)
	require.Equal(t, VerdictCorrect, res.Verdict)
	require.Equal(t, 2, fm.calls)
}

func TestEvaluateTransportFailure(t *testing.T) {
	fm := &fakeModel{errs: []error{errors.New("boom")}}
	j, err := New(fm, fastRetry())
	require.NoError(t, err)
	_, err = j.Evaluate(context.Background(), "q", "ref", "ans")
	require.Error(t, err)
}

func TestExtractReasoningAndLabel(t *testing.T) {
	reasoning, label, err := extractReasoningAndLabel(
		"some preamble\nreasoning: aligned on all entities\nverdict: Correct\n")
	require.NoError(t, err)
	require.Equal(t, "aligned on all entities", reasoning)
	require.Equal(t, "correct", label)

	_, _, err = extractReasoningAndLabel("no block at all")
	require.ErrorIs(t, err, ErrParse)
}

func TestVerdictStringAndParse(t *testing.T) {
	for _, v := range []Verdict{VerdictNotEvaluated, VerdictCorrect, VerdictIncorrect, VerdictIndeterminate} {
		require.Equal(t, v, ParseVerdict(v.String()))
	}
	require.Equal(t, VerdictNotEvaluated, ParseVerdict("garbage"))
}

func TestVerdictJSONRoundTrip(t *testing.T) {
	data, err := json.Marshal(VerdictIndeterminate)
	require.NoError(t, err)
	require.Equal(t, `"indeterminate"`, string(data))

	var v Verdict
	require.NoError(t, json.Unmarshal([]byte(`"correct"`), &v))
	require.Equal(t, VerdictCorrect, v)
}

func TestNewRequiresModel(t *testing.T) {
	_, err := New(nil)
	require.Error(t, err)
}
