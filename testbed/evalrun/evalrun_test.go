//
// Tencent is pleased to support the open source community by making trpc-rageval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rageval-go is licensed under the Apache License Version 2.0.
//
//

package evalrun

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"trpc.group/trpc-go/trpc-rageval-go/testbed/judge"
)

func answer(s string) *string { return &s }

func result(caseID string, verdict judge.Verdict, topic string) *CaseResult {
	return &CaseResult{
		CaseID:      caseID,
		AgentAnswer: answer("a"),
		Verdict:     verdict,
		Topic:       topic,
	}
}

func TestSummarizeScore(t *testing.T) {
	// 10 cases: 6 correct, 2 incorrect, 2 indeterminate. The score counts
	// only determinate verdicts: 6/8.
	run := &Run{}
	for i := 0; i < 6; i++ {
		run.Results = append(run.Results, result("", judge.VerdictCorrect, "t"))
	}
	for i := 0; i < 2; i++ {
		run.Results = append(run.Results, result("", judge.VerdictIncorrect, "t"))
	}
	for i := 0; i < 2; i++ {
		run.Results = append(run.Results, result("", judge.VerdictIndeterminate, "t"))
	}
	s := run.Summarize()
	require.Equal(t, 10, s.Total)
	require.Equal(t, 6, s.Correct)
	require.Equal(t, 2, s.Incorrect)
	require.Equal(t, 2, s.Indeterminate)
	require.InDelta(t, 0.75, s.Score, 1e-9)
}

func TestSummarizeScoreBounds(t *testing.T) {
	run := &Run{Results: []*CaseResult{
		result("c1", judge.VerdictCorrect, "a"),
		result("c2", judge.VerdictIncorrect, "a"),
		result("c3", judge.VerdictIndeterminate, "b"),
	}}
	s := run.Summarize()
	require.GreaterOrEqual(t, s.Score, 0.0)
	require.LessOrEqual(t, s.Score, 1.0)
	for _, ts := range s.PerTopic {
		require.GreaterOrEqual(t, ts.Score, 0.0)
		require.LessOrEqual(t, ts.Score, 1.0)
	}
}

func TestSummarizePerTopic(t *testing.T) {
	run := &Run{Results: []*CaseResult{
		result("c1", judge.VerdictCorrect, "weather"),
		result("c2", judge.VerdictIncorrect, "weather"),
		result("c3", judge.VerdictCorrect, "sports"),
		result("c4", judge.VerdictIndeterminate, "sports"),
	}}
	s := run.Summarize()
	require.Equal(t, []string{"sports", "weather"}, s.Topics())

	weather := s.PerTopic["weather"]
	require.Equal(t, 2, weather.Total)
	require.InDelta(t, 0.5, weather.Score, 1e-9)

	sports := s.PerTopic["sports"]
	require.Equal(t, 2, sports.Total)
	require.Equal(t, 1, sports.Indeterminate)
	require.InDelta(t, 1.0, sports.Score, 1e-9)
}

func TestSummarizeAllIndeterminate(t *testing.T) {
	run := &Run{Results: []*CaseResult{
		result("c1", judge.VerdictIndeterminate, "t"),
	}}
	s := run.Summarize()
	require.Equal(t, 1, s.Indeterminate)
	require.Zero(t, s.Score)
}

func TestSummarizeRunnerErrors(t *testing.T) {
	run := &Run{Results: []*CaseResult{
		{CaseID: "c1", Verdict: judge.VerdictNotEvaluated, RunnerError: "model unreachable", Topic: "t"},
		result("c2", judge.VerdictCorrect, "t"),
	}}
	s := run.Summarize()
	require.Equal(t, 1, s.RunnerErrors)
	require.Equal(t, 2, s.Total)
	require.InDelta(t, 1.0, s.Score, 1e-9)
}

func TestRunResultLookup(t *testing.T) {
	run := &Run{Results: []*CaseResult{result("c1", judge.VerdictCorrect, "t")}}
	require.NotNil(t, run.Result("c1"))
	require.Nil(t, run.Result("missing"))
}

func TestRunStatusJSON(t *testing.T) {
	data, err := json.Marshal(RunStatusCancelled)
	require.NoError(t, err)
	require.Equal(t, `"cancelled"`, string(data))

	var s RunStatus
	require.NoError(t, json.Unmarshal([]byte(`"completed"`), &s))
	require.Equal(t, RunStatusCompleted, s)
}

func TestRunJSONRoundTrip(t *testing.T) {
	run := &Run{
		ID:        "r1",
		DatasetID: "d1",
		Config: RunConfig{
			ChatModel:        ModelConfig{Name: "chat-model"},
			JudgeModel:       ModelConfig{Name: "judge-model"},
			Collection:       "docs",
			Strategy:         "mmr",
			TopK:             4,
			RetrievalEnabled: true,
		},
		Results: []*CaseResult{
			{CaseID: "c1", AgentAnswer: nil, Verdict: judge.VerdictNotEvaluated, RunnerError: "timeout"},
			result("c2", judge.VerdictCorrect, "t"),
		},
		Status: RunStatusCompleted,
	}
	data, err := json.Marshal(run)
	require.NoError(t, err)

	var got Run
	require.NoError(t, json.Unmarshal(data, &got))
	require.Equal(t, run.Config, got.Config)
	require.Equal(t, RunStatusCompleted, got.Status)
	require.Nil(t, got.Results[0].AgentAnswer)
	require.NotNil(t, got.Results[1].AgentAnswer)
	require.Equal(t, judge.VerdictCorrect, got.Results[1].Verdict)
}
