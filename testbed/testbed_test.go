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
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"trpc.group/trpc-go/trpc-rageval-go/internal/retry"
	"trpc.group/trpc-go/trpc-rageval-go/knowledge/document"
	"trpc.group/trpc-go/trpc-rageval-go/model"
	"trpc.group/trpc-go/trpc-rageval-go/testbed/dataset"
	datasetmem "trpc.group/trpc-go/trpc-rageval-go/testbed/dataset/inmemory"
	"trpc.group/trpc-go/trpc-rageval-go/testbed/evalrun"
	runmem "trpc.group/trpc-go/trpc-rageval-go/testbed/evalrun/inmemory"
	"trpc.group/trpc-go/trpc-rageval-go/testbed/judge"
	"trpc.group/trpc-go/trpc-rageval-go/testbed/runner"
	"trpc.group/trpc-go/trpc-rageval-go/testbed/seed"
	"trpc.group/trpc-go/trpc-rageval-go/testbed/synth"
	"trpc.group/trpc-go/trpc-rageval-go/testbed/topic"
)

// funcModel dispatches generation to a function.
type funcModel struct {
	fn func(req *model.Request) (*model.Response, error)
}

func (m *funcModel) GenerateContent(_ context.Context, req *model.Request) (*model.Response, error) {
	return m.fn(req)
}

func (m *funcModel) Info() model.Info { return model.Info{Name: "func"} }

func reply(content string) (*model.Response, error) {
	return &model.Response{
		Choices: []model.Choice{{Message: model.NewAssistantMessage(content)}},
	}, nil
}

func fastPolicy() *retry.Policy {
	return retry.NewPolicy(1, time.Millisecond)
}

// genModel serves synthesis, topic discovery and topic assignment prompts.
// idx tracks synthetic question numbering so case questions stay distinct.
func genModel(t *testing.T) *funcModel {
	idx := 0
	return &funcModel{fn: func(req *model.Request) (*model.Response, error) {
		text := req.Messages[len(req.Messages)-1].Content
		switch {
		case strings.Contains(text, "poison"):
			return nil, errors.New("provider rejected the passage")
		case strings.Contains(text, "propose at most"):
			return reply(`["general"]`)
		case strings.Contains(text, "exactly one topic"):
			return reply("general")
		default:
			idx++
			return reply(`{"question": "generated question ` +
				strings.Repeat("i", idx) + `", "answer": "generated answer"}`)
		}
	}}
}

func chunk(text string) *document.Document {
	return &document.Document{Content: text + strings.Repeat(" filler text to pass the length gate", 2)}
}

func newGenerator(t *testing.T, mgr dataset.Manager) *Generator {
	t.Helper()
	m := genModel(t)
	s, err := synth.New(m, synth.WithRetryPolicy(fastPolicy()))
	require.NoError(t, err)
	tg, err := topic.New(m, topic.WithRetryPolicy(fastPolicy()))
	require.NoError(t, err)
	g, err := NewGenerator(
		WithSynthesizer(s),
		WithTagger(tg),
		WithDatasetManager(mgr),
		WithExtractor(seed.New()),
	)
	require.NoError(t, err)
	return g
}

func TestGeneratorGenerate(t *testing.T) {
	mgr := datasetmem.New()
	g := newGenerator(t, mgr)

	ds, report, err := g.Generate(context.Background(), &GenerateRequest{
		Name:       "docs",
		DocumentID: "doc-1",
		Chunks:     []*document.Document{chunk("alpha"), chunk("beta"), chunk("gamma")},
		Count:      3,
	})
	require.NoError(t, err)
	require.Nil(t, report.PartialYield)
	require.Empty(t, report.Failures)
	require.Len(t, ds.Cases, 3)
	for _, tc := range ds.Cases {
		require.NotEmpty(t, tc.ID)
		require.NotEmpty(t, tc.Question)
		require.NotEmpty(t, tc.ReferenceAnswer)
		require.NotEmpty(t, tc.ReferenceContext)
		require.Equal(t, "General", tc.Metadata.Topic)
	}

	stored, err := mgr.Get(context.Background(), ds.ID)
	require.NoError(t, err)
	require.Equal(t, "doc-1", stored.DocumentID)
}

func TestGeneratorPartialYield(t *testing.T) {
	g := newGenerator(t, datasetmem.New())
	ds, report, err := g.Generate(context.Background(), &GenerateRequest{
		DocumentID: "doc-1",
		Chunks:     []*document.Document{chunk("alpha"), chunk("beta")},
		Count:      5,
	})
	require.NoError(t, err)
	require.NotNil(t, report.PartialYield)
	require.Equal(t, 5, report.PartialYield.Requested)
	require.Equal(t, 2, report.PartialYield.Yielded)
	require.Len(t, ds.Cases, 2)
}

func TestGeneratorContainsSynthesisFailure(t *testing.T) {
	g := newGenerator(t, datasetmem.New())
	ds, report, err := g.Generate(context.Background(), &GenerateRequest{
		DocumentID: "doc-1",
		Chunks:     []*document.Document{chunk("alpha"), chunk("poison"), chunk("gamma")},
		Count:      3,
	})
	require.NoError(t, err)
	require.Len(t, report.Failures, 1)
	require.Len(t, ds.Cases, 2)
}

func TestGeneratorValidation(t *testing.T) {
	_, err := NewGenerator()
	require.Error(t, err)
	g := newGenerator(t, datasetmem.New())
	_, _, err = g.Generate(context.Background(), nil)
	require.Error(t, err)
	_, _, err = g.Generate(context.Background(), &GenerateRequest{
		DocumentID: "doc-1",
		Chunks:     []*document.Document{{Content: "tiny"}},
		Count:      2,
	})
	require.Error(t, err)
}

// seedDataset stores a dataset with three cases, one excluded.
func seedDataset(t *testing.T, mgr dataset.Manager) *dataset.Dataset {
	t.Helper()
	ds, err := mgr.Create(context.Background(), &dataset.Dataset{
		Name: "eval",
		Cases: []*dataset.TestCase{
			{ID: "c1", Question: "q1", ReferenceAnswer: "a1", ReferenceContext: "ctx", Metadata: dataset.Metadata{Topic: "T"}},
			{ID: "c2", Question: "q2", ReferenceAnswer: "a2", ReferenceContext: "ctx", Metadata: dataset.Metadata{Topic: "T"}},
			{ID: "c3", Question: "q3", ReferenceAnswer: "a3", ReferenceContext: "ctx", Metadata: dataset.Metadata{Topic: "T"}, Excluded: true},
		},
	})
	require.NoError(t, err)
	return ds
}

func newHarness(t *testing.T, chat, judgeModel *funcModel, dsMgr dataset.Manager, runMgr evalrun.Manager) *Harness {
	t.Helper()
	r, err := runner.New(chat,
		runner.WithRetryPolicy(fastPolicy()),
		runner.WithRequestsPerMinute(600000),
	)
	require.NoError(t, err)
	j, err := judge.New(judgeModel, judge.WithRetryPolicy(fastPolicy()))
	require.NoError(t, err)
	h, err := NewHarness(
		WithRunner(r),
		WithJudge(j),
		WithHarnessDatasetManager(dsMgr),
		WithRunManager(runMgr),
	)
	require.NoError(t, err)
	return h
}

func correctJudge() *funcModel {
	return &funcModel{fn: func(_ *model.Request) (*model.Response, error) {
		return reply("reasoning: matches the reference\nverdict: correct")
	}}
}

func TestHarnessEvaluate(t *testing.T) {
	dsMgr := datasetmem.New()
	runMgr := runmem.New()
	ds := seedDataset(t, dsMgr)

	chat := &funcModel{fn: func(_ *model.Request) (*model.Response, error) {
		return reply("an answer")
	}}
	h := newHarness(t, chat, correctJudge(), dsMgr, runMgr)
	defer h.Close()

	cfg := evalrun.RunConfig{
		ChatModel:  evalrun.ModelConfig{Name: "chat"},
		JudgeModel: evalrun.ModelConfig{Name: "judge"},
	}
	run, err := h.Evaluate(context.Background(), ds.ID, cfg)
	require.NoError(t, err)
	require.Equal(t, evalrun.RunStatusCompleted, run.Status)
	require.Equal(t, cfg, run.Config)
	// The excluded case is skipped.
	require.Len(t, run.Results, 2)
	for _, res := range run.Results {
		require.NotEqual(t, "c3", res.CaseID)
		require.Equal(t, judge.VerdictCorrect, res.Verdict)
		require.Empty(t, res.Reason)
	}
	require.InDelta(t, 1.0, run.Summarize().Score, 1e-9)

	// The run is persisted.
	stored, err := runMgr.Get(context.Background(), run.ID)
	require.NoError(t, err)
	require.Equal(t, evalrun.RunStatusCompleted, stored.Status)
	require.Len(t, stored.Results, 2)

	// Re-including the excluded case brings it back into the next run.
	included := false
	_, err = dsMgr.Edit(context.Background(), ds.ID, "c3", &dataset.CaseEdit{Excluded: &included})
	require.NoError(t, err)
	rerun, err := h.Evaluate(context.Background(), ds.ID, cfg)
	require.NoError(t, err)
	require.Len(t, rerun.Results, 3)
	require.NotNil(t, rerun.Result("c3"))
}

func TestHarnessPerCaseFailureIsContained(t *testing.T) {
	dsMgr := datasetmem.New()
	runMgr := runmem.New()
	ds := seedDataset(t, dsMgr)

	chat := &funcModel{fn: func(req *model.Request) (*model.Response, error) {
		if strings.Contains(req.Messages[len(req.Messages)-1].Content, "q2") {
			return nil, errors.New("provider exploded")
		}
		return reply("an answer")
	}}
	h := newHarness(t, chat, correctJudge(), dsMgr, runMgr)
	defer h.Close()

	run, err := h.Evaluate(context.Background(), ds.ID, evalrun.RunConfig{})
	require.NoError(t, err)
	require.Equal(t, evalrun.RunStatusCompleted, run.Status)
	require.Len(t, run.Results, 2)

	failed := run.Result("c2")
	require.NotNil(t, failed)
	require.Nil(t, failed.AgentAnswer)
	require.NotEmpty(t, failed.RunnerError)
	require.Equal(t, judge.VerdictNotEvaluated, failed.Verdict)

	ok := run.Result("c1")
	require.NotNil(t, ok)
	require.Equal(t, judge.VerdictCorrect, ok.Verdict)
}

func TestHarnessCancellationKeepsPartialRun(t *testing.T) {
	dsMgr := datasetmem.New()
	runMgr := runmem.New()
	ds := seedDataset(t, dsMgr)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	chat := &funcModel{fn: func(_ *model.Request) (*model.Response, error) {
		return reply("an answer")
	}}
	h := newHarness(t, chat, correctJudge(), dsMgr, runMgr)
	defer h.Close()

	run, err := h.Evaluate(ctx, ds.ID, evalrun.RunConfig{})
	require.NoError(t, err)
	require.Equal(t, evalrun.RunStatusCancelled, run.Status)
	require.Empty(t, run.Results)

	// The cancelled run is still persisted.
	stored, err := runMgr.Get(context.Background(), run.ID)
	require.NoError(t, err)
	require.Equal(t, evalrun.RunStatusCancelled, stored.Status)
}

func TestHarnessValidation(t *testing.T) {
	_, err := NewHarness()
	require.Error(t, err)
}

// promptField extracts the value of one labelled line of a rendered prompt.
func promptField(text, label string) string {
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(line, label) {
			return strings.TrimSpace(strings.TrimPrefix(line, label))
		}
	}
	return ""
}

// Two cases share a question; one reference context carries the asked fact,
// the other is unrelated and keeps a different reference answer. With
// retrieval disabled and deterministic stubs the first case scores correct,
// the second incorrect with a reason, for an overall score of 0.5.
func TestHarnessTablespaceScenario(t *testing.T) {
	dsMgr := datasetmem.New()
	runMgr := runmem.New()
	const question = "What tablespace is required for the admin user?"
	ds, err := dsMgr.Create(context.Background(), &dataset.Dataset{
		Name: "tablespace",
		Cases: []*dataset.TestCase{
			{
				ID:               "grounded",
				Question:         question,
				ReferenceAnswer:  "DATA",
				ReferenceContext: "The admin user requires the DATA tablespace.",
			},
			{
				ID:               "ungrounded",
				Question:         question,
				ReferenceAnswer:  "SYSAUX",
				ReferenceContext: "Backups run nightly and are kept for thirty days.",
			},
		},
	})
	require.NoError(t, err)

	chat := &funcModel{fn: func(req *model.Request) (*model.Response, error) {
		text := req.Messages[len(req.Messages)-1].Content
		if strings.Contains(text, "tablespace") {
			return reply("DATA")
		}
		return reply("I don't know.")
	}}
	judgeModel := &funcModel{fn: func(req *model.Request) (*model.Response, error) {
		text := req.Messages[len(req.Messages)-1].Content
		if promptField(text, "Agent answer:") == promptField(text, "Reference answer:") {
			return reply("reasoning: the key entity matches\nverdict: correct")
		}
		return reply("reasoning: the agent names a different tablespace\nverdict: incorrect")
	}}
	h := newHarness(t, chat, judgeModel, dsMgr, runMgr)
	defer h.Close()

	run, err := h.Evaluate(context.Background(), ds.ID, evalrun.RunConfig{RetrievalEnabled: false})
	require.NoError(t, err)
	require.Equal(t, evalrun.RunStatusCompleted, run.Status)
	require.Len(t, run.Results, 2)

	grounded := run.Result("grounded")
	require.NotNil(t, grounded)
	require.Equal(t, judge.VerdictCorrect, grounded.Verdict)
	require.Empty(t, grounded.Reason)

	ungrounded := run.Result("ungrounded")
	require.NotNil(t, ungrounded)
	require.Equal(t, judge.VerdictIncorrect, ungrounded.Verdict)
	require.Equal(t, "the agent names a different tablespace", ungrounded.Reason)

	require.InDelta(t, 0.5, run.Summarize().Score, 1e-9)
}
