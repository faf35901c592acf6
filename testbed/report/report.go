//
// Tencent is pleased to support the open source community by making trpc-rageval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rageval-go is licensed under the Apache License Version 2.0.
//
//

// Package report aggregates evaluation runs into reports, compares runs, and
// exports both in several formats.
package report

import (
	"errors"
	"sort"
	"time"

	"trpc.group/trpc-go/trpc-rageval-go/testbed/dataset"
	"trpc.group/trpc-go/trpc-rageval-go/testbed/evalrun"
	"trpc.group/trpc-go/trpc-rageval-go/testbed/judge"
)

// Supported export formats.
const (
	FormatJSON     = "json"
	FormatCSV      = "csv"
	FormatMarkdown = "markdown"
	FormatHTML     = "html"
	FormatPDF      = "pdf"
)

// Failure is a case that needs attention: a wrong answer or a case the
// runner could not answer at all.
type Failure struct {
	// CaseID references the test case.
	CaseID string `json:"case_id"`
	// Topic of the case.
	Topic string `json:"topic,omitempty"`
	// Verdict for the case.
	Verdict judge.Verdict `json:"verdict"`
	// Reason is the judge's justification, when there is one.
	Reason string `json:"reason,omitempty"`
	// RunnerError is set when the case produced no answer.
	RunnerError string `json:"runner_error,omitempty"`
}

// Row is one line of the full tabular report: a case joined with its result.
type Row struct {
	// CaseID references the test case.
	CaseID string `json:"case_id"`
	// Question posed to the agent.
	Question string `json:"question"`
	// ReferenceAnswer is the ground truth.
	ReferenceAnswer string `json:"reference_answer"`
	// ReferenceContext is the source passage.
	ReferenceContext string `json:"reference_context"`
	// AgentAnswer is empty when the runner produced no answer.
	AgentAnswer string `json:"agent_answer"`
	// Verdict for the case.
	Verdict judge.Verdict `json:"verdict"`
	// Reason is the judge's justification.
	Reason string `json:"reason,omitempty"`
	// RunnerError is set when the case produced no answer.
	RunnerError string `json:"runner_error,omitempty"`
}

// Report is the aggregated view of one run.
type Report struct {
	// RunID references the run.
	RunID string `json:"run_id"`
	// DatasetID references the evaluated dataset.
	DatasetID string `json:"dataset_id"`
	// Config is the run's configuration snapshot.
	Config evalrun.RunConfig `json:"config"`
	// Status of the run; a cancelled run still reports its partial results.
	Status evalrun.RunStatus `json:"status"`
	// Summary holds the derived scores.
	Summary *evalrun.Summary `json:"summary"`
	// Failures lists incorrect and unanswered cases.
	Failures []*Failure `json:"failures"`
	// Rows is the full per-case table, present when the report was built
	// with access to the dataset.
	Rows []*Row `json:"rows,omitempty"`
	// GeneratedAt is when the report was built.
	GeneratedAt time.Time `json:"generated_at"`
}

// New builds a report from a run.
func New(run *evalrun.Run) (*Report, error) {
	if run == nil {
		return nil, errors.New("run is nil")
	}
	r := &Report{
		RunID:       run.ID,
		DatasetID:   run.DatasetID,
		Config:      run.Config,
		Status:      run.Status,
		Summary:     run.Summarize(),
		GeneratedAt: time.Now(),
	}
	for _, cr := range run.Results {
		if cr.Verdict != judge.VerdictIncorrect && cr.RunnerError == "" {
			continue
		}
		r.Failures = append(r.Failures, &Failure{
			CaseID:      cr.CaseID,
			Topic:       cr.Topic,
			Verdict:     cr.Verdict,
			Reason:      cr.Reason,
			RunnerError: cr.RunnerError,
		})
	}
	return r, nil
}

// NewDetailed builds a report with the full per-case table, joining each
// result with its test case. Results for cases no longer in the dataset keep
// a row with the case fields blank.
func NewDetailed(run *evalrun.Run, ds *dataset.Dataset) (*Report, error) {
	r, err := New(run)
	if err != nil {
		return nil, err
	}
	if ds == nil {
		return nil, errors.New("dataset is nil")
	}
	for _, cr := range run.Results {
		row := &Row{
			CaseID:      cr.CaseID,
			Verdict:     cr.Verdict,
			Reason:      cr.Reason,
			RunnerError: cr.RunnerError,
		}
		if cr.AgentAnswer != nil {
			row.AgentAnswer = *cr.AgentAnswer
		}
		if tc := ds.Case(cr.CaseID); tc != nil {
			row.Question = tc.Question
			row.ReferenceAnswer = tc.ReferenceAnswer
			row.ReferenceContext = tc.ReferenceContext
		}
		r.Rows = append(r.Rows, row)
	}
	return r, nil
}

// VerdictFlip is a case whose verdict changed between two runs.
type VerdictFlip struct {
	// CaseID references the test case.
	CaseID string `json:"case_id"`
	// Baseline is the verdict in the baseline run.
	Baseline judge.Verdict `json:"baseline"`
	// Candidate is the verdict in the candidate run.
	Candidate judge.Verdict `json:"candidate"`
}

// Comparison is a side-by-side view of two runs over the same dataset.
type Comparison struct {
	// BaselineRunID references the baseline run.
	BaselineRunID string `json:"baseline_run_id"`
	// CandidateRunID references the candidate run.
	CandidateRunID string `json:"candidate_run_id"`
	// BaselineSummary holds the baseline scores.
	BaselineSummary *evalrun.Summary `json:"baseline_summary"`
	// CandidateSummary holds the candidate scores.
	CandidateSummary *evalrun.Summary `json:"candidate_summary"`
	// ScoreDiff is candidate score minus baseline score.
	ScoreDiff float64 `json:"score_diff"`
	// TopicScoreDiff is the per-topic score difference, for topics present
	// in both runs.
	TopicScoreDiff map[string]float64 `json:"topic_score_diff,omitempty"`
	// Flips lists the cases whose verdict changed, sorted by case id.
	Flips []*VerdictFlip `json:"flips"`
}

// Compare builds a comparison of two runs. The runs must evaluate the same
// dataset; that is what makes per-case flips meaningful.
func Compare(baseline, candidate *evalrun.Run) (*Comparison, error) {
	if baseline == nil || candidate == nil {
		return nil, errors.New("both runs are required")
	}
	if baseline.DatasetID != candidate.DatasetID {
		return nil, errors.New("runs evaluate different datasets")
	}
	bs := baseline.Summarize()
	cs := candidate.Summarize()
	c := &Comparison{
		BaselineRunID:    baseline.ID,
		CandidateRunID:   candidate.ID,
		BaselineSummary:  bs,
		CandidateSummary: cs,
		ScoreDiff:        cs.Score - bs.Score,
		TopicScoreDiff:   make(map[string]float64),
	}
	for topic, bts := range bs.PerTopic {
		if cts, ok := cs.PerTopic[topic]; ok {
			c.TopicScoreDiff[topic] = cts.Score - bts.Score
		}
	}
	for _, br := range baseline.Results {
		cr := candidate.Result(br.CaseID)
		if cr == nil || cr.Verdict == br.Verdict {
			continue
		}
		c.Flips = append(c.Flips, &VerdictFlip{
			CaseID:    br.CaseID,
			Baseline:  br.Verdict,
			Candidate: cr.Verdict,
		})
	}
	sort.Slice(c.Flips, func(i, j int) bool { return c.Flips[i].CaseID < c.Flips[j].CaseID })
	return c, nil
}
