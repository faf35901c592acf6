//
// Tencent is pleased to support the open source community by making trpc-rageval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rageval-go is licensed under the Apache License Version 2.0.
//
//

// Package evalrun defines evaluation runs: the configuration snapshot, the
// per-case results and the derived scores.
package evalrun

import (
	"sort"
	"strings"
	"time"

	"trpc.group/trpc-go/trpc-rageval-go/knowledge/vectorstore"
	"trpc.group/trpc-go/trpc-rageval-go/model"
	"trpc.group/trpc-go/trpc-rageval-go/testbed/judge"
)

// RunStatus describes the lifecycle state of a run.
type RunStatus int

// RunStatus values.
const (
	RunStatusRunning RunStatus = iota
	RunStatusCompleted
	RunStatusCancelled
)

// String implements the fmt.Stringer interface.
func (s RunStatus) String() string {
	switch s {
	case RunStatusRunning:
		return "running"
	case RunStatusCompleted:
		return "completed"
	case RunStatusCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes the status as its string form.
func (s RunStatus) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// UnmarshalJSON decodes the status from its string form.
func (s *RunStatus) UnmarshalJSON(data []byte) error {
	switch strings.Trim(string(data), `"`) {
	case "completed":
		*s = RunStatusCompleted
	case "cancelled":
		*s = RunStatusCancelled
	default:
		*s = RunStatusRunning
	}
	return nil
}

// ModelConfig identifies a model and its sampling parameters.
type ModelConfig struct {
	// Name of the model as the provider knows it.
	Name string `json:"name"`
	// GenerationConfig holds the sampling parameters.
	GenerationConfig model.GenerationConfig `json:"generation_config,omitempty"`
}

// RunConfig is the configuration snapshot a run is keyed by. Two runs with
// the same dataset and different configs are what comparison is for.
type RunConfig struct {
	// ChatModel answers the questions.
	ChatModel ModelConfig `json:"chat_model"`
	// JudgeModel scores the answers.
	JudgeModel ModelConfig `json:"judge_model"`
	// Collection is the retrieval collection the run searched.
	Collection string `json:"collection,omitempty"`
	// Strategy is the vector search strategy.
	Strategy vectorstore.SearchStrategy `json:"strategy,omitempty"`
	// TopK passages are retrieved per question.
	TopK int `json:"top_k,omitempty"`
	// RetrievalEnabled is false for a no-retrieval baseline run.
	RetrievalEnabled bool `json:"retrieval_enabled"`
}

// CaseResult is the outcome for one test case.
type CaseResult struct {
	// CaseID references the test case.
	CaseID string `json:"case_id"`
	// AgentAnswer is nil when the runner could not obtain an answer.
	AgentAnswer *string `json:"agent_answer"`
	// Verdict is the judge's decision.
	Verdict judge.Verdict `json:"verdict"`
	// Reason is the judge's justification.
	Reason string `json:"reason,omitempty"`
	// RunnerError describes an inference failure after retries.
	RunnerError string `json:"runner_error,omitempty"`
	// Topic is copied from the case for per-topic aggregation.
	Topic string `json:"topic,omitempty"`
}

// Run is one evaluation of a dataset under a configuration snapshot.
type Run struct {
	// ID uniquely identifies the run.
	ID string `json:"id"`
	// DatasetID references the evaluated dataset.
	DatasetID string `json:"dataset_id"`
	// Config is the configuration snapshot.
	Config RunConfig `json:"config"`
	// Results holds one entry per evaluated case, append-only.
	Results []*CaseResult `json:"results"`
	// Status of the run. A cancelled run keeps its partial results.
	Status RunStatus `json:"status"`
	// CreationTimestamp when the run started.
	CreationTimestamp time.Time `json:"creation_timestamp"`
	// CompletionTimestamp when the run finished or was cancelled.
	CompletionTimestamp time.Time `json:"completion_timestamp,omitzero"`
}

// Result returns the case result for caseID, or nil.
func (r *Run) Result(caseID string) *CaseResult {
	for _, cr := range r.Results {
		if cr.CaseID == caseID {
			return cr
		}
	}
	return nil
}

// TopicSummary aggregates verdicts for one topic.
type TopicSummary struct {
	// Total cases under the topic.
	Total int `json:"total"`
	// Correct verdict count.
	Correct int `json:"correct"`
	// Incorrect verdict count.
	Incorrect int `json:"incorrect"`
	// Indeterminate verdict count, excluded from the score.
	Indeterminate int `json:"indeterminate"`
	// Score is Correct / (Correct + Incorrect); zero when nothing was
	// scorable.
	Score float64 `json:"score"`
}

// Summary holds the derived scores for a run.
type Summary struct {
	// Total result count.
	Total int `json:"total"`
	// Correct verdict count.
	Correct int `json:"correct"`
	// Incorrect verdict count.
	Incorrect int `json:"incorrect"`
	// Indeterminate verdict count. Counted, never scored.
	Indeterminate int `json:"indeterminate"`
	// RunnerErrors counts cases with no answer to judge.
	RunnerErrors int `json:"runner_errors"`
	// Score is Correct / (Correct + Incorrect); zero when nothing was
	// scorable.
	Score float64 `json:"score"`
	// PerTopic breaks the counts down by topic label.
	PerTopic map[string]*TopicSummary `json:"per_topic"`
}

// Topics returns the summary's topic labels in sorted order.
func (s *Summary) Topics() []string {
	topics := make([]string, 0, len(s.PerTopic))
	for topic := range s.PerTopic {
		topics = append(topics, topic)
	}
	sort.Strings(topics)
	return topics
}

// Summarize derives the run's scores. Indeterminate verdicts appear in the
// counts but in neither the numerator nor the denominator of any score.
func (r *Run) Summarize() *Summary {
	s := &Summary{PerTopic: make(map[string]*TopicSummary)}
	for _, cr := range r.Results {
		s.Total++
		if cr.RunnerError != "" {
			s.RunnerErrors++
		}
		topic := cr.Topic
		ts := s.PerTopic[topic]
		if ts == nil {
			ts = &TopicSummary{}
			s.PerTopic[topic] = ts
		}
		ts.Total++
		switch cr.Verdict {
		case judge.VerdictCorrect:
			s.Correct++
			ts.Correct++
		case judge.VerdictIncorrect:
			s.Incorrect++
			ts.Incorrect++
		case judge.VerdictIndeterminate:
			s.Indeterminate++
			ts.Indeterminate++
		}
	}
	s.Score = score(s.Correct, s.Incorrect)
	for _, ts := range s.PerTopic {
		ts.Score = score(ts.Correct, ts.Incorrect)
	}
	return s
}

func score(correct, incorrect int) float64 {
	if correct+incorrect == 0 {
		return 0
	}
	return float64(correct) / float64(correct+incorrect)
}
