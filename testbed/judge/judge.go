//
// Tencent is pleased to support the open source community by making trpc-rageval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rageval-go is licensed under the Apache License Version 2.0.
//
//

// Package judge compares agent answers against reference answers through a
// judge model and emits three-valued verdicts.
package judge

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"trpc.group/trpc-go/trpc-rageval-go/log"
	"trpc.group/trpc-go/trpc-rageval-go/model"
	"trpc.group/trpc-go/trpc-rageval-go/testbed/prompt"
)

// ErrParse signals that the judge output did not contain a readable verdict.
var ErrParse = errors.New("judge output parse failure")

// Verdict is the judge's decision for one case.
type Verdict int

// Verdict values. Indeterminate is a first-class outcome: it means the judge
// could not be read, not that the answer was wrong.
const (
	VerdictNotEvaluated Verdict = iota
	VerdictCorrect
	VerdictIncorrect
	VerdictIndeterminate
)

// String implements the fmt.Stringer interface.
func (v Verdict) String() string {
	switch v {
	case VerdictNotEvaluated:
		return "not_evaluated"
	case VerdictCorrect:
		return "correct"
	case VerdictIncorrect:
		return "incorrect"
	case VerdictIndeterminate:
		return "indeterminate"
	default:
		return "unknown"
	}
}

// ParseVerdict converts a stored verdict string back to its value.
func ParseVerdict(s string) Verdict {
	switch s {
	case "correct":
		return VerdictCorrect
	case "incorrect":
		return VerdictIncorrect
	case "indeterminate":
		return VerdictIndeterminate
	default:
		return VerdictNotEvaluated
	}
}

// MarshalJSON encodes the verdict as its string form.
func (v Verdict) MarshalJSON() ([]byte, error) {
	return []byte(`"` + v.String() + `"`), nil
}

// UnmarshalJSON decodes the verdict from its string form.
func (v *Verdict) UnmarshalJSON(data []byte) error {
	*v = ParseVerdict(strings.Trim(string(data), `"`))
	return nil
}

// Result is the judge's output for one case.
type Result struct {
	// Verdict is the three-valued decision.
	Verdict Verdict `json:"verdict"`
	// Reason is the judge's brief justification, empty when indeterminate.
	Reason string `json:"reason,omitempty"`
}

const labelCorrect = "correct"

// verdictBlockRegex extracts the reasoning and verdict label from the judge
// response.
var verdictBlockRegex = regexp.MustCompile(
	`(?ms)reasoning:\s*(.*?)\s*` + // 1: reasoning text
		`verdict:\s*(.*?)\s*$`, // 2: verdict label
)

// Judge scores agent answers against reference answers.
type Judge struct {
	opts *options
}

// New creates a judge. The judge model is required.
func New(m model.Model, opt ...Option) (*Judge, error) {
	if m == nil {
		return nil, errors.New("model is required")
	}
	return &Judge{opts: newOptions(m, opt...)}, nil
}

// Evaluate judges one answer. Transport errors are retried and then returned
// to the caller; output the judge model produced but that cannot be parsed is
// not an error: it yields VerdictIndeterminate so downstream scoring can
// count it without guessing.
func (j *Judge) Evaluate(ctx context.Context, question, referenceAnswer, agentAnswer string) (*Result, error) {
	text, err := prompt.Judge(prompt.JudgeData{
		Question:        question,
		AgentAnswer:     agentAnswer,
		ReferenceAnswer: referenceAnswer,
	})
	if err != nil {
		return nil, err
	}
	var content string
	err = j.opts.retryPolicy.Do(ctx, "judge", func(ctx context.Context) error {
		rsp, err := j.opts.model.GenerateContent(ctx, &model.Request{
			Messages:         []model.Message{model.NewUserMessage(text)},
			GenerationConfig: j.opts.generationConfig,
		})
		if err != nil {
			return fmt.Errorf("generate content: %w", err)
		}
		if rsp.Error != nil {
			return fmt.Errorf("generate content: %s", rsp.Error.Message)
		}
		content = rsp.Content()
		return nil
	})
	if err != nil {
		return nil, err
	}
	reasoning, label, err := extractReasoningAndLabel(content)
	if err != nil {
		log.Warnf("unreadable judge output for question %q: %v", question, err)
		return &Result{Verdict: VerdictIndeterminate}, nil
	}
	// A reason accompanies only non-correct verdicts; correct answers carry
	// no justification in reports.
	if label == labelCorrect {
		return &Result{Verdict: VerdictCorrect}, nil
	}
	return &Result{Verdict: VerdictIncorrect, Reason: reasoning}, nil
}

// extractReasoningAndLabel parses judge output in text form.
func extractReasoningAndLabel(content string) (string, string, error) {
	matches := verdictBlockRegex.FindAllStringSubmatch(content, -1)
	if len(matches) < 1 {
		return "", "", fmt.Errorf("%w: no verdict block found", ErrParse)
	}
	reasoning := strings.TrimSpace(matches[0][1])
	label := strings.ToLower(strings.TrimSpace(matches[0][2]))
	if label != labelCorrect && label != "incorrect" {
		return "", "", fmt.Errorf("%w: unknown label %q", ErrParse, label)
	}
	return reasoning, label, nil
}
