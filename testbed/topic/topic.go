//
// Tencent is pleased to support the open source community by making trpc-rageval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rageval-go is licensed under the Apache License Version 2.0.
//
//

// Package topic discovers a bounded topic vocabulary for a batch of test
// cases and assigns every case exactly one label.
package topic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"trpc.group/trpc-go/trpc-rageval-go/log"
	"trpc.group/trpc-go/trpc-rageval-go/model"
	"trpc.group/trpc-go/trpc-rageval-go/testbed/dataset"
	"trpc.group/trpc-go/trpc-rageval-go/testbed/prompt"
)

// FallbackTopic is assigned when the model cannot produce a usable label.
// Every case carries a topic, so aggregation never sees an unlabeled case.
const FallbackTopic = "General"

var titleCaser = cases.Title(language.English)

// Tagger labels test cases with topics from a discovered vocabulary.
type Tagger struct {
	opts *options
}

// New creates a tagger. The generation model is required.
func New(m model.Model, opt ...Option) (*Tagger, error) {
	if m == nil {
		return nil, errors.New("model is required")
	}
	return &Tagger{opts: newOptions(m, opt...)}, nil
}

// Tag discovers a vocabulary over the batch and assigns one topic per case,
// mutating the cases in place. Labels are normalized so per-topic scores
// aggregate cleanly. Tagging the same cases again may yield a different
// vocabulary.
func (t *Tagger) Tag(ctx context.Context, testCases []*dataset.TestCase) error {
	if len(testCases) == 0 {
		return nil
	}
	questions := make([]string, 0, len(testCases))
	for _, tc := range testCases {
		questions = append(questions, tc.Question)
	}
	vocab, err := t.DiscoverVocabulary(ctx, questions)
	if err != nil {
		return fmt.Errorf("discover vocabulary: %w", err)
	}
	for _, tc := range testCases {
		if err := ctx.Err(); err != nil {
			return err
		}
		tc.Metadata.Topic = t.assign(ctx, tc.Question, vocab)
	}
	return nil
}

// DiscoverVocabulary asks the model for at most MaxTopics labels covering
// the questions.
func (t *Tagger) DiscoverVocabulary(ctx context.Context, questions []string) ([]string, error) {
	text, err := prompt.TopicDiscovery(prompt.TopicDiscoveryData{
		Questions: questions,
		MaxTopics: t.opts.maxTopics,
	})
	if err != nil {
		return nil, err
	}
	var vocab []string
	err = t.opts.retryPolicy.DoAll(ctx, "topic discovery", func(ctx context.Context) error {
		content, err := t.generate(ctx, text)
		if err != nil {
			return err
		}
		labels, err := parseLabels(content)
		if err != nil {
			return err
		}
		vocab = t.normalizeVocabulary(labels)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(vocab) == 0 {
		return []string{FallbackTopic}, nil
	}
	return vocab, nil
}

// assign labels one question, falling back to FallbackTopic when the model
// cannot name a vocabulary member.
func (t *Tagger) assign(ctx context.Context, question string, vocab []string) string {
	text, err := prompt.TopicAssign(prompt.TopicAssignData{Topics: vocab, Question: question})
	if err != nil {
		log.Warnf("render topic assignment prompt: %v", err)
		return FallbackTopic
	}
	var label string
	err = t.opts.retryPolicy.DoAll(ctx, "topic assignment", func(ctx context.Context) error {
		content, err := t.generate(ctx, text)
		if err != nil {
			return err
		}
		matched, ok := matchLabel(content, vocab)
		if !ok {
			return fmt.Errorf("label %q not in vocabulary", strings.TrimSpace(content))
		}
		label = matched
		return nil
	})
	if err != nil {
		log.Warnf("assigning fallback topic to question %q: %v", question, err)
		return FallbackTopic
	}
	return label
}

func (t *Tagger) generate(ctx context.Context, text string) (string, error) {
	rsp, err := t.opts.model.GenerateContent(ctx, &model.Request{
		Messages:         []model.Message{model.NewUserMessage(text)},
		GenerationConfig: t.opts.generationConfig,
	})
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	if rsp.Error != nil {
		return "", fmt.Errorf("generate content: %s", rsp.Error.Message)
	}
	return rsp.Content(), nil
}

// normalizeVocabulary normalizes casing, drops blanks and duplicates, and
// enforces the MaxTopics bound.
func (t *Tagger) normalizeVocabulary(labels []string) []string {
	seen := make(map[string]struct{})
	var vocab []string
	for _, label := range labels {
		normalized := Normalize(label)
		if normalized == "" {
			continue
		}
		if _, ok := seen[normalized]; ok {
			continue
		}
		seen[normalized] = struct{}{}
		vocab = append(vocab, normalized)
		if len(vocab) == t.opts.maxTopics {
			break
		}
	}
	return vocab
}

// Normalize canonicalizes a topic label: trimmed, collapsed whitespace,
// title-cased.
func Normalize(label string) string {
	fields := strings.Fields(label)
	if len(fields) == 0 {
		return ""
	}
	return titleCaser.String(strings.ToLower(strings.Join(fields, " ")))
}

// parseLabels extracts the JSON string array from model output, tolerating
// code fences and surrounding prose.
func parseLabels(content string) ([]string, error) {
	start := strings.Index(content, "[")
	end := strings.LastIndex(content, "]")
	if start < 0 || end < start {
		return nil, fmt.Errorf("no JSON array in model output")
	}
	var labels []string
	if err := json.Unmarshal([]byte(content[start:end+1]), &labels); err != nil {
		return nil, fmt.Errorf("decode topic labels: %w", err)
	}
	return labels, nil
}

// matchLabel maps raw model output onto a vocabulary member,
// case-insensitively.
func matchLabel(content string, vocab []string) (string, bool) {
	normalized := Normalize(content)
	for _, v := range vocab {
		if strings.EqualFold(v, normalized) {
			return v, true
		}
	}
	return "", false
}
