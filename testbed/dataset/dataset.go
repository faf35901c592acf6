//
// Tencent is pleased to support the open source community by making trpc-rageval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rageval-go is licensed under the Apache License Version 2.0.
//
//

// Package dataset provides the question/answer test dataset for evaluation.
package dataset

import (
	"sort"
	"time"

	"trpc.group/trpc-go/trpc-rageval-go/model"
)

// QuestionType classifies generated questions.
type QuestionType string

// Supported question types.
const (
	QuestionTypeSimple  QuestionType = "simple"
	QuestionTypeComplex QuestionType = "complex"
)

// IsValid checks if the question type is one of the defined constants.
func (q QuestionType) IsValid() bool {
	switch q {
	case QuestionTypeSimple, QuestionTypeComplex:
		return true
	default:
		return false
	}
}

// Metadata carries structured attributes of a test case.
type Metadata struct {
	// QuestionType classifies the question as simple or complex.
	QuestionType QuestionType `json:"question_type"`
	// SeedDocumentID is the stable index of the seed passage in the source
	// document's chunk sequence. Immutable after creation.
	SeedDocumentID int `json:"seed_document_id"`
	// Topic is the topic label from the dataset's topic vocabulary.
	Topic string `json:"topic"`
}

// TestCase is the unit of evaluation.
type TestCase struct {
	// ID uniquely identifies the test case within a dataset.
	ID string `json:"id"`
	// Question is the question posed to the agent.
	Question string `json:"question"`
	// ReferenceAnswer is the ground-truth answer.
	ReferenceAnswer string `json:"reference_answer"`
	// ReferenceContext is the source passage the question was derived from.
	// Immutable after creation.
	ReferenceContext string `json:"reference_context"`
	// ConversationHistory holds prior turns. Reserved for multi-turn
	// evaluation; the current scoring algorithm does not consume it.
	ConversationHistory []model.Message `json:"conversation_history"`
	// Metadata carries structured attributes.
	Metadata Metadata `json:"metadata"`
	// Excluded cases are retained but skipped during evaluation.
	Excluded bool `json:"excluded,omitempty"`
}

// Dataset is a named, ordered collection of test cases.
type Dataset struct {
	// ID uniquely identifies the dataset.
	ID string `json:"id"`
	// Name of the dataset.
	Name string `json:"name,omitempty"`
	// DocumentID identifies the source document the dataset was generated from.
	DocumentID string `json:"document_id,omitempty"`
	// Cases contains all test cases in insertion order.
	Cases []*TestCase `json:"cases"`
	// CreationTimestamp when this dataset was created.
	CreationTimestamp time.Time `json:"creation_timestamp"`
}

// Topics returns the dataset's topic vocabulary: the sorted set of distinct
// topic labels observed across all cases.
func (d *Dataset) Topics() []string {
	seen := make(map[string]struct{})
	for _, c := range d.Cases {
		if c.Metadata.Topic == "" {
			continue
		}
		seen[c.Metadata.Topic] = struct{}{}
	}
	topics := make([]string, 0, len(seen))
	for topic := range seen {
		topics = append(topics, topic)
	}
	sort.Strings(topics)
	return topics
}

// ActiveCases returns the cases not flagged as excluded, preserving order.
func (d *Dataset) ActiveCases() []*TestCase {
	active := make([]*TestCase, 0, len(d.Cases))
	for _, c := range d.Cases {
		if !c.Excluded {
			active = append(active, c)
		}
	}
	return active
}

// Case returns the case with the given ID, or nil if absent.
func (d *Dataset) Case(caseID string) *TestCase {
	for _, c := range d.Cases {
		if c.ID == caseID {
			return c
		}
	}
	return nil
}
