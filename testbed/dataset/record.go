//
// Tencent is pleased to support the open source community by making trpc-rageval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rageval-go is licensed under the Apache License Version 2.0.
//
//

package dataset

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"trpc.group/trpc-go/trpc-rageval-go/model"
)

// ExportRecords serializes cases into the flat record format. Excluded cases
// are filtered out unless includeExcluded is set.
func ExportRecords(cases []*TestCase, includeExcluded bool) ([]byte, error) {
	records := make([]*TestCase, 0, len(cases))
	for _, c := range cases {
		if c.Excluded && !includeExcluded {
			continue
		}
		exported := *c
		if exported.ConversationHistory == nil {
			exported.ConversationHistory = []model.Message{}
		}
		records = append(records, &exported)
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal records: %w", err)
	}
	return data, nil
}

// ParseRecords decodes a JSON array of test case records. Records violating
// the schema are reported individually and skipped; the remaining records
// still parse (partial-success import). A non-nil error is returned only
// when the envelope itself is not a JSON array.
func ParseRecords(data []byte) ([]*TestCase, []*SchemaViolationError, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, fmt.Errorf("decode record array: %w", err)
	}
	cases := make([]*TestCase, 0, len(raw))
	var violations []*SchemaViolationError
	seen := make(map[string]struct{}, len(raw))
	for i, rec := range raw {
		var tc TestCase
		if err := json.Unmarshal(rec, &tc); err != nil {
			violations = append(violations, &SchemaViolationError{
				Index:  i,
				Field:  "",
				Reason: fmt.Sprintf("malformed record: %v", err),
			})
			continue
		}
		if v := validateRecord(i, &tc); v != nil {
			violations = append(violations, v)
			continue
		}
		// Preserve supplied ids; mint one only when absent.
		if tc.ID == "" {
			tc.ID = uuid.NewString()
		}
		if _, dup := seen[tc.ID]; dup {
			violations = append(violations, &SchemaViolationError{
				Index:  i,
				Field:  "id",
				Reason: fmt.Sprintf("duplicate id %q", tc.ID),
			})
			continue
		}
		seen[tc.ID] = struct{}{}
		if tc.ConversationHistory == nil {
			tc.ConversationHistory = []model.Message{}
		}
		cases = append(cases, &tc)
	}
	return cases, violations, nil
}

// validateRecord checks the required fields of one record.
func validateRecord(index int, tc *TestCase) *SchemaViolationError {
	if tc.Question == "" {
		return &SchemaViolationError{Index: index, Field: "question", Reason: "missing or empty"}
	}
	if tc.ReferenceAnswer == "" {
		return &SchemaViolationError{Index: index, Field: "reference_answer", Reason: "missing or empty"}
	}
	if tc.ReferenceContext == "" {
		return &SchemaViolationError{Index: index, Field: "reference_context", Reason: "missing or empty"}
	}
	if tc.Metadata.QuestionType != "" && !tc.Metadata.QuestionType.IsValid() {
		return &SchemaViolationError{
			Index:  index,
			Field:  "metadata.question_type",
			Reason: fmt.Sprintf("unknown question type %q", tc.Metadata.QuestionType),
		}
	}
	if tc.Metadata.SeedDocumentID < 0 {
		return &SchemaViolationError{
			Index:  index,
			Field:  "metadata.seed_document_id",
			Reason: "must not be negative",
		}
	}
	return nil
}
