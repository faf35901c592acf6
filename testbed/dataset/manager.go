//
// Tencent is pleased to support the open source community by making trpc-rageval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rageval-go is licensed under the Apache License Version 2.0.
//
//

package dataset

import "context"

// CaseEdit describes a partial update of a test case. Nil fields are left
// unchanged. ReferenceContext and SeedDocumentID are present so that illegal
// edits can be expressed and rejected with ImmutableFieldError.
type CaseEdit struct {
	// Question replaces the question text.
	Question *string
	// ReferenceAnswer replaces the reference answer.
	ReferenceAnswer *string
	// Excluded toggles the exclusion flag.
	Excluded *bool
	// ReferenceContext is immutable; setting it fails the edit.
	ReferenceContext *string
	// SeedDocumentID is immutable; setting it fails the edit.
	SeedDocumentID *int
}

// ImportReport summarizes a partial-success import.
type ImportReport struct {
	// Imported is the number of records accepted.
	Imported int
	// Violations lists the rejected records.
	Violations []*SchemaViolationError
}

// Manager defines the interface for managing datasets.
type Manager interface {
	// Create stores a new dataset built from generated cases.
	Create(ctx context.Context, ds *Dataset) (*Dataset, error)
	// Get returns the dataset identified by datasetID.
	Get(ctx context.Context, datasetID string) (*Dataset, error)
	// List returns all dataset IDs.
	List(ctx context.Context) ([]string, error)
	// Delete removes the dataset identified by datasetID.
	Delete(ctx context.Context, datasetID string) error
	// Edit applies a partial update to a test case and returns the updated
	// case. Edits to immutable fields fail with ImmutableFieldError and
	// leave the record unchanged.
	Edit(ctx context.Context, datasetID, caseID string, edit *CaseEdit) (*TestCase, error)
	// Import validates records and adds the accepted ones to a new dataset
	// with the given name. Rejected records are reported per index; the
	// rest of the batch still imports.
	Import(ctx context.Context, name string, records []byte) (*Dataset, *ImportReport, error)
	// Export serializes the dataset's cases into the flat record format.
	Export(ctx context.Context, datasetID string, includeExcluded bool) ([]byte, error)
	// Close releases owned resources.
	Close() error
}

// ApplyEdit applies the edit to the case in place after checking immutable
// fields. Shared by Manager implementations.
func ApplyEdit(tc *TestCase, edit *CaseEdit) error {
	if edit == nil {
		return nil
	}
	if edit.ReferenceContext != nil {
		return &ImmutableFieldError{Field: "reference_context"}
	}
	if edit.SeedDocumentID != nil {
		return &ImmutableFieldError{Field: "metadata.seed_document_id"}
	}
	if edit.Question != nil {
		tc.Question = *edit.Question
	}
	if edit.ReferenceAnswer != nil {
		tc.ReferenceAnswer = *edit.ReferenceAnswer
	}
	if edit.Excluded != nil {
		tc.Excluded = *edit.Excluded
	}
	return nil
}
