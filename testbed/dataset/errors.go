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
	"errors"
	"fmt"
)

// ErrImmutableField reports an edit attempted on an immutable field.
var ErrImmutableField = errors.New("immutable field")

// ErrSchemaViolation reports an import record that does not satisfy the
// test case record schema.
var ErrSchemaViolation = errors.New("schema violation")

// ImmutableFieldError names the immutable field an edit attempted to change.
type ImmutableFieldError struct {
	// Field is the JSON name of the rejected field.
	Field string
}

// Error implements the error interface.
func (e *ImmutableFieldError) Error() string {
	return fmt.Sprintf("%v: %s is not editable", ErrImmutableField, e.Field)
}

// Unwrap makes the error match ErrImmutableField via errors.Is.
func (e *ImmutableFieldError) Unwrap() error {
	return ErrImmutableField
}

// SchemaViolationError names the offending record index and field of a
// rejected import record.
type SchemaViolationError struct {
	// Index is the zero-based position of the record in the import batch.
	Index int
	// Field is the JSON name of the missing or malformed field.
	Field string
	// Reason describes the violation.
	Reason string
}

// Error implements the error interface.
func (e *SchemaViolationError) Error() string {
	return fmt.Sprintf("%v: record %d field %q: %s", ErrSchemaViolation, e.Index, e.Field, e.Reason)
}

// Unwrap makes the error match ErrSchemaViolation via errors.Is.
func (e *SchemaViolationError) Unwrap() error {
	return ErrSchemaViolation
}
