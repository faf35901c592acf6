//
// Tencent is pleased to support the open source community by making trpc-rageval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rageval-go is licensed under the Apache License Version 2.0.
//
//

package clone

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type sample struct {
	Value string
}

type nonSerializable struct {
	Bad map[string]any
}

func TestCloneSuccess(t *testing.T) {
	src := &sample{Value: "ok"}
	dst, err := Clone(src)
	assert.NoError(t, err)
	assert.NotSame(t, src, dst)
	assert.Equal(t, src, dst)
}

func TestCloneNilInput(t *testing.T) {
	dst, err := Clone[*sample](nil)
	assert.Error(t, err)
	assert.Nil(t, dst)
}

func TestCloneMarshalError(t *testing.T) {
	src := &nonSerializable{Bad: map[string]any{"c": make(chan int)}}
	dst, err := Clone(src)
	assert.Error(t, err)
	assert.Nil(t, dst)
}

type shapes struct {
	Answer *string
	Items  []string
}

// A pointer to an empty string and an empty slice must round-trip as-is,
// not collapse to nil.
func TestCloneKeepsEmptyShapes(t *testing.T) {
	empty := ""
	src := &shapes{Answer: &empty, Items: []string{}}
	dst, err := Clone(src)
	assert.NoError(t, err)
	assert.NotNil(t, dst.Answer)
	assert.Equal(t, "", *dst.Answer)
	assert.NotNil(t, dst.Items)
	assert.Len(t, dst.Items, 0)
}

func TestCloneDeepCopy(t *testing.T) {
	src := &shapes{Items: []string{"a"}}
	dst, err := Clone(src)
	assert.NoError(t, err)
	dst.Items[0] = "b"
	assert.Equal(t, "a", src.Items[0])
}
