//
// Tencent is pleased to support the open source community by making trpc-rageval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rageval-go is licensed under the Apache License Version 2.0.
//
//

// Package document defines the chunk passage type flowing through retrieval.
package document

// Document represents one chunk passage of a source document.
type Document struct {
	// ID uniquely identifies the document chunk.
	ID string `json:"id"`
	// Name is an optional human-readable name.
	Name string `json:"name,omitempty"`
	// Content is the text content of the chunk.
	Content string `json:"content"`
	// Metadata carries additional chunk attributes.
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Clone returns a shallow copy of the document with its own metadata map.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	cloned := *d
	if d.Metadata != nil {
		cloned.Metadata = make(map[string]any, len(d.Metadata))
		for k, v := range d.Metadata {
			cloned.Metadata[k] = v
		}
	}
	return &cloned
}
