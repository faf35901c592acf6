//
// Tencent is pleased to support the open source community by making trpc-rageval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rageval-go is licensed under the Apache License Version 2.0.
//
//

package evalrun

import "context"

// Manager defines the interface for run history storage. Runs are retained
// until explicitly deleted.
type Manager interface {
	// Create stores a new run.
	Create(ctx context.Context, run *Run) (*Run, error)
	// Get returns the run identified by runID.
	Get(ctx context.Context, runID string) (*Run, error)
	// List returns all run IDs, oldest first.
	List(ctx context.Context) ([]string, error)
	// Update replaces the stored run, used to append results and to move
	// the status forward.
	Update(ctx context.Context, run *Run) (*Run, error)
	// Delete removes the run identified by runID.
	Delete(ctx context.Context, runID string) error
	// Close releases owned resources.
	Close() error
}
