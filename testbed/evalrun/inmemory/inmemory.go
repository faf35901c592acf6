//
// Tencent is pleased to support the open source community by making trpc-rageval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rageval-go is licensed under the Apache License Version 2.0.
//
//

// Package inmemory provides an in-memory storage implementation for
// evaluation runs.
package inmemory

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"trpc.group/trpc-go/trpc-rageval-go/internal/clone"
	"trpc.group/trpc-go/trpc-rageval-go/testbed/evalrun"
)

// manager implements evalrun.Manager using in-memory storage. Each API
// returns deep-cloned objects to avoid accidental mutation by callers.
type manager struct {
	mu   sync.RWMutex
	runs map[string]*evalrun.Run
}

// New creates a new in-memory run manager.
func New() evalrun.Manager {
	return &manager{
		runs: make(map[string]*evalrun.Run),
	}
}

// Create stores a new run.
func (m *manager) Create(_ context.Context, run *evalrun.Run) (*evalrun.Run, error) {
	if run == nil {
		return nil, fmt.Errorf("run is nil")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, err := clone.Clone(run)
	if err != nil {
		return nil, fmt.Errorf("clone run: %w", err)
	}
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	if stored.CreationTimestamp.IsZero() {
		stored.CreationTimestamp = time.Now()
	}
	if _, exists := m.runs[stored.ID]; exists {
		return nil, fmt.Errorf("run %s already exists", stored.ID)
	}
	m.runs[stored.ID] = stored
	return clone.Clone(stored)
}

// Get returns the run identified by runID.
func (m *manager) Get(_ context.Context, runID string) (*evalrun.Run, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	run, ok := m.runs[runID]
	if !ok {
		return nil, fmt.Errorf("%w: run %s", os.ErrNotExist, runID)
	}
	return clone.Clone(run)
}

// List returns all run IDs, oldest first.
func (m *manager) List(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	runs := make([]*evalrun.Run, 0, len(m.runs))
	for _, run := range m.runs {
		runs = append(runs, run)
	}
	sort.Slice(runs, func(i, j int) bool {
		if runs[i].CreationTimestamp.Equal(runs[j].CreationTimestamp) {
			return runs[i].ID < runs[j].ID
		}
		return runs[i].CreationTimestamp.Before(runs[j].CreationTimestamp)
	})
	ids := make([]string, 0, len(runs))
	for _, run := range runs {
		ids = append(ids, run.ID)
	}
	return ids, nil
}

// Update replaces the stored run.
func (m *manager) Update(_ context.Context, run *evalrun.Run) (*evalrun.Run, error) {
	if run == nil {
		return nil, fmt.Errorf("run is nil")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.runs[run.ID]; !ok {
		return nil, fmt.Errorf("%w: run %s", os.ErrNotExist, run.ID)
	}
	stored, err := clone.Clone(run)
	if err != nil {
		return nil, fmt.Errorf("clone run: %w", err)
	}
	m.runs[run.ID] = stored
	return clone.Clone(stored)
}

// Delete removes the run identified by runID.
func (m *manager) Delete(_ context.Context, runID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.runs[runID]; !ok {
		return fmt.Errorf("%w: run %s", os.ErrNotExist, runID)
	}
	delete(m.runs, runID)
	return nil
}

// Close releases owned resources.
func (m *manager) Close() error {
	return nil
}
