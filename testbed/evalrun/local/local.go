//
// Tencent is pleased to support the open source community by making trpc-rageval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rageval-go is licensed under the Apache License Version 2.0.
//
//

// Package local provides a local file storage manager implementation for
// evaluation runs.
package local

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"trpc.group/trpc-go/trpc-rageval-go/testbed/evalrun"
)

const (
	defaultTempFileSuffix = ".tmp"
	defaultFileSuffix     = ".run.json"
	defaultDirPermission  = 0o755
	defaultFilePermission = 0o644
)

// manager implements evalrun.Manager backed by the local filesystem. Runs
// are kept until Delete, one file per run.
type manager struct {
	mu      sync.RWMutex
	baseDir string
}

// New creates a local file run manager.
func New(opt ...Option) evalrun.Manager {
	opts := newOptions(opt...)
	return &manager{
		baseDir: opts.baseDir,
	}
}

// Create stores a new run.
func (m *manager) Create(_ context.Context, run *evalrun.Run) (*evalrun.Run, error) {
	if run == nil {
		return nil, fmt.Errorf("run is nil")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := *run
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	if stored.CreationTimestamp.IsZero() {
		stored.CreationTimestamp = time.Now()
	}
	if _, err := os.Stat(m.path(stored.ID)); err == nil {
		return nil, fmt.Errorf("run %s already exists", stored.ID)
	}
	if err := m.store(&stored); err != nil {
		return nil, fmt.Errorf("store run %s: %w", stored.ID, err)
	}
	return &stored, nil
}

// Get returns the run identified by runID.
func (m *manager) Get(_ context.Context, runID string) (*evalrun.Run, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	run, err := m.load(runID)
	if err != nil {
		return nil, fmt.Errorf("load run %s: %w", runID, err)
	}
	return run, nil
}

// List returns all run IDs, oldest first.
func (m *manager) List(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entries, err := os.ReadDir(m.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read base dir: %w", err)
	}
	var runs []*evalrun.Run
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), defaultFileSuffix) {
			continue
		}
		run, err := m.load(strings.TrimSuffix(e.Name(), defaultFileSuffix))
		if err != nil {
			return nil, fmt.Errorf("load run from %s: %w", e.Name(), err)
		}
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
	if _, err := m.load(run.ID); err != nil {
		return nil, fmt.Errorf("load run %s: %w", run.ID, err)
	}
	stored := *run
	if err := m.store(&stored); err != nil {
		return nil, fmt.Errorf("store run %s: %w", run.ID, err)
	}
	return &stored, nil
}

// Delete removes the run identified by runID.
func (m *manager) Delete(_ context.Context, runID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, err := m.load(runID); err != nil {
		return fmt.Errorf("load run %s: %w", runID, err)
	}
	if err := os.Remove(m.path(runID)); err != nil {
		return fmt.Errorf("remove run %s: %w", runID, err)
	}
	return nil
}

// Close releases owned resources.
func (m *manager) Close() error {
	return nil
}

func (m *manager) path(runID string) string {
	return filepath.Join(m.baseDir, runID+defaultFileSuffix)
}

func (m *manager) load(runID string) (*evalrun.Run, error) {
	data, err := os.ReadFile(m.path(runID))
	if err != nil {
		return nil, err
	}
	var run evalrun.Run
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, fmt.Errorf("decode run: %w", err)
	}
	return &run, nil
}

// store writes a run to disk atomically via a temp file rename.
func (m *manager) store(run *evalrun.Run) error {
	if err := os.MkdirAll(m.baseDir, defaultDirPermission); err != nil {
		return fmt.Errorf("create base dir: %w", err)
	}
	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return fmt.Errorf("encode run: %w", err)
	}
	tmpPath := m.path(run.ID) + defaultTempFileSuffix
	if err := os.WriteFile(tmpPath, data, defaultFilePermission); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, m.path(run.ID)); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
