//
// Tencent is pleased to support the open source community by making trpc-rageval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rageval-go is licensed under the Apache License Version 2.0.
//
//

// Package local provides a local file storage manager implementation for datasets.
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

	"trpc.group/trpc-go/trpc-rageval-go/testbed/dataset"
)

const (
	defaultTempFileSuffix = ".tmp"
	defaultFileSuffix     = ".dataset.json"
	defaultDirPermission  = 0o755
	defaultFilePermission = 0o644
)

// manager implements dataset.Manager backed by the local filesystem.
type manager struct {
	mu      sync.RWMutex
	baseDir string
}

// New creates a local file dataset manager.
func New(opt ...Option) dataset.Manager {
	opts := newOptions(opt...)
	return &manager{
		baseDir: opts.baseDir,
	}
}

// Create stores a new dataset built from generated cases.
func (m *manager) Create(_ context.Context, ds *dataset.Dataset) (*dataset.Dataset, error) {
	if ds == nil {
		return nil, fmt.Errorf("dataset is nil")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := *ds
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	if stored.Name == "" {
		stored.Name = stored.ID
	}
	if stored.CreationTimestamp.IsZero() {
		stored.CreationTimestamp = time.Now()
	}
	if stored.Cases == nil {
		stored.Cases = []*dataset.TestCase{}
	}
	if _, err := os.Stat(m.path(stored.ID)); err == nil {
		return nil, fmt.Errorf("dataset %s already exists", stored.ID)
	}
	if err := m.store(&stored); err != nil {
		return nil, fmt.Errorf("store dataset %s: %w", stored.ID, err)
	}
	return &stored, nil
}

// Get returns the dataset identified by datasetID.
func (m *manager) Get(_ context.Context, datasetID string) (*dataset.Dataset, error) {
	if datasetID == "" {
		return nil, fmt.Errorf("dataset id is empty")
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	ds, err := m.load(datasetID)
	if err != nil {
		return nil, fmt.Errorf("load dataset %s: %w", datasetID, err)
	}
	return ds, nil
}

// List returns all dataset IDs.
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
	var ids []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), defaultFileSuffix) {
			continue
		}
		ids = append(ids, strings.TrimSuffix(e.Name(), defaultFileSuffix))
	}
	sort.Strings(ids)
	return ids, nil
}

// Delete removes the dataset identified by datasetID.
func (m *manager) Delete(_ context.Context, datasetID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, err := m.load(datasetID); err != nil {
		return fmt.Errorf("load dataset %s: %w", datasetID, err)
	}
	if err := os.Remove(m.path(datasetID)); err != nil {
		return fmt.Errorf("remove dataset %s: %w", datasetID, err)
	}
	return nil
}

// Edit applies a partial update to a test case and returns the updated case.
func (m *manager) Edit(_ context.Context, datasetID, caseID string, edit *dataset.CaseEdit) (*dataset.TestCase, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ds, err := m.load(datasetID)
	if err != nil {
		return nil, fmt.Errorf("load dataset %s: %w", datasetID, err)
	}
	tc := ds.Case(caseID)
	if tc == nil {
		return nil, fmt.Errorf("%w: case %s", os.ErrNotExist, caseID)
	}
	if err := dataset.ApplyEdit(tc, edit); err != nil {
		return nil, err
	}
	if err := m.store(ds); err != nil {
		return nil, fmt.Errorf("store dataset %s: %w", datasetID, err)
	}
	return tc, nil
}

// Import validates records and adds the accepted ones to a new dataset.
func (m *manager) Import(ctx context.Context, name string, records []byte) (*dataset.Dataset, *dataset.ImportReport, error) {
	cases, violations, err := dataset.ParseRecords(records)
	if err != nil {
		return nil, nil, fmt.Errorf("parse records: %w", err)
	}
	ds, err := m.Create(ctx, &dataset.Dataset{Name: name, Cases: cases})
	if err != nil {
		return nil, nil, fmt.Errorf("create dataset: %w", err)
	}
	return ds, &dataset.ImportReport{Imported: len(cases), Violations: violations}, nil
}

// Export serializes the dataset's cases into the flat record format.
func (m *manager) Export(ctx context.Context, datasetID string, includeExcluded bool) ([]byte, error) {
	ds, err := m.Get(ctx, datasetID)
	if err != nil {
		return nil, err
	}
	return dataset.ExportRecords(ds.Cases, includeExcluded)
}

// Close releases owned resources.
func (m *manager) Close() error {
	return nil
}

// path returns the storage path for a dataset.
func (m *manager) path(datasetID string) string {
	return filepath.Join(m.baseDir, datasetID+defaultFileSuffix)
}

// load reads a dataset from disk.
func (m *manager) load(datasetID string) (*dataset.Dataset, error) {
	data, err := os.ReadFile(m.path(datasetID))
	if err != nil {
		return nil, err
	}
	var ds dataset.Dataset
	if err := json.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}
	return &ds, nil
}

// store writes a dataset to disk atomically via a temp file rename.
func (m *manager) store(ds *dataset.Dataset) error {
	if err := os.MkdirAll(m.baseDir, defaultDirPermission); err != nil {
		return fmt.Errorf("create base dir: %w", err)
	}
	data, err := json.MarshalIndent(ds, "", "  ")
	if err != nil {
		return fmt.Errorf("encode dataset: %w", err)
	}
	tmpPath := m.path(ds.ID) + defaultTempFileSuffix
	if err := os.WriteFile(tmpPath, data, defaultFilePermission); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, m.path(ds.ID)); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
