//
// Tencent is pleased to support the open source community by making trpc-rageval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rageval-go is licensed under the Apache License Version 2.0.
//
//

// Package inmemory provides an in-memory storage implementation for datasets.
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
	"trpc.group/trpc-go/trpc-rageval-go/testbed/dataset"
)

// manager implements dataset.Manager using in-memory storage.
//
// The manager keeps an in-memory copy of all datasets. Each API returns
// deep-cloned objects to avoid accidental mutation by callers.
type manager struct {
	mu       sync.RWMutex
	datasets map[string]*dataset.Dataset
}

// New creates a new in-memory dataset manager.
func New() dataset.Manager {
	return &manager{
		datasets: make(map[string]*dataset.Dataset),
	}
}

// Create stores a new dataset built from generated cases.
func (m *manager) Create(_ context.Context, ds *dataset.Dataset) (*dataset.Dataset, error) {
	if ds == nil {
		return nil, fmt.Errorf("dataset is nil")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, err := prepare(ds)
	if err != nil {
		return nil, err
	}
	if _, exists := m.datasets[stored.ID]; exists {
		return nil, fmt.Errorf("dataset %s already exists", stored.ID)
	}
	m.datasets[stored.ID] = stored
	return clone.Clone(stored)
}

// Get returns the dataset identified by datasetID.
func (m *manager) Get(_ context.Context, datasetID string) (*dataset.Dataset, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ds, ok := m.datasets[datasetID]
	if !ok {
		return nil, fmt.Errorf("%w: dataset %s", os.ErrNotExist, datasetID)
	}
	return clone.Clone(ds)
}

// List returns all dataset IDs.
func (m *manager) List(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.datasets))
	for id := range m.datasets {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Delete removes the dataset identified by datasetID.
func (m *manager) Delete(_ context.Context, datasetID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.datasets[datasetID]; !ok {
		return fmt.Errorf("%w: dataset %s", os.ErrNotExist, datasetID)
	}
	delete(m.datasets, datasetID)
	return nil
}

// Edit applies a partial update to a test case and returns the updated case.
func (m *manager) Edit(_ context.Context, datasetID, caseID string, edit *dataset.CaseEdit) (*dataset.TestCase, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ds, ok := m.datasets[datasetID]
	if !ok {
		return nil, fmt.Errorf("%w: dataset %s", os.ErrNotExist, datasetID)
	}
	tc := ds.Case(caseID)
	if tc == nil {
		return nil, fmt.Errorf("%w: case %s", os.ErrNotExist, caseID)
	}
	if err := dataset.ApplyEdit(tc, edit); err != nil {
		return nil, err
	}
	return clone.Clone(tc)
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

// prepare deep-clones the input and fills in defaults.
func prepare(ds *dataset.Dataset) (*dataset.Dataset, error) {
	stored, err := clone.Clone(ds)
	if err != nil {
		return nil, fmt.Errorf("clone dataset: %w", err)
	}
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
	return stored, nil
}
