//
// Tencent is pleased to support the open source community by making trpc-rageval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rageval-go is licensed under the Apache License Version 2.0.
//
//

// Package server exposes the dataset store and run history over HTTP, for
// browsing reports and curating test cases.
package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"trpc.group/trpc-go/trpc-rageval-go/log"
	"trpc.group/trpc-go/trpc-rageval-go/testbed/dataset"
	datasetinmemory "trpc.group/trpc-go/trpc-rageval-go/testbed/dataset/inmemory"
	"trpc.group/trpc-go/trpc-rageval-go/testbed/evalrun"
	runinmemory "trpc.group/trpc-go/trpc-rageval-go/testbed/evalrun/inmemory"
	"trpc.group/trpc-go/trpc-rageval-go/testbed/report"
)

// Server serves datasets, runs and reports.
type Server struct {
	router     *mux.Router
	datasetMgr dataset.Manager
	runMgr     evalrun.Manager
}

// Option configures the Server instance.
type Option func(*Server)

// WithDatasetManager overrides the default in-memory dataset manager.
func WithDatasetManager(m dataset.Manager) Option {
	return func(s *Server) {
		if m != nil {
			s.datasetMgr = m
		}
	}
}

// WithRunManager overrides the default in-memory run manager.
func WithRunManager(m evalrun.Manager) Option {
	return func(s *Server) {
		if m != nil {
			s.runMgr = m
		}
	}
}

// New creates the server.
func New(opts ...Option) *Server {
	s := &Server{
		router:     mux.NewRouter(),
		datasetMgr: datasetinmemory.New(),
		runMgr:     runinmemory.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Content-Length", "Content-Type"},
	})
	s.router.Use(c.Handler)
	s.registerRoutes()
	return s
}

// Handler returns the http.Handler for the server.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) registerRoutes() {
	s.router.HandleFunc("/datasets", s.handleListDatasets).Methods(http.MethodGet)
	s.router.HandleFunc("/datasets/import", s.handleImportDataset).Methods(http.MethodPost)
	s.router.HandleFunc("/datasets/{datasetId}", s.handleGetDataset).Methods(http.MethodGet)
	s.router.HandleFunc("/datasets/{datasetId}", s.handleDeleteDataset).Methods(http.MethodDelete)
	s.router.HandleFunc("/datasets/{datasetId}/export", s.handleExportDataset).Methods(http.MethodGet)
	s.router.HandleFunc("/datasets/{datasetId}/cases/{caseId}", s.handleEditCase).Methods(http.MethodPatch)

	s.router.HandleFunc("/runs", s.handleListRuns).Methods(http.MethodGet)
	s.router.HandleFunc("/runs/compare", s.handleCompareRuns).Methods(http.MethodGet)
	s.router.HandleFunc("/runs/{runId}", s.handleGetRun).Methods(http.MethodGet)
	s.router.HandleFunc("/runs/{runId}/report", s.handleRunReport).Methods(http.MethodGet)
}

func (s *Server) handleListDatasets(w http.ResponseWriter, r *http.Request) {
	ids, err := s.datasetMgr.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, map[string]any{"datasets": ids})
}

func (s *Server) handleGetDataset(w http.ResponseWriter, r *http.Request) {
	ds, err := s.datasetMgr.Get(r.Context(), mux.Vars(r)["datasetId"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, ds)
}

func (s *Server) handleDeleteDataset(w http.ResponseWriter, r *http.Request) {
	if err := s.datasetMgr.Delete(r.Context(), mux.Vars(r)["datasetId"]); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleImportDataset(w http.ResponseWriter, r *http.Request) {
	records, err := readBody(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	name := r.URL.Query().Get("name")
	ds, importReport, err := s.datasetMgr.Import(r.Context(), name, records)
	if err != nil {
		writeError(w, err)
		return
	}
	violations := make([]string, 0, len(importReport.Violations))
	for _, v := range importReport.Violations {
		violations = append(violations, v.Error())
	}
	writeJSON(w, map[string]any{
		"dataset_id": ds.ID,
		"imported":   importReport.Imported,
		"violations": violations,
	})
}

func (s *Server) handleExportDataset(w http.ResponseWriter, r *http.Request) {
	includeExcluded, _ := strconv.ParseBool(r.URL.Query().Get("include_excluded"))
	data, err := s.datasetMgr.Export(r.Context(), mux.Vars(r)["datasetId"], includeExcluded)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(data); err != nil {
		log.Errorf("write export response: %v", err)
	}
}

// caseEditRequest is the PATCH body for a test case. Immutable fields are
// accepted in the payload so the store can reject them explicitly.
type caseEditRequest struct {
	Question         *string `json:"question,omitempty"`
	ReferenceAnswer  *string `json:"reference_answer,omitempty"`
	Excluded         *bool   `json:"excluded,omitempty"`
	ReferenceContext *string `json:"reference_context,omitempty"`
	SeedDocumentID   *int    `json:"seed_document_id,omitempty"`
}

func (s *Server) handleEditCase(w http.ResponseWriter, r *http.Request) {
	var req caseEditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	vars := mux.Vars(r)
	tc, err := s.datasetMgr.Edit(r.Context(), vars["datasetId"], vars["caseId"], &dataset.CaseEdit{
		Question:         req.Question,
		ReferenceAnswer:  req.ReferenceAnswer,
		Excluded:         req.Excluded,
		ReferenceContext: req.ReferenceContext,
		SeedDocumentID:   req.SeedDocumentID,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, tc)
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	ids, err := s.runMgr.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, map[string]any{"runs": ids})
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	run, err := s.runMgr.Get(r.Context(), mux.Vars(r)["runId"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, run)
}

func (s *Server) handleRunReport(w http.ResponseWriter, r *http.Request) {
	run, err := s.runMgr.Get(r.Context(), mux.Vars(r)["runId"])
	if err != nil {
		writeError(w, err)
		return
	}
	// The full per-case table needs the dataset; a report for a run whose
	// dataset was deleted degrades to the summary view.
	var rep *report.Report
	if ds, dsErr := s.datasetMgr.Get(r.Context(), run.DatasetID); dsErr == nil {
		rep, err = report.NewDetailed(run, ds)
	} else {
		rep, err = report.New(run)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	format := r.URL.Query().Get("format")
	if format == "" {
		format = report.FormatJSON
	}
	reporter, err := report.NewReporter(format, w)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", contentType(format))
	if err := reporter.Report(rep); err != nil {
		log.Errorf("write report response: %v", err)
	}
}

func (s *Server) handleCompareRuns(w http.ResponseWriter, r *http.Request) {
	baseline, err := s.runMgr.Get(r.Context(), r.URL.Query().Get("baseline"))
	if err != nil {
		writeError(w, err)
		return
	}
	candidate, err := s.runMgr.Get(r.Context(), r.URL.Query().Get("candidate"))
	if err != nil {
		writeError(w, err)
		return
	}
	comparison, err := report.Compare(baseline, candidate)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, comparison)
}

func contentType(format string) string {
	switch format {
	case report.FormatJSON:
		return "application/json"
	case report.FormatCSV:
		return "text/csv"
	case report.FormatMarkdown:
		return "text/markdown"
	case report.FormatHTML:
		return "text/html"
	case report.FormatPDF:
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}

func readBody(r *http.Request) ([]byte, error) {
	defer r.Body.Close()
	buf, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}
	if len(buf) == 0 {
		return nil, errors.New("empty request body")
	}
	return buf, nil
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Errorf("write json response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, os.ErrNotExist):
		status = http.StatusNotFound
	case errors.Is(err, dataset.ErrImmutableField):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, dataset.ErrSchemaViolation):
		status = http.StatusBadRequest
	}
	http.Error(w, err.Error(), status)
}
