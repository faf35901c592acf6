//
// Tencent is pleased to support the open source community by making trpc-rageval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rageval-go is licensed under the Apache License Version 2.0.
//
//

package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"trpc.group/trpc-go/trpc-rageval-go/testbed/dataset"
	datasetinmemory "trpc.group/trpc-go/trpc-rageval-go/testbed/dataset/inmemory"
	"trpc.group/trpc-go/trpc-rageval-go/testbed/evalrun"
	runinmemory "trpc.group/trpc-go/trpc-rageval-go/testbed/evalrun/inmemory"
	"trpc.group/trpc-go/trpc-rageval-go/testbed/judge"
)

func seedCase(id, topic string) *dataset.TestCase {
	return &dataset.TestCase{
		ID:               id,
		Question:         "What is the retention period?",
		ReferenceAnswer:  "Ninety days.",
		ReferenceContext: "Logs are retained for ninety days.",
		Metadata:         dataset.Metadata{QuestionType: dataset.QuestionTypeSimple, Topic: topic},
	}
}

func seedRun(datasetID string, verdict judge.Verdict) *evalrun.Run {
	answer := "Ninety days."
	return &evalrun.Run{
		DatasetID: datasetID,
		Status:    evalrun.RunStatusCompleted,
		Results: []*evalrun.CaseResult{
			{CaseID: "c1", AgentAnswer: &answer, Verdict: verdict, Topic: "retention"},
		},
	}
}

func newTestServer(t *testing.T) (*Server, string, string, string) {
	t.Helper()
	ctx := context.Background()
	datasetMgr := datasetinmemory.New()
	runMgr := runinmemory.New()

	ds, err := datasetMgr.Create(ctx, &dataset.Dataset{
		Name:  "policies",
		Cases: []*dataset.TestCase{seedCase("c1", "retention")},
	})
	require.NoError(t, err)

	baseline, err := runMgr.Create(ctx, seedRun(ds.ID, judge.VerdictIncorrect))
	require.NoError(t, err)
	candidate, err := runMgr.Create(ctx, seedRun(ds.ID, judge.VerdictCorrect))
	require.NoError(t, err)

	s := New(WithDatasetManager(datasetMgr), WithRunManager(runMgr))
	return s, ds.ID, baseline.ID, candidate.ID
}

func do(t *testing.T, s *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestListAndGetDataset(t *testing.T) {
	s, datasetID, _, _ := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/datasets", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var listed struct {
		Datasets []string `json:"datasets"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	require.Equal(t, []string{datasetID}, listed.Datasets)

	rec = do(t, s, http.MethodGet, "/datasets/"+datasetID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var ds dataset.Dataset
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ds))
	require.Equal(t, "policies", ds.Name)
	require.Len(t, ds.Cases, 1)
}

func TestGetDatasetNotFound(t *testing.T) {
	s, _, _, _ := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/datasets/missing", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteDataset(t *testing.T) {
	s, datasetID, _, _ := newTestServer(t)
	rec := do(t, s, http.MethodDelete, "/datasets/"+datasetID, "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, s, http.MethodGet, "/datasets/"+datasetID, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEditCase(t *testing.T) {
	s, datasetID, _, _ := newTestServer(t)

	rec := do(t, s, http.MethodPatch, "/datasets/"+datasetID+"/cases/c1",
		`{"question":"How long are logs kept?","excluded":true}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var tc dataset.TestCase
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tc))
	require.Equal(t, "How long are logs kept?", tc.Question)
	require.True(t, tc.Excluded)
}

func TestEditCaseImmutableField(t *testing.T) {
	s, datasetID, _, _ := newTestServer(t)

	rec := do(t, s, http.MethodPatch, "/datasets/"+datasetID+"/cases/c1",
		`{"reference_context":"rewritten"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Contains(t, rec.Body.String(), "reference_context")
}

func TestImportDatasetPartialSuccess(t *testing.T) {
	s, _, _, _ := newTestServer(t)

	records := `[
		{"question":"q1","reference_answer":"a1","reference_context":"ctx1"},
		{"question":"q2","reference_context":"ctx2"}
	]`
	rec := do(t, s, http.MethodPost, "/datasets/import?name=imported", records)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		DatasetID  string   `json:"dataset_id"`
		Imported   int      `json:"imported"`
		Violations []string `json:"violations"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.DatasetID)
	require.Equal(t, 1, resp.Imported)
	require.Len(t, resp.Violations, 1)
	require.Contains(t, resp.Violations[0], "reference_answer")
}

func TestImportDatasetEmptyBody(t *testing.T) {
	s, _, _, _ := newTestServer(t)
	rec := do(t, s, http.MethodPost, "/datasets/import", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExportDataset(t *testing.T) {
	s, datasetID, _, _ := newTestServer(t)

	rec := do(t, s, http.MethodPatch, "/datasets/"+datasetID+"/cases/c1", `{"excluded":true}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, s, http.MethodGet, "/datasets/"+datasetID+"/export", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var records []*dataset.TestCase
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
	require.Empty(t, records)

	rec = do(t, s, http.MethodGet, "/datasets/"+datasetID+"/export?include_excluded=true", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
	require.Len(t, records, 1)
}

func TestListAndGetRun(t *testing.T) {
	s, _, baselineID, candidateID := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/runs", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var listed struct {
		Runs []string `json:"runs"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	require.Len(t, listed.Runs, 2)

	rec = do(t, s, http.MethodGet, "/runs/"+baselineID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var run evalrun.Run
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &run))
	require.Equal(t, baselineID, run.ID)
	require.NotEqual(t, candidateID, run.ID)
}

func TestRunReportFormats(t *testing.T) {
	s, _, _, candidateID := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/runs/"+candidateID+"/report", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))

	rec = do(t, s, http.MethodGet, "/runs/"+candidateID+"/report?format=csv", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	require.Contains(t, rec.Body.String(), "topic,total,correct,incorrect,indeterminate,score")

	rec = do(t, s, http.MethodGet, "/runs/"+candidateID+"/report?format=markdown", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "# Evaluation Report")

	rec = do(t, s, http.MethodGet, "/runs/"+candidateID+"/report?format=xml", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCompareRuns(t *testing.T) {
	s, _, baselineID, candidateID := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/runs/compare?baseline="+baselineID+"&candidate="+candidateID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var comparison struct {
		ScoreDiff float64 `json:"score_diff"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &comparison))
	require.InDelta(t, 1.0, comparison.ScoreDiff, 1e-9)
}

func TestCompareRunsMissingParam(t *testing.T) {
	s, _, _, candidateID := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/runs/compare?baseline=&candidate="+candidateID, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}
