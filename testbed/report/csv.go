//
// Tencent is pleased to support the open source community by making trpc-rageval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rageval-go is licensed under the Apache License Version 2.0.
//
//

package report

import (
	"encoding/csv"
	"io"
	"strconv"
)

// CSVReporter writes the per-topic breakdown followed by the failure list as
// two CSV tables separated by a blank line.
type CSVReporter struct {
	Writer io.Writer
}

// Report writes the report.
func (r CSVReporter) Report(report *Report) error {
	writer := csv.NewWriter(r.Writer)
	if err := writer.Write([]string{"topic", "total", "correct", "incorrect", "indeterminate", "score"}); err != nil {
		return err
	}
	s := report.Summary
	for _, topic := range s.Topics() {
		ts := s.PerTopic[topic]
		record := []string{
			topic,
			strconv.Itoa(ts.Total),
			strconv.Itoa(ts.Correct),
			strconv.Itoa(ts.Incorrect),
			strconv.Itoa(ts.Indeterminate),
			strconv.FormatFloat(ts.Score, 'f', 4, 64),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	if err := writer.Write([]string{
		"overall",
		strconv.Itoa(s.Total),
		strconv.Itoa(s.Correct),
		strconv.Itoa(s.Incorrect),
		strconv.Itoa(s.Indeterminate),
		strconv.FormatFloat(s.Score, 'f', 4, 64),
	}); err != nil {
		return err
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}
	if len(report.Failures) == 0 {
		return r.writeRows(report)
	}
	if _, err := io.WriteString(r.Writer, "\n"); err != nil {
		return err
	}
	writer = csv.NewWriter(r.Writer)
	if err := writer.Write([]string{"case_id", "topic", "verdict", "reason", "runner_error"}); err != nil {
		return err
	}
	for _, f := range report.Failures {
		record := []string{f.CaseID, f.Topic, f.Verdict.String(), f.Reason, f.RunnerError}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}
	return r.writeRows(report)
}

// writeRows appends the full per-case table when the report carries one.
func (r CSVReporter) writeRows(report *Report) error {
	if len(report.Rows) == 0 {
		return nil
	}
	if _, err := io.WriteString(r.Writer, "\n"); err != nil {
		return err
	}
	writer := csv.NewWriter(r.Writer)
	header := []string{
		"case_id", "question", "reference_answer", "reference_context",
		"agent_answer", "verdict", "reason", "runner_error",
	}
	if err := writer.Write(header); err != nil {
		return err
	}
	for _, row := range report.Rows {
		record := []string{
			row.CaseID, row.Question, row.ReferenceAnswer, row.ReferenceContext,
			row.AgentAnswer, row.Verdict.String(), row.Reason, row.RunnerError,
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
