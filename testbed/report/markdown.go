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
	"fmt"
	"io"
)

// MarkdownReporter writes the report as a Markdown summary.
type MarkdownReporter struct {
	Writer io.Writer
}

// Report writes the report.
func (r MarkdownReporter) Report(report *Report) error {
	w := r.Writer
	if _, err := fmt.Fprintf(w, "# Evaluation Report\n\n"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "- Run: %s\n- Dataset: %s\n- Status: %s\n- Chat model: %s\n- Judge model: %s\n",
		report.RunID, report.DatasetID, report.Status,
		report.Config.ChatModel.Name, report.Config.JudgeModel.Name); err != nil {
		return err
	}
	if report.Config.RetrievalEnabled {
		if _, err := fmt.Fprintf(w, "- Retrieval: %s, top-%d, collection %q\n\n",
			report.Config.Strategy, report.Config.TopK, report.Config.Collection); err != nil {
			return err
		}
	} else {
		if _, err := fmt.Fprintf(w, "- Retrieval: disabled\n\n"); err != nil {
			return err
		}
	}

	s := report.Summary
	if _, err := fmt.Fprintf(w, "## Summary\n\n"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "| Metric | Value |\n|---|---|\n"); err != nil {
		return err
	}
	lines := []struct {
		Name  string
		Value string
	}{
		{"Score", fmt.Sprintf("%.4f", s.Score)},
		{"Total cases", fmt.Sprintf("%d", s.Total)},
		{"Correct", fmt.Sprintf("%d", s.Correct)},
		{"Incorrect", fmt.Sprintf("%d", s.Incorrect)},
		{"Indeterminate", fmt.Sprintf("%d", s.Indeterminate)},
		{"Runner errors", fmt.Sprintf("%d", s.RunnerErrors)},
	}
	for _, line := range lines {
		if _, err := fmt.Fprintf(w, "| %s | %s |\n", line.Name, line.Value); err != nil {
			return err
		}
	}

	if len(s.PerTopic) > 0 {
		if _, err := fmt.Fprintf(w, "\n## Per-topic\n\n"); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "| Topic | Total | Correct | Incorrect | Indeterminate | Score |\n|---|---|---|---|---|---|\n"); err != nil {
			return err
		}
		for _, topic := range s.Topics() {
			ts := s.PerTopic[topic]
			if _, err := fmt.Fprintf(w, "| %s | %d | %d | %d | %d | %.4f |\n",
				topic, ts.Total, ts.Correct, ts.Incorrect, ts.Indeterminate, ts.Score); err != nil {
				return err
			}
		}
	}

	if len(report.Failures) > 0 {
		if _, err := fmt.Fprintf(w, "\n## Failures\n\n"); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "| Case | Topic | Verdict | Reason |\n|---|---|---|---|\n"); err != nil {
			return err
		}
		for _, f := range report.Failures {
			reason := f.Reason
			if f.RunnerError != "" {
				reason = f.RunnerError
			}
			if _, err := fmt.Fprintf(w, "| %s | %s | %s | %s |\n",
				f.CaseID, f.Topic, f.Verdict, reason); err != nil {
				return err
			}
		}
	}

	if len(report.Rows) > 0 {
		if _, err := fmt.Fprintf(w, "\n## Cases\n\n"); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "| Case | Question | Reference answer | Agent answer | Verdict | Reason |\n|---|---|---|---|---|---|\n"); err != nil {
			return err
		}
		for _, row := range report.Rows {
			reason := row.Reason
			if row.RunnerError != "" {
				reason = row.RunnerError
			}
			if _, err := fmt.Fprintf(w, "| %s | %s | %s | %s | %s | %s |\n",
				row.CaseID, row.Question, row.ReferenceAnswer,
				row.AgentAnswer, row.Verdict, reason); err != nil {
				return err
			}
		}
	}
	return nil
}

// WriteComparisonMarkdown writes a comparison as a Markdown summary.
func WriteComparisonMarkdown(w io.Writer, c *Comparison) error {
	if _, err := fmt.Fprintf(w, "# Run Comparison\n\n"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "- Baseline: %s (score %.4f)\n- Candidate: %s (score %.4f)\n- Score diff: %+.4f\n",
		c.BaselineRunID, c.BaselineSummary.Score,
		c.CandidateRunID, c.CandidateSummary.Score, c.ScoreDiff); err != nil {
		return err
	}
	if len(c.Flips) == 0 {
		_, err := fmt.Fprintf(w, "\nNo verdict changes.\n")
		return err
	}
	if _, err := fmt.Fprintf(w, "\n## Verdict changes\n\n| Case | Baseline | Candidate |\n|---|---|---|\n"); err != nil {
		return err
	}
	for _, f := range c.Flips {
		if _, err := fmt.Fprintf(w, "| %s | %s | %s |\n", f.CaseID, f.Baseline, f.Candidate); err != nil {
			return err
		}
	}
	return nil
}
