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

	"github.com/go-pdf/fpdf"
)

// PDFReporter writes the report as a PDF document.
type PDFReporter struct {
	Writer io.Writer
}

// Report writes the report.
func (r PDFReporter) Report(report *Report) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "Evaluation Report")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 10)
	meta := []string{
		fmt.Sprintf("Run: %s", report.RunID),
		fmt.Sprintf("Dataset: %s", report.DatasetID),
		fmt.Sprintf("Status: %s", report.Status),
		fmt.Sprintf("Chat model: %s", report.Config.ChatModel.Name),
		fmt.Sprintf("Judge model: %s", report.Config.JudgeModel.Name),
	}
	for _, line := range meta {
		pdf.Cell(0, 6, line)
		pdf.Ln(6)
	}
	pdf.Ln(4)

	s := report.Summary
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Score: %.4f", s.Score))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 10)
	headers := []string{"Topic", "Total", "Correct", "Incorrect", "Indeterminate", "Score"}
	widths := []float64{60, 22, 22, 22, 30, 22}
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Helvetica", "", 10)
	writeRow := func(topic string, total, correct, incorrect, indeterminate int, score float64) {
		cells := []string{
			topic,
			fmt.Sprintf("%d", total),
			fmt.Sprintf("%d", correct),
			fmt.Sprintf("%d", incorrect),
			fmt.Sprintf("%d", indeterminate),
			fmt.Sprintf("%.4f", score),
		}
		for i, c := range cells {
			pdf.CellFormat(widths[i], 7, c, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}
	for _, topic := range s.Topics() {
		ts := s.PerTopic[topic]
		writeRow(topic, ts.Total, ts.Correct, ts.Incorrect, ts.Indeterminate, ts.Score)
	}
	writeRow("overall", s.Total, s.Correct, s.Incorrect, s.Indeterminate, s.Score)

	if len(report.Failures) > 0 {
		pdf.Ln(6)
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 8, "Failures")
		pdf.Ln(10)
		pdf.SetFont("Helvetica", "", 9)
		for _, f := range report.Failures {
			reason := f.Reason
			if f.RunnerError != "" {
				reason = f.RunnerError
			}
			pdf.MultiCell(0, 5, fmt.Sprintf("%s [%s] %s: %s", f.CaseID, f.Topic, f.Verdict, reason), "", "L", false)
			pdf.Ln(1)
		}
	}

	if err := pdf.Output(r.Writer); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}
