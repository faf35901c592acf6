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
	"encoding/json"
	"io"
)

// JSONReporter writes the report as indented JSON.
type JSONReporter struct {
	Writer io.Writer
}

// Report writes the report.
func (r JSONReporter) Report(report *Report) error {
	return writeJSON(r.Writer, report)
}

// WriteComparisonJSON writes a comparison as indented JSON.
func WriteComparisonJSON(w io.Writer, c *Comparison) error {
	return writeJSON(w, c)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
