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

// Reporter writes a report in one format.
type Reporter interface {
	Report(report *Report) error
}

// NewReporter returns the reporter for the named format.
func NewReporter(format string, w io.Writer) (Reporter, error) {
	switch format {
	case FormatJSON:
		return JSONReporter{Writer: w}, nil
	case FormatCSV:
		return CSVReporter{Writer: w}, nil
	case FormatMarkdown:
		return MarkdownReporter{Writer: w}, nil
	case FormatHTML:
		return HTMLReporter{Writer: w}, nil
	case FormatPDF:
		return PDFReporter{Writer: w}, nil
	default:
		return nil, fmt.Errorf("unknown report format: %s", format)
	}
}
