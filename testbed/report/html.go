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
	"bytes"
	"fmt"
	"io"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var markdownRenderer = goldmark.New(goldmark.WithExtensions(extension.Table))

const htmlHeader = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>Evaluation Report</title>
  <style>
    body { font-family: Arial, sans-serif; margin: 24px; max-width: 960px; }
    table { border-collapse: collapse; width: 100%; margin: 16px 0; }
    th, td { border: 1px solid #ddd; padding: 8px; text-align: left; }
    th { background: #f5f5f5; }
  </style>
</head>
<body>
`

const htmlFooter = `</body>
</html>
`

// HTMLReporter renders the Markdown summary to a standalone HTML page.
type HTMLReporter struct {
	Writer io.Writer
}

// Report writes the report.
func (r HTMLReporter) Report(report *Report) error {
	var md bytes.Buffer
	if err := (MarkdownReporter{Writer: &md}).Report(report); err != nil {
		return err
	}
	return renderHTML(r.Writer, md.Bytes())
}

// WriteComparisonHTML renders a comparison to a standalone HTML page.
func WriteComparisonHTML(w io.Writer, c *Comparison) error {
	var md bytes.Buffer
	if err := WriteComparisonMarkdown(&md, c); err != nil {
		return err
	}
	return renderHTML(w, md.Bytes())
}

func renderHTML(w io.Writer, markdown []byte) error {
	if _, err := io.WriteString(w, htmlHeader); err != nil {
		return err
	}
	var body bytes.Buffer
	if err := markdownRenderer.Convert(markdown, &body); err != nil {
		return fmt.Errorf("render markdown: %w", err)
	}
	if _, err := w.Write(body.Bytes()); err != nil {
		return err
	}
	_, err := io.WriteString(w, htmlFooter)
	return err
}
