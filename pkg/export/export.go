// Package export renders tabular report data into downloadable documents.
package export

import "fmt"

// Table is format-independent report content. Rows are keyed by header so
// exporters can lay columns out in header order.
type Table struct {
	Title   string
	Headers []string
	Rows    []map[string]string
}

// Exporter renders a Table into one output format.
type Exporter interface {
	Render(table Table) ([]byte, error)
	ContentType() string
	Extension() string
}

// ForFormat returns the exporter for a format name.
func ForFormat(format string) (Exporter, error) {
	switch format {
	case "csv", "":
		return &CSVExporter{}, nil
	case "pdf":
		return &PDFExporter{}, nil
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
}
