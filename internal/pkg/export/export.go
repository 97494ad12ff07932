// Package export renders tabular reports as CSV or PDF.
package export

import (
	"fmt"
	"strings"
	"time"
)

// Format is an output encoding
type Format string

const (
	FormatCSV Format = "csv"
	FormatPDF Format = "pdf"
)

// ParseFormat accepts "csv" or "pdf" in any case; empty means CSV
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatPDF:
		return FormatPDF, nil
	}
	return "", fmt.Errorf("unsupported export format %q", s)
}

// ContentType returns the MIME type for the format
func (f Format) ContentType() string {
	if f == FormatPDF {
		return "application/pdf"
	}
	return "text/csv; charset=utf-8"
}

// Table is a titled grid of string cells
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// Document is a PDF report: optional summary lines followed by tables
type Document struct {
	Title       string
	GeneratedAt time.Time
	Summary     []string
	Tables      []Table
}

// Filename builds a download name such as "attendance-dribbling-2025-05-01.csv"
func Filename(base string, at time.Time, f Format) string {
	return fmt.Sprintf("%s-%s.%s", slug(base), at.Format("2006-01-02"), f)
}

func slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	out := strings.TrimRight(b.String(), "-")
	if out == "" {
		return "export"
	}
	return out
}
