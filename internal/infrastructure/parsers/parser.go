// Package parsers provides parsers for importing publication history.
package parsers

import (
	"io"
	"path/filepath"
	"strings"
)

// FactSeparator joins a record's facts in a single CSV column.
const FactSeparator = " | "

// RawRecord represents a history record parsed from an external source
// before validation.
type RawRecord struct {
	ID       string   `json:"id,omitempty"`
	Subject  string   `json:"subject"`
	Facts    []string `json:"facts,omitempty"`
	ImageURL string   `json:"image_url,omitempty"`
	PostedAt string   `json:"posted_at,omitempty"` // RFC 3339 or YYYY-MM-DD
	LineNum  int      `json:"-"`                   // Line number in source file (set by parser)
}

// Parser defines the interface for parsing history records.
type Parser interface {
	Parse(r io.Reader) ([]RawRecord, error)
}

// ForFormat returns the appropriate parser for the given format.
// Supported formats: "json", "csv".
func ForFormat(format string) Parser {
	switch strings.ToLower(format) {
	case "json":
		return &JSONParser{}
	case "csv":
		return &CSVParser{}
	default:
		return nil
	}
}

// ForFile returns the appropriate parser based on file extension.
func ForFile(filename string) Parser {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".json":
		return &JSONParser{}
	case ".csv":
		return &CSVParser{}
	default:
		return nil
	}
}

// SplitFacts splits a joined facts column, dropping empty entries.
func SplitFacts(joined string) []string {
	var facts []string
	for _, f := range strings.Split(joined, FactSeparator) {
		if f = strings.TrimSpace(f); f != "" {
			facts = append(facts, f)
		}
	}
	return facts
}
