package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/feather/internal/domain/entities"
	"github.com/ersonp/feather/internal/infrastructure/parsers"
)

func exportRecords() []entities.HistoryRecord {
	return []entities.HistoryRecord{
		{
			ID:       "rec-1",
			Subject:  entities.NewSubject("Eurasian Wren"),
			Facts:    []string{"Males build several domed nests.", "Its song is loud for its size."},
			ImageURL: "https://upload.wikimedia.org/wikipedia/commons/a/ab/Wren.jpg",
			PostedAt: time.Date(2024, 5, 6, 8, 0, 0, 0, time.UTC),
		},
		{
			ID:       "rec-2",
			Subject:  entities.NewSubject("Mallard"),
			PostedAt: time.Date(2024, 5, 7, 8, 0, 0, 0, time.UTC),
		},
	}
}

func TestFormatJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, formatJSON(&buf, exportRecords()))

	var parsed []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &parsed))

	require.Len(t, parsed, 2)
	assert.Equal(t, "rec-1", parsed[0]["id"])
	assert.Equal(t, "Eurasian Wren", parsed[0]["subject"])
	assert.Len(t, parsed[0]["facts"], 2)
	assert.Equal(t, "2024-05-06T08:00:00Z", parsed[0]["posted_at"])
	assert.NotContains(t, parsed[1], "facts")
	assert.NotContains(t, parsed[1], "image_url")
}

func TestFormatJSON_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, formatJSON(&buf, nil))
	assert.Equal(t, "[]\n", buf.String())
}

func TestFormatCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, formatCSV(&buf, exportRecords()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "id,subject,facts,image_url,posted_at", lines[0])
	assert.Equal(t, "rec-2,Mallard,,,2024-05-07T08:00:00Z", lines[2])
}

func TestFormatCSV_RoundTripsThroughParser(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, formatCSV(&buf, exportRecords()))

	parser := &parsers.CSVParser{}
	raws, err := parser.Parse(&buf)
	require.NoError(t, err)
	require.Len(t, raws, 2)

	assert.Equal(t, "Eurasian Wren", raws[0].Subject)
	assert.Equal(t, exportRecords()[0].Facts, raws[0].Facts)
	assert.Equal(t, "2024-05-06T08:00:00Z", raws[0].PostedAt)
}

func TestFormatMarkdown(t *testing.T) {
	records := exportRecords()
	records[1].Subject = entities.NewSubject("Odd | Name")

	var buf bytes.Buffer
	require.NoError(t, formatMarkdown(&buf, records))

	out := buf.String()
	assert.Contains(t, out, "# Publication History")
	assert.Contains(t, out, "Total: 2 records")
	assert.Contains(t, out, "| 2024-05-06 | Eurasian Wren | Males build several domed nests.<br>Its song is loud for its size. | [link](")
	assert.Contains(t, out, "Odd \\| Name")
}

func TestEscapeMarkdown(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"plain", "plain"},
		{"a|b", "a\\|b"},
		{"line\nbreak", "line break"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, escapeMarkdown(tt.input))
		})
	}
}

func TestExporter_WritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	e := &exporter{format: "json", output: path}

	require.NoError(t, e.export(exportRecords()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Eurasian Wren")
}

func TestExporter_UnknownFormat(t *testing.T) {
	e := &exporter{format: "yaml"}
	err := e.formatRecords(&bytes.Buffer{}, exportRecords())
	assert.ErrorContains(t, err, "unknown format")
}
