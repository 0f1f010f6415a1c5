package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ersonp/feather/internal/application/handlers"
	"github.com/ersonp/feather/internal/domain/services"
)

func TestPrintImportResult(t *testing.T) {
	result := &handlers.ImportResult{
		Records:  4,
		Imported: 2,
		Skipped:  1,
		Facts:    5,
		Indexed:  2,
		Errors:   []services.ImportError{{Line: 4, Field: "posted_at", Message: "invalid posted_at"}},
	}

	var buf bytes.Buffer
	printImportResult(&buf, result, false)
	assert.Equal(t, "Imported: 2 of 4 records (5 facts, 2 indexed), 1 skipped (already in history), 1 invalid\n", buf.String())

	buf.Reset()
	printImportResult(&buf, &handlers.ImportResult{Records: 3, Imported: 3, Facts: 6}, true)
	assert.Equal(t, "Dry run: 3 of 3 records would be imported (6 facts)\n", buf.String())
}
