package handlers

import (
	"context"
	"fmt"
	"os"

	"github.com/ersonp/feather/internal/domain/services"
	"github.com/ersonp/feather/internal/infrastructure/parsers"
)

// ImportHandler seeds publication history from exported JSON or CSV files.
type ImportHandler struct {
	service *services.ImportService
}

// NewImportHandler creates a new import handler.
func NewImportHandler(service *services.ImportService) *ImportHandler {
	return &ImportHandler{
		service: service,
	}
}

// ImportOptions controls import behavior.
type ImportOptions struct {
	Format     string // "json", "csv", or "auto" (by extension)
	DryRun     bool
	OnConflict services.ConflictStrategy
}

// ImportResult summarizes an import. Records counts the rows read from the
// file; every row ends up imported, skipped as already published, or listed
// in Errors.
type ImportResult struct {
	Records  int
	Imported int
	Skipped  int
	Facts    int
	Indexed  int
	Errors   []services.ImportError
}

// Invalid returns the number of rows rejected by validation.
func (r *ImportResult) Invalid() int {
	return len(r.Errors)
}

// Handle reads history records from a file and imports them.
func (h *ImportHandler) Handle(ctx context.Context, filePath string, opts ImportOptions) (*ImportResult, error) {
	records, err := readRecords(filePath, opts.Format)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{Records: len(records)}
	if len(records) == 0 {
		return result, nil
	}

	imported, err := h.service.Import(ctx, records, services.ImportOptions{
		DryRun:     opts.DryRun,
		OnConflict: opts.OnConflict,
	})
	if err != nil {
		return nil, err
	}

	result.Imported = imported.Imported
	result.Skipped = imported.Skipped
	result.Facts = imported.Facts
	result.Indexed = imported.Indexed
	result.Errors = imported.Errors
	return result, nil
}

func readRecords(filePath, format string) ([]parsers.RawRecord, error) {
	var parser parsers.Parser
	if format == "" || format == "auto" {
		parser = parsers.ForFile(filePath)
	} else {
		parser = parsers.ForFormat(format)
	}
	if parser == nil {
		return nil, fmt.Errorf("unsupported format for file: %s", filePath)
	}

	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer file.Close()

	records, err := parser.Parse(file)
	if err != nil {
		return nil, fmt.Errorf("parsing history records: %w", err)
	}
	return records, nil
}
