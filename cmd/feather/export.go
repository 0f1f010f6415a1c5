package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ersonp/feather/internal/domain/entities"
	"github.com/ersonp/feather/internal/infrastructure/parsers"
)

type exportFlags struct {
	format string
	output string
	limit  int
}

type exporter struct {
	format string
	output string
}

func newExportCmd() *cobra.Command {
	var flags exportFlags

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export publication history to file",
		Long:  "Exports history records to JSON, CSV, or markdown format. JSON and CSV output can be read back with import.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.format, "format", "f", "json", "Output format (json, csv, markdown)")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "Output file (default: stdout)")
	cmd.Flags().IntVarP(&flags.limit, "limit", "l", DefaultExportLimit, "Maximum number of records to export (0 for all)")

	return cmd
}

func runExport(cmd *cobra.Command, flags exportFlags) error {
	if !slices.Contains(validFormats, flags.format) {
		return fmt.Errorf("invalid format %q, valid formats: %v", flags.format, validFormats)
	}

	return withDeps(func(deps *Deps) error {
		records, err := deps.HistoryHandler.List(cmd.Context(), flags.limit)
		if err != nil {
			return fmt.Errorf("listing history: %w", err)
		}
		if len(records) == 0 {
			return fmt.Errorf("no history records found to export")
		}

		e := &exporter{format: flags.format, output: flags.output}
		return e.export(records)
	})
}

func (e *exporter) export(records []entities.HistoryRecord) (err error) {
	var w io.Writer
	var f *os.File

	if e.output != "" {
		f, err = os.OpenFile(e.output, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			return fmt.Errorf("creating file: %w", err)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("closing file: %w", cerr)
			}
		}()
		w = f
	} else {
		w = os.Stdout
	}

	if err := e.formatRecords(w, records); err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}

	if e.output != "" {
		fmt.Printf("Exported %d records to %s\n", len(records), e.output)
	}

	return nil
}

func (e *exporter) formatRecords(w io.Writer, records []entities.HistoryRecord) error {
	switch e.format {
	case "json":
		return formatJSON(w, records)
	case "csv":
		return formatCSV(w, records)
	case "markdown":
		return formatMarkdown(w, records)
	default:
		return fmt.Errorf("unknown format: %s", e.format)
	}
}

func formatJSON(w io.Writer, records []entities.HistoryRecord) error {
	type exportRecord struct {
		ID       string   `json:"id"`
		Subject  string   `json:"subject"`
		Facts    []string `json:"facts,omitempty"`
		ImageURL string   `json:"image_url,omitempty"`
		PostedAt string   `json:"posted_at"`
	}

	out := make([]exportRecord, 0, len(records))
	for _, r := range records {
		out = append(out, exportRecord{
			ID:       r.ID,
			Subject:  r.Subject.Name,
			Facts:    r.Facts,
			ImageURL: r.ImageURL,
			PostedAt: r.PostedAt.UTC().Format(time.RFC3339),
		})
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(out)
}

func formatCSV(w io.Writer, records []entities.HistoryRecord) error {
	writer := csv.NewWriter(w)

	header := []string{"id", "subject", "facts", "image_url", "posted_at"}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, r := range records {
		row := []string{
			r.ID,
			r.Subject.Name,
			strings.Join(r.Facts, parsers.FactSeparator),
			r.ImageURL,
			r.PostedAt.UTC().Format(time.RFC3339),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func formatMarkdown(w io.Writer, records []entities.HistoryRecord) error {
	if _, err := fmt.Fprintf(w, "# Publication History\n\nTotal: %d records\n\n", len(records)); err != nil {
		return err
	}

	if _, err := fmt.Fprint(w, "| Posted | Subject | Facts | Image |\n"); err != nil {
		return err
	}
	if _, err := fmt.Fprint(w, "|--------|---------|-------|-------|\n"); err != nil {
		return err
	}

	for _, r := range records {
		image := ""
		if r.ImageURL != "" {
			image = fmt.Sprintf("[link](%s)", r.ImageURL)
		}
		if _, err := fmt.Fprintf(w, "| %s | %s | %s | %s |\n",
			r.PostedAt.UTC().Format(time.DateOnly),
			escapeMarkdown(r.Subject.Name),
			escapeMarkdown(strings.Join(r.Facts, "<br>")),
			image,
		); err != nil {
			return err
		}
	}

	return nil
}

func escapeMarkdown(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	s = strings.ReplaceAll(s, "\n", " ")
	return s
}
