package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ersonp/feather/internal/application/handlers"
	"github.com/ersonp/feather/internal/domain/services"
)

type importFlags struct {
	format     string
	dryRun     bool
	onConflict string
}

func newImportCmd() *cobra.Command {
	var flags importFlags

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import publication history from JSON or CSV",
		Long:  "Imports history records from a structured file so previously published species are not selected again.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, args[0], flags)
		},
	}

	cmd.Flags().StringVarP(&flags.format, "format", "f", "auto", "File format (json, csv, auto)")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "Validate without saving")
	cmd.Flags().StringVar(&flags.onConflict, "on-conflict", string(services.ConflictSkip), "Handling of known subjects (skip, overwrite)")

	return cmd
}

func runImport(cmd *cobra.Command, filePath string, flags importFlags) error {
	strategy := services.ConflictStrategy(flags.onConflict)
	if strategy != services.ConflictSkip && strategy != services.ConflictOverwrite {
		return fmt.Errorf("invalid --on-conflict value %q (valid: skip, overwrite)", flags.onConflict)
	}

	return withDeps(func(deps *Deps) error {
		opts := handlers.ImportOptions{
			Format:     flags.format,
			DryRun:     flags.dryRun,
			OnConflict: strategy,
		}

		fmt.Printf("Importing %s...\n", filePath)

		result, err := deps.ImportHandler.Handle(cmd.Context(), filePath, opts)
		if err != nil {
			return fmt.Errorf("importing file: %w", err)
		}

		if len(result.Errors) > 0 {
			fmt.Printf("\nValidation errors (%d):\n", len(result.Errors))
			for _, e := range result.Errors {
				fmt.Printf("  %s\n", e.Error())
			}
		}

		fmt.Println()
		printImportResult(os.Stdout, result, flags.dryRun)

		return nil
	})
}

func printImportResult(w io.Writer, result *handlers.ImportResult, dryRun bool) {
	if dryRun {
		fmt.Fprintf(w, "Dry run: %d of %d records would be imported (%d facts)", result.Imported, result.Records, result.Facts)
	} else {
		fmt.Fprintf(w, "Imported: %d of %d records (%d facts, %d indexed)", result.Imported, result.Records, result.Facts, result.Indexed)
	}
	if result.Skipped > 0 {
		fmt.Fprintf(w, ", %d skipped (already in history)", result.Skipped)
	}
	if result.Invalid() > 0 {
		fmt.Fprintf(w, ", %d invalid", result.Invalid())
	}
	fmt.Fprintln(w)
}
