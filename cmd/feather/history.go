package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/ersonp/feather/internal/domain/entities"
	"github.com/ersonp/feather/internal/domain/ports"
)

func newHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recently published species",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(func(deps *Deps) error {
				records, err := deps.HistoryHandler.List(cmd.Context(), limit)
				if err != nil {
					return fmt.Errorf("listing history: %w", err)
				}
				if len(records) == 0 {
					fmt.Println("No species published yet.")
					return nil
				}
				printHistory(os.Stdout, records)
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", DefaultListLimit, "Maximum number of records to show")

	return cmd
}

func printHistory(w io.Writer, records []entities.HistoryRecord) {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		image := "-"
		if r.ImageURL != "" {
			image = "yes"
		}
		rows = append(rows, []string{r.PostedAt.Format(time.DateOnly), r.Subject.Name, strconv.Itoa(len(r.Facts)), image})
	}
	fmt.Fprintln(w, renderTable(
		[]string{"Posted", "Subject", "Facts", "Image"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft},
	))
}

func newFactsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "facts <name>",
		Short: "Show the stored facts for a species",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(func(deps *Deps) error {
				facts, err := deps.HistoryHandler.Facts(cmd.Context(), args[0])
				if err != nil {
					return fmt.Errorf("reading facts: %w", err)
				}
				if len(facts) == 0 {
					fmt.Printf("No facts stored for %s.\n", args[0])
					return nil
				}
				for i, f := range facts {
					fmt.Printf("%d. %s\n", i+1, f)
				}
				return nil
			})
		},
	}
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show publication statistics for the channel",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(func(deps *Deps) error {
				stats, err := deps.HistoryHandler.Stats(cmd.Context())
				if err != nil {
					return fmt.Errorf("reading stats: %w", err)
				}
				printStats(os.Stdout, deps.Channel, stats)
				return nil
			})
		},
	}
}

func printStats(w io.Writer, channel string, s entities.HistoryStats) {
	fmt.Fprintf(w, "Channel:             %s\n", channel)
	fmt.Fprintf(w, "Subjects:            %d\n", s.Subjects)
	fmt.Fprintf(w, "Posts:               %d\n", s.Posts)
	fmt.Fprintf(w, "With stored facts:   %d\n", s.WithFacts)
	fmt.Fprintf(w, "Pending suggestions: %d\n", s.PendingIdeas)
	if !s.LastPostedAt.IsZero() {
		fmt.Fprintf(w, "Last post:           %s (%s)\n", s.LastPostedFor, s.LastPostedAt.Format(time.DateOnly))
	}
}

type retractFlags struct {
	reason string
	list   bool
}

func newRetractCmd() *cobra.Command {
	var flags retractFlags

	cmd := &cobra.Command{
		Use:   "retract [name]",
		Short: "Remove a species from history so it can be selected again",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.list {
				return runRetractList(cmd)
			}
			if len(args) == 0 {
				return fmt.Errorf("species name is required")
			}
			return withDeps(func(deps *Deps) error {
				if err := deps.HistoryHandler.Retract(cmd.Context(), args[0], flags.reason); err != nil {
					return fmt.Errorf("retracting %s: %w", args[0], err)
				}
				fmt.Printf("Retracted %s.\n", args[0])
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&flags.reason, "reason", "", "Why the species is retracted")
	cmd.Flags().BoolVar(&flags.list, "list", false, "List previous retractions")

	return cmd
}

func runRetractList(cmd *cobra.Command) error {
	return withAuditLog(func(audit ports.AuditLog) error {
		entries, err := audit.FindAuditLogByAction(cmd.Context(), entities.ActionHistoryRetracted, DefaultListLimit)
		if err != nil {
			return fmt.Errorf("reading audit log: %w", err)
		}
		if len(entries) == 0 {
			fmt.Println("No retractions recorded.")
			return nil
		}
		for _, e := range entries {
			fmt.Printf("%s  %s", e.CreatedAt.Format(time.DateTime), e.Subject)
			if reason, ok := e.Details["reason"].(string); ok && reason != "" {
				fmt.Printf("  (%s)", reason)
			}
			fmt.Println()
		}
		return nil
	})
}
