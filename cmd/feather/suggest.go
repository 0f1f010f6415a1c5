package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ersonp/feather/internal/application/handlers"
	"github.com/ersonp/feather/internal/domain/entities"
)

func newSuggestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "suggest",
		Short: "Manage reader suggestions",
		Long:  "Readers propose species; approved suggestions are published before any other candidate.",
	}

	cmd.AddCommand(newSuggestAddCmd())
	cmd.AddCommand(newSuggestListCmd())
	cmd.AddCommand(newSuggestDecideCmd("approve", handlers.DecisionApprove))
	cmd.AddCommand(newSuggestDecideCmd("reject", handlers.DecisionReject))
	cmd.AddCommand(newSuggestMineCmd())

	return cmd
}

func newSuggestAddCmd() *cobra.Command {
	var username string

	cmd := &cobra.Command{
		Use:   "add <user-id> <name>",
		Short: "Submit a suggestion on behalf of a reader",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(func(deps *Deps) error {
				s, err := deps.SuggestionHandler.Submit(cmd.Context(), args[0], username, args[1])
				if err != nil {
					return fmt.Errorf("submitting suggestion: %w", err)
				}
				fmt.Printf("Suggestion %s recorded for %s (pending review).\n", s.ID, s.Subject.Name)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "Display name of the reader")

	return cmd
}

func newSuggestListCmd() *cobra.Command {
	var (
		status string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List suggestions awaiting review",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(func(deps *Deps) error {
				list, err := deps.SuggestionHandler.List(cmd.Context(), entities.SuggestionStatus(status), limit)
				if err != nil {
					return fmt.Errorf("listing suggestions: %w", err)
				}
				if len(list) == 0 {
					fmt.Println("No suggestions found.")
					return nil
				}
				printSuggestions(os.Stdout, list)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&status, "status", "s", string(entities.SuggestionPending), "Status to list (pending, approved)")
	cmd.Flags().IntVarP(&limit, "limit", "l", DefaultListLimit, "Maximum number of suggestions to show")

	return cmd
}

func newSuggestDecideCmd(use string, decision handlers.Decision) *cobra.Command {
	var reason string

	cmd := &cobra.Command{
		Use:   use + " <id>",
		Short: fmt.Sprintf("Mark a pending suggestion as %sd", use),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(func(deps *Deps) error {
				s, err := deps.SuggestionHandler.Decide(cmd.Context(), args[0], decision, reason)
				if err != nil {
					return fmt.Errorf("deciding suggestion: %w", err)
				}
				fmt.Printf("Suggestion %s for %s is now %s.\n", s.ID, s.Subject.Name, s.Status)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&reason, "reason", "", "Reason recorded with the decision")

	return cmd
}

func newSuggestMineCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "mine <user-id>",
		Short: "List a reader's suggestions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(func(deps *Deps) error {
				list, err := deps.SuggestionHandler.ByUser(cmd.Context(), args[0], limit)
				if err != nil {
					return fmt.Errorf("listing suggestions: %w", err)
				}
				if len(list) == 0 {
					fmt.Println("No suggestions found.")
					return nil
				}
				printSuggestions(os.Stdout, list)
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", DefaultListLimit, "Maximum number of suggestions to show")

	return cmd
}

func printSuggestions(w io.Writer, list []entities.Suggestion) {
	rows := make([][]string, 0, len(list))
	for _, s := range list {
		from := s.Username
		if from == "" {
			from = s.UserID
		}
		rows = append(rows, []string{s.ID, s.Subject.Name, string(s.Status), from, s.CreatedAt.Format(time.DateOnly)})
	}
	fmt.Fprintln(w, renderTable([]string{"ID", "Subject", "Status", "From", "Created"}, rows, nil))
}
