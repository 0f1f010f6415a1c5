// Package main provides the entry point for the feather CLI application.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	version       = "0.1.0-dev"
	globalChannel string
	globalLogMode string
	globalVerbose bool
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	rootCmd := &cobra.Command{
		Use:           "feather",
		Short:         "Curates and publishes one bird species a day, with facts, a photo and weekly quizzes",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&globalChannel, "channel", "c", "", "Channel to operate on (default: the configured default channel)")
	rootCmd.PersistentFlags().StringVar(&globalLogMode, "log-mode", "dev", "Log mode (dev, prod)")
	rootCmd.PersistentFlags().BoolVarP(&globalVerbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(
		newInitCmd(),
		newChannelsCmd(),
		newRunCmd(),
		newPostCmd(),
		newQuizCmd(),
		newHistoryCmd(),
		newFactsCmd(),
		newStatsCmd(),
		newRetractCmd(),
		newSuggestCmd(),
		newExportCmd(),
		newImportCmd(),
	)

	return rootCmd.ExecuteContext(ctx)
}
