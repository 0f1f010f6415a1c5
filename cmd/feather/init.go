package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ersonp/feather/internal/application/handlers"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize a new feather workspace",
		Long:  "Creates a .feather directory with default configuration. Use 'feather channels create' to add a channel.",
		RunE:  runInit,
	}
}

func runInit(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	result, err := handlers.NewInitHandler().Handle(cwd)
	if err != nil {
		return err
	}

	fmt.Printf("Created %s\n", result.ConfigPath)
	if result.Config.LLM.APIKey == "" {
		fmt.Println("Set OPENAI_API_KEY (or llm.api_key) to enable generated facts and descriptions.")
	}
	fmt.Println("Next: feather channels create NAME")

	return nil
}
