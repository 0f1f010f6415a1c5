package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ersonp/feather/internal/application/handlers"
	"github.com/ersonp/feather/internal/domain/ports"
	"github.com/ersonp/feather/internal/infrastructure/config"
	"github.com/ersonp/feather/internal/infrastructure/logging"
	"github.com/ersonp/feather/internal/infrastructure/vectordb/qdrant"
)

func newChannelsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "channels",
		Short: "Manage channels",
		RunE:  runChannelsList,
	}

	cmd.AddCommand(
		newChannelsListCmd(),
		newChannelsCreateCmd(),
		newChannelsDeleteCmd(),
	)

	return cmd
}

func newChannelsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all channels",
		RunE:  runChannelsList,
	}
}

func runChannelsList(cmd *cobra.Command, args []string) error {
	return withChannelHandler(false, func(handler *handlers.ChannelHandler) error {
		infos, err := handler.List()
		if err != nil {
			return err
		}
		printChannels(os.Stdout, infos)
		return nil
	})
}

func printChannels(w io.Writer, infos []handlers.ChannelInfo) {
	if len(infos) == 0 {
		fmt.Fprintln(w, "No channels configured.")
		fmt.Fprintln(w, "Use 'feather channels create NAME' to create a channel.")
		return
	}

	rows := make([][]string, 0, len(infos))
	for _, c := range infos {
		name := c.Name
		if c.Default {
			name += " *"
		}
		region := c.Region
		if region == "" {
			region = "-"
		}
		rows = append(rows, []string{name, c.Collection, region, c.Description})
	}
	fmt.Fprintln(w, renderTable([]string{"Name", "Collection", "Region", "Description"}, rows, nil))
}

func newChannelsCreateCmd() *cobra.Command {
	var description, region string

	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a new channel",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withChannelHandler(true, func(handler *handlers.ChannelHandler) error {
				info, err := handler.Create(cmd.Context(), args[0], description, region)
				if err != nil {
					return err
				}
				fmt.Printf("Created channel %q (collection %s)\n", info.Name, info.Collection)
				if info.Default {
					fmt.Println("It is the default channel.")
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "Channel description")
	cmd.Flags().StringVarP(&region, "region", "r", "", "Region override for generated candidates")

	return cmd
}

func newChannelsDeleteCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete NAME",
		Short: "Delete a channel, its history and its fact collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force {
				return fmt.Errorf("refusing to delete channel %q without --force", args[0])
			}
			return withChannelHandler(true, func(handler *handlers.ChannelHandler) error {
				if err := handler.Delete(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Printf("Deleted channel %q\n", args[0])
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Confirm deletion")

	return cmd
}

// withChannelHandler builds a ChannelHandler for the current directory.
// withCollections binds it to Qdrant when a host is configured.
func withChannelHandler(withCollections bool, fn func(*handlers.ChannelHandler) error) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	cfg, err := config.Load(cwd)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger, err := logging.New(globalLogMode, globalVerbose)
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	var open handlers.CollectionOpener
	if withCollections && cfg.Qdrant.Host != "" {
		open = func(collection string) (ports.CollectionManager, func(), error) {
			qdrantCfg := cfg.Qdrant
			qdrantCfg.Collection = collection
			repo, err := qdrant.NewRepository(qdrantCfg)
			if err != nil {
				return nil, nil, err
			}
			return repo, func() { repo.Close() }, nil
		}
	}

	return fn(handlers.NewChannelHandler(cwd, open, logger))
}
