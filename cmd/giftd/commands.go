package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rubysgifts/giftd/internal/config"
	"github.com/rubysgifts/giftd/internal/images"
)

// --- images ---

var imagesCmd = &cobra.Command{
	Use:   "images <query>",
	Short: "Resolve product images for a query from the command line",
	Long: `Resolve product images for a query from the command line.

Runs the same source chain the server uses and prints the records as JSON.

Examples:
  giftd images "noise cancelling headphones"
  giftd images --count 5 "zen garden kit"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		count, _ := cmd.Flags().GetInt("count")
		query := strings.Join(args, " ")

		cfg, err := config.Load()
		if err != nil {
			return err
		}

		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		chain := images.DefaultChain(cfg.Images.PexelsAPIKey, cfg.Images.UnsplashAccessKey)
		resolver := images.NewResolver(chain, logger)

		records := resolver.Resolve(cmd.Context(), query, count)
		out, err := json.MarshalIndent(records, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	},
}

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		keys := config.ShowAll(cfg)
		for _, k := range keys {
			fmt.Printf("  %s = %s\n", colorize(colorBold, k.Key), k.Value)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		if err := config.SetKey(key, value); err != nil {
			return err
		}

		printSuccess("Set %s = %s", key, value)
		return nil
	},
}

func init() {
	imagesCmd.Flags().Int("count", 3, "number of images to resolve (1-10)")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
