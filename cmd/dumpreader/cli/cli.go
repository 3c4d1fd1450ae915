// Package cli implements the dumpreader command tree: scan, status, and
// load against a dump directory backed by any of the local/S3/Azure
// Blob/GCS Directory implementations.
package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"dumpreader/internal/config"
	configfile "dumpreader/internal/config/file"
)

// NewRootCommand returns the "dumpreader" root command with every
// subcommand wired in.
func NewRootCommand(logger *slog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dumpreader",
		Short: "Scan and schedule loading of a logical dump directory",
	}

	cmd.PersistentFlags().String("path", "", "local dump directory path (selects the local backend)")
	cmd.PersistentFlags().String("config", "", "path to a saved run config (JSON)")
	cmd.PersistentFlags().StringSlice("filter", nil, "schema.table glob filter pattern, repeatable; prefix with ! to exclude")
	cmd.PersistentFlags().StringP("output", "o", "table", "output format: table or json")

	cmd.AddCommand(
		newScanCmd(logger),
		newStatusCmd(logger),
		newLoadCmd(logger),
	)

	return cmd
}

// resolveConfig builds a config.Config from --config (if given), falling
// back to --path plus --filter, matching the "load-on-start" contract of
// internal/config: no hot-reload, no implicit merge across sources beyond
// this one pass.
func resolveConfig(ctx context.Context, cmd *cobra.Command) (*config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")
	path, _ := cmd.Flags().GetString("path")
	filters, _ := cmd.Flags().GetStringSlice("filter")

	if configPath != "" {
		store := configfile.NewStore(configPath)
		cfg, err := store.Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("load config %s: %w", configPath, err)
		}
		if cfg == nil {
			return nil, fmt.Errorf("config file %s not found", configPath)
		}
		if len(filters) > 0 {
			cfg.FilterPatterns = filters
		}
		return cfg, nil
	}

	if path == "" {
		return nil, fmt.Errorf("either --config or --path is required")
	}
	cfg := config.Default(path)
	cfg.FilterPatterns = filters
	return cfg, nil
}

func outputFormat(cmd *cobra.Command) string {
	f, _ := cmd.Flags().GetString("output")
	return f
}
