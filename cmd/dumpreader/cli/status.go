package cli

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"dumpreader/internal/controller"
	"dumpreader/internal/filterspec"
	"dumpreader/internal/model"
)

func newStatusCmd(logger *slog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Tail the dump and print readiness/progress until COMPLETE",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := resolveConfig(ctx, cmd)
			if err != nil {
				return err
			}
			filter, err := filterspec.Compile(cfg.FilterPatterns)
			if err != nil {
				return fmt.Errorf("compile filters: %w", err)
			}
			dir, err := openDirectory(ctx, cfg.Backend, logger)
			if err != nil {
				return err
			}

			ctl := controller.New(dir, filter, logger)
			if err := ctl.Open(ctx); err != nil {
				return fmt.Errorf("open dump: %w", err)
			}

			interval := time.Duration(cfg.TailIntervalSeconds) * time.Second
			if interval <= 0 {
				interval = 2 * time.Second
			}

			watch, _ := cmd.Flags().GetBool("watch")
			p := newPrinter(outputFormat(cmd))

			printSummary(p, ctl.Model().Summarize())
			if !watch {
				return nil
			}
			return pollUntilComplete(ctx, ctl, p, interval)
		},
	}
	cmd.Flags().Bool("watch", true, "keep rescanning until the dump reaches COMPLETE")
	return cmd
}

func pollUntilComplete(ctx context.Context, ctl *controller.Controller, p *printer, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := ctl.Rescan(ctx); err != nil {
				return fmt.Errorf("rescan: %w", err)
			}
			sum := ctl.Model().Summarize()
			printSummary(p, sum)
			if sum.Status == model.StatusComplete {
				return nil
			}
		}
	}
}

func printSummary(p *printer, sum model.DumpSummary) {
	if p.format == "json" {
		_ = p.json(sum)
		return
	}
	p.kv([][2]string{
		{"status", sum.Status.String()},
		{"schemas", strconv.Itoa(sum.SchemaCount) + " (" + strconv.Itoa(sum.SchemasReady) + " ready)"},
		{"tables", strconv.Itoa(sum.TableCount) + " (" + strconv.Itoa(sum.TablesReady) + " ready)"},
		{"views", strconv.Itoa(sum.ViewCount)},
		{"bytes observed", strconv.FormatInt(sum.BytesObserved, 10)},
		{"bytes authoritative", strconv.FormatInt(sum.BytesAuthoritative, 10)},
		{"bytes filtered", strconv.FormatInt(sum.BytesFiltered, 10)},
		{"tables with pending data", strconv.Itoa(sum.TablesWithPendingData)},
		{"tables awaiting analyze", strconv.Itoa(sum.TablesAwaitingAnalyze)},
	})
}
