package cli

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"

	"dumpreader/internal/controller"
	"dumpreader/internal/export"
	"dumpreader/internal/filterspec"
)

func newScanCmd(logger *slog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Open the dump once, run a full classify pass, and print the resulting model",
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

			if outputFormat(cmd) == "table" {
				printSchemaTable(newPrinter("table"), export.BuildSnapshot(ctl.Model()))
				return nil
			}

			format, _ := cmd.Flags().GetString("format")
			data, err := export.Marshal(ctl.Model(), export.Format(format))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
	cmd.Flags().String("format", "json", "snapshot format when --output=json: json or msgpack")
	return cmd
}

// printSchemaTable renders one row per table across every schema in snap,
// the table-output counterpart to export.Marshal's JSON/msgpack snapshot.
func printSchemaTable(p *printer, snap export.Snapshot) {
	header := []string{"SCHEMA", "TABLE", "READY", "CHUNKED", "CHUNKS", "CONSUMED", "DATA DONE", "ANALYZED"}
	var rows [][]string
	for _, sc := range snap.Schemas {
		for _, tb := range sc.Tables {
			rows = append(rows, []string{
				sc.Name,
				tb.Name,
				strconv.FormatBool(tb.Ready),
				strconv.FormatBool(tb.Chunked),
				strconv.Itoa(tb.NumChunks),
				strconv.Itoa(tb.ChunksConsumed),
				strconv.FormatBool(tb.DataDone),
				strconv.FormatBool(tb.AnalyzeDone),
			})
		}
	}
	p.table(header, rows)
}
