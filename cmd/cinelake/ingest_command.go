package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"cinelake/internal/config"
	"cinelake/internal/fetch"
	"cinelake/internal/ingest"
	"cinelake/internal/ledger"
	"cinelake/internal/logging"
	"cinelake/internal/metrics"
)

func newIngestCommand(ctx *commandContext) *cobra.Command {
	var sourceNames []string

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Copy new raw source dumps into the raw zone",
		Long: `Fetch every configured source (or only those named with --source),
skip content already recorded in the ingestion ledger, and copy new dumps into
a fresh run directory under paths.raw_dir.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := ctx.configAndLogger()
			if err != nil {
				return err
			}
			rec := metrics.New()
			results, err := runIngest(cmd.Context(), cfg, logger, rec, sourceNames)
			printIngestResults(cmd.OutOrStdout(), results)
			if werr := rec.WriteTextfile(cfg.Metrics.Textfile); werr != nil {
				logger.Warn("write metrics textfile", logging.Error(werr))
			}
			if err != nil {
				return err
			}
			if failed := ingest.Summarize(results).Failed; failed > 0 {
				return fmt.Errorf("%d source(s) failed to ingest", failed)
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&sourceNames, "source", "s", nil, "Source name to ingest (repeatable)")
	return cmd
}

func runIngest(ctx context.Context, cfg *config.Config, logger *slog.Logger, rec *metrics.Recorder, names []string) ([]ingest.Result, error) {
	store, err := ledger.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	defer store.Close()

	runner := ingest.NewRunner(cfg, store, fetch.NewRegistry(cfg, logger), logger, ingest.WithMetrics(rec))
	return runner.Run(ctx, names...)
}

func printIngestResults(out io.Writer, results []ingest.Result) {
	if len(results) == 0 {
		return
	}
	colorize := shouldColorize(out)
	fmt.Fprintln(out, "Ingestion:")
	for _, res := range results {
		fmt.Fprintln(out, renderStatusLine(res.Source, res.Status, ingestMessage(res), colorize))
	}
	summary := ingest.Summarize(results)
	fmt.Fprintf(out, "%d completed, %d skipped, %d failed\n", summary.Completed, summary.Skipped, summary.Failed)
}

func ingestMessage(res ingest.Result) string {
	switch {
	case res.Err != nil:
		return res.Err.Error()
	case res.Record == nil:
		return ""
	case res.Status == ledger.StatusSkipped:
		return res.Record.Reason
	default:
		return fmt.Sprintf("%d rows, %s", res.Record.RowCount, res.Record.RawPath)
	}
}
