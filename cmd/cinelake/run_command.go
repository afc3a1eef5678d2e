package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"cinelake/internal/config"
	"cinelake/internal/ingest"
	"cinelake/internal/logging"
	"cinelake/internal/metrics"
	"cinelake/internal/notifications"
	"cinelake/internal/preflight"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var watch bool
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Ingest then transform, once or on an interval",
		Long: `Run ingestion followed by the transform. With --watch the pair repeats
every workflow.run_interval_minutes (or --interval) until interrupted; failures
are logged and the next cycle still runs.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := ctx.configAndLogger()
			if err != nil {
				return err
			}
			notifier := notifications.NewService(cfg)
			if !watch {
				return runCycle(cmd.Context(), cfg, logger, notifier)
			}
			if interval <= 0 {
				interval = time.Duration(cfg.Workflow.RunIntervalMinutes) * time.Minute
			}
			if interval <= 0 {
				return fmt.Errorf("watch interval must be positive")
			}
			return watchCycles(cmd.Context(), logger, interval, func(ctx context.Context) error {
				return runCycle(ctx, cfg, logger, notifier)
			})
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Repeat on an interval until interrupted")
	cmd.Flags().DurationVar(&interval, "interval", 0, "Override workflow.run_interval_minutes")
	return cmd
}

// runCycle performs one ingest and transform pass. A failed source does not
// stop the transform; the transform reads whatever raw dumps exist.
func runCycle(ctx context.Context, cfg *config.Config, logger *slog.Logger, notifier notifications.Service) error {
	rec := metrics.New()
	defer func() {
		if err := rec.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			logger.Warn("write metrics textfile", logging.Error(err))
		}
	}()

	if failed := preflight.Failed(preflight.CheckDirectories(cfg)); len(failed) > 0 {
		err := fmt.Errorf("preflight failed: %s", preflight.Summary(failed))
		notify(ctx, logger, notifier.NotifyError(ctx, err, "preflight"))
		return err
	}

	results, err := runIngest(ctx, cfg, logger, rec, nil)
	if err != nil {
		notify(ctx, logger, notifier.NotifyError(ctx, err, "ingest"))
		return err
	}
	summary := ingest.Summarize(results)
	notify(ctx, logger, notifier.NotifyIngestCompleted(ctx, summary.Completed, summary.Skipped, summary.Failed))

	start := time.Now()
	out, err := runTransform(ctx, cfg, logger, rec)
	if err != nil {
		notify(ctx, logger, notifier.NotifyError(ctx, err, "transform"))
		return err
	}
	counts := make(map[string]int, len(out.Tables))
	for _, tbl := range out.Tables {
		counts[tbl.Name] = tbl.Len()
	}
	notify(ctx, logger, notifier.NotifyTransformCompleted(ctx, counts, time.Since(start)))

	if summary.Failed > 0 {
		return fmt.Errorf("%d source(s) failed to ingest", summary.Failed)
	}
	return nil
}

// notify logs delivery failures; alerts never fail a cycle.
func notify(ctx context.Context, logger *slog.Logger, err error) {
	if err == nil || ctx.Err() != nil {
		return
	}
	logging.WarnWithContext(logger, "notification failed", "notify_failed",
		logging.Error(err),
		logging.String(logging.FieldImpact, "pipeline results are unaffected"),
	)
}

// watchCycles runs cycle immediately and then on every tick until ctx ends.
func watchCycles(ctx context.Context, logger *slog.Logger, interval time.Duration, cycle func(context.Context) error) error {
	logger.Info("watch started",
		logging.String(logging.FieldEventType, "watch_start"),
		logging.Duration("interval", interval),
	)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if err := cycle(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			logging.ErrorWithContext(logger, "pipeline cycle failed", "cycle_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "curated tables keep their previous contents"),
			)
		}
		select {
		case <-ctx.Done():
			logger.Info("watch stopped", logging.String(logging.FieldEventType, "watch_stop"))
			return nil
		case <-ticker.C:
		}
	}
}
