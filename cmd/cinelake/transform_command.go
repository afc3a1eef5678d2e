package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"

	"cinelake/internal/config"
	"cinelake/internal/etl"
	"cinelake/internal/logging"
	"cinelake/internal/metrics"
)

func newTransformCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "transform",
		Short: "Rebuild the curated films, reviews and people tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := ctx.configAndLogger()
			if err != nil {
				return err
			}
			rec := metrics.New()
			out, err := runTransform(cmd.Context(), cfg, logger, rec)
			if werr := rec.WriteTextfile(cfg.Metrics.Textfile); werr != nil {
				logger.Warn("write metrics textfile", logging.Error(werr))
			}
			if err != nil {
				return err
			}
			printTransformOutput(cmd.OutOrStdout(), out)
			return nil
		},
	}
}

func runTransform(ctx context.Context, cfg *config.Config, logger *slog.Logger, rec *metrics.Recorder) (*etl.Output, error) {
	return etl.NewTransformer(cfg, logger, rec).Run(ctx)
}

func printTransformOutput(out io.Writer, output *etl.Output) {
	rows := make([][]string, 0, len(output.Tables))
	for _, tbl := range output.Tables {
		rows = append(rows, []string{tbl.Name, strconv.Itoa(tbl.Len()), output.Paths[tbl.Name]})
	}
	fmt.Fprintln(out, renderTable([]string{"Table", "Rows", "Path"}, rows, []columnAlignment{alignLeft, alignRight, alignLeft}))
	r := output.Report
	fmt.Fprintf(out, "Films: %d joined, %d rt-only, %d imdb-only, %d duplicates dropped\n",
		r.Joined, r.RTOnly, r.IMDBOnly, r.Duplicates)
}
