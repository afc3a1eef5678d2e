package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"cinelake/internal/ledger"
)

func newLedgerCommand(ctx *commandContext) *cobra.Command {
	ledgerCmd := &cobra.Command{
		Use:   "ledger",
		Short: "Inspect the ingestion ledger",
	}
	ledgerCmd.AddCommand(newLedgerListCommand(ctx))
	return ledgerCmd
}

type ledgerRecordJSON struct {
	ID          int64  `json:"id"`
	RunID       string `json:"run_id"`
	Source      string `json:"source"`
	Status      string `json:"status"`
	ContentHash string `json:"content_hash"`
	RowCount    int64  `json:"row_count"`
	ByteSize    int64  `json:"byte_size"`
	RawPath     string `json:"raw_path,omitempty"`
	Reason      string `json:"reason,omitempty"`
	CreatedAt   string `json:"created_at"`
}

func newLedgerListCommand(ctx *commandContext) *cobra.Command {
	var source string
	var status string
	var limit int
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List ingestion records, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			filter := ledger.Filter{Source: strings.TrimSpace(source), Limit: limit}
			if strings.TrimSpace(status) != "" {
				parsed, err := ledger.ParseStatus(status)
				if err != nil {
					return err
				}
				filter.Status = parsed
			}

			store, err := ledger.Open(cfg)
			if err != nil {
				return fmt.Errorf("open ledger: %w", err)
			}
			defer store.Close()

			records, err := store.List(cmd.Context(), filter)
			if err != nil {
				return err
			}

			if jsonOut {
				items := make([]ledgerRecordJSON, 0, len(records))
				for _, rec := range records {
					items = append(items, ledgerRecordJSON{
						ID:          rec.ID,
						RunID:       rec.RunID,
						Source:      rec.Source,
						Status:      string(rec.Status),
						ContentHash: rec.ContentHash,
						RowCount:    rec.RowCount,
						ByteSize:    rec.ByteSize,
						RawPath:     rec.RawPath,
						Reason:      rec.Reason,
						CreatedAt:   rec.CreatedAt.UTC().Format(time.RFC3339),
					})
				}
				return writeJSON(cmd, items)
			}

			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(out, "No ingestion records")
				return nil
			}
			rows := make([][]string, 0, len(records))
			for _, rec := range records {
				rows = append(rows, []string{
					strconv.FormatInt(rec.ID, 10),
					rec.RunID,
					rec.Source,
					string(rec.Status),
					shortHash(rec.ContentHash),
					strconv.FormatInt(rec.RowCount, 10),
					rec.CreatedAt.Local().Format("2006-01-02 15:04:05"),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "Run", "Source", "Status", "Hash", "Rows", "Created"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().StringVar(&source, "source", "", "Only records for this source")
	cmd.Flags().StringVar(&status, "status", "", "Only records with this status (completed, skipped, failed)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum number of records")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func shortHash(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}
