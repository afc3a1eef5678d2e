package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"cinelake/internal/notifications"
	"cinelake/internal/preflight"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	var testNotify bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check directories, sources and the remote host",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			results := preflight.RunAll(cmd.Context(), cfg)
			fmt.Fprintln(out, "Preflight:")
			for _, r := range results {
				fmt.Fprintln(out, renderCheckLine(r, colorize))
			}

			if testNotify {
				if cfg.Notifications.NtfyTopic == "" {
					fmt.Fprintln(out, "Notifications disabled (notifications.ntfy_topic is empty)")
				} else if err := notifications.NewService(cfg).TestNotification(cmd.Context()); err != nil {
					return fmt.Errorf("test notification: %w", err)
				} else {
					fmt.Fprintln(out, "Test notification sent")
				}
			}

			if failed := preflight.Failed(results); len(failed) > 0 {
				return fmt.Errorf("%d check(s) failed", len(failed))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&testNotify, "notify", false, "Also send a test notification")
	return cmd
}
