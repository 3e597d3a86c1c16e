package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dhamidi/classpool/codebase"
)

func newWatchCmd(cfg *config) *cobra.Command {
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "watch <dir>",
		Short: "Re-parse class files under a directory as they change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cb := codebase.New(args[0], codebase.WithParseOptions(cfg.parseOptions()...))
			w := codebase.NewFileWatcher(cb, interval)

			out := cmd.OutOrStdout()
			w.OnChange(func(changed, removed []string) {
				fmt.Fprintf(out, "%d changed, %d removed: %d classes, %d failed\n",
					len(changed), len(removed), cb.Len(), len(cb.Failed()))
			})

			err := w.Run(cmd.Context())
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", time.Second, "how often to poll for changes")

	return cmd
}
