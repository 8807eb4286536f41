package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"cratekeeper/src/infra/watcher"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Watch the source folder and reorder whenever new files settle",
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, _, err := ctx.ensure()
			if err != nil {
				return err
			}

			// No terminal to answer breaker prompts here, so runs
			// resume on their own and failures stay in the log.
			svc, cleanup, err := ctx.buildService(nil)
			if err != nil {
				return err
			}
			defer cleanup()

			w, err := watcher.NewWatcher(manager)
			if err != nil {
				return err
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			fmt.Fprintf(cmd.OutOrStdout(), "Watching %s, press Ctrl+C to stop.\n", manager.Get().SourcePath)
			if err := svc.WatchAndReorder(runCtx, w); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
}
