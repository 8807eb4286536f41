package main

import (
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"cratekeeper/src/features/config"
	"cratekeeper/src/features/organizing"
	"cratekeeper/src/music"
)

func newReorderCommand(ctx *commandContext) *cobra.Command {
	var source string
	var dest string
	var template string
	var workers int
	var dryRun bool
	var saveLog bool

	cmd := &cobra.Command{
		Use:   "reorder [source]",
		Short: "Move every supported file under source into the library tree",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, log, err := ctx.ensure()
			if err != nil {
				return err
			}

			if len(args) == 1 {
				source = args[0]
			}
			if err := applyOverrides(manager, overrides{
				dest:      dest,
				template:  template,
				workers:   workers,
				dryRun:    dryRun,
				dryRunSet: cmd.Flags().Changed("dry-run"),
			}); err != nil {
				return err
			}

			svc, cleanup, err := ctx.buildService(newPromptDecider(cmd.InOrStdin(), cmd.OutOrStdout()))
			if err != nil {
				return err
			}
			defer cleanup()

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			stats, runErr := svc.Reorder(runCtx, source)
			printStats(cmd.OutOrStdout(), stats)

			if saveLog {
				path, err := log.Save(manager.Get().Session.SavePath)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Session log saved to %s\n", path)
			}
			return runErr
		},
	}

	cmd.Flags().StringVarP(&source, "source", "s", "", "Folder to pick files up from")
	cmd.Flags().StringVarP(&dest, "dest", "d", "", "Library root to move files into")
	cmd.Flags().StringVarP(&template, "template", "t", "", "Filename template for this run")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "Number of files moved in parallel")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Log what would happen without moving anything")
	cmd.Flags().BoolVar(&saveLog, "save-log", false, "Write the session log to the configured folder afterwards")
	return cmd
}

type overrides struct {
	dest      string
	template  string
	workers   int
	dryRun    bool
	dryRunSet bool
}

// applyOverrides folds per-run flags into the shared configuration.
func applyOverrides(manager *config.Manager, o overrides) error {
	cfg := *manager.Get()
	changed := false
	if o.dest != "" {
		cfg.LibraryPath = o.dest
		changed = true
	}
	if o.template != "" {
		if _, err := music.ParseTemplate(o.template); err != nil {
			return fmt.Errorf("invalid template: %w", err)
		}
		cfg.Template = o.template
		changed = true
	}
	if o.workers > 0 {
		cfg.Organize.Workers = o.workers
		changed = true
	}
	if o.dryRunSet {
		cfg.Organize.DryRun = o.dryRun
		changed = true
	}
	if changed {
		manager.Update(&cfg)
	}
	return nil
}

func printStats(out io.Writer, stats organizing.Stats) {
	if stats.DryRun {
		fmt.Fprintln(out, "Dry run, nothing was moved.")
	}
	fmt.Fprintf(out, "Processed %d files: %d moved, %d skipped, %d failed in %s\n",
		stats.Processed, stats.Moved, stats.Skipped, stats.Failures,
		music.HumanDuration(int(stats.Elapsed.Seconds())))
}
