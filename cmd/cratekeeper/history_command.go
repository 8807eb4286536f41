package main

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"cratekeeper/src/infra/database"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var runID string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show past runs and the moves they made",
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, _, err := ctx.ensure()
			if err != nil {
				return err
			}
			cfg := manager.Get()
			if !cfg.Journal.Enabled {
				return errors.New("the move journal is disabled in the configuration")
			}

			journal, err := database.NewSqliteJournal(cfg.Journal.Path)
			if err != nil {
				return err
			}
			defer journal.Close()

			out := cmd.OutOrStdout()
			if runID != "" {
				moves, err := journal.RecentMoves(cmd.Context(), runID, limit)
				if err != nil {
					return err
				}
				if len(moves) == 0 {
					fmt.Fprintf(out, "No moves recorded for run %s.\n", runID)
					return nil
				}
				rows := make([][]string, 0, len(moves))
				for _, m := range moves {
					rows = append(rows, []string{
						m.At.Format(time.DateTime),
						m.Source,
						m.Destination,
					})
				}
				fmt.Fprintln(out, tabulate([]column{{title: "AT"}, {title: "FROM"}, {title: "TO"}}, rows))
				return nil
			}

			runs, err := journal.RecentRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded yet.")
				return nil
			}
			rows := make([][]string, 0, len(runs))
			for _, r := range runs {
				finished := "running"
				if !r.Finished.IsZero() {
					finished = r.Finished.Format(time.DateTime)
				}
				rows = append(rows, []string{
					r.ID,
					r.Source,
					r.Started.Format(time.DateTime),
					finished,
					strconv.Itoa(r.Moved),
					strconv.Itoa(r.Failed),
				})
			}
			fmt.Fprintln(out, tabulate([]column{
				{title: "RUN"},
				{title: "SOURCE"},
				{title: "STARTED"},
				{title: "FINISHED"},
				{title: "MOVED", numeric: true},
				{title: "FAILED", numeric: true},
			}, rows))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum number of rows to show")
	cmd.Flags().StringVar(&runID, "run", "", "Show the moves of one run instead of the run list")
	return cmd
}
