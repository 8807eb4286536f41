package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "scan [source]",
		Short: "List what a run would pick up, without touching anything",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cleanup, err := ctx.buildService(nil)
			if err != nil {
				return err
			}
			defer cleanup()

			source := ""
			if len(args) == 1 {
				source = args[0]
			}

			entries, skipped, err := svc.Scan(cmd.Context(), source)
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				kind := "audio"
				if e.IsDir() {
					kind = "folder"
				}
				rows = append(rows, []string{kind, e.Name, e.Path})
			}

			out := cmd.OutOrStdout()
			if len(rows) > 0 {
				fmt.Fprintln(out, tabulate([]column{{title: "TYPE"}, {title: "NAME"}, {title: "PATH"}}, rows))
			}
			fmt.Fprintf(out, "%d entries, %d unsupported files skipped\n", len(entries), skipped)
			return nil
		},
	}
}
