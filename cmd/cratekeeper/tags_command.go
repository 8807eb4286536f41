package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"cratekeeper/src/music"
)

func newTagsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "tags <file>...",
		Short: "Show the tags cratekeeper reads from audio files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cleanup, err := ctx.buildService(nil)
			if err != nil {
				return err
			}
			defer cleanup()

			out := cmd.OutOrStdout()
			for i, path := range args {
				if i > 0 {
					fmt.Fprintln(out)
				}
				if len(args) > 1 {
					fmt.Fprintln(out, path)
				}

				record, err := svc.ReadTags(cmd.Context(), path)
				if err != nil {
					if len(args) == 1 {
						return err
					}
					fmt.Fprintf(out, "  %v\n", err)
					continue
				}

				rows := make([][]string, 0, record.Len())
				for _, key := range music.CanonicalKeys {
					if record.Has(key) {
						rows = append(rows, []string{key, record.Get(key)})
					}
				}
				if len(rows) == 0 {
					fmt.Fprintln(out, "No tags found.")
					continue
				}
				fmt.Fprintln(out, tabulate([]column{{title: "TAG"}, {title: "VALUE"}}, rows))
			}
			return nil
		},
	}
}
