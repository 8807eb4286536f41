package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newPreviewCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "preview <file>...",
		Short: "Show where files would end up, without moving them",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cleanup, err := ctx.buildService(nil)
			if err != nil {
				return err
			}
			defer cleanup()

			out := cmd.OutOrStdout()
			for _, path := range args {
				fmt.Fprintln(out, path)
				destination, err := svc.Preview(cmd.Context(), path)
				if err != nil {
					if len(args) == 1 {
						return err
					}
					fmt.Fprintf(out, "  %v\n", err)
					continue
				}
				fmt.Fprintf(out, "  → %s\n", destination)
			}
			return nil
		},
	}
}
