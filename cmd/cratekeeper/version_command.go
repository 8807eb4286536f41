package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

const version = "0.2.0"

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the cratekeeper version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "cratekeeper %s\n", version)
			return nil
		},
	}
}
