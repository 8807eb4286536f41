package main

import (
	"github.com/spf13/cobra"

	"cratekeeper/src/features/console"
)

func newConsoleCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "console",
		Short: "Open the interactive full-screen session",
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, log, err := ctx.ensure()
			if err != nil {
				return err
			}

			build, cleanup, err := ctx.serviceBuilder()
			if err != nil {
				return err
			}
			defer cleanup()

			return console.Run(console.Options{
				Config:       manager,
				ConfigPath:   ctx.configPath(),
				Log:          log,
				BuildService: build,
			})
		},
	}
}
