package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"cratekeeper/src/features/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigShowCommand(ctx))
	configCmd.AddCommand(newConfigPathCommand(ctx))
	configCmd.AddCommand(newConfigInitCommand(ctx))

	return configCmd
}

func newConfigShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the active configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, _, err := ctx.ensure()
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), manager.GetYAML())
			return nil
		},
	}
}

func newConfigPathCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print where the configuration is read from",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ctx.configPath()
			out := cmd.OutOrStdout()
			if _, err := os.Stat(path); os.IsNotExist(err) {
				fmt.Fprintf(out, "%s (not created yet)\n", path)
				return nil
			}
			fmt.Fprintln(out, path)
			return nil
		},
	}
}

func newConfigInitCommand(ctx *commandContext) *cobra.Command {
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ctx.configPath()
			if !overwrite {
				if _, err := os.Stat(path); err == nil {
					return fmt.Errorf("%s already exists, use --overwrite to replace it", path)
				} else if !os.IsNotExist(err) {
					return fmt.Errorf("check config path: %w", err)
				}
			}
			if err := config.CreateDefault(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote default configuration to %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace an existing configuration file")
	return cmd
}
