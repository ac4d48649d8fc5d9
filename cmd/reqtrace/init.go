package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/c360studio/reqtrace/config"
)

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init [dir]",
		Short: "Write a starter " + config.ProjectConfigFile,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			path, err := config.NewLoader(slog.Default()).InitProject(dir)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", successStyle.Render("Created"), path)
			return nil
		},
	}
}
