package main

import (
	"github.com/spf13/cobra"
)

var version = "dev"

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "terminus",
		Short: "Terminus - terminal-automation agent harness",
		Long: `Terminus drives a shell to complete natural-language tasks.

The run command uses the batched command protocol: each episode the model
returns an analysis, an ordered command batch, and a completion flag. The
dev command uses a tool-calling developer agent instead.`,
		Version:      version,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().String("config", "", "Path to config file")
	cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")

	cmd.AddCommand(newRunCommand())
	cmd.AddCommand(newDevCommand())
	cmd.AddCommand(newSchemaCommand())

	return cmd
}

func execute() error {
	rootCmd := newRootCommand()
	return rootCmd.Execute()
}
