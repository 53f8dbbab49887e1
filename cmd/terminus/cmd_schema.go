package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/camel-ai/terminus/terminus"
)

func newSchemaCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the command batch response schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), terminus.CommandBatchSchemaJSON())
			return nil
		},
	}
}
