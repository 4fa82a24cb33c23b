package main

import (
	"os"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shajara-tools",
		Short: "Operator tooling for the branch genealogy core",
	}
	cmd.AddCommand(newMigrateCmd())
	cmd.AddCommand(newRecalculateCmd())
	cmd.AddCommand(newBridgeIssuesCmd())
	return cmd
}

func execute() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
