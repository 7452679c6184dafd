package main

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "fleet-sim",
	Short: "Drive a fieldforce tracker with simulated field staff",
	Long: `fleet-sim posts random-walk location samples for a set of members, each
as its own caller, then prints the fleet summary the tracker reports.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
