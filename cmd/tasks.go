package cmd

import (
	"github.com/spf13/cobra"
)

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "Interact with background tasks",
	Long:  `Utilities for listing, triggering and inspecting background tasks`,
}

func init() {
	rootCmd.AddCommand(tasksCmd)
}
