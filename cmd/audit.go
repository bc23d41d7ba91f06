package cmd

import (
	"github.com/spf13/cobra"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Inspect the audit trail",
	Long:  `Utilities for retrieving audit entries recorded by the server`,
}

func init() {
	rootCmd.AddCommand(auditCmd)
}
