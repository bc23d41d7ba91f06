package cmd

import (
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Himess/delreg/pkg/client"
)

var auditLogOpts client.ListAuditsOpts

// auditLogCmd represents the audit command
var auditLogCmd = &cobra.Command{
	Use:   "log",
	Short: "Retrieve and display audit log entries",
	Long: `Retrieves the most recent audit entries from the server. Every grant
and revoke attempt is recorded, including denied and failed ones.

This command requires an authenticated session (via 'delreg login') with admin privileges.`,
	Example: `  # The last 50 entries
  delreg audit log -n 50

  # Everything concerning alice's delegations
  delreg audit log --owner alice`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cli, err := getClient()
		if err != nil {
			return err
		}

		log.Info().Msg("Fetching audit log...")
		audits, correlation, err := cli.ListAudits(cmd.Context(), auditLogOpts)
		if err != nil {
			return logError(err, correlation, "failed to fetch audit log")
		}

		log.Info().Msgf("Retrieved %d audit entries", len(audits))

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{
			"Time", "Action", "Identity", "Owner", "Delegate", "Scope", "Granted", "Error",
		})

		for _, e := range audits {
			status := "YES"
			if !e.Granted {
				status = "NO"
			}

			t.AppendRow(table.Row{
				e.Time.Format(time.RFC3339),
				e.Action,
				truncate(string(e.RequestingIdentity), 35),
				truncate(string(e.Key.Owner), 35),
				truncate(string(e.Key.Delegate), 35),
				e.Key.Scope,
				status,
				e.Error,
			})
		}

		t.SetStyle(table.StyleLight)
		t.Render()
		return nil
	},
}

func init() {
	auditCmd.AddCommand(auditLogCmd)

	auditLogCmd.Flags().UintVarP(&auditLogOpts.Limit, "limit", "n", 25, "Number of audit entries to retrieve")
	auditLogCmd.Flags().StringVar(&auditLogOpts.CorrelationID, "correlation-id", "", "Filter by correlation ID")
	auditLogCmd.Flags().StringVar(&auditLogOpts.Owner, "owner", "", "Filter by delegation owner")
	auditLogCmd.Flags().StringVar(&auditLogOpts.Delegate, "delegate", "", "Filter by delegate")
	auditLogCmd.Flags().StringVar(&auditLogOpts.Scope, "scope", "", "Filter by scope")
	auditLogCmd.Flags().StringVar(&auditLogOpts.Action, "action", "", "Filter by action (delegation.grant, delegation.revoke)")
}
