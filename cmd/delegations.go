package cmd

import (
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var delegationsCmd = &cobra.Command{
	Use:     "delegations",
	Aliases: []string{"ls"},
	Short:   "List currently active delegations",
	Long: `Retrieves all delegations whose expiry lies in the future, across all
owners.

This command requires an authenticated session (via 'delreg login') with admin privileges.`,
	Example: `  delreg delegations`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cli, err := getClient()
		if err != nil {
			return err
		}

		log.Debug().Msg("Fetching active delegations...")
		records, correlation, err := cli.ListActiveDelegations(cmd.Context())
		if err != nil {
			return logError(err, correlation, "failed to list delegations")
		}

		if len(records) == 0 {
			log.Info().Msg("No active delegations found")
			return nil
		}
		log.Debug().Msgf("Retrieved %d active delegation(s)", len(records))

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{
			"Owner", "Delegate", "Scope", "Granted", "Expires",
		})

		for _, rec := range records {
			timeLeft := time.Until(rec.ExpiresAt).Round(time.Minute)

			t.AppendRow(table.Row{
				bold(truncate(string(rec.Key.Owner), 40)),
				bold(truncate(string(rec.Key.Delegate), 40)),
				rec.Key.Scope,
				rec.GrantedAt.Format(time.RFC3339),
				rec.ExpiresAt.Format(time.RFC3339) + " " + faint("("+timeLeft.String()+")"),
			})
		}

		applyTableFormat(t)
		t.Render()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(delegationsCmd)
}
