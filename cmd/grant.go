package cmd

import (
	"time"

	"github.com/spf13/cobra"
)

var (
	grantDelegate string
	grantScope    string
	grantUnits    int
)

var grantCmd = &cobra.Command{
	Use:   "grant",
	Short: "Grant a scoped delegation to another identity",
	Long: `Creates (or overwrites) a delegation from the acting identity to a
delegate for a single scope. The delegation expires after the given
number of duration units; granting again for the same delegate and
scope replaces the previous expiry.`,
	Example: `  # Allow bob to read alice's reports for 30 units
  delreg grant --as alice --delegate bob --scope reports --units 30`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cli, err := getClient()
		if err != nil {
			return err
		}

		resp, correlation, err := cli.Grant(cmd.Context(),
			requestingIdentity, grantDelegate, grantScope, grantUnits)
		if err != nil {
			return logError(err, correlation, "failed to grant delegation")
		}

		logSuccess("granted %s access to scope %s until %s",
			bold(grantDelegate), bold(grantScope),
			resp.ExpiresAt.Format(time.RFC3339))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(grantCmd)

	bindIdentityFlag(grantCmd.Flags())
	grantCmd.Flags().StringVar(&grantDelegate, "delegate", "", "Identity receiving the delegation")
	grantCmd.Flags().StringVar(&grantScope, "scope", "", "Scope the delegation covers")
	grantCmd.Flags().IntVar(&grantUnits, "units", 1, "Duration in units (server-configured unit length)")

	_ = grantCmd.MarkFlagRequired("as")
	_ = grantCmd.MarkFlagRequired("delegate")
	_ = grantCmd.MarkFlagRequired("scope")
}
