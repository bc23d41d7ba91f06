package cmd

import (
	"github.com/spf13/cobra"
)

var (
	revokeDelegate string
	revokeScope    string
)

var revokeCmd = &cobra.Command{
	Use:   "revoke",
	Short: "Revoke a delegation early",
	Long: `Removes a delegation before it expires. Revoking a delegation that
does not exist (or already expired) succeeds; revocation is idempotent.`,
	Example: `  # Stop bob from reading alice's reports
  delreg revoke --as alice --delegate bob --scope reports`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cli, err := getClient()
		if err != nil {
			return err
		}

		correlation, err := cli.Revoke(cmd.Context(),
			requestingIdentity, revokeDelegate, revokeScope)
		if err != nil {
			return logError(err, correlation, "failed to revoke delegation")
		}

		logSuccess("revoked %s's access to scope %s",
			bold(revokeDelegate), bold(revokeScope))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(revokeCmd)

	bindIdentityFlag(revokeCmd.Flags())
	revokeCmd.Flags().StringVar(&revokeDelegate, "delegate", "", "Identity whose delegation is revoked")
	revokeCmd.Flags().StringVar(&revokeScope, "scope", "", "Scope the delegation covers")

	_ = revokeCmd.MarkFlagRequired("as")
	_ = revokeCmd.MarkFlagRequired("delegate")
	_ = revokeCmd.MarkFlagRequired("scope")
}
