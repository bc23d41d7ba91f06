package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var (
	queryOwner    string
	queryDelegate string
	queryScope    string
)

var expiryCmd = &cobra.Command{
	Use:   "expiry",
	Short: "Show the stored expiry of a delegation",
	Long: `Prints the expiry timestamp recorded for a delegation. A delegation
that was never granted (or has been revoked) has no expiry; an expired
delegation keeps its timestamp until the sweep task purges it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cli, err := getClient()
		if err != nil {
			return err
		}

		resp, err := cli.GetExpiry(cmd.Context(), queryOwner, queryDelegate, queryScope)
		if err != nil {
			return logError(err, "", "failed to query expiry")
		}

		if resp.ExpiresAt.IsZero() {
			fmt.Printf("%s -> %s on %s: %s\n",
				bold(queryOwner), bold(queryDelegate), queryScope,
				faint("no delegation"))
			return nil
		}

		fmt.Printf("%s -> %s on %s: expires %s (%s)\n",
			bold(queryOwner), bold(queryDelegate), queryScope,
			resp.ExpiresAt.Format(time.RFC3339),
			faint(fmt.Sprintf("unix %d", resp.ExpiresAtUnix)))
		return nil
	},
}

var activeCmd = &cobra.Command{
	Use:   "active",
	Short: "Check whether a delegation is currently honored",
	Long: `A delegation is active when it has been granted, has not been revoked,
has not expired, and its owner still controls a resource in the scope.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cli, err := getClient()
		if err != nil {
			return err
		}

		active, err := cli.IsActive(cmd.Context(), queryOwner, queryDelegate, queryScope)
		if err != nil {
			return logError(err, "", "failed to query delegation state")
		}

		if active {
			fmt.Printf("%s active\n", greenCheck)
		} else {
			fmt.Printf("%s not active\n", redCross)
		}
		return nil
	},
}

func bindQueryFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&queryOwner, "owner", "", "Owner of the delegation")
	cmd.Flags().StringVar(&queryDelegate, "delegate", "", "Delegate of the delegation")
	cmd.Flags().StringVar(&queryScope, "scope", "", "Scope the delegation covers")

	_ = cmd.MarkFlagRequired("owner")
	_ = cmd.MarkFlagRequired("delegate")
	_ = cmd.MarkFlagRequired("scope")
}

func init() {
	rootCmd.AddCommand(expiryCmd)
	rootCmd.AddCommand(activeCmd)

	bindQueryFlags(expiryCmd)
	bindQueryFlags(activeCmd)
}
