package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Himess/delreg/internal/api"
	"github.com/Himess/delreg/internal/service"
)

var (
	explainOwner    string
	explainDelegate string
	explainScope    string
	explainUnits    int
)

var explainCmd = &cobra.Command{
	Use:   "explain",
	Short: "Explain why a grant would be allowed or denied",
	Long: `Simulates a grant against the server's guard rules and returns a
per-guard trace without creating a delegation. Useful for debugging why
a specific grant is being denied.

Note: This command requires a delreg server to be running and reachable.
Also note that you need to be authenticated as admin to use this command.`,
	Example: `  # Would alice be allowed to delegate reports to bob for 30 units?
  delreg explain --owner alice --delegate bob --scope reports --units 30`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cli, err := getClient()
		if err != nil {
			return err
		}

		trace, correlation, err := cli.Explain(cmd.Context(), api.ExplainPayload{
			Owner:         explainOwner,
			Delegate:      explainDelegate,
			Scope:         explainScope,
			DurationUnits: explainUnits,
		})
		if err != nil {
			return logError(err, correlation, "failed to evaluate guards")
		}

		printTrace(trace)
		return nil
	},
}

func printTrace(trace *service.ExplainResponse) {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()

	fmt.Printf("\n%s for %s -> %s on %s\n",
		bold("Guard Trace"),
		bold(explainOwner), bold(explainDelegate), explainScope)

	fmt.Println(faint("---------------------------------------------------"))

	for _, res := range trace.Guards {
		if res.Skipped {
			fmt.Printf("%s Guard: %s %s\n", faint("·"), bold(res.Rule), faint("(scope not covered)"))
			continue
		}

		icon := red("✖")
		if res.Passed {
			icon = green("✔")
		}

		fmt.Printf("%s Guard: %s\n", icon, bold(res.Rule))
		if res.Reason != "" {
			fmt.Printf("  ↳ %s\n", yellow(res.Reason))
		}
	}

	fmt.Println(faint("---------------------------------------------------"))
	if trace.Allowed {
		fmt.Printf("Decision: %s\n", bold(green("allowed")))
	} else {
		fmt.Printf("Decision: %s\n", bold(red("denied")))
	}
	fmt.Println()
}

func init() {
	rootCmd.AddCommand(explainCmd)

	explainCmd.Flags().StringVar(&explainOwner, "owner", "", "Owner making the hypothetical grant")
	explainCmd.Flags().StringVar(&explainDelegate, "delegate", "", "Delegate receiving it")
	explainCmd.Flags().StringVar(&explainScope, "scope", "", "Scope the grant covers")
	explainCmd.Flags().IntVar(&explainUnits, "units", 1, "Duration in units")

	_ = explainCmd.MarkFlagRequired("owner")
	_ = explainCmd.MarkFlagRequired("delegate")
	_ = explainCmd.MarkFlagRequired("scope")
}
