// Command tripbudget reconciles a saved planner response against a budget
// without running the server.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"vayro/budget"
	"vayro/itinerary"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "tripbudget",
		Short:         "Offline tools for Vayro trip plans",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newReconcileCmd())
	return root
}

func newReconcileCmd() *cobra.Command {
	var file, policyFlag string
	var total float64
	var days int

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Price an itinerary and compare it with a budget",
		Long: `Read raw planner output (code fences and surrounding prose are fine),
estimate each day's spend from the options' price ranges and print the
budget summary as JSON. Anomaly counts go to stderr.

Examples:
  tripbudget reconcile --file plan.json --budget 500 --days 3
  cat plan.txt | tripbudget reconcile --file - --budget 500 --days 3 --policy cheapest`,
		RunE: func(cmd *cobra.Command, args []string) error {
			policy, ok := budget.ParsePolicy(policyFlag)
			if !ok {
				return fmt.Errorf("unknown policy %q, use first or cheapest", policyFlag)
			}

			raw, err := readInput(cmd, file)
			if err != nil {
				return err
			}

			itin, err := itinerary.Parse(string(raw))
			if err != nil {
				return err
			}

			summary, err := budget.Reconciler{Policy: policy}.Reconcile(itin, total, days)
			if err != nil {
				return err
			}

			out, err := json.MarshalIndent(summary, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))

			a := summary.Anomalies
			fmt.Fprintf(cmd.ErrOrStderr(),
				"anomalies: %d (malformed days %d, empty slots %d, unnamed options %d, unrecognized tiers %d)\n",
				a.Total(), a.MalformedDays, a.EmptySlots, a.UnnamedOptions, a.UnrecognizedTiers)
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "Planner output to read, or - for stdin")
	cmd.Flags().Float64Var(&total, "budget", 0, "Total trip budget in dollars")
	cmd.Flags().IntVar(&days, "days", 0, "Trip length in days")
	cmd.Flags().StringVar(&policyFlag, "policy", "first", "Which option of a slot to price: first or cheapest")
	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagRequired("days")

	return cmd
}

func readInput(cmd *cobra.Command, file string) ([]byte, error) {
	if file == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("reading plan: %w", err)
	}
	return data, nil
}
