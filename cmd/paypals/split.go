package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmynk/paypals/internal/calculator"
	"github.com/mmynk/paypals/internal/command"
)

func newSplitCmd(a *app) *cobra.Command {
	var verify bool
	cmd := &cobra.Command{
		Use:   "split",
		Short: "Print the settlement plan for the group",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, closeStore, err := a.open(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			out := cmd.OutOrStdout()
			if err := (&command.Split{}).Execute(ctx, s, out); err != nil {
				return err
			}
			if !verify {
				return nil
			}

			left := calculator.ApplyTransactions(s.NetBalances(), s.Settlement())
			for _, b := range left {
				if b.Amount.Abs().GreaterThan(calculator.Epsilon) {
					return fmt.Errorf("plan leaves %s with %s", b.Name, b.Amount.StringFixed(2))
				}
			}
			fmt.Fprintln(out, "Plan verified: every balance is zero.")
			return nil
		},
	}
	cmd.Flags().BoolVar(&verify, "verify", false, "apply the plan and check every balance ends at zero")
	return cmd
}
