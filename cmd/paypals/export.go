package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mmynk/paypals/internal/export"
)

func newExportCmd(a *app) *cobra.Command {
	var what, output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write activities or the settlement plan as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, closeStore, err := a.open(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			var w io.Writer = cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", output, err)
				}
				defer f.Close()
				w = f
			}

			switch what {
			case "activities":
				return export.WriteActivities(w, s.Activities())
			case "settlement":
				return export.WriteSettlement(w, s.Settlement())
			default:
				return fmt.Errorf("unknown export %q, want activities or settlement", what)
			}
		},
	}
	cmd.Flags().StringVar(&what, "what", "activities", "activities or settlement")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}
