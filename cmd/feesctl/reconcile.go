package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func reconcileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "Run one reconciliation pass",
		Long: `Verify open payment attempts older than the grace period and settle
the successful ones, then repair payment records whose fee status was
never marked paid.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := connect(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer e.Close()

			report, err := e.services.Reconciler.RunOnce(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Println("Reconciliation")
			fmt.Printf("  %-12s %d\n", "Checked:", report.Checked)
			fmt.Printf("  %-12s %d\n", "Settled:", report.Settled)
			fmt.Printf("  %-12s %d\n", "Failed:", report.Failed)
			fmt.Printf("  %-12s %d\n", "Abandoned:", report.Abandoned)
			fmt.Printf("  %-12s %d\n", "Duplicates:", report.Duplicates)
			fmt.Printf("  %-12s %d\n", "Repaired:", report.Repaired)
			fmt.Printf("  %-12s %d\n", "Skipped:", report.Skipped)
			return nil
		},
	}
}
