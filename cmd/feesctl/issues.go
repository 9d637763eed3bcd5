package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func issuesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "issues",
		Short: "List unresolved settlement issues",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := connect(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer e.Close()

			issues, err := e.services.Settlement.OpenIssues(cmd.Context())
			if err != nil {
				return err
			}

			if len(issues) == 0 {
				fmt.Println("No open settlement issues.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "CREATED\tKIND\tREFERENCE\tPAYER\tFEE\tDETAIL")
			for _, is := range issues {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					is.CreatedAt.Format("2006-01-02 15:04"), is.Kind, is.Reference, is.PayerID, is.FeeID, is.Detail)
			}
			return w.Flush()
		},
	}
}
