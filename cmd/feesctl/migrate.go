package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"schoolfees/internal/app"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := connect(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer e.Close()

			if err := app.Migrate(e.db); err != nil {
				return err
			}
			fmt.Println("Migrations applied.")
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show applied and pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := connect(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer e.Close()

			return app.MigrationStatus(e.db)
		},
	})

	return cmd
}
