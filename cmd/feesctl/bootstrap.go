package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"schoolfees/internal/service"
)

func bootstrapAdminCmd() *cobra.Command {
	var name, email, password string

	cmd := &cobra.Command{
		Use:   "bootstrap-admin",
		Short: "Register the initial administrator",
		Long: `Register the first administrator account.

This succeeds only once. After the bootstrap marker is written, further
administrators are created by an existing administrator.

Examples:
  feesctl bootstrap-admin --name "Bursar" --email bursar@school.test --password '...'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := connect(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer e.Close()

			session, err := e.services.Auth.BootstrapAdmin(cmd.Context(), name, email, password)
			if errors.Is(err, service.ErrBootstrapCompleted) {
				return fmt.Errorf("bootstrap already completed; ask an existing administrator to create your account")
			}
			if err != nil {
				return err
			}

			fmt.Printf("Administrator %s registered (id %s).\n", session.User.Email, session.User.ID)
			fmt.Printf("Token (expires %s):\n%s\n", session.ExpiresAt.Format("2006-01-02 15:04"), session.Token)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "administrator display name")
	cmd.Flags().StringVar(&email, "email", "", "administrator email")
	cmd.Flags().StringVar(&password, "password", "", "administrator password (min 8 characters)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}
