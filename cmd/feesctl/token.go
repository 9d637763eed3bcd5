package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"schoolfees/internal/repository/postgres"
)

func tokenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "token [email]",
		Short: "Issue an access token for an existing user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := connect(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer e.Close()

			user, err := postgres.NewUserRepository(e.db).GetByEmail(cmd.Context(), strings.ToLower(args[0]))
			if err != nil {
				return fmt.Errorf("lookup %s: %w", args[0], err)
			}

			session, err := e.services.Auth.IssueSession(user)
			if err != nil {
				return err
			}

			fmt.Println(session.Token)
			return nil
		},
	}
}
