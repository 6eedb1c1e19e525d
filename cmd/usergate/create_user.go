package main

import (
	"errors"
	"fmt"

	"usergate/internal/app"
	"usergate/internal/config"
	"usergate/internal/domain"

	"github.com/spf13/cobra"
)

func newCreateUserCmd(cfg *config.Config) *cobra.Command {
	var (
		profile  domain.Profile
		password string
	)

	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create the initial password user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.DatabaseURL == "" {
				return errors.New("create-user needs --database-url; an in-memory user would be lost on exit")
			}
			st, err := openStores(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = st.close() }()

			svc := app.NewAuthService(app.NewPasswordAuthenticator(st.users), st.users, st.sessions)
			u, err := svc.CreateInitialUser(cmd.Context(), profile, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created user %d (%s)\n", u.ID, u.Email)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&profile.Email, "email", "", "email address (required)")
	f.StringVar(&password, "password", "", "password (required)")
	f.StringVar(&profile.FirstName, "first-name", "", "first name")
	f.StringVar(&profile.LastName, "last-name", "", "last name")
	f.StringVar(&profile.Nickname, "nickname", "", "nickname")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}
