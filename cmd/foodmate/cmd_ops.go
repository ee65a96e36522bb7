package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/foodmate/config"
	"github.com/shashiranjanraj/foodmate/database/seeders"
	"github.com/shashiranjanraj/foodmate/pkg/auth"
)

var (
	seedEmail  string
	tokenEmail string
	tokenName  string
)

// foodmate seed:admin --email ops@example.com
var seedAdminCmd = &cobra.Command{
	Use:   "seed:admin",
	Short: "Create or promote an admin user (defaults to ADMIN_EMAIL)",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		rt, err := boot(ctx, false)
		if err != nil {
			return err
		}
		defer rt.Close()

		email := seedEmail
		if email == "" {
			email = config.AdminEmail()
		}
		if email == "" {
			return errors.New("seed:admin: pass --email or set ADMIN_EMAIL")
		}
		created, err := seeders.SeedAdmin(ctx, rt.store.Users, email)
		if err != nil {
			return err
		}
		if created {
			fmt.Fprintf(cmd.OutOrStdout(), "created admin %s\n", email)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "%s is an admin\n", email)
		}
		return nil
	},
}

// foodmate token --email ops@example.com
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Print a bearer token for an email",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Load(); err != nil {
			return err
		}
		if tokenEmail == "" {
			return errors.New("token: --email is required")
		}
		token, err := newSigner().Issue(auth.Claims{Email: tokenEmail, Name: tokenName})
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	seedAdminCmd.Flags().StringVar(&seedEmail, "email", "", "admin email")
	tokenCmd.Flags().StringVar(&tokenEmail, "email", "", "subject email")
	tokenCmd.Flags().StringVar(&tokenName, "name", "", "display name claim")
}
