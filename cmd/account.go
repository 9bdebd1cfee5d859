package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/bnema/pioneer-tx-cli/internal/application"
	"github.com/bnema/pioneer-tx-cli/internal/domain"
	"github.com/spf13/cobra"
)

func newAccountCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Manage Pioneer accounts",
	}

	cmd.AddCommand(
		newAccountAddCmd(app),
		newAccountListCmd(app),
		newAccountPasswordCmd(app),
		newAccountRemoveCmd(app),
	)

	return cmd
}

func newAccountAddCmd(app *app) *cobra.Command {
	var accountID string
	var provider string
	var identifier string
	var secretValue string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register an account signing in through Twitter or Discord",
		RunE: func(cmd *cobra.Command, _ []string) error {
			kind, err := domain.ParseProviderKind(provider)
			if err != nil {
				return err
			}
			svc, err := app.service()
			if err != nil {
				return err
			}

			account, err := svc.AddAccount(cmd.Context(), application.AddAccountInput{
				ID:         accountID,
				Provider:   kind,
				Identifier: identifier,
				Secret:     secretValue,
			})
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "added account %s\n", account.Label())
			return err
		},
	}

	cmd.Flags().StringVar(&accountID, "account", "0", "Account ID (0 or empty auto-assigns next: 1,2,...)")
	cmd.Flags().StringVar(&provider, "provider", "", "Identity provider (twitter|discord)")
	cmd.Flags().StringVar(&identifier, "identifier", "", "Username or email used to sign in")
	cmd.Flags().StringVar(&secretValue, "secret-value", "", "Provider password")
	_ = cmd.MarkFlagRequired("provider")
	_ = cmd.MarkFlagRequired("identifier")
	_ = cmd.MarkFlagRequired("secret-value")

	return cmd
}

func newAccountListCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered accounts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := app.service()
			if err != nil {
				return err
			}
			accounts, err := svc.ListAccounts(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, account := range accounts {
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", account.ID, account.Provider, account.Identifier)
			}
			return w.Flush()
		},
	}
}

func newAccountPasswordCmd(app *app) *cobra.Command {
	var accountID string
	var secretValue string

	cmd := &cobra.Command{
		Use:   "password",
		Short: "Replace the stored provider password of an account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := app.service()
			if err != nil {
				return err
			}
			return svc.SetSecret(cmd.Context(), domain.AccountID(accountID), secretValue)
		},
	}

	cmd.Flags().StringVar(&accountID, "account", "", "Account ID")
	cmd.Flags().StringVar(&secretValue, "secret-value", "", "New provider password")
	_ = cmd.MarkFlagRequired("account")
	_ = cmd.MarkFlagRequired("secret-value")

	return cmd
}

func newAccountRemoveCmd(app *app) *cobra.Command {
	var accountID string

	cmd := &cobra.Command{
		Use:   "remove",
		Short: "Remove an account and its stored password",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := app.service()
			if err != nil {
				return err
			}
			return svc.RemoveAccount(cmd.Context(), domain.AccountID(accountID))
		},
	}

	cmd.Flags().StringVar(&accountID, "account", "", "Account ID")
	_ = cmd.MarkFlagRequired("account")

	return cmd
}
