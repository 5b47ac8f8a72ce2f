package main

import (
	"fmt"

	"github.com/Veraticus/budget-flow/internal/cli"
	"github.com/Veraticus/budget-flow/internal/common"
	"github.com/Veraticus/budget-flow/internal/config"
	"github.com/Veraticus/budget-flow/internal/sheets"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func authCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authorize access to Google Sheets",
		Long: `Run the Google OAuth2 flow and save the token for later commands.

A local callback server receives the authorization code. An existing
token is refreshed instead when one is already saved.`,
		RunE: runAuth,
	}

	cmd.Flags().String("client-id", "", "OAuth2 client ID (default: sheets.client_id)")
	cmd.Flags().String("client-secret", "", "OAuth2 client secret (default: sheets.client_secret)")
	cmd.Flags().String("callback", "localhost:8080", "Local address for the OAuth2 callback")

	return cmd
}

func runAuth(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	sheetsConfig := config.LoadSheetsConfig(viper.GetViper())

	oauth := sheets.OAuth2Config{
		ClientID:     sheetsConfig.ClientID,
		ClientSecret: sheetsConfig.ClientSecret,
		TokenFile:    sheetsConfig.TokenFile,
	}
	if v, _ := cmd.Flags().GetString("client-id"); v != "" {
		oauth.ClientID = v
	}
	if v, _ := cmd.Flags().GetString("client-secret"); v != "" {
		oauth.ClientSecret = v
	}
	oauth.CallbackAddr, _ = cmd.Flags().GetString("callback")

	if oauth.ClientID == "" || oauth.ClientSecret == "" {
		return common.NewUserError("Google OAuth2 client credentials are required. Set sheets.client_id and sheets.client_secret or pass --client-id/--client-secret.", common.ErrMissingConfig)
	}

	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatTitle("Google Sheets Authorization"))

	token, err := sheets.GetOrCreateToken(ctx, oauth)
	if err != nil {
		return fmt.Errorf("authorization failed: %w", err)
	}
	if err := sheets.SaveToken(oauth.TokenFile, token); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Token saved to %s", oauth.TokenFile)))
	return nil
}
