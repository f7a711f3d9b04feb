package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/studio-ledger/internal/common"
	"github.com/Veraticus/studio-ledger/internal/sheets"
)

func authCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authorize Google Sheets access with an OAuth2 client",
		Long: `Run the browser consent flow for the configured OAuth2 client and save the
token file used by later runs. Not needed with a service account.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			oauthCfg := cfg.OAuth2Config()
			if oauthCfg.ClientID == "" || oauthCfg.ClientSecret == "" {
				return common.NewUserError("Set sheets.client_id and sheets.client_secret first", common.ErrMissingConfig)
			}
			callback, _ := cmd.Flags().GetString("callback")
			oauthCfg.CallbackAddr = callback

			out := cmd.OutOrStdout()
			_, err = sheets.Authenticate(cmd.Context(), oauthCfg, func(url string) {
				fmt.Fprintf(out, "Open this URL to authorize access:\n\n%s\n\n", url)
			})
			if err != nil {
				return common.NewUserError("Authorization failed", err)
			}
			fmt.Fprintf(out, "Token saved to %s\n", oauthCfg.TokenFile)
			return nil
		},
	}
	cmd.Flags().String("callback", sheets.DefaultCallbackAddr, "local address for the OAuth2 redirect")
	return cmd
}
