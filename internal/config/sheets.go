package config

import (
	"github.com/Veraticus/studio-ledger/internal/sheets"
)

// SheetsConfig builds the Sheets client configuration of the selected
// studio. Values from the configuration file take precedence; unset
// credentials fall back to the GOOGLE_* environment variables.
func (c *Config) SheetsConfig() sheets.Config {
	studio := c.Active()

	cfg := sheets.DefaultConfig()
	cfg.ClientID = c.Sheets.ClientID
	cfg.ClientSecret = c.Sheets.ClientSecret
	cfg.RefreshToken = c.Sheets.RefreshToken
	cfg.ServiceAccountPath = c.Sheets.ServiceAccountPath
	cfg.SummarySpreadsheetID = studio.SummarySpreadsheetID
	cfg.RegisterSpreadsheetID = studio.RegisterSpreadsheetID
	cfg.RetryAttempts = c.Sheets.RetryAttempts
	cfg.RetryDelay = c.Sheets.RetryDelay

	cfg.LoadFromEnv()

	// A token file is only an auth method for OAuth clients.
	if cfg.ClientID != "" && cfg.RefreshToken == "" && !cfg.HasServiceAccount() {
		cfg.TokenFile = c.Sheets.TokenFile
	}
	return cfg
}

// OAuth2Config returns the settings for `studio auth`.
func (c *Config) OAuth2Config() sheets.OAuth2Config {
	cfg := c.SheetsConfig()
	return sheets.OAuth2Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenFile:    c.Sheets.TokenFile,
	}
}
