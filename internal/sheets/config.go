// Package sheets reads register tables from and writes day summaries to
// Google Sheets.
package sheets

import (
	"fmt"
	"os"
	"time"
)

// Config holds the configuration for the Google Sheets client.
type Config struct {
	ClientID           string
	ClientSecret       string
	RefreshToken       string
	TokenFile          string
	ServiceAccountPath string
	ServiceAccountJSON string
	// SummarySpreadsheetID holds the monthly summary sheets ("Октябрь25").
	SummarySpreadsheetID string
	// RegisterSpreadsheetID holds the monthly register sheets ("октябрь 2025").
	RegisterSpreadsheetID string
	NewSheetRows          int
	NewSheetCols          int
	RetryAttempts         int
	RetryDelay            time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		NewSheetRows:  100,
		NewSheetCols:  50,
		RetryAttempts: 3,
		RetryDelay:    time.Second,
	}
}

// LoadFromEnv fills unset fields from environment variables.
func (c *Config) LoadFromEnv() {
	setIfEmpty(&c.ClientID, "GOOGLE_SHEETS_CLIENT_ID")
	setIfEmpty(&c.ClientSecret, "GOOGLE_SHEETS_CLIENT_SECRET")
	setIfEmpty(&c.RefreshToken, "GOOGLE_SHEETS_REFRESH_TOKEN")
	setIfEmpty(&c.ServiceAccountPath, "GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH")
	setIfEmpty(&c.ServiceAccountJSON, "GOOGLE_SERVICE_ACCOUNT_JSON")
	if c.ServiceAccountPath == "" && c.ServiceAccountJSON == "" {
		setIfEmpty(&c.ServiceAccountPath, "GOOGLE_APPLICATION_CREDENTIALS")
	}
}

// HasServiceAccount reports whether service account credentials are set.
func (c *Config) HasServiceAccount() bool {
	return c.ServiceAccountPath != "" || c.ServiceAccountJSON != ""
}

// HasOAuth reports whether OAuth2 client credentials with a refresh token or
// a token file are set.
func (c *Config) HasOAuth() bool {
	return c.ClientID != "" && c.ClientSecret != "" && (c.RefreshToken != "" || c.TokenFile != "")
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	hasOAuth := c.HasOAuth()
	hasServiceAccount := c.HasServiceAccount()

	if !hasOAuth && !hasServiceAccount {
		return fmt.Errorf("no authentication method configured")
	}

	if hasOAuth && hasServiceAccount {
		return fmt.Errorf("multiple authentication methods configured; use either OAuth2 or service account")
	}

	if c.SummarySpreadsheetID == "" && c.RegisterSpreadsheetID == "" {
		return fmt.Errorf("no spreadsheet configured")
	}

	if c.NewSheetRows <= 0 || c.NewSheetCols <= 0 {
		return fmt.Errorf("new sheet size must be positive")
	}

	if c.RetryAttempts < 0 {
		return fmt.Errorf("retry attempts cannot be negative")
	}

	if c.RetryDelay < 0 {
		return fmt.Errorf("retry delay cannot be negative")
	}

	return nil
}

func setIfEmpty(dst *string, env string) {
	if *dst == "" {
		*dst = os.Getenv(env)
	}
}
