package config

import (
	"path/filepath"

	"github.com/Veraticus/budget-flow/internal/sheets"
	"github.com/spf13/viper"
)

// LoadSheetsConfig builds the Google Sheets configuration. Values come from
// viper (config file or BUDGET_ env vars) first, then GOOGLE_SHEETS_* env
// vars, then defaults. The result is not validated, so commands that only
// need local files can still load it.
func LoadSheetsConfig(v *viper.Viper) sheets.Config {
	config := sheets.DefaultConfig()

	config.ServiceAccountPath = ExpandPath(v.GetString("sheets.service_account_path"))
	config.ClientID = v.GetString("sheets.client_id")
	config.ClientSecret = v.GetString("sheets.client_secret")
	config.RefreshToken = v.GetString("sheets.refresh_token")
	config.TokenFile = ExpandPath(v.GetString("sheets.token_file"))
	config.SpreadsheetID = v.GetString("sheets.spreadsheet_id")
	if name := v.GetString("sheets.spreadsheet_name"); name != "" {
		config.SpreadsheetName = name
	}
	if n := v.GetInt("sheets.batch_size"); n > 0 {
		config.BatchSize = n
	}
	if n := v.GetInt("sheets.retry_attempts"); n > 0 {
		config.RetryAttempts = n
	}
	if d := v.GetDuration("sheets.retry_delay"); d > 0 {
		config.RetryDelay = d
	}

	config.LoadFromEnv()
	config.ServiceAccountPath = ExpandPath(config.ServiceAccountPath)

	if config.TokenFile == "" {
		config.TokenFile = DefaultTokenFile()
	}

	return config
}

// DefaultTokenFile is where `budget auth` stores the OAuth2 token.
func DefaultTokenFile() string {
	return filepath.Join(ConfigDir(), "sheets-token.json")
}
