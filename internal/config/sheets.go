package config

import (
	"os"

	"github.com/Veraticus/tally/internal/sheets"
	"github.com/spf13/viper"
)

// LoadSheetsConfig loads Google Sheets configuration from Viper and environment variables.
// It follows this precedence:
// 1. Viper configuration (from config file or TALLY_ env vars)
// 2. Direct environment variables (GOOGLE_SHEETS_*)
// 3. Default values
func LoadSheetsConfig(v *viper.Viper) (*sheets.Config, error) {
	config := sheets.DefaultConfig()

	fields := []struct {
		dst    *string
		key    string
		env    string
		isPath bool
	}{
		{&config.ServiceAccountPath, "sheets.service_account_path", "GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH", true},
		{&config.ClientID, "sheets.client_id", "GOOGLE_SHEETS_CLIENT_ID", false},
		{&config.ClientSecret, "sheets.client_secret", "GOOGLE_SHEETS_CLIENT_SECRET", false},
		{&config.RefreshToken, "sheets.refresh_token", "GOOGLE_SHEETS_REFRESH_TOKEN", false},
		{&config.SpreadsheetID, "sheets.spreadsheet_id", "GOOGLE_SHEETS_SPREADSHEET_ID", false},
		{&config.SpreadsheetName, "sheets.spreadsheet_name", "GOOGLE_SHEETS_SPREADSHEET_NAME", false},
		{&config.TimeZone, "sheets.time_zone", "GOOGLE_SHEETS_TIME_ZONE", false},
	}

	for _, f := range fields {
		val := v.GetString(f.key)
		if val == "" {
			val = os.Getenv(f.env)
		}
		if val == "" {
			continue
		}
		if f.isPath {
			val = ExpandPath(val)
		}
		*f.dst = val
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}
