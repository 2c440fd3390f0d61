// Package sheets exports dashboards and financial statements to Google Sheets.
package sheets

import (
	"fmt"
	"time"

	"github.com/Veraticus/tally/internal/common"
)

// Configuration errors returned by Validate.
var (
	ErrNoCredentials          = fmt.Errorf("%w: no Google Sheets credentials", common.ErrMissingConfig)
	ErrConflictingCredentials = fmt.Errorf("%w: both OAuth2 and service account credentials set", common.ErrInvalidConfig)
)

// Config holds the configuration for the Google Sheets writer. Exactly one
// of the OAuth2 triple (ClientID, ClientSecret, RefreshToken) or
// ServiceAccountPath must be set.
type Config struct {
	ClientID           string
	ClientSecret       string
	RefreshToken       string
	ServiceAccountPath string
	SpreadsheetID      string // existing spreadsheet; empty creates one named SpreadsheetName
	SpreadsheetName    string
	TimeZone           string
	BatchSize          int
	RetryAttempts      int
	RetryDelay         time.Duration
	EnableFormatting   bool
}

// DefaultConfig returns the writer defaults without credentials.
func DefaultConfig() Config {
	return Config{
		EnableFormatting: true,
		SpreadsheetName:  "Tally Report",
		TimeZone:         "America/New_York",
		BatchSize:        1000,
		RetryAttempts:    3,
		RetryDelay:       time.Second,
	}
}

func (c *Config) hasOAuth() bool {
	return c.ClientID != "" && c.ClientSecret != "" && c.RefreshToken != ""
}

// Validate checks credentials, the target spreadsheet and the write tuning.
func (c *Config) Validate() error {
	switch {
	case !c.hasOAuth() && c.ServiceAccountPath == "":
		return ErrNoCredentials
	case c.hasOAuth() && c.ServiceAccountPath != "":
		return ErrConflictingCredentials
	}

	if c.SpreadsheetID == "" && c.SpreadsheetName == "" {
		return fmt.Errorf("%w: spreadsheet id or name is required", common.ErrMissingConfig)
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("%w: batch size must be positive", common.ErrInvalidConfig)
	}
	if c.RetryAttempts < 0 {
		return fmt.Errorf("%w: retry attempts cannot be negative", common.ErrInvalidConfig)
	}
	if c.RetryDelay < 0 {
		return fmt.Errorf("%w: retry delay cannot be negative", common.ErrInvalidConfig)
	}
	return nil
}
