package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Veraticus/tally/internal/cli"
	"github.com/Veraticus/tally/internal/config"
	"github.com/Veraticus/tally/internal/finance"
	"github.com/Veraticus/tally/internal/sheets"
	"github.com/spf13/cobra"
)

// newReportWriter opens the export target. Tests swap it for a recorder.
var newReportWriter = func(ctx context.Context, cfg sheets.Config) (sheets.ReportWriter, error) {
	return sheets.NewWriter(ctx, cfg, slog.Default())
}

// sheetsTokenFile is where the interactive OAuth2 flow keeps its token.
func sheetsTokenFile() (string, error) {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, ".config")
	}
	return filepath.Join(configDir, "tally", "sheets-token.json"), nil
}

func (a *app) exportCmd() *cobra.Command {
	var (
		p      period
		title  string
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the dashboard and statements to Google Sheets",
		Long: `Export the dashboard, the financial statements and the period's
transactions to a Google Sheets spreadsheet. Every tab is replaced.

Authenticate once with 'tally auth sheets' or configure a service account
with sheets.service_account_path.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := p.request()
			if err != nil {
				return err
			}

			return a.withLedger(cmd, func(ctx context.Context, s *session) error {
				dash := s.engine.Dashboard(s.snap, req)
				reports := finance.BuildReports(s.snap, req.Range)

				if dryRun {
					wb := sheets.BuildWorkbook(title, s.snap, dash, reports)
					rows := make([][]string, 0, len(wb.Tabs))
					for _, t := range wb.Tabs {
						rows = append(rows, []string{t.Title, fmt.Sprint(len(t.Rows))})
					}
					_, err := fmt.Fprintln(cmd.OutOrStdout(), cli.Table([]string{"Tab", "Rows"}, rows, 1))
					return err
				}

				sheetsCfg, err := a.sheetsConfig()
				if err != nil {
					return err
				}
				if title == "" {
					title = sheetsCfg.SpreadsheetName
				}

				writer, err := newReportWriter(ctx, *sheetsCfg)
				if err != nil {
					return err
				}
				wb := sheets.BuildWorkbook(title, s.snap, dash, reports)
				if err := writer.Write(ctx, wb); err != nil {
					return fmt.Errorf("export failed: %w", err)
				}
				printSuccess(cmd, fmt.Sprintf("Exported %d rows to %q", wb.RowCount(), title))
				return nil
			})
		},
	}

	p.register(cmd, true)
	cmd.Flags().StringVar(&title, "title", "", "spreadsheet title (default: sheets.spreadsheet_name)")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "d", false, "list the tabs without writing")
	return cmd
}

// sheetsConfig resolves the export configuration, picking up the refresh
// token saved by 'tally auth sheets' when none is configured.
func (a *app) sheetsConfig() (*sheets.Config, error) {
	if a.v.GetString("sheets.refresh_token") == "" && os.Getenv("GOOGLE_SHEETS_REFRESH_TOKEN") == "" {
		if path, err := sheetsTokenFile(); err == nil {
			if token, err := sheets.LoadToken(path); err == nil && token.RefreshToken != "" {
				a.v.Set("sheets.refresh_token", token.RefreshToken)
			}
		}
	}

	cfg, err := config.LoadSheetsConfig(a.v)
	if err != nil {
		return nil, fmt.Errorf("google sheets is not configured (%w); run 'tally auth sheets' first", err)
	}
	return cfg, nil
}

func (a *app) authCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authenticate with external services",
	}
	cmd.AddCommand(a.authSheetsCmd())
	return cmd
}

func (a *app) authSheetsCmd() *cobra.Command {
	var clientID, clientSecret, callback string

	cmd := &cobra.Command{
		Use:   "sheets",
		Short: "Authenticate with Google Sheets",
		Long: `Authenticate with Google Sheets using OAuth2.

This command will:
1. Print a URL to authenticate with Google
2. Wait for the redirect on a local callback server
3. Save the token for 'tally export'`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			// Flags win over config, config over environment
			if clientID == "" {
				clientID = a.v.GetString("sheets.client_id")
			}
			if clientSecret == "" {
				clientSecret = a.v.GetString("sheets.client_secret")
			}
			if clientID == "" {
				clientID = os.Getenv("GOOGLE_SHEETS_CLIENT_ID")
			}
			if clientSecret == "" {
				clientSecret = os.Getenv("GOOGLE_SHEETS_CLIENT_SECRET")
			}
			if clientID == "" || clientSecret == "" {
				return fmt.Errorf("OAuth2 credentials not found. Please set sheets.client_id and sheets.client_secret in config or use --client-id and --client-secret flags")
			}

			tokenFile, err := sheetsTokenFile()
			if err != nil {
				return err
			}
			slog.Info("Starting Google Sheets authentication", "token_file", tokenFile)

			token, err := sheets.GetOrCreateToken(ctx, sheets.OAuth2Config{
				ClientID:     clientID,
				ClientSecret: clientSecret,
				TokenFile:    tokenFile,
				CallbackAddr: callback,
			})
			if err != nil {
				return fmt.Errorf("authentication failed: %w", err)
			}
			if token.RefreshToken == "" {
				slog.Warn("Google returned no refresh token; revoke access and authenticate again")
			}

			printSuccess(cmd, "Google Sheets authentication complete")
			return nil
		},
	}

	cmd.Flags().StringVar(&clientID, "client-id", "", "OAuth2 Client ID (overrides config)")
	cmd.Flags().StringVar(&clientSecret, "client-secret", "", "OAuth2 Client Secret (overrides config)")
	cmd.Flags().StringVar(&callback, "callback", sheets.DefaultCallbackAddr, "address for the OAuth2 redirect")
	return cmd
}
