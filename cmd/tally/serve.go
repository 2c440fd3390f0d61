package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Veraticus/tally/internal/api"
		"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/tui"
	"github.com/Veraticus/tally/internal/tui/themes"
	"github.com/spf13/cobra"
)

func (a *app) serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard and ledger over HTTP",
		Long: `Serve the JSON API used by the web dashboard. Reads answer from the
loaded ledger snapshot; every write is stored and followed by a reload.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withLedger(cmd, func(ctx context.Context, s *session) error {
				server := api.NewServer(s.store, s.source, s.engine, api.Options{
					Logger:      slog.Default(),
					CORSOrigins: a.cfg.Server.CORSOrigins,
				})
				slog.Info("Serving ledger API", "addr", a.v.GetString("server.addr"), "snapshot", s.snap.Version)
				return server.Run(ctx, a.v.GetString("server.addr"))
			})
		},
	}

	cmd.Flags().String("addr", "", "listen address (overrides server.addr)")
	cmd.PreRun = func(cmd *cobra.Command, _ []string) {
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			a.v.Set("server.addr", addr)
		}
	}
	return cmd
}

func (a *app) dashboardCmd() *cobra.Command {
	var (
		p     period
		theme string
	)

	cmd := &cobra.Command{
		Use:     "dashboard",
		Aliases: []string{"ui"},
		Short:   "Open the interactive terminal dashboard",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := []tui.Option{tui.WithTheme(themes.ByName(theme))}
			if p.explicit() {
				window, err := p.window(model.Today())
				if err != nil {
					return err
				}
				opts = append(opts, tui.WithRange(window))
			}

			return a.withLedger(cmd, func(ctx context.Context, s *session) error {
				return tui.Run(ctx, s.source, s.engine, opts...)
			})
		},
	}

	cmd.Flags().StringVar(&p.from, "from", "", "first day of the period (default: start of the current quarter)")
	cmd.Flags().StringVar(&p.to, "to", "", "last day of the period (default: end of the current quarter)")
	cmd.Flags().StringVar(&theme, "theme", themes.Default.Name, "color theme (dark, light)")
	return cmd
}

func (a *app) migrateCmd() *cobra.Command {
	var status bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long: `Initialize or update the database schema to the latest version.

This command ensures your ledger database has all the required
tables and indexes for the application to function properly.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			slog.Info("Starting database migration",
				"driver", a.cfg.Database.Dialect,
				"database", a.cfg.Database.Path)

			store, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			version, err := store.SchemaVersion(ctx)
			if err != nil {
				return err
			}
			if !status {
				printSuccess(cmd, "Database migrations completed")
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Schema version %d\n", version)
			return err
		},
	}

	cmd.Flags().BoolVar(&status, "status", false, "only print the schema version")
	return cmd
}
