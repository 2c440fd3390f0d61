package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Veraticus/tally/internal/cli"
	"github.com/Veraticus/tally/internal/finance"
	"github.com/Veraticus/tally/internal/ledger"
	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/storage"
	"github.com/spf13/cobra"
)

// openStore opens the configured ledger store and brings its schema up to
// date.
func (a *app) openStore(ctx context.Context) (*storage.Store, error) {
	var (
		store *storage.Store
		err   error
	)
	switch a.cfg.Database.Dialect {
	case storage.DialectPostgres:
		store, err = storage.NewPostgresStorage(ctx, a.cfg.Database.DSN)
	default:
		if dir := filepath.Dir(a.cfg.Database.Path); dir != "." {
			if mkErr := os.MkdirAll(dir, 0o750); mkErr != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", mkErr)
			}
		}
		store, err = storage.NewSQLiteStorage(a.cfg.Database.Path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger store: %w", err)
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return store, nil
}

// session is an open store plus a loaded ledger snapshot.
type session struct {
	store  *storage.Store
	source *ledger.Source
	engine *finance.Engine
	snap   *ledger.Snapshot
}

// openLedger opens the store and loads the first snapshot.
func (a *app) openLedger(ctx context.Context) (*session, error) {
	store, err := a.openStore(ctx)
	if err != nil {
		return nil, err
	}

	source := ledger.NewSource(ledger.NewLoader(store,
		ledger.WithLogger(slog.Default()),
		ledger.WithStrict(a.cfg.Ledger.StrictFetch),
	))
	snap, err := source.Refresh(ctx)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to load ledger: %w", err)
	}
	if len(snap.Failed) > 0 {
		slog.Warn("Some collections failed to load", "collections", snap.Failed)
	}

	return &session{
		store:  store,
		source: source,
		engine: finance.NewEngine(a.cfg.Ledger.MemoEntries),
		snap:   snap,
	}, nil
}

func (s *session) Close() error {
	return s.store.Close()
}

// withLedger opens the ledger, runs fn and closes the store.
func (a *app) withLedger(cmd *cobra.Command, fn func(ctx context.Context, s *session) error) error {
	ctx := cmd.Context()
	s, err := a.openLedger(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()
	return fn(ctx, s)
}

// period holds the flags that select a reporting window and a filter.
type period struct {
	from    string
	to      string
	today   string
	account string
	project string
}

func (p *period) register(cmd *cobra.Command, withFilter bool) {
	cmd.Flags().StringVar(&p.from, "from", "", "first day of the period (default: start of the current quarter)")
	cmd.Flags().StringVar(&p.to, "to", "", "last day of the period (default: end of the current quarter)")
	cmd.Flags().StringVar(&p.today, "today", "", "treat this date as today")
	if withFilter {
		cmd.Flags().StringVar(&p.account, "account", "", "only this account (default: all)")
		cmd.Flags().StringVar(&p.project, "project", "", "only this project (default: all)")
	}
}

func (p *period) request() (finance.DashboardRequest, error) {
	today := model.Today()
	if p.today != "" {
		d, err := model.ParseDate(p.today)
		if err != nil {
			return finance.DashboardRequest{}, fmt.Errorf("--today: %w", err)
		}
		today = d
	}

	window, err := p.window(today)
	if err != nil {
		return finance.DashboardRequest{}, err
	}

	return finance.DashboardRequest{
		Range:  window,
		Today:  today,
		Filter: finance.Filter{AccountID: p.account, ProjectID: p.project},
	}, nil
}

func (p *period) window(today model.Date) (model.DateRange, error) {
	window := model.QuarterOf(today)
	if p.from != "" {
		d, err := model.ParseDate(p.from)
		if err != nil {
			return window, fmt.Errorf("--from: %w", err)
		}
		window.From = d
	}
	if p.to != "" {
		d, err := model.ParseDate(p.to)
		if err != nil {
			return window, fmt.Errorf("--to: %w", err)
		}
		window.To = d
	}
	if err := window.Validate(); err != nil {
		return window, err
	}
	return window, nil
}

// explicit reports whether the user picked the window.
func (p *period) explicit() bool {
	return p.from != "" || p.to != ""
}

// nameLookup resolves record ids to display names, falling back to the id.
func nameLookup(snap *ledger.Snapshot) func(model.Collection, string) string {
	names := make(map[model.Collection]map[string]string)
	add := func(c model.Collection, id, name string) {
		if names[c] == nil {
			names[c] = make(map[string]string)
		}
		names[c][id] = name
	}
	for _, a := range snap.Accounts {
		add(model.CollectionAccounts, a.ID, a.Name)
	}
	for _, c := range snap.Categories {
		add(model.CollectionCategories, c.ID, c.Name)
	}
	for _, p := range snap.Projects {
		add(model.CollectionProjects, p.ID, p.Name)
	}
	for _, c := range snap.Counterparties {
		add(model.CollectionCounterparties, c.ID, c.Name)
	}

	return func(c model.Collection, id string) string {
		if name, ok := names[c][id]; ok {
			return name
		}
		return id
	}
}

func printSuccess(cmd *cobra.Command, msg string) {
	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(msg))
}
