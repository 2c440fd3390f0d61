package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
// If the database cannot be migrated to this version, it's a fatal error.
const ExpectedSchemaVersion = 2

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

// sqliteMigrations mirror migrations/postgres one for one.
var sqliteMigrations = []Migration{
	{
		Version:     1,
		Description: "Initial ledger schema",
		Up: func(tx *sql.Tx) error {
			return execAll(tx,
				`CREATE TABLE IF NOT EXISTS account_groups (
					id TEXT PRIMARY KEY,
					name TEXT NOT NULL,
					sort_order INTEGER NOT NULL DEFAULT 0,
					created_at DATETIME NOT NULL
				)`,
				`CREATE TABLE IF NOT EXISTS accounts (
					id TEXT PRIMARY KEY,
					group_id TEXT,
					name TEXT NOT NULL,
					currency TEXT NOT NULL DEFAULT 'USD',
					opening_balance TEXT NOT NULL DEFAULT '0',
					sort_order INTEGER NOT NULL DEFAULT 0,
					created_at DATETIME NOT NULL
				)`,
				`CREATE TABLE IF NOT EXISTS category_groups (
					id TEXT PRIMARY KEY,
					name TEXT NOT NULL,
					type TEXT NOT NULL CHECK (type IN ('INCOME', 'EXPENSE')),
					sort_order INTEGER NOT NULL DEFAULT 0,
					created_at DATETIME NOT NULL
				)`,
				`CREATE TABLE IF NOT EXISTS categories (
					id TEXT PRIMARY KEY,
					group_id TEXT,
					name TEXT NOT NULL,
					type TEXT NOT NULL CHECK (type IN ('INCOME', 'EXPENSE')),
					sort_order INTEGER NOT NULL DEFAULT 0,
					created_at DATETIME NOT NULL
				)`,
				`CREATE TABLE IF NOT EXISTS projects (
					id TEXT PRIMARY KEY,
					name TEXT NOT NULL,
					planned_income TEXT NOT NULL DEFAULT '0',
					planned_expense TEXT NOT NULL DEFAULT '0',
					status TEXT NOT NULL DEFAULT 'ACTIVE',
					created_at DATETIME NOT NULL
				)`,
				`CREATE TABLE IF NOT EXISTS counterparties (
					id TEXT PRIMARY KEY,
					name TEXT NOT NULL,
					type TEXT NOT NULL,
					email TEXT,
					phone TEXT,
					status TEXT NOT NULL DEFAULT 'ACTIVE',
					created_at DATETIME NOT NULL
				)`,
				`CREATE TABLE IF NOT EXISTS transactions (
					id TEXT PRIMARY KEY,
					date DATE NOT NULL,
					type TEXT NOT NULL CHECK (type IN ('INCOME', 'EXPENSE', 'TRANSFER')),
					status TEXT NOT NULL CHECK (status IN ('DRAFT', 'PENDING', 'APPROVED')),
					amount TEXT NOT NULL,
					account_id TEXT NOT NULL,
					to_account_id TEXT,
					category_id TEXT,
					project_id TEXT,
					counterparty_id TEXT,
					description TEXT,
					created_at DATETIME NOT NULL
				)`,
				`CREATE INDEX IF NOT EXISTS idx_transactions_date ON transactions(date)`,
				`CREATE INDEX IF NOT EXISTS idx_transactions_account ON transactions(account_id)`,
				`CREATE TABLE IF NOT EXISTS planned_payments (
					id TEXT PRIMARY KEY,
					date DATE NOT NULL,
					type TEXT NOT NULL CHECK (type IN ('INCOME', 'EXPENSE', 'TRANSFER')),
					amount TEXT NOT NULL,
					account_id TEXT NOT NULL,
					to_account_id TEXT,
					category_id TEXT,
					project_id TEXT,
					description TEXT,
					is_recurring BOOLEAN NOT NULL DEFAULT 0,
					created_at DATETIME NOT NULL
				)`,
				`CREATE INDEX IF NOT EXISTS idx_planned_payments_date ON planned_payments(date)`,
			)
		},
	},
	{
		Version:     2,
		Description: "Track bank-assigned ids of imported transactions",
		Up: func(tx *sql.Tx) error {
			return execAll(tx,
				`ALTER TABLE transactions ADD COLUMN external_id TEXT`,
				`CREATE UNIQUE INDEX IF NOT EXISTS idx_transactions_external
					ON transactions(account_id, external_id)`,
			)
		},
	},
}

func execAll(tx *sql.Tx, queries ...string) error {
	for _, query := range queries {
		if _, err := tx.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
	}
	return nil
}

// Migrate brings the schema up to ExpectedSchemaVersion.
func (s *Store) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	switch s.dialect {
	case DialectPostgres:
		return s.migratePostgres(ctx)
	case DialectSQLite:
		return s.migrateSQLite(ctx)
	}
	return fmt.Errorf("%w: %q", ErrUnknownDialect, s.dialect)
}

// SchemaVersion reports the schema version recorded in the database.
func (s *Store) SchemaVersion(ctx context.Context) (int, error) {
	var version int
	var err error
	if s.dialect == DialectPostgres {
		err = s.db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&version)
	} else {
		err = s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}
	return version, nil
}

func (s *Store) migrateSQLite(ctx context.Context) error {
	currentVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	// Apply migrations
	for _, migration := range sqliteMigrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		// Update version
		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	// Verify we're at the expected schema version
	finalVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}

	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}
