package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateCreatesSchema(t *testing.T) {
	store := newMigratedStore(t)
	ctx := context.Background()

	version, err := store.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, ExpectedSchemaVersion, version)

	for _, table := range []string{
		"account_groups", "accounts", "transactions", "planned_payments",
		"category_groups", "categories", "projects", "counterparties",
	} {
		var count int
		err := store.db.QueryRow(
			"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", table,
		).Scan(&count)
		require.NoError(t, err)
		assert.Equal(t, 1, count, "table %s should exist", table)
	}

	var indexCount int
	err = store.db.QueryRow(
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'index' AND name = 'idx_transactions_external'",
	).Scan(&indexCount)
	require.NoError(t, err)
	assert.Equal(t, 1, indexCount)
}

func TestMigrateIsIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "ledger", "tally.db")
	ctx := context.Background()

	store, err := NewSQLiteStorage(dbPath)
	require.NoError(t, err)
	require.NoError(t, store.Migrate(ctx))
	require.NoError(t, store.Close())

	reopened, err := NewSQLiteStorage(dbPath)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	require.NoError(t, reopened.Migrate(ctx))
	version, err := reopened.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, ExpectedSchemaVersion, version)
}

func TestMigrateUnknownDialect(t *testing.T) {
	store := &Store{dialect: Dialect("oracle")}
	assert.ErrorIs(t, store.Migrate(context.Background()), ErrUnknownDialect)
}

func TestMigrationsAreOrdered(t *testing.T) {
	for i, m := range sqliteMigrations {
		assert.Equal(t, i+1, m.Version)
		assert.NotEmpty(t, m.Description)
	}
	assert.Equal(t, ExpectedSchemaVersion, sqliteMigrations[len(sqliteMigrations)-1].Version)
}

func TestPostgresMigrationsEmbedded(t *testing.T) {
	entries, err := postgresMigrations.ReadDir("migrations/postgres")
	require.NoError(t, err)
	// one up and one down file per version
	assert.Len(t, entries, 2*ExpectedSchemaVersion)
}
