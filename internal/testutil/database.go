// Package testutil provides test utilities for the tally project: in-memory
// stores and a fluent builder for ledger fixtures.
package testutil

import (
	"context"
	"testing"

	"github.com/Veraticus/tally/internal/storage"
)

// TestDB is a migrated in-memory ledger store.
type TestDB struct {
	Store *storage.Store
	t     *testing.T
}

// SetupTestDB creates a new in-memory test database. It automatically
// handles migrations and cleanup.
//
// Example:
//
//	db := testutil.SetupTestDB(t)
//	testutil.NewLedger().Account("bank", "100").Seed(t, db.Store)
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := store.Migrate(context.Background()); err != nil {
		_ = store.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	return &TestDB{Store: store, t: t}
}

// SetupSeededDB creates a test database holding every record of b.
func SetupSeededDB(t *testing.T, b *LedgerBuilder) *TestDB {
	t.Helper()
	db := SetupTestDB(t)
	b.Seed(t, db.Store)
	return db
}
