// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/tally/internal/model"
)

// LedgerReader lists every collection of the ledger in its canonical order.
type LedgerReader interface {
	ListAccountGroups(ctx context.Context) ([]model.AccountGroup, error)
	ListAccounts(ctx context.Context) ([]model.Account, error)
	ListTransactions(ctx context.Context) ([]model.Transaction, error)
	ListPlannedPayments(ctx context.Context) ([]model.PlannedPayment, error)
	ListCategoryGroups(ctx context.Context) ([]model.CategoryGroup, error)
	ListCategories(ctx context.Context) ([]model.Category, error)
	ListProjects(ctx context.Context) ([]model.Project, error)
	ListCounterparties(ctx context.Context) ([]model.Counterparty, error)
}

// LedgerStore defines the contract for our persistence layer. Save methods
// insert the record or replace the stored one with the same id.
type LedgerStore interface {
	LedgerReader

	SaveAccountGroup(ctx context.Context, group *model.AccountGroup) error
	SaveAccount(ctx context.Context, account *model.Account) error
	SaveTransaction(ctx context.Context, txn *model.Transaction) error
	SaveTransactions(ctx context.Context, txns []model.Transaction) error
	SavePlannedPayment(ctx context.Context, payment *model.PlannedPayment) error
	SaveCategoryGroup(ctx context.Context, group *model.CategoryGroup) error
	SaveCategory(ctx context.Context, category *model.Category) error
	SaveProject(ctx context.Context, project *model.Project) error
	SaveCounterparty(ctx context.Context, counterparty *model.Counterparty) error

	GetTransaction(ctx context.Context, id string) (*model.Transaction, error)
	SetTransactionStatus(ctx context.Context, id string, status model.TransactionStatus) error
	HasExternalID(ctx context.Context, accountID, externalID string) (bool, error)

	// Delete removes one record. Nothing cascades: transactions referencing
	// a deleted account keep the dangling id.
	Delete(ctx context.Context, collection model.Collection, id string) error

	Migrate(ctx context.Context) error
	Close() error
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
