package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/Veraticus/tally/internal/ledger"
	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/service"
	"github.com/shopspring/decimal"
)

// Dec parses a decimal literal, panicking on malformed input.
func Dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// Day parses a YYYY-MM-DD literal.
func Day(s string) model.Date {
	return model.MustParseDate(s)
}

// Range builds an inclusive date range from two literals.
func Range(from, to string) model.DateRange {
	return model.DateRange{From: Day(from), To: Day(to)}
}

// LedgerBuilder assembles ledger snapshots for tests.
//
// Example:
//
//	snap := testutil.NewLedger().
//		Account("bank", "50000").
//		Income("2024-01-01", "25000", "bank").
//		Expense("2024-01-05", "5000", "bank", testutil.WithCategory("rent")).
//		Snapshot()
type LedgerBuilder struct {
	snap ledger.Snapshot
	seq  int
}

// TxnOption customizes a transaction or planned payment added by the builder.
type TxnOption func(*model.Transaction)

// WithStatus overrides the default APPROVED status.
func WithStatus(s model.TransactionStatus) TxnOption {
	return func(t *model.Transaction) { t.Status = s }
}

// WithCategory sets the category id.
func WithCategory(id string) TxnOption {
	return func(t *model.Transaction) { t.CategoryID = id }
}

// WithProject sets the project id.
func WithProject(id string) TxnOption {
	return func(t *model.Transaction) { t.ProjectID = id }
}

// WithCounterparty sets the counterparty id.
func WithCounterparty(id string) TxnOption {
	return func(t *model.Transaction) { t.CounterpartyID = id }
}

// WithDescription sets the description.
func WithDescription(d string) TxnOption {
	return func(t *model.Transaction) { t.Description = d }
}

// NewLedger starts an empty ledger.
func NewLedger() *LedgerBuilder {
	return &LedgerBuilder{}
}

func (b *LedgerBuilder) nextID(prefix string) string {
	b.seq++
	return fmt.Sprintf("%s-%d", prefix, b.seq)
}

// AccountGroup adds an account group.
func (b *LedgerBuilder) AccountGroup(id, name string) *LedgerBuilder {
	b.snap.AccountGroups = append(b.snap.AccountGroups, model.AccountGroup{
		ID: id, Name: name, SortOrder: len(b.snap.AccountGroups),
	})
	return b
}

// Account adds a USD account with the given opening balance.
func (b *LedgerBuilder) Account(id, opening string) *LedgerBuilder {
	b.snap.Accounts = append(b.snap.Accounts, model.Account{
		ID:             id,
		Name:           id,
		Currency:       "USD",
		OpeningBalance: Dec(opening),
		SortOrder:      len(b.snap.Accounts),
	})
	return b
}

// CategoryGroup adds a category group.
func (b *LedgerBuilder) CategoryGroup(id, name string, typ model.TransactionType) *LedgerBuilder {
	b.snap.CategoryGroups = append(b.snap.CategoryGroups, model.CategoryGroup{
		ID: id, Name: name, Type: typ, SortOrder: len(b.snap.CategoryGroups),
	})
	return b
}

// Category adds a category named name.
func (b *LedgerBuilder) Category(id, name string, typ model.TransactionType) *LedgerBuilder {
	b.snap.Categories = append(b.snap.Categories, model.Category{
		ID: id, Name: name, Type: typ, SortOrder: len(b.snap.Categories),
	})
	return b
}

// Project adds an ACTIVE project with the given plan.
func (b *LedgerBuilder) Project(id, plannedIncome, plannedExpense string) *LedgerBuilder {
	b.snap.Projects = append(b.snap.Projects, model.Project{
		ID:             id,
		Name:           id,
		Status:         model.ProjectActive,
		PlannedIncome:  Dec(plannedIncome),
		PlannedExpense: Dec(plannedExpense),
	})
	return b
}

// Counterparty adds an ACTIVE counterparty.
func (b *LedgerBuilder) Counterparty(id string, typ model.CounterpartyType) *LedgerBuilder {
	return b.CounterpartyWithStatus(id, typ, model.CounterpartyActive)
}

// CounterpartyWithStatus adds a counterparty with an explicit status.
func (b *LedgerBuilder) CounterpartyWithStatus(id string, typ model.CounterpartyType, status model.CounterpartyStatus) *LedgerBuilder {
	b.snap.Counterparties = append(b.snap.Counterparties, model.Counterparty{
		ID: id, Name: id, Type: typ, Status: status,
	})
	return b
}

// Txn adds an APPROVED transaction unless an option says otherwise.
func (b *LedgerBuilder) Txn(date string, typ model.TransactionType, amount, account string, opts ...TxnOption) *LedgerBuilder {
	t := model.Transaction{
		ID:        b.nextID("txn"),
		Date:      Day(date),
		Type:      typ,
		Status:    model.StatusApproved,
		Amount:    Dec(amount),
		AccountID: account,
	}
	for _, opt := range opts {
		opt(&t)
	}
	b.snap.Transactions = append(b.snap.Transactions, t)
	return b
}

// Income adds an APPROVED income transaction.
func (b *LedgerBuilder) Income(date, amount, account string, opts ...TxnOption) *LedgerBuilder {
	return b.Txn(date, model.Income, amount, account, opts...)
}

// Expense adds an APPROVED expense transaction.
func (b *LedgerBuilder) Expense(date, amount, account string, opts ...TxnOption) *LedgerBuilder {
	return b.Txn(date, model.Expense, amount, account, opts...)
}

// Transfer adds an APPROVED transfer between two accounts.
func (b *LedgerBuilder) Transfer(date, amount, from, to string, opts ...TxnOption) *LedgerBuilder {
	opts = append([]TxnOption{func(t *model.Transaction) { t.ToAccountID = to }}, opts...)
	return b.Txn(date, model.Transfer, amount, from, opts...)
}

// Planned adds a planned payment.
func (b *LedgerBuilder) Planned(date string, typ model.TransactionType, amount, account string) *LedgerBuilder {
	b.snap.PlannedPayments = append(b.snap.PlannedPayments, model.PlannedPayment{
		ID:        b.nextID("plan"),
		Date:      Day(date),
		Type:      typ,
		Amount:    Dec(amount),
		AccountID: account,
	})
	return b
}

// Snapshot returns a copy of the assembled ledger at version 1.
func (b *LedgerBuilder) Snapshot() *ledger.Snapshot {
	snap := b.snap
	snap.Version = 1
	return &snap
}

// Seed writes every record of the ledger into store.
func (b *LedgerBuilder) Seed(t *testing.T, store service.LedgerStore) {
	t.Helper()
	ctx := context.Background()
	s := &b.snap

	for i := range s.AccountGroups {
		mustSave(t, "account group", store.SaveAccountGroup(ctx, &s.AccountGroups[i]))
	}
	for i := range s.Accounts {
		mustSave(t, "account", store.SaveAccount(ctx, &s.Accounts[i]))
	}
	for i := range s.CategoryGroups {
		mustSave(t, "category group", store.SaveCategoryGroup(ctx, &s.CategoryGroups[i]))
	}
	for i := range s.Categories {
		mustSave(t, "category", store.SaveCategory(ctx, &s.Categories[i]))
	}
	for i := range s.Projects {
		mustSave(t, "project", store.SaveProject(ctx, &s.Projects[i]))
	}
	for i := range s.Counterparties {
		mustSave(t, "counterparty", store.SaveCounterparty(ctx, &s.Counterparties[i]))
	}
	mustSave(t, "transactions", store.SaveTransactions(ctx, s.Transactions))
	for i := range s.PlannedPayments {
		mustSave(t, "planned payment", store.SavePlannedPayment(ctx, &s.PlannedPayments[i]))
	}
}

func mustSave(t *testing.T, what string, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("failed to seed %s: %v", what, err)
	}
}
