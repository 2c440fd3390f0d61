package storage_test

import (
	"context"
	"testing"

	"github.com/Veraticus/tally/internal/common"
	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/service"
	"github.com/Veraticus/tally/internal/storage"
	"github.com/Veraticus/tally/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ service.LedgerStore = (*storage.Store)(nil)

func seededLedger() *testutil.LedgerBuilder {
	return testutil.NewLedger().
		AccountGroup("banks", "Banks").
		Account("bank", "1000.50").
		Account("cash", "0").
		CategoryGroup("revenue", "Revenue", model.Income).
		Category("sales", "Sales", model.Income).
		Category("rent", "Rent", model.Expense).
		Project("site", "5000", "1200").
		Counterparty("acme", model.CounterpartyClient).
		Income("2024-01-10", "250.25", "bank", testutil.WithCategory("sales"), testutil.WithCounterparty("acme")).
		Expense("2024-01-12", "80", "bank", testutil.WithCategory("rent"), testutil.WithStatus(model.StatusPending)).
		Transfer("2024-01-15", "40", "bank", "cash", testutil.WithDescription("float")).
		Planned("2024-03-01", model.Expense, "500", "bank")
}

func TestStoreRoundTrip(t *testing.T) {
	db := testutil.SetupSeededDB(t, seededLedger())
	ctx := context.Background()

	groups, err := db.Store.ListAccountGroups(ctx)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "Banks", groups[0].Name)

	accounts, err := db.Store.ListAccounts(ctx)
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, "bank", accounts[0].ID)
	assert.True(t, accounts[0].OpeningBalance.Equal(testutil.Dec("1000.50")))
	assert.Equal(t, "USD", accounts[0].Currency)
	assert.Empty(t, accounts[0].GroupID)

	categoryGroups, err := db.Store.ListCategoryGroups(ctx)
	require.NoError(t, err)
	require.Len(t, categoryGroups, 1)
	assert.Equal(t, model.Income, categoryGroups[0].Type)

	categories, err := db.Store.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 2)
	assert.Equal(t, "Sales", categories[0].Name)
	assert.Equal(t, model.Expense, categories[1].Type)

	projects, err := db.Store.ListProjects(ctx)
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.True(t, projects[0].PlannedIncome.Equal(testutil.Dec("5000")))
	assert.False(t, projects[0].CreatedAt.IsZero())

	counterparties, err := db.Store.ListCounterparties(ctx)
	require.NoError(t, err)
	require.Len(t, counterparties, 1)
	assert.Equal(t, model.CounterpartyClient, counterparties[0].Type)
	assert.Equal(t, model.CounterpartyActive, counterparties[0].Status)

	planned, err := db.Store.ListPlannedPayments(ctx)
	require.NoError(t, err)
	require.Len(t, planned, 1)
	assert.Equal(t, testutil.Day("2024-03-01"), planned[0].Date)
	assert.False(t, planned[0].IsRecurring)
}

func TestListTransactionsNewestFirst(t *testing.T) {
	db := testutil.SetupSeededDB(t, seededLedger())
	ctx := context.Background()

	txns, err := db.Store.ListTransactions(ctx)
	require.NoError(t, err)
	require.Len(t, txns, 3)

	assert.Equal(t, testutil.Day("2024-01-15"), txns[0].Date)
	assert.Equal(t, model.Transfer, txns[0].Type)
	assert.Equal(t, "cash", txns[0].ToAccountID)
	assert.Equal(t, "float", txns[0].Description)

	assert.Equal(t, model.StatusPending, txns[1].Status)

	income := txns[2]
	assert.Equal(t, testutil.Day("2024-01-10"), income.Date)
	assert.True(t, income.Amount.Equal(testutil.Dec("250.25")))
	assert.Equal(t, "sales", income.CategoryID)
	assert.Equal(t, "acme", income.CounterpartyID)
	assert.Empty(t, income.ProjectID)
}

func TestSaveTransactionReplaces(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	txn := &model.Transaction{
		ID:        "t1",
		Date:      testutil.Day("2024-02-01"),
		Type:      model.Expense,
		Status:    model.StatusDraft,
		Amount:    testutil.Dec("12.00"),
		AccountID: "bank",
	}
	require.NoError(t, db.Store.SaveTransaction(ctx, txn))
	created := txn.CreatedAt

	txn.Amount = testutil.Dec("15.00")
	txn.Description = "corrected"
	require.NoError(t, db.Store.SaveTransaction(ctx, txn))

	got, err := db.Store.GetTransaction(ctx, "t1")
	require.NoError(t, err)
	assert.True(t, got.Amount.Equal(testutil.Dec("15")))
	assert.Equal(t, "corrected", got.Description)
	assert.True(t, created.Equal(got.CreatedAt), "created_at survives updates")
}

func TestSaveTransactionRejectsInvalid(t *testing.T) {
	db := testutil.SetupTestDB(t)

	err := db.Store.SaveTransaction(context.Background(), &model.Transaction{
		ID:        "t1",
		Type:      model.Transfer,
		Status:    model.StatusApproved,
		AccountID: "bank",
	})
	assert.ErrorIs(t, err, model.ErrInvalidTransaction)
}

func TestSaveTransactionsIsAtomic(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	txns := []model.Transaction{
		{ID: "a", Date: testutil.Day("2024-01-01"), Type: model.Income, Status: model.StatusApproved, Amount: testutil.Dec("1"), AccountID: "bank"},
		{ID: "b", Date: testutil.Day("2024-01-02"), Type: "REFUND", Status: model.StatusApproved, Amount: testutil.Dec("1"), AccountID: "bank"},
	}
	require.Error(t, db.Store.SaveTransactions(ctx, txns))

	stored, err := db.Store.ListTransactions(ctx)
	require.NoError(t, err)
	assert.Empty(t, stored)

	require.NoError(t, db.Store.SaveTransactions(ctx, nil))
}

func TestGetTransactionNotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)

	_, err := db.Store.GetTransaction(context.Background(), "missing")
	assert.ErrorIs(t, err, storage.ErrRecordNotFound)
}

func TestSetTransactionStatus(t *testing.T) {
	db := testutil.SetupSeededDB(t, seededLedger())
	ctx := context.Background()

	txns, err := db.Store.ListTransactions(ctx)
	require.NoError(t, err)
	pending := txns[1]
	require.Equal(t, model.StatusPending, pending.Status)

	require.NoError(t, db.Store.SetTransactionStatus(ctx, pending.ID, model.StatusApproved))
	got, err := db.Store.GetTransaction(ctx, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, got.Status)

	missing := db.Store.SetTransactionStatus(ctx, "missing", model.StatusApproved)
	assert.ErrorIs(t, missing, storage.ErrRecordNotFound)
	assert.ErrorIs(t, missing, common.ErrNotFound, "callers outside storage match the shared sentinel")
	assert.ErrorIs(t, db.Store.SetTransactionStatus(ctx, pending.ID, "VOID"), model.ErrInvalidTransaction)
}

func TestHasExternalID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.Store.SaveTransaction(ctx, &model.Transaction{
		ID:         "t1",
		Date:       testutil.Day("2024-01-01"),
		Type:       model.Income,
		Status:     model.StatusApproved,
		Amount:     testutil.Dec("5"),
		AccountID:  "bank",
		ExternalID: "FIT-1",
	}))

	found, err := db.Store.HasExternalID(ctx, "bank", "FIT-1")
	require.NoError(t, err)
	assert.True(t, found)

	found, err = db.Store.HasExternalID(ctx, "cash", "FIT-1")
	require.NoError(t, err)
	assert.False(t, found)

	_, err = db.Store.HasExternalID(ctx, "bank", "")
	assert.ErrorIs(t, err, storage.ErrEmptyString)
}

func TestDeleteLeavesReferences(t *testing.T) {
	db := testutil.SetupSeededDB(t, seededLedger())
	ctx := context.Background()

	require.NoError(t, db.Store.Delete(ctx, model.CollectionAccounts, "cash"))

	accounts, err := db.Store.ListAccounts(ctx)
	require.NoError(t, err)
	assert.Len(t, accounts, 1)

	txns, err := db.Store.ListTransactions(ctx)
	require.NoError(t, err)
	assert.Equal(t, "cash", txns[0].ToAccountID)
}
