package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestTransaction_Validate(t *testing.T) {
	valid := func() Transaction {
		return Transaction{
			ID:        "t1",
			Date:      MustParseDate("2024-01-01"),
			Type:      Income,
			Status:    StatusApproved,
			Amount:    decimal.NewFromInt(100),
			AccountID: "a1",
		}
	}

	tests := []struct {
		mutate  func(*Transaction)
		name    string
		wantErr bool
	}{
		{name: "valid income", mutate: func(*Transaction) {}},
		{name: "missing id", mutate: func(tx *Transaction) { tx.ID = "" }, wantErr: true},
		{name: "unknown type", mutate: func(tx *Transaction) { tx.Type = "REFUND" }, wantErr: true},
		{name: "unknown status", mutate: func(tx *Transaction) { tx.Status = "VOID" }, wantErr: true},
		{name: "negative amount", mutate: func(tx *Transaction) { tx.Amount = decimal.NewFromInt(-1) }, wantErr: true},
		{name: "zero amount", mutate: func(tx *Transaction) { tx.Amount = decimal.Zero }},
		{name: "missing account", mutate: func(tx *Transaction) { tx.AccountID = "" }, wantErr: true},
		{
			name:    "transfer without destination",
			mutate:  func(tx *Transaction) { tx.Type = Transfer },
			wantErr: true,
		},
		{
			name: "transfer to itself",
			mutate: func(tx *Transaction) {
				tx.Type = Transfer
				tx.ToAccountID = tx.AccountID
			},
			wantErr: true,
		},
		{
			name: "valid transfer",
			mutate: func(tx *Transaction) {
				tx.Type = Transfer
				tx.ToAccountID = "a2"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := valid()
			tt.mutate(&tx)
			err := tx.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidTransaction)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParseTransactionType(t *testing.T) {
	got, err := ParseTransactionType(" expense ")
	assert.NoError(t, err)
	assert.Equal(t, Expense, got)

	_, err = ParseTransactionType("refund")
	assert.ErrorIs(t, err, ErrInvalidTransaction)

	st, err := ParseTransactionStatus("pending")
	assert.NoError(t, err)
	assert.Equal(t, StatusPending, st)
}

func TestTransaction_GenerateHash(t *testing.T) {
	a := Transaction{Date: MustParseDate("2024-01-01"), Amount: decimal.RequireFromString("10.5"), Description: "Coffee", AccountID: "a1"}
	b := a
	b.Amount = decimal.RequireFromString("10.50")

	assert.Equal(t, a.GenerateHash(), b.GenerateHash(), "equal amounts hash equally regardless of scale")

	b.AccountID = "a2"
	assert.NotEqual(t, a.GenerateHash(), b.GenerateHash())
}

func TestEntityValidation(t *testing.T) {
	assert.NoError(t, (&Account{ID: "a", Name: "Bank", Currency: "USD"}).Validate())
	assert.ErrorIs(t, (&Account{ID: "a", Name: "Bank", Currency: "US"}).Validate(), ErrInvalidAccount)
	assert.ErrorIs(t, (&Category{ID: "c", Name: "Rent", Type: Transfer}).Validate(), ErrInvalidCategory)
	assert.NoError(t, (&Category{ID: "c", Name: "Rent", Type: Expense}).Validate())
	assert.ErrorIs(t, (&Project{ID: "p", Name: "Site", Status: "DONE"}).Validate(), ErrInvalidProject)
	assert.NoError(t, (&Project{ID: "p", Name: "Site", Status: ProjectActive}).Validate())
	assert.ErrorIs(t, (&Counterparty{ID: "c", Name: "Acme", Type: "FRIEND", Status: CounterpartyActive}).Validate(), ErrInvalidCounterparty)
	assert.NoError(t, (&Counterparty{ID: "c", Name: "Acme", Type: CounterpartyClient, Status: CounterpartyActive}).Validate())
	assert.ErrorIs(t, (&PlannedPayment{ID: "p", Type: Income, AccountID: "", Amount: decimal.NewFromInt(1)}).Validate(), ErrInvalidPlannedPayment)
}
