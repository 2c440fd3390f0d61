package model

import (
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is the direction of a ledger entry.
type TransactionType string

const (
	// Income adds to the source account.
	Income TransactionType = "INCOME"
	// Expense subtracts from the source account.
	Expense TransactionType = "EXPENSE"
	// Transfer moves money from the source account to the destination account.
	Transfer TransactionType = "TRANSFER"
)

// Valid reports whether t is one of the known types.
func (t TransactionType) Valid() bool {
	switch t {
	case Income, Expense, Transfer:
		return true
	}
	return false
}

// ParseTransactionType accepts any case.
func ParseTransactionType(s string) (TransactionType, error) {
	t := TransactionType(upper(s))
	if !t.Valid() {
		return "", fmt.Errorf("%w: unknown type %q", ErrInvalidTransaction, s)
	}
	return t, nil
}

// TransactionStatus is the approval state of a transaction.
type TransactionStatus string

const (
	StatusDraft    TransactionStatus = "DRAFT"
	StatusPending  TransactionStatus = "PENDING"
	StatusApproved TransactionStatus = "APPROVED"
)

// Valid reports whether s is one of the known statuses.
func (s TransactionStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusPending, StatusApproved:
		return true
	}
	return false
}

// ParseTransactionStatus accepts any case.
func ParseTransactionStatus(s string) (TransactionStatus, error) {
	st := TransactionStatus(upper(s))
	if !st.Valid() {
		return "", fmt.Errorf("%w: unknown status %q", ErrInvalidTransaction, s)
	}
	return st, nil
}

// Transaction is a dated movement of money. Only APPROVED transactions count
// towards balances and reports.
type Transaction struct {
	Date           Date              `json:"date"`
	CreatedAt      time.Time         `json:"created_at"`
	Amount         decimal.Decimal   `json:"amount"`
	ID             string            `json:"id"`
	Type           TransactionType   `json:"type"`
	Status         TransactionStatus `json:"status"`
	AccountID      string            `json:"account_id"`
	ToAccountID    string            `json:"to_account_id,omitempty"`
	CategoryID     string            `json:"category_id,omitempty"`
	ProjectID      string            `json:"project_id,omitempty"`
	CounterpartyID string            `json:"counterparty_id,omitempty"`
	Description    string            `json:"description,omitempty"`
	ExternalID     string            `json:"external_id,omitempty"` // bank-assigned id from imports
}

// IsApproved reports whether the transaction participates in balances.
func (t *Transaction) IsApproved() bool {
	return t.Status == StatusApproved
}

// Validate checks the invariants a stored transaction must hold.
func (t *Transaction) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidTransaction)
	}
	if !t.Type.Valid() {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidTransaction, t.Type)
	}
	if !t.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidTransaction, t.Status)
	}
	if t.Amount.IsNegative() {
		return fmt.Errorf("%w: amount %s is negative", ErrInvalidTransaction, t.Amount)
	}
	if t.AccountID == "" {
		return fmt.Errorf("%w: account is required", ErrInvalidTransaction)
	}
	if t.Type == Transfer {
		if t.ToAccountID == "" {
			return fmt.Errorf("%w: transfer needs a destination account", ErrInvalidTransaction)
		}
		if t.ToAccountID == t.AccountID {
			return fmt.Errorf("%w: transfer to the same account", ErrInvalidTransaction)
		}
	}
	return nil
}

// GenerateHash identifies an imported transaction for duplicate detection
// when the bank supplies no id of its own.
func (t *Transaction) GenerateHash() string {
	data := fmt.Sprintf("%s:%s:%s:%s",
		t.Date,
		t.Amount.StringFixed(2),
		t.Description,
		t.AccountID)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}

// PlannedPayment is a future cash movement. It has no status; it only
// affects forecasts for dates after today.
type PlannedPayment struct {
	Date        Date            `json:"date"`
	CreatedAt   time.Time       `json:"created_at"`
	Amount      decimal.Decimal `json:"amount"`
	ID          string          `json:"id"`
	Type        TransactionType `json:"type"`
	AccountID   string          `json:"account_id"`
	ToAccountID string          `json:"to_account_id,omitempty"`
	CategoryID  string          `json:"category_id,omitempty"`
	ProjectID   string          `json:"project_id,omitempty"`
	Description string          `json:"description,omitempty"`
	IsRecurring bool            `json:"is_recurring"`
}

// Validate checks the invariants a stored planned payment must hold.
func (p *PlannedPayment) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidPlannedPayment)
	}
	if !p.Type.Valid() {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidPlannedPayment, p.Type)
	}
	if p.Amount.IsNegative() {
		return fmt.Errorf("%w: amount %s is negative", ErrInvalidPlannedPayment, p.Amount)
	}
	if p.AccountID == "" {
		return fmt.Errorf("%w: account is required", ErrInvalidPlannedPayment)
	}
	return nil
}
