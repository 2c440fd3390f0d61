package model

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// AccountGroup is a named bucket of accounts, such as "Banks" or "Cash".
type AccountGroup struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	SortOrder int    `json:"sort_order"`
}

// Validate checks the group has an id and a name.
func (g *AccountGroup) Validate() error {
	if g.ID == "" || strings.TrimSpace(g.Name) == "" {
		return fmt.Errorf("%w: id and name are required", ErrInvalidAccountGroup)
	}
	return nil
}

// Account is a money container. Its balance is never stored; see
// CalculatedAccount.
type Account struct {
	ID             string          `json:"id"`
	GroupID        string          `json:"group_id,omitempty"`
	Name           string          `json:"name"`
	Currency       string          `json:"currency"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	SortOrder      int             `json:"sort_order"`
}

// Validate checks identity, name and currency code.
func (a *Account) Validate() error {
	if a.ID == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidAccount)
	}
	if strings.TrimSpace(a.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidAccount)
	}
	if len(a.Currency) != 3 {
		return fmt.Errorf("%w: currency %q must be a 3-letter code", ErrInvalidAccount, a.Currency)
	}
	return nil
}

// CalculatedAccount pairs an account with its derived balance.
type CalculatedAccount struct {
	Account
	Balance decimal.Decimal `json:"balance"`
}
