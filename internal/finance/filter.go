// Package finance derives balances, KPIs, cash-flow projections and reports
// from a ledger. Every function here is pure: the same inputs always give
// the same outputs, and nothing is cached or mutated.
package finance

import (
	"github.com/Veraticus/tally/internal/model"
	"github.com/shopspring/decimal"
)

// AllSelector is the filter value meaning "no restriction".
const AllSelector = "all"

var (
	hundred = decimal.NewFromInt(100)
	half    = decimal.NewFromFloat(0.5)
)

// Filter restricts transactions to one account and/or one project. Empty or
// "all" leaves that dimension unrestricted.
type Filter struct {
	AccountID string `json:"account_id,omitempty"`
	ProjectID string `json:"project_id,omitempty"`
}

// AllAccounts reports whether the account dimension is unrestricted.
func (f Filter) AllAccounts() bool {
	return f.AccountID == "" || f.AccountID == AllSelector
}

// AllProjects reports whether the project dimension is unrestricted.
func (f Filter) AllProjects() bool {
	return f.ProjectID == "" || f.ProjectID == AllSelector
}

// Match reports whether t passes the filter. Only the source account is
// compared; a transfer into the selected account does not match.
func (f Filter) Match(t *model.Transaction) bool {
	if !f.AllAccounts() && t.AccountID != f.AccountID {
		return false
	}
	if !f.AllProjects() && t.ProjectID != f.ProjectID {
		return false
	}
	return true
}

// MatchAccount reports whether the account is selected. The project
// dimension does not apply to accounts.
func (f Filter) MatchAccount(a *model.Account) bool {
	return f.AllAccounts() || a.ID == f.AccountID
}

// Apply returns the transactions passing the filter, in input order.
func (f Filter) Apply(txns []model.Transaction) []model.Transaction {
	if f.AllAccounts() && f.AllProjects() {
		return txns
	}
	out := make([]model.Transaction, 0, len(txns))
	for i := range txns {
		if f.Match(&txns[i]) {
			out = append(out, txns[i])
		}
	}
	return out
}

// roundHalfUp rounds to the nearest integer with halves going toward
// positive infinity, so -2.5 becomes -2 and 2.5 becomes 3.
func roundHalfUp(d decimal.Decimal) int64 {
	return d.Add(half).Floor().IntPart()
}

// percentOf returns part/total*100 rounded half up, or 0 when total is zero.
func percentOf(part, total decimal.Decimal) int64 {
	if total.IsZero() {
		return 0
	}
	return roundHalfUp(part.Div(total).Mul(hundred))
}
