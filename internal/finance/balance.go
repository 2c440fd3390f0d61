package finance

import (
	"github.com/Veraticus/tally/internal/model"
	"github.com/shopspring/decimal"
)

// Balance derives the current balance of one account from its opening
// balance and every APPROVED transaction touching it:
//
//	opening + income - expense - transfers out + transfers in
func Balance(account model.Account, txns []model.Transaction) decimal.Decimal {
	balance := account.OpeningBalance
	for i := range txns {
		balance = balance.Add(effect(account.ID, &txns[i]))
	}
	return balance
}

// CalculatedAccounts pairs every account with its Balance, preserving order.
// Transactions referencing unknown accounts are ignored.
func CalculatedAccounts(accounts []model.Account, txns []model.Transaction) []model.CalculatedAccount {
	deltas := make(map[string]decimal.Decimal, len(accounts))
	for i := range txns {
		postings(&txns[i], func(accountID string, delta decimal.Decimal) {
			deltas[accountID] = deltas[accountID].Add(delta)
		})
	}

	out := make([]model.CalculatedAccount, len(accounts))
	for i, a := range accounts {
		out[i] = model.CalculatedAccount{
			Account: a,
			Balance: a.OpeningBalance.Add(deltas[a.ID]),
		}
	}
	return out
}

// TotalBalance sums the balances of the accounts selected by the filter.
func TotalBalance(calculated []model.CalculatedAccount, filter Filter) decimal.Decimal {
	total := decimal.Zero
	for i := range calculated {
		if filter.MatchAccount(&calculated[i].Account) {
			total = total.Add(calculated[i].Balance)
		}
	}
	return total
}

// postings calls post once per account leg of an APPROVED transaction.
// A transfer posts to both the source and the destination.
func postings(t *model.Transaction, post func(accountID string, delta decimal.Decimal)) {
	if !t.IsApproved() {
		return
	}
	switch t.Type {
	case model.Income:
		post(t.AccountID, t.Amount)
	case model.Expense:
		post(t.AccountID, t.Amount.Neg())
	case model.Transfer:
		post(t.AccountID, t.Amount.Neg())
		if t.ToAccountID != "" {
			post(t.ToAccountID, t.Amount)
		}
	}
}

func effect(accountID string, t *model.Transaction) decimal.Decimal {
	delta := decimal.Zero
	postings(t, func(id string, d decimal.Decimal) {
		if id == accountID {
			delta = delta.Add(d)
		}
	})
	return delta
}
