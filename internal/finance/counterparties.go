package finance

import (
	"github.com/Veraticus/tally/internal/model"
	"github.com/shopspring/decimal"
)

// CounterpartyBalance is income received from minus expense paid to one
// counterparty. Positive means they owe the business.
type CounterpartyBalance struct {
	ID      string                 `json:"id"`
	Name    string                 `json:"name"`
	Type    model.CounterpartyType `json:"type"`
	Income  decimal.Decimal        `json:"income"`
	Expense decimal.Decimal        `json:"expense"`
	Balance decimal.Decimal        `json:"balance"`
	Active  bool                   `json:"active"`
}

// CounterpartySummary holds every counterparty's balance plus totals over the
// active ones.
type CounterpartySummary struct {
	Balances        []CounterpartyBalance `json:"balances"`
	TotalReceivable decimal.Decimal       `json:"total_receivable"`
	TotalPayable    decimal.Decimal       `json:"total_payable"`
}

// CounterpartyBalances totals APPROVED income and expense per counterparty
// over the whole ledger. Transfers are ignored.
func CounterpartyBalances(counterparties []model.Counterparty, txns []model.Transaction) CounterpartySummary {
	type flows struct{ income, expense decimal.Decimal }
	byID := make(map[string]*flows, len(counterparties))
	for i := range txns {
		t := &txns[i]
		if !t.IsApproved() || t.CounterpartyID == "" {
			continue
		}
		f, ok := byID[t.CounterpartyID]
		if !ok {
			f = &flows{}
			byID[t.CounterpartyID] = f
		}
		switch t.Type {
		case model.Income:
			f.income = f.income.Add(t.Amount)
		case model.Expense:
			f.expense = f.expense.Add(t.Amount)
		}
	}

	s := CounterpartySummary{
		Balances:        make([]CounterpartyBalance, 0, len(counterparties)),
		TotalReceivable: decimal.Zero,
		TotalPayable:    decimal.Zero,
	}
	for _, cp := range counterparties {
		b := CounterpartyBalance{
			ID:      cp.ID,
			Name:    cp.Name,
			Type:    cp.Type,
			Income:  decimal.Zero,
			Expense: decimal.Zero,
			Active:  cp.Status == model.CounterpartyActive,
		}
		if f, ok := byID[cp.ID]; ok {
			b.Income = f.income
			b.Expense = f.expense
		}
		b.Balance = b.Income.Sub(b.Expense)
		s.Balances = append(s.Balances, b)

		if !b.Active {
			continue
		}
		switch {
		case b.Balance.IsPositive():
			s.TotalReceivable = s.TotalReceivable.Add(b.Balance)
		case b.Balance.IsNegative():
			s.TotalPayable = s.TotalPayable.Add(b.Balance.Abs())
		}
	}
	return s
}
