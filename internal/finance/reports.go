package finance

import (
	"sort"

	"github.com/Veraticus/tally/internal/model"
	"github.com/shopspring/decimal"
)

// Line is a named amount in a report.
type Line struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

// ProfitAndLoss is revenue and expense by category over a window.
type ProfitAndLoss struct {
	Revenue      []Line          `json:"revenue"`
	Expenses     []Line          `json:"expenses"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	TotalExpense decimal.Decimal `json:"total_expense"`
	NetProfit    decimal.Decimal `json:"net_profit"`
	NetMargin    decimal.Decimal `json:"net_margin"`
}

// BuildProfitAndLoss reports every APPROVED transaction in the window,
// regardless of account or project.
func BuildProfitAndLoss(txns []model.Transaction, categories []model.Category, window model.DateRange) ProfitAndLoss {
	names := categoryNames(categories)
	inWindow := func(typ model.TransactionType) func(*model.Transaction) bool {
		return func(t *model.Transaction) bool {
			return t.IsApproved() && t.Type == typ && window.Contains(t.Date)
		}
	}
	amount := func(t *model.Transaction) decimal.Decimal { return t.Amount }

	revenue := sortedLines(groupByCategory(txns, names, inWindow(model.Income), amount))
	expenses := sortedLines(groupByCategory(txns, names, inWindow(model.Expense), amount))

	r := ProfitAndLoss{
		Revenue:      revenue,
		Expenses:     expenses,
		TotalRevenue: sumLines(revenue),
		TotalExpense: sumLines(expenses),
	}
	r.NetProfit = r.TotalRevenue.Sub(r.TotalExpense)
	r.NetMargin = Margin(r.TotalRevenue, r.TotalExpense).Round(1)
	return r
}

// TransferLine is one movement between accounts.
type TransferLine struct {
	From   string          `json:"from"`
	To     string          `json:"to"`
	Amount decimal.Decimal `json:"amount"`
}

// CashFlowStatement splits the window's movements into operating flows by
// category and transfers between accounts.
type CashFlowStatement struct {
	Operating      []Line          `json:"operating"`
	Transfers      []TransferLine  `json:"transfers"`
	OperatingTotal decimal.Decimal `json:"operating_total"`
	NetCashFlow    decimal.Decimal `json:"net_cash_flow"`
}

// BuildCashFlowStatement signs income positive and expense negative, orders
// operating lines by magnitude and lists transfers in ledger order. Account
// names that cannot be resolved show as "?".
func BuildCashFlowStatement(
	txns []model.Transaction,
	categories []model.Category,
	accounts []model.Account,
	window model.DateRange,
) CashFlowStatement {
	names := categoryNames(categories)
	accountNames := make(map[string]string, len(accounts))
	for _, a := range accounts {
		accountNames[a.ID] = a.Name
	}
	accountName := func(id string) string {
		if n, ok := accountNames[id]; ok && n != "" {
			return n
		}
		return "?"
	}

	s := CashFlowStatement{Transfers: []TransferLine{}}
	for i := range txns {
		t := &txns[i]
		if t.IsApproved() && t.Type == model.Transfer && window.Contains(t.Date) {
			s.Transfers = append(s.Transfers, TransferLine{
				From:   accountName(t.AccountID),
				To:     accountName(t.ToAccountID),
				Amount: t.Amount,
			})
		}
	}

	sums, order := groupByCategory(txns, names, func(t *model.Transaction) bool {
		return t.IsApproved() && t.Type != model.Transfer && window.Contains(t.Date)
	}, func(t *model.Transaction) decimal.Decimal {
		return signed(t.Type, t.Amount)
	})
	s.Operating = make([]Line, len(order))
	for i, name := range order {
		s.Operating[i] = Line{Name: name, Amount: sums[name]}
	}
	sort.SliceStable(s.Operating, func(i, j int) bool {
		return s.Operating[i].Amount.Abs().GreaterThan(s.Operating[j].Amount.Abs())
	})
	s.OperatingTotal = sumLines(s.Operating)
	s.NetCashFlow = s.OperatingTotal
	return s
}

// BalanceSheet is a point-in-time view of cash, what is owed to the
// business and what it owes.
type BalanceSheet struct {
	Cash             []Line          `json:"cash"`
	Receivables      []Line          `json:"receivables"`
	Payables         []Line          `json:"payables"`
	TotalCash        decimal.Decimal `json:"total_cash"`
	TotalReceivables decimal.Decimal `json:"total_receivables"`
	TotalPayables    decimal.Decimal `json:"total_payables"`
	TotalAssets      decimal.Decimal `json:"total_assets"`
	Equity           decimal.Decimal `json:"equity"`
}

// BuildBalanceSheet lists accounts holding positive cash and counterparties
// with a non-zero balance. Payables keep their negative sign per line;
// TotalPayables is their magnitude.
func BuildBalanceSheet(calculated []model.CalculatedAccount, counterparties []model.Counterparty, txns []model.Transaction) BalanceSheet {
	b := BalanceSheet{Cash: []Line{}, Receivables: []Line{}, Payables: []Line{}}
	for _, a := range calculated {
		if a.Balance.IsPositive() {
			b.Cash = append(b.Cash, Line{Name: a.Name, Amount: a.Balance})
		}
	}
	sort.SliceStable(b.Cash, func(i, j int) bool { return b.Cash[i].Amount.GreaterThan(b.Cash[j].Amount) })

	for _, cp := range CounterpartyBalances(counterparties, txns).Balances {
		switch {
		case cp.Balance.IsPositive():
			b.Receivables = append(b.Receivables, Line{Name: cp.Name, Amount: cp.Balance})
		case cp.Balance.IsNegative():
			b.Payables = append(b.Payables, Line{Name: cp.Name, Amount: cp.Balance})
		}
	}
	sort.SliceStable(b.Receivables, func(i, j int) bool {
		return b.Receivables[i].Amount.GreaterThan(b.Receivables[j].Amount)
	})
	sort.SliceStable(b.Payables, func(i, j int) bool {
		return b.Payables[i].Amount.LessThan(b.Payables[j].Amount)
	})

	b.TotalCash = sumLines(b.Cash)
	b.TotalReceivables = sumLines(b.Receivables)
	b.TotalPayables = sumLines(b.Payables).Abs()
	b.TotalAssets = b.TotalCash.Add(b.TotalReceivables)
	b.Equity = b.TotalAssets.Sub(b.TotalPayables)
	return b
}

func sortedLines(sums map[string]decimal.Decimal, order []string) []Line {
	lines := make([]Line, len(order))
	for i, name := range order {
		lines[i] = Line{Name: name, Amount: sums[name]}
	}
	sort.SliceStable(lines, func(i, j int) bool { return lines[i].Amount.GreaterThan(lines[j].Amount) })
	return lines
}

func sumLines(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Amount)
	}
	return total
}
