package finance

import (
	"github.com/Veraticus/tally/internal/model"
	"github.com/shopspring/decimal"
)

// KPI labels, in the order KPIs returns them.
const (
	LabelIncome        = "Income"
	LabelExpenses      = "Expenses"
	LabelNetProfit     = "Net Profit"
	LabelBusinessCash  = "Business Cash"
	LabelProfitability = "Profitability"
)

// KPI is a headline figure for a period compared with the period before.
type KPI struct {
	Label         string            `json:"label"`
	Value         decimal.Decimal   `json:"value"`
	PreviousValue decimal.Decimal   `json:"previous_value"`
	Sparkline     []decimal.Decimal `json:"sparkline"`
	Delta         int64             `json:"delta"`
}

// Delta is the percentage change from prev to curr, rounded half up. A zero
// previous value gives 100 when curr is positive and 0 otherwise.
func Delta(curr, prev decimal.Decimal) int64 {
	if prev.IsZero() {
		if curr.IsPositive() {
			return 100
		}
		return 0
	}
	return roundHalfUp(curr.Sub(prev).Div(prev.Abs()).Mul(hundred))
}

// KPIs computes Income, Expenses, Net Profit and Business Cash for the
// window. Flow figures honour both filter dimensions; Business Cash honours
// only the account and is never compared with a previous period.
func KPIs(txns []model.Transaction, accounts []model.Account, window model.DateRange, filter Filter) []KPI {
	prev := previousWindow(window)

	income := SumPeriod(txns, window, model.Income, filter)
	expense := SumPeriod(txns, window, model.Expense, filter)
	prevIncome := SumPeriod(txns, prev, model.Income, filter)
	prevExpense := SumPeriod(txns, prev, model.Expense, filter)

	incomeSpark := sparkline(txns, window, model.Income, filter)
	expenseSpark := sparkline(txns, window, model.Expense, filter)
	profitSpark := make([]decimal.Decimal, len(incomeSpark))
	for i := range incomeSpark {
		profitSpark[i] = incomeSpark[i].Sub(expenseSpark[i])
	}

	profit := income.Sub(expense)
	prevProfit := prevIncome.Sub(prevExpense)
	cash := TotalBalance(CalculatedAccounts(accounts, txns), filter)

	return []KPI{
		{
			Label:         LabelIncome,
			Value:         income,
			PreviousValue: prevIncome,
			Delta:         Delta(income, prevIncome),
			Sparkline:     incomeSpark,
		},
		{
			Label:         LabelExpenses,
			Value:         expense,
			PreviousValue: prevExpense,
			Delta:         Delta(expense, prevExpense),
			Sparkline:     expenseSpark,
		},
		{
			Label:         LabelNetProfit,
			Value:         profit,
			PreviousValue: prevProfit,
			Delta:         Delta(profit, prevProfit),
			Sparkline:     profitSpark,
		},
		{
			Label:         LabelBusinessCash,
			Value:         cash,
			PreviousValue: decimal.Zero,
			Sparkline:     []decimal.Decimal{cash},
		},
	}
}

func sparkline(txns []model.Transaction, window model.DateRange, typ model.TransactionType, filter Filter) []decimal.Decimal {
	windows := sparkWindows(window)
	out := make([]decimal.Decimal, len(windows))
	for i, w := range windows {
		out[i] = SumPeriod(txns, w, typ, filter)
	}
	return out
}

// Margin is (income - expense) / income as a percentage, or zero without
// income.
func Margin(income, expense decimal.Decimal) decimal.Decimal {
	if !income.IsPositive() {
		return decimal.Zero
	}
	return income.Sub(expense).Div(income).Mul(hundred)
}

// Profitability is the operating margin of the window across the whole
// ledger, compared with the previous window. The sparkline holds the margin
// of each bucket.
func Profitability(txns []model.Transaction, window model.DateRange) KPI {
	all := Filter{}
	prev := previousWindow(window)

	curr := Margin(SumPeriod(txns, window, model.Income, all), SumPeriod(txns, window, model.Expense, all))
	before := Margin(SumPeriod(txns, prev, model.Income, all), SumPeriod(txns, prev, model.Expense, all))

	windows := sparkWindows(window)
	spark := make([]decimal.Decimal, len(windows))
	for i, w := range windows {
		spark[i] = Margin(SumPeriod(txns, w, model.Income, all), SumPeriod(txns, w, model.Expense, all)).Round(2)
	}

	return KPI{
		Label:         LabelProfitability,
		Value:         curr.Round(2),
		PreviousValue: before.Round(2),
		Delta:         Delta(curr, before),
		Sparkline:     spark,
	}
}

// Liabilities are the PENDING totals across the ledger: expenses the
// business owes and income it is waiting for.
type Liabilities struct {
	PendingExpense decimal.Decimal `json:"pending_expense"`
	PendingIncome  decimal.Decimal `json:"pending_income"`
}

// PendingLiabilities totals PENDING income and expense regardless of date.
func PendingLiabilities(txns []model.Transaction) Liabilities {
	l := Liabilities{PendingExpense: decimal.Zero, PendingIncome: decimal.Zero}
	for i := range txns {
		t := &txns[i]
		if t.Status != model.StatusPending {
			continue
		}
		switch t.Type {
		case model.Income:
			l.PendingIncome = l.PendingIncome.Add(t.Amount)
		case model.Expense:
			l.PendingExpense = l.PendingExpense.Add(t.Amount)
		}
	}
	return l
}
