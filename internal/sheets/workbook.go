package sheets

import (
	"fmt"

	"github.com/Veraticus/tally/internal/finance"
	"github.com/Veraticus/tally/internal/ledger"
	"github.com/Veraticus/tally/internal/model"
	"github.com/shopspring/decimal"
)

// Tab titles.
const (
	TabSummary      = "Summary"
	TabCashFlow     = "Cash Flow"
	TabProfitLoss   = "Profit & Loss"
	TabBalanceSheet = "Balance Sheet"
	TabTransactions = "Transactions"
)

// BuildWorkbook lays out a dashboard and its statements as spreadsheet tabs.
func BuildWorkbook(title string, snap *ledger.Snapshot, dash *finance.Dashboard, reports finance.ReportSet) *Workbook {
	return &Workbook{
		Title: title,
		Range: dash.Request.Range,
		Tabs: []Tab{
			summaryTab(dash),
			cashFlowTab(dash.CashFlow),
			profitLossTab(reports.ProfitAndLoss),
			balanceSheetTab(reports.BalanceSheet),
			transactionsTab(snap, dash.Request.Range),
		},
	}
}

func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

func summaryTab(dash *finance.Dashboard) Tab {
	rows := [][]any{
		{"Metric", "Value", "Previous", "Change %"},
	}
	for _, k := range dash.KPIs {
		rows = append(rows, []any{k.Label, money(k.Value), money(k.PreviousValue), k.Delta})
	}
	p := dash.Profitability
	rows = append(rows,
		[]any{p.Label + " %", p.Value.InexactFloat64(), p.PreviousValue.InexactFloat64(), p.Delta},
		[]any{},
		[]any{"Pending expense", money(dash.Liabilities.PendingExpense)},
		[]any{"Pending income", money(dash.Liabilities.PendingIncome)},
	)
	if gap := dash.CashFlow.GapDate; gap != nil {
		rows = append(rows, []any{"Cash gap", gap.String()})
	}
	return Tab{Title: TabSummary, Rows: rows, CurrencyColumns: []int{1, 2}}
}

func cashFlowTab(cf finance.CashFlowProjection) Tab {
	rows := make([][]any, 0, len(cf.Points)+1)
	rows = append(rows, []any{"Date", "Actual", "Forecast", "Balance"})
	for _, p := range cf.Points {
		row := []any{p.Date.String(), "", "", money(p.Balance)}
		if p.Actual != nil {
			row[1] = money(*p.Actual)
		}
		if p.Forecast != nil {
			row[2] = money(*p.Forecast)
		}
		rows = append(rows, row)
	}
	return Tab{Title: TabCashFlow, Rows: rows, CurrencyColumns: []int{1, 2, 3}}
}

func profitLossTab(pnl finance.ProfitAndLoss) Tab {
	rows := [][]any{{"Line", "Amount"}, {"Revenue"}}
	for _, l := range pnl.Revenue {
		rows = append(rows, []any{"  " + l.Name, money(l.Amount)})
	}
	rows = append(rows, []any{"Total revenue", money(pnl.TotalRevenue)}, []any{"Expenses"})
	for _, l := range pnl.Expenses {
		rows = append(rows, []any{"  " + l.Name, money(l.Amount)})
	}
	rows = append(rows,
		[]any{"Total expenses", money(pnl.TotalExpense)},
		[]any{"Net profit", money(pnl.NetProfit)},
		[]any{"Net margin %", pnl.NetMargin.InexactFloat64()},
	)
	return Tab{Title: TabProfitLoss, Rows: rows, CurrencyColumns: []int{1}}
}

func balanceSheetTab(bs finance.BalanceSheet) Tab {
	rows := [][]any{{"Line", "Amount"}}
	section := func(name string, lines []finance.Line, total decimal.Decimal) {
		rows = append(rows, []any{name})
		for _, l := range lines {
			rows = append(rows, []any{"  " + l.Name, money(l.Amount)})
		}
		rows = append(rows, []any{"Total " + name, money(total)})
	}
	section("cash", bs.Cash, bs.TotalCash)
	section("receivables", bs.Receivables, bs.TotalReceivables)
	section("payables", bs.Payables, bs.TotalPayables)
	rows = append(rows,
		[]any{"Total assets", money(bs.TotalAssets)},
		[]any{"Equity", money(bs.Equity)},
	)
	return Tab{Title: TabBalanceSheet, Rows: rows, CurrencyColumns: []int{1}}
}

func transactionsTab(snap *ledger.Snapshot, window model.DateRange) Tab {
	accounts := make(map[string]string, len(snap.Accounts))
	for _, a := range snap.Accounts {
		accounts[a.ID] = a.Name
	}
	categories := make(map[string]string, len(snap.Categories))
	for _, c := range snap.Categories {
		categories[c.ID] = c.Name
	}
	projects := make(map[string]string, len(snap.Projects))
	for _, p := range snap.Projects {
		projects[p.ID] = p.Name
	}

	rows := [][]any{{"Date", "Type", "Status", "Amount", "Account", "To account", "Category", "Project", "Description"}}
	for _, t := range snap.Transactions {
		if !window.Contains(t.Date) {
			continue
		}
		rows = append(rows, []any{
			t.Date.String(),
			string(t.Type),
			string(t.Status),
			money(t.Amount),
			lookup(accounts, t.AccountID),
			lookup(accounts, t.ToAccountID),
			lookup(categories, t.CategoryID),
			lookup(projects, t.ProjectID),
			t.Description,
		})
	}
	return Tab{Title: TabTransactions, Rows: rows, CurrencyColumns: []int{3}}
}

// lookup resolves id to a name, keeping unknown ids visible.
func lookup(names map[string]string, id string) string {
	if id == "" {
		return ""
	}
	if n, ok := names[id]; ok {
		return n
	}
	return fmt.Sprintf("? (%s)", id)
}
