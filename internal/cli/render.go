package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/Veraticus/tally/internal/finance"
	"github.com/Veraticus/tally/internal/model"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/shopspring/decimal"
)

var sparkBlocks = []rune("▁▂▃▄▅▆▇█")

// FormatMoney renders d with two decimals and thousands separators.
func FormatMoney(d decimal.Decimal) string {
	s := d.Abs().StringFixed(2)
	whole, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	if d.IsNegative() {
		b.WriteByte('-')
	}
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	b.WriteByte('.')
	b.WriteString(frac)
	return b.String()
}

// StyleMoney colours FormatMoney by sign.
func StyleMoney(d decimal.Decimal) string {
	switch {
	case d.IsNegative():
		return NegativeStyle.Render(FormatMoney(d))
	case d.IsPositive():
		return PositiveStyle.Render(FormatMoney(d))
	}
	return FormatMoney(d)
}

// FormatDelta renders a percentage change with an arrow.
func FormatDelta(delta int64) string {
	switch {
	case delta > 0:
		return PositiveStyle.Render(fmt.Sprintf("%s %d%%", UpIcon, delta))
	case delta < 0:
		return NegativeStyle.Render(fmt.Sprintf("%s %d%%", DownIcon, -delta))
	}
	return SubtleStyle.Render("0%")
}

// Sparkline draws values as block characters scaled to their maximum.
func Sparkline(values []decimal.Decimal) string {
	if len(values) == 0 {
		return ""
	}
	peak := decimal.Zero
	for _, v := range values {
		peak = decimal.Max(peak, v)
	}

	var b strings.Builder
	top := decimal.NewFromInt(int64(len(sparkBlocks) - 1))
	for _, v := range values {
		idx := 0
		if peak.IsPositive() && v.IsPositive() {
			idx = int(v.Mul(top).Div(peak).Round(0).IntPart())
		}
		b.WriteRune(sparkBlocks[idx])
	}
	return b.String()
}

// Table renders rows under headers. Columns listed in numeric are right
// aligned.
func Table(headers []string, rows [][]string, numeric ...int) string {
	right := make(map[int]bool, len(numeric))
	for _, c := range numeric {
		right[c] = true
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(SubtleStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			style := TableCellStyle
			if row == table.HeaderRow {
				style = TableHeaderStyle
			}
			if right[col] {
				style = style.Align(lipgloss.Right)
			}
			return style
		})
	return t.String()
}

func write(w io.Writer, parts ...string) error {
	for _, p := range parts {
		if _, err := fmt.Fprintln(w, p); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

// RenderAccounts prints calculated balances with a total row.
func RenderAccounts(w io.Writer, accounts []model.CalculatedAccount) error {
	rows := make([][]string, 0, len(accounts)+1)
	total := decimal.Zero
	for _, a := range accounts {
		rows = append(rows, []string{a.ID, a.Name, a.Currency, FormatMoney(a.OpeningBalance), StyleMoney(a.Balance)})
		total = total.Add(a.Balance)
	}
	rows = append(rows, []string{"", BoldStyle.Render("Total"), "", "", BoldStyle.Render(FormatMoney(total))})

	return write(w,
		FormatTitle("Accounts"),
		Table([]string{"ID", "Name", "Currency", "Opening", "Balance"}, rows, 3, 4),
	)
}

// RenderKPIs prints the headline figures followed by profitability and
// pending totals.
func RenderKPIs(w io.Writer, window model.DateRange, kpis []finance.KPI, profitability finance.KPI, liabilities finance.Liabilities) error {
	rows := make([][]string, 0, len(kpis)+1)
	for _, k := range kpis {
		rows = append(rows, []string{k.Label, StyleMoney(k.Value), FormatMoney(k.PreviousValue), FormatDelta(k.Delta), Sparkline(k.Sparkline)})
	}
	rows = append(rows, []string{
		profitability.Label,
		profitability.Value.String() + "%",
		profitability.PreviousValue.String() + "%",
		FormatDelta(profitability.Delta),
		"",
	})

	return write(w,
		FormatTitle("KPIs "+window.String()),
		Table([]string{"KPI", "Value", "Previous", "Change", "Trend"}, rows, 1, 2, 3),
		fmt.Sprintf("Pending expense: %s   Pending income: %s",
			StyleMoney(liabilities.PendingExpense.Neg()), StyleMoney(liabilities.PendingIncome)),
	)
}

// RenderCashFlow prints one row per day and flags the cash gap.
func RenderCashFlow(w io.Writer, proj finance.CashFlowProjection) error {
	rows := make([][]string, 0, len(proj.Points))
	for _, p := range proj.Points {
		actual, forecast := "", ""
		if p.Actual != nil {
			actual = FormatMoney(*p.Actual)
		}
		if p.Forecast != nil {
			forecast = FormatMoney(*p.Forecast)
		}
		date := p.Date.String()
		if proj.GapDate != nil && *proj.GapDate == p.Date {
			date = ErrorStyle.Render(date + " " + WarningIcon)
		}
		rows = append(rows, []string{date, actual, forecast})
	}

	gap := FormatSuccess("No cash gap in this period")
	if proj.GapDate != nil {
		gap = FormatError("Cash gap on " + proj.GapDate.String())
	}
	return write(w,
		FormatTitle("Cash flow"),
		Table([]string{"Date", "Actual", "Forecast"}, rows, 1, 2),
		gap,
	)
}

// RenderStructure prints category shares.
func RenderStructure(w io.Writer, title string, slices []finance.StructureSlice) error {
	if len(slices) == 0 {
		return write(w, FormatTitle(title), SubtleStyle.Render("No transactions in this period"))
	}
	rows := make([][]string, 0, len(slices))
	for _, s := range slices {
		bar := strings.Repeat("█", int(s.Percentage/5))
		rows = append(rows, []string{s.Name, FormatMoney(s.Value), fmt.Sprintf("%d%%", s.Percentage), bar})
	}
	return write(w,
		FormatTitle(title),
		Table([]string{"Category", "Amount", "Share", ""}, rows, 1, 2),
	)
}

func lineRows(lines []finance.Line) [][]string {
	rows := make([][]string, 0, len(lines))
	for _, l := range lines {
		rows = append(rows, []string{l.Name, StyleMoney(l.Amount)})
	}
	return rows
}

func totalRow(label string, amount decimal.Decimal) []string {
	return []string{BoldStyle.Render(label), BoldStyle.Render(FormatMoney(amount))}
}

// RenderProfitAndLoss prints revenue and expenses by category.
func RenderProfitAndLoss(w io.Writer, window model.DateRange, r finance.ProfitAndLoss) error {
	rows := lineRows(r.Revenue)
	rows = append(rows, totalRow("Total revenue", r.TotalRevenue))
	rows = append(rows, lineRows(r.Expenses)...)
	rows = append(rows,
		totalRow("Total expenses", r.TotalExpense),
		totalRow("Net profit", r.NetProfit),
		[]string{"Net margin", r.NetMargin.StringFixed(1) + "%"},
	)
	return write(w,
		FormatTitle("Profit & Loss "+window.String()),
		Table([]string{"", "Amount"}, rows, 1),
	)
}

// RenderCashFlowStatement prints operating flows and transfers.
func RenderCashFlowStatement(w io.Writer, window model.DateRange, r finance.CashFlowStatement) error {
	rows := lineRows(r.Operating)
	rows = append(rows, totalRow("Operating total", r.OperatingTotal))
	parts := []string{
		FormatTitle("Cash flow statement " + window.String()),
		Table([]string{"Operating", "Amount"}, rows, 1),
	}

	if len(r.Transfers) > 0 {
		transfers := make([][]string, 0, len(r.Transfers))
		for _, t := range r.Transfers {
			transfers = append(transfers, []string{t.From, t.To, FormatMoney(t.Amount)})
		}
		parts = append(parts, Table([]string{"From", "To", "Amount"}, transfers, 2))
	}
	parts = append(parts, BoldStyle.Render("Net cash flow: ")+StyleMoney(r.NetCashFlow))
	return write(w, parts...)
}

// RenderBalanceSheet prints assets, payables and equity.
func RenderBalanceSheet(w io.Writer, r finance.BalanceSheet) error {
	rows := lineRows(r.Cash)
	rows = append(rows, totalRow("Cash", r.TotalCash))
	rows = append(rows, lineRows(r.Receivables)...)
	rows = append(rows,
		totalRow("Receivables", r.TotalReceivables),
		totalRow("Total assets", r.TotalAssets),
	)
	rows = append(rows, lineRows(r.Payables)...)
	rows = append(rows,
		totalRow("Payables", r.TotalPayables),
		totalRow("Equity", r.Equity),
	)
	return write(w,
		FormatTitle("Balance sheet"),
		Table([]string{"", "Amount"}, rows, 1),
	)
}

// RenderDynamics prints a month by category grid.
func RenderDynamics(w io.Writer, typ model.TransactionType, months []finance.MonthBucket, categories []string) error {
	title := fmt.Sprintf("%s dynamics", strings.ToLower(string(typ)))
	if len(months) == 0 {
		return write(w, FormatTitle(title), SubtleStyle.Render("No transactions in this period"))
	}

	headers := make([]string, 0, len(months)+1)
	headers = append(headers, "Category")
	numeric := make([]int, 0, len(months))
	for i, m := range months {
		headers = append(headers, m.Label)
		numeric = append(numeric, i+1)
	}

	rows := make([][]string, 0, len(categories)+1)
	for _, name := range categories {
		row := []string{name}
		for _, m := range months {
			row = append(row, FormatMoney(m.Categories[name]))
		}
		rows = append(rows, row)
	}
	totals := []string{BoldStyle.Render("Total")}
	for _, m := range months {
		totals = append(totals, BoldStyle.Render(FormatMoney(m.Total)))
	}
	rows = append(rows, totals)

	return write(w, FormatTitle(title), Table(headers, rows, numeric...))
}

// RenderProjects prints actual against planned figures per project.
func RenderProjects(w io.Writer, r finance.ProjectReport) error {
	rows := make([][]string, 0, len(r.Projects)+1)
	for _, p := range r.Projects {
		rows = append(rows, []string{
			p.Name,
			string(p.Status),
			FormatMoney(p.ActualRevenue),
			FormatMoney(p.ActualExpense),
			StyleMoney(p.GrossProfit),
			fmt.Sprintf("%d%%", p.Profitability),
			fmt.Sprintf("%d%%", p.PlannedProfitability),
			FormatMoney(p.Receivables),
			FormatMoney(p.Payables),
		})
	}
	t := r.Totals
	rows = append(rows, []string{
		BoldStyle.Render("Total"), "",
		FormatMoney(t.ActualRevenue),
		FormatMoney(t.ActualExpense),
		StyleMoney(t.ActualRevenue.Sub(t.ActualExpense)),
		"", "", "", "",
	})
	return write(w,
		FormatTitle("Projects"),
		Table([]string{"Project", "Status", "Revenue", "Expense", "Profit", "Margin", "Planned", "Receivable", "Payable"},
			rows, 2, 3, 4, 5, 6, 7, 8),
	)
}

// RenderCounterparties prints what each counterparty owes or is owed.
func RenderCounterparties(w io.Writer, r finance.CounterpartySummary) error {
	rows := make([][]string, 0, len(r.Balances))
	for _, b := range r.Balances {
		name := b.Name
		if !b.Active {
			name = SubtleStyle.Render(name + " (archived)")
		}
		rows = append(rows, []string{name, string(b.Type), FormatMoney(b.Income), FormatMoney(b.Expense), StyleMoney(b.Balance)})
	}
	return write(w,
		FormatTitle("Counterparties"),
		Table([]string{"Name", "Type", "Income", "Expense", "Balance"}, rows, 2, 3, 4),
		fmt.Sprintf("Receivable: %s   Payable: %s", StyleMoney(r.TotalReceivable), StyleMoney(r.TotalPayable.Neg())),
	)
}

// RenderTransactions prints transactions; name resolves account and
// category ids for display.
func RenderTransactions(w io.Writer, txns []model.Transaction, name func(model.Collection, string) string) error {
	rows := make([][]string, 0, len(txns))
	for _, t := range txns {
		amount := t.Amount
		if t.Type == model.Expense {
			amount = amount.Neg()
		}
		account := name(model.CollectionAccounts, t.AccountID)
		if t.Type == model.Transfer {
			account += " → " + name(model.CollectionAccounts, t.ToAccountID)
		}
		rows = append(rows, []string{
			t.Date.String(),
			string(t.Status),
			account,
			name(model.CollectionCategories, t.CategoryID),
			t.Description,
			StyleMoney(amount),
			SubtleStyle.Render(t.ID),
		})
	}
	return write(w,
		FormatTitle(fmt.Sprintf("Transactions (%d)", len(txns))),
		Table([]string{"Date", "Status", "Account", "Category", "Description", "Amount", "ID"}, rows, 5),
	)
}
