package tui

import (
	"fmt"
	"strings"

	"github.com/Veraticus/tally/internal/cli"
	"github.com/Veraticus/tally/internal/finance"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

// View renders the UI.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.dash == nil {
		return m.renderLoading()
	}

	body := m.renderTab()
	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		m.renderTabs(),
		body,
		m.renderStatusBar(),
		m.help.View(m.keymap),
	)
}

func (m Model) renderLoading() string {
	text := m.spinner.View() + " Loading ledger..."
	if m.lastError != nil {
		text = m.theme.StatusError.Render("Failed to load ledger: " + m.lastError.Error())
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, text)
}

func (m Model) renderHeader() string {
	account, project := "all accounts", "all projects"
	if !m.filter.AllAccounts() {
		account = "account " + m.filter.AccountID
		if a, ok := m.snap.Account(m.filter.AccountID); ok {
			account = a.Name
		}
	}
	if !m.filter.AllProjects() {
		project = "project " + m.filter.ProjectID
		for _, p := range m.snap.Projects {
			if p.ID == m.filter.ProjectID {
				project = p.Name
			}
		}
	}

	return lipgloss.JoinHorizontal(lipgloss.Top,
		m.theme.Title.Render("Tally "),
		m.theme.Bold.Render(m.window.String()),
		m.theme.Subtitle.Render(fmt.Sprintf("  %s · %s", account, project)),
	)
}

func (m Model) renderTabs() string {
	tabs := make([]string, 0, tabCount)
	for t := range tabCount {
		style := m.theme.InactiveTab
		if t == m.tab {
			style = m.theme.ActiveTab
		}
		tabs = append(tabs, style.Render(t.String()))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) renderTab() string {
	switch m.tab {
	case TabCashFlow:
		return m.renderCashFlow()
	case TabStructure:
		return m.renderStructure()
	case TabAccounts:
		return m.renderAccounts()
	}
	return m.renderOverview()
}

func (m Model) money(d decimal.Decimal) string {
	switch {
	case d.IsNegative():
		return m.theme.Negative.Render(cli.FormatMoney(d))
	case d.IsPositive():
		return m.theme.Positive.Render(cli.FormatMoney(d))
	}
	return m.theme.Normal.Render(cli.FormatMoney(d))
}

func (m Model) delta(d int64) string {
	switch {
	case d > 0:
		return m.theme.Positive.Render(fmt.Sprintf("%s %d%%", cli.UpIcon, d))
	case d < 0:
		return m.theme.Negative.Render(fmt.Sprintf("%s %d%%", cli.DownIcon, -d))
	}
	return m.theme.Subtitle.Render("0%")
}

func (m Model) renderOverview() string {
	cardWidth := max(18, (m.width-4)/4-2)
	cards := make([]string, 0, len(m.dash.KPIs))
	for _, k := range m.dash.KPIs {
		cards = append(cards, m.theme.Panel.Width(cardWidth).Render(lipgloss.JoinVertical(lipgloss.Left,
			m.theme.Subtitle.Render(k.Label),
			m.money(k.Value),
			m.delta(k.Delta),
			m.theme.Projection.Render(cli.Sparkline(k.Sparkline)),
		)))
	}

	p := m.dash.Profitability
	l := m.dash.Liabilities
	summary := []string{
		fmt.Sprintf("%s %s%% %s", m.theme.Bold.Render(p.Label+":"), p.Value.String(), m.delta(p.Delta)),
		fmt.Sprintf("%s %s   %s %s",
			m.theme.Bold.Render("Pending expense:"), m.money(l.PendingExpense.Neg()),
			m.theme.Bold.Render("Pending income:"), m.money(l.PendingIncome)),
		m.gapLine(),
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top, cards...),
		m.theme.Panel.Render(strings.Join(summary, "\n")),
	)
}

func (m Model) gapLine() string {
	if gap := m.dash.CashFlow.GapDate; gap != nil {
		return m.theme.StatusError.Render("Cash gap on " + gap.String())
	}
	return m.theme.Positive.Render("No cash gap in this period")
}

// renderCashFlow draws a horizontal bar per day, sampling days evenly when
// the window has more days than the screen has rows.
func (m Model) renderCashFlow() string {
	points := m.dash.CashFlow.Points
	rows := max(1, m.height-10)
	step := max(1, (len(points)+rows-1)/rows)

	peak := decimal.Zero
	for _, p := range points {
		peak = decimal.Max(peak, p.Balance.Abs())
	}
	barWidth := max(10, m.width-40)

	var b strings.Builder
	for i := 0; i < len(points); i += step {
		p := points[i]
		n := 0
		if peak.IsPositive() {
			n = int(p.Balance.Abs().Mul(decimal.NewFromInt(int64(barWidth))).Div(peak).IntPart())
		}
		style := m.theme.Positive
		if p.Balance.IsNegative() {
			style = m.theme.Negative
		}
		if p.IsProjection {
			style = style.Italic(true).Faint(true)
		}
		fmt.Fprintf(&b, "%s %14s %s\n", p.Date, cli.FormatMoney(p.Balance), style.Render(strings.Repeat("█", n)))
	}
	b.WriteString(m.gapLine())

	return m.theme.Panel.Render(b.String())
}

func (m Model) structureColumn(title string, slices []finance.StructureSlice, width int) string {
	lines := []string{m.theme.Title.Render(title)}
	if len(slices) == 0 {
		lines = append(lines, m.theme.Subtitle.Render("Nothing in this period"))
	}
	for _, s := range slices {
		bar := lipgloss.NewStyle().Foreground(lipgloss.Color(s.Color)).Render(strings.Repeat("■", int(s.Percentage)/5))
		lines = append(lines, fmt.Sprintf("%-16.16s %4d%% %s", s.Name, s.Percentage, bar))
	}
	return m.theme.Panel.Width(width).Render(strings.Join(lines, "\n"))
}

func (m Model) renderStructure() string {
	width := max(30, m.width/2-4)
	return lipgloss.JoinHorizontal(lipgloss.Top,
		m.structureColumn("Income", m.dash.IncomeStructure, width),
		m.structureColumn("Expenses", m.dash.ExpenseStructure, width),
	)
}

func (m Model) renderAccounts() string {
	var b strings.Builder
	total := decimal.Zero
	for _, a := range m.dash.Accounts {
		marker := "  "
		if a.ID == m.filter.AccountID {
			marker = m.theme.Title.Render("▸ ")
		}
		fmt.Fprintf(&b, "%s%-24.24s %s %s\n", marker, a.Name, a.Currency, m.money(a.Balance))
		total = total.Add(a.Balance)
	}
	fmt.Fprintf(&b, "  %-24s     %s", m.theme.Bold.Render("Total"), m.money(total))
	return m.theme.Panel.Render(b.String())
}

func (m Model) renderStatusBar() string {
	left := fmt.Sprintf("snapshot v%d", m.snap.Version)
	if m.loading {
		left = m.spinner.View() + " refreshing"
	}
	if len(m.snap.Failed) > 0 {
		left += m.theme.StatusError.Render(fmt.Sprintf("  stale: %v", m.snap.Failed))
	}
	if m.lastError != nil {
		left += m.theme.StatusError.Render("  " + m.lastError.Error())
	}
	return m.theme.StatusBar.Width(max(0, m.width)).Render(left)
}
