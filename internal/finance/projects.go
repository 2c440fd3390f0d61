package finance

import (
	"github.com/Veraticus/tally/internal/model"
	"github.com/shopspring/decimal"
)

// ProjectFinancial compares a project's plan with its APPROVED actuals.
type ProjectFinancial struct {
	ID                   string              `json:"id"`
	Name                 string              `json:"name"`
	Status               model.ProjectStatus `json:"status"`
	ActualRevenue        decimal.Decimal     `json:"actual_revenue"`
	ActualExpense        decimal.Decimal     `json:"actual_expense"`
	GrossProfit          decimal.Decimal     `json:"gross_profit"`
	PlannedIncome        decimal.Decimal     `json:"planned_income"`
	PlannedExpense       decimal.Decimal     `json:"planned_expense"`
	PlannedProfit        decimal.Decimal     `json:"planned_profit"`
	Receivables          decimal.Decimal     `json:"receivables"`
	Payables             decimal.Decimal     `json:"payables"`
	Profitability        int64               `json:"profitability"`
	PlannedProfitability int64               `json:"planned_profitability"`
}

// ProjectTotals sums actuals and plans across the reported projects.
type ProjectTotals struct {
	ActualRevenue  decimal.Decimal `json:"actual_revenue"`
	ActualExpense  decimal.Decimal `json:"actual_expense"`
	PlannedIncome  decimal.Decimal `json:"planned_income"`
	PlannedExpense decimal.Decimal `json:"planned_expense"`
}

// ProjectReport is every project's financials plus totals.
type ProjectReport struct {
	Projects []ProjectFinancial `json:"projects"`
	Totals   ProjectTotals      `json:"totals"`
}

// ProjectFinancials computes plan against actual for each project, in input
// order. Receivables are planned income not yet received; payables are
// planned expense not yet paid. Neither goes below zero.
func ProjectFinancials(projects []model.Project, txns []model.Transaction) ProjectReport {
	type actuals struct{ revenue, expense decimal.Decimal }
	byID := make(map[string]*actuals, len(projects))
	for _, p := range projects {
		byID[p.ID] = &actuals{}
	}
	for i := range txns {
		t := &txns[i]
		if !t.IsApproved() || t.ProjectID == "" {
			continue
		}
		a, ok := byID[t.ProjectID]
		if !ok {
			continue
		}
		switch t.Type {
		case model.Income:
			a.revenue = a.revenue.Add(t.Amount)
		case model.Expense:
			a.expense = a.expense.Add(t.Amount)
		}
	}

	r := ProjectReport{
		Projects: make([]ProjectFinancial, 0, len(projects)),
		Totals: ProjectTotals{
			ActualRevenue:  decimal.Zero,
			ActualExpense:  decimal.Zero,
			PlannedIncome:  decimal.Zero,
			PlannedExpense: decimal.Zero,
		},
	}
	for _, p := range projects {
		a := byID[p.ID]
		f := ProjectFinancial{
			ID:             p.ID,
			Name:           p.Name,
			Status:         p.Status,
			ActualRevenue:  a.revenue,
			ActualExpense:  a.expense,
			GrossProfit:    a.revenue.Sub(a.expense),
			PlannedIncome:  p.PlannedIncome,
			PlannedExpense: p.PlannedExpense,
			PlannedProfit:  p.PlannedIncome.Sub(p.PlannedExpense),
			Receivables:    decimal.Max(decimal.Zero, p.PlannedIncome.Sub(a.revenue)),
			Payables:       decimal.Max(decimal.Zero, p.PlannedExpense.Sub(a.expense)),
		}
		if a.revenue.IsPositive() {
			f.Profitability = percentOf(f.GrossProfit, a.revenue)
		}
		if p.PlannedIncome.IsPositive() {
			f.PlannedProfitability = percentOf(f.PlannedProfit, p.PlannedIncome)
		}
		r.Projects = append(r.Projects, f)

		r.Totals.ActualRevenue = r.Totals.ActualRevenue.Add(a.revenue)
		r.Totals.ActualExpense = r.Totals.ActualExpense.Add(a.expense)
		r.Totals.PlannedIncome = r.Totals.PlannedIncome.Add(p.PlannedIncome)
		r.Totals.PlannedExpense = r.Totals.PlannedExpense.Add(p.PlannedExpense)
	}
	return r
}
