package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/Veraticus/tally/internal/cli"
	"github.com/Veraticus/tally/internal/finance"
	"github.com/Veraticus/tally/internal/model"
	"github.com/spf13/cobra"
)

// reportCommand builds a command that renders one view of the dashboard for
// the selected period. With --json the raw view is printed instead.
func (a *app) reportCommand(
	use, short string,
	withFilter bool,
	view func(s *session, req finance.DashboardRequest) any,
	render func(w io.Writer, req finance.DashboardRequest, v any) error,
) *cobra.Command {
	var (
		p      period
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := p.request()
			if err != nil {
				return err
			}
			return a.withLedger(cmd, func(_ context.Context, s *session) error {
				v := view(s, req)
				if asJSON {
					enc := json.NewEncoder(cmd.OutOrStdout())
					enc.SetIndent("", "  ")
					return enc.Encode(v)
				}
				return render(cmd.OutOrStdout(), req, v)
			})
		},
	}

	p.register(cmd, withFilter)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

func (a *app) kpiCmd() *cobra.Command {
	return a.reportCommand("kpi", "Show income, expenses, net profit and cash for a period", true,
		func(s *session, req finance.DashboardRequest) any {
			return s.engine.Dashboard(s.snap, req)
		},
		func(w io.Writer, req finance.DashboardRequest, v any) error {
			d := v.(*finance.Dashboard)
			return cli.RenderKPIs(w, req.Range, d.KPIs, d.Profitability, d.Liabilities)
		},
	)
}

func (a *app) cashflowCmd() *cobra.Command {
	return a.reportCommand("cashflow", "Show daily balances and the forecast to the end of the period", true,
		func(s *session, req finance.DashboardRequest) any {
			return s.engine.Dashboard(s.snap, req).CashFlow
		},
		func(w io.Writer, _ finance.DashboardRequest, v any) error {
			return cli.RenderCashFlow(w, v.(finance.CashFlowProjection))
		},
	)
}

type structureView struct {
	Income  []finance.StructureSlice `json:"income"`
	Expense []finance.StructureSlice `json:"expense"`
}

func (a *app) structureCmd() *cobra.Command {
	return a.reportCommand("structure", "Show how income and expenses split across categories", true,
		func(s *session, req finance.DashboardRequest) any {
			d := s.engine.Dashboard(s.snap, req)
			return structureView{Income: d.IncomeStructure, Expense: d.ExpenseStructure}
		},
		func(w io.Writer, _ finance.DashboardRequest, v any) error {
			sv := v.(structureView)
			if err := cli.RenderStructure(w, "Income structure", sv.Income); err != nil {
				return err
			}
			return cli.RenderStructure(w, "Expense structure", sv.Expense)
		},
	)
}

func (a *app) reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Financial statements",
	}

	cmd.AddCommand(a.reportCommand("pnl", "Profit and loss statement", false,
		func(s *session, req finance.DashboardRequest) any {
			return finance.BuildProfitAndLoss(s.snap.Transactions, s.snap.Categories, req.Range)
		},
		func(w io.Writer, req finance.DashboardRequest, v any) error {
			return cli.RenderProfitAndLoss(w, req.Range, v.(finance.ProfitAndLoss))
		},
	))
	cmd.AddCommand(a.reportCommand("cash-flow", "Cash flow statement", false,
		func(s *session, req finance.DashboardRequest) any {
			return finance.BuildCashFlowStatement(s.snap.Transactions, s.snap.Categories, s.snap.Accounts, req.Range)
		},
		func(w io.Writer, req finance.DashboardRequest, v any) error {
			return cli.RenderCashFlowStatement(w, req.Range, v.(finance.CashFlowStatement))
		},
	))
	cmd.AddCommand(a.reportCommand("balance-sheet", "Balance sheet as of now", false,
		func(s *session, req finance.DashboardRequest) any {
			return finance.BuildReports(s.snap, req.Range).BalanceSheet
		},
		func(w io.Writer, _ finance.DashboardRequest, v any) error {
			return cli.RenderBalanceSheet(w, v.(finance.BalanceSheet))
		},
	))
	cmd.AddCommand(a.dynamicsCmd())

	return cmd
}

type dynamicsView struct {
	Type       model.TransactionType `json:"type"`
	Months     []finance.MonthBucket `json:"months"`
	Categories []string              `json:"categories"`
}

func (a *app) dynamicsCmd() *cobra.Command {
	var (
		typ    string
		parsed model.TransactionType
	)

	cmd := a.reportCommand("dynamics", "Monthly totals per category", false,
		func(s *session, req finance.DashboardRequest) any {
			months, cats := finance.CategoryDynamics(s.snap.Transactions, s.snap.Categories, req.Range, parsed)
			return dynamicsView{Type: parsed, Months: months, Categories: cats}
		},
		func(w io.Writer, _ finance.DashboardRequest, v any) error {
			dv := v.(dynamicsView)
			return cli.RenderDynamics(w, dv.Type, dv.Months, dv.Categories)
		},
	)
	cmd.Flags().StringVar(&typ, "type", "expense", "income or expense")
	cmd.PreRunE = func(_ *cobra.Command, _ []string) error {
		t, err := model.ParseTransactionType(typ)
		if err != nil {
			return err
		}
		if t == model.Transfer {
			return fmt.Errorf("--type must be income or expense")
		}
		parsed = t
		return nil
	}
	return cmd
}
