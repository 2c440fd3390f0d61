package finance

import (
	"sync"

	"github.com/Veraticus/tally/internal/ledger"
	"github.com/Veraticus/tally/internal/model"
)

// DashboardRequest selects what a dashboard covers.
type DashboardRequest struct {
	Range  model.DateRange `json:"range"`
	Filter Filter          `json:"filter"`
	Today  model.Date      `json:"today"`
}

// Dashboard bundles every derived view for one request against one snapshot.
type Dashboard struct {
	Accounts         []model.CalculatedAccount `json:"accounts"`
	KPIs             []KPI                     `json:"kpis"`
	IncomeStructure  []StructureSlice          `json:"income_structure"`
	ExpenseStructure []StructureSlice          `json:"expense_structure"`
	CashFlow         CashFlowProjection        `json:"cash_flow"`
	Profitability    KPI                       `json:"profitability"`
	Liabilities      Liabilities               `json:"liabilities"`
	Request          DashboardRequest          `json:"request"`
	SnapshotVersion  uint64                    `json:"snapshot_version"`
}

// BuildDashboard computes a dashboard without memoisation.
func BuildDashboard(snap *ledger.Snapshot, req DashboardRequest) *Dashboard {
	return &Dashboard{
		Accounts:         CalculatedAccounts(snap.Accounts, snap.Transactions),
		KPIs:             KPIs(snap.Transactions, snap.Accounts, req.Range, req.Filter),
		Profitability:    Profitability(snap.Transactions, req.Range),
		Liabilities:      PendingLiabilities(snap.Transactions),
		CashFlow:         ProjectCashFlow(snap.Accounts, snap.Transactions, snap.PlannedPayments, req.Range, req.Filter, req.Today),
		IncomeStructure:  CategoryStructure(snap.Transactions, snap.Categories, req.Range, model.Income, req.Filter),
		ExpenseStructure: CategoryStructure(snap.Transactions, snap.Categories, req.Range, model.Expense, req.Filter),
		Request:          req,
		SnapshotVersion:  snap.Version,
	}
}

// ReportSet is the three financial statements for one window.
type ReportSet struct {
	Range         model.DateRange   `json:"range"`
	ProfitAndLoss ProfitAndLoss     `json:"profit_and_loss"`
	CashFlow      CashFlowStatement `json:"cash_flow"`
	BalanceSheet  BalanceSheet      `json:"balance_sheet"`
}

// BuildReports computes the statements for window. The balance sheet
// reflects every APPROVED transaction regardless of window.
func BuildReports(snap *ledger.Snapshot, window model.DateRange) ReportSet {
	return ReportSet{
		Range:         window,
		ProfitAndLoss: BuildProfitAndLoss(snap.Transactions, snap.Categories, window),
		CashFlow:      BuildCashFlowStatement(snap.Transactions, snap.Categories, snap.Accounts, window),
		BalanceSheet: BuildBalanceSheet(
			CalculatedAccounts(snap.Accounts, snap.Transactions),
			snap.Counterparties,
			snap.Transactions,
		),
	}
}

type dashboardKey struct {
	rng     model.DateRange
	filter  Filter
	today   model.Date
	version uint64
}

// Engine memoises dashboards keyed on the snapshot version and the request.
// A new snapshot version drops every cached entry.
type Engine struct {
	memo       map[dashboardKey]*Dashboard
	version    uint64
	maxEntries int
	hits       uint64
	misses     uint64
	mu         sync.Mutex
}

// DefaultMemoEntries bounds the memo when NewEngine is given zero.
const DefaultMemoEntries = 64

// NewEngine creates an engine caching up to maxEntries dashboards.
func NewEngine(maxEntries int) *Engine {
	if maxEntries <= 0 {
		maxEntries = DefaultMemoEntries
	}
	return &Engine{
		memo:       make(map[dashboardKey]*Dashboard),
		maxEntries: maxEntries,
	}
}

// Dashboard returns the dashboard for req against snap, computing it only if
// this exact combination has not been seen since the snapshot changed. The
// returned value is shared and must not be modified.
func (e *Engine) Dashboard(snap *ledger.Snapshot, req DashboardRequest) *Dashboard {
	req.Filter = normalizeFilter(req.Filter)
	key := dashboardKey{rng: req.Range, filter: req.Filter, today: req.Today, version: snap.Version}

	e.mu.Lock()
	if snap.Version != e.version {
		clear(e.memo)
		e.version = snap.Version
	}
	if d, ok := e.memo[key]; ok {
		e.hits++
		e.mu.Unlock()
		return d
	}
	e.misses++
	e.mu.Unlock()

	d := BuildDashboard(snap, req)

	e.mu.Lock()
	defer e.mu.Unlock()
	if snap.Version == e.version {
		if len(e.memo) >= e.maxEntries {
			clear(e.memo)
		}
		e.memo[key] = d
	}
	return d
}

// Stats reports memo hits and misses.
func (e *Engine) Stats() (hits, misses uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.hits, e.misses
}

func normalizeFilter(f Filter) Filter {
	if f.AllAccounts() {
		f.AccountID = ""
	}
	if f.AllProjects() {
		f.ProjectID = ""
	}
	return f
}
