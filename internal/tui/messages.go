package tui

import "github.com/Veraticus/tally/internal/ledger"

// snapshotLoadedMsg carries the result of a ledger refresh.
type snapshotLoadedMsg struct {
	snap *ledger.Snapshot
	err  error
}

// Tab is one page of the dashboard.
type Tab int

const (
	TabOverview Tab = iota
	TabCashFlow
	TabStructure
	TabAccounts
	tabCount
)

func (t Tab) String() string {
	switch t {
	case TabOverview:
		return "Overview"
	case TabCashFlow:
		return "Cash flow"
	case TabStructure:
		return "Structure"
	case TabAccounts:
		return "Accounts"
	}
	return "?"
}
