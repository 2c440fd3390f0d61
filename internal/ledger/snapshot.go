// Package ledger loads the ledger collections into immutable, versioned
// snapshots that the finance computations read from.
package ledger

import (
	"time"

	"github.com/Veraticus/tally/internal/model"
)

// Snapshot is one consistent read of every collection. Callers must treat it
// as read-only; a refresh produces a new Snapshot with a higher Version.
type Snapshot struct {
	LoadedAt        time.Time
	AccountGroups   []model.AccountGroup
	Accounts        []model.Account
	Transactions    []model.Transaction
	PlannedPayments []model.PlannedPayment
	CategoryGroups  []model.CategoryGroup
	Categories      []model.Category
	Projects        []model.Project
	Counterparties  []model.Counterparty
	// Failed lists collections whose fetch failed; their contents are
	// carried over from the previous snapshot, or empty on first load.
	Failed  []model.Collection
	Version uint64
}

// Empty returns a snapshot with no records at version 0.
func Empty() *Snapshot {
	return &Snapshot{}
}

// Len returns the number of records held for a collection.
func (s *Snapshot) Len(c model.Collection) int {
	switch c {
	case model.CollectionAccountGroups:
		return len(s.AccountGroups)
	case model.CollectionAccounts:
		return len(s.Accounts)
	case model.CollectionTransactions:
		return len(s.Transactions)
	case model.CollectionPlannedPayments:
		return len(s.PlannedPayments)
	case model.CollectionCategoryGroups:
		return len(s.CategoryGroups)
	case model.CollectionCategories:
		return len(s.Categories)
	case model.CollectionProjects:
		return len(s.Projects)
	case model.CollectionCounterparties:
		return len(s.Counterparties)
	}
	return 0
}

// Records returns the slice backing a collection, typed as any so callers
// can serialize it without a switch of their own.
func (s *Snapshot) Records(c model.Collection) any {
	switch c {
	case model.CollectionAccountGroups:
		return s.AccountGroups
	case model.CollectionAccounts:
		return s.Accounts
	case model.CollectionTransactions:
		return s.Transactions
	case model.CollectionPlannedPayments:
		return s.PlannedPayments
	case model.CollectionCategoryGroups:
		return s.CategoryGroups
	case model.CollectionCategories:
		return s.Categories
	case model.CollectionProjects:
		return s.Projects
	case model.CollectionCounterparties:
		return s.Counterparties
	}
	return nil
}

// Account looks an account up by id.
func (s *Snapshot) Account(id string) (model.Account, bool) {
	for _, a := range s.Accounts {
		if a.ID == id {
			return a, true
		}
	}
	return model.Account{}, false
}

// carryOver copies the collection c from prev into s.
func (s *Snapshot) carryOver(prev *Snapshot, c model.Collection) {
	switch c {
	case model.CollectionAccountGroups:
		s.AccountGroups = prev.AccountGroups
	case model.CollectionAccounts:
		s.Accounts = prev.Accounts
	case model.CollectionTransactions:
		s.Transactions = prev.Transactions
	case model.CollectionPlannedPayments:
		s.PlannedPayments = prev.PlannedPayments
	case model.CollectionCategoryGroups:
		s.CategoryGroups = prev.CategoryGroups
	case model.CollectionCategories:
		s.Categories = prev.Categories
	case model.CollectionProjects:
		s.Projects = prev.Projects
	case model.CollectionCounterparties:
		s.Counterparties = prev.Counterparties
	}
}
