package model

import "fmt"

// Collection names one kind of ledger record.
type Collection string

const (
	CollectionAccountGroups   Collection = "account_groups"
	CollectionAccounts        Collection = "accounts"
	CollectionTransactions    Collection = "transactions"
	CollectionPlannedPayments Collection = "planned_payments"
	CollectionCategoryGroups  Collection = "category_groups"
	CollectionCategories      Collection = "categories"
	CollectionProjects        Collection = "projects"
	CollectionCounterparties  Collection = "counterparties"
)

// Collections lists every collection in load order.
var Collections = []Collection{
	CollectionAccountGroups,
	CollectionAccounts,
	CollectionTransactions,
	CollectionPlannedPayments,
	CollectionCategoryGroups,
	CollectionCategories,
	CollectionProjects,
	CollectionCounterparties,
}

// ParseCollection accepts a collection name as used in URLs and tables.
func ParseCollection(name string) (Collection, error) {
	for _, c := range Collections {
		if string(c) == name {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCollection, name)
}
