package model

import (
	"fmt"
	"strings"
)

// CategoryGroup gathers categories of one type.
type CategoryGroup struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Type      TransactionType `json:"type"`
	SortOrder int             `json:"sort_order"`
}

// Validate checks the group is named and is INCOME or EXPENSE.
func (g *CategoryGroup) Validate() error {
	if g.ID == "" || strings.TrimSpace(g.Name) == "" {
		return fmt.Errorf("%w: id and name are required", ErrInvalidCategoryGroup)
	}
	if g.Type != Income && g.Type != Expense {
		return fmt.Errorf("%w: type must be INCOME or EXPENSE, got %q", ErrInvalidCategoryGroup, g.Type)
	}
	return nil
}

// Category labels transactions for reporting. Reports key on Name.
type Category struct {
	ID        string          `json:"id"`
	GroupID   string          `json:"group_id,omitempty"`
	Name      string          `json:"name"`
	Type      TransactionType `json:"type"`
	SortOrder int             `json:"sort_order"`
}

// Validate checks the category is named and is INCOME or EXPENSE.
func (c *Category) Validate() error {
	if c.ID == "" || strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: id and name are required", ErrInvalidCategory)
	}
	if c.Type != Income && c.Type != Expense {
		return fmt.Errorf("%w: type must be INCOME or EXPENSE, got %q", ErrInvalidCategory, c.Type)
	}
	return nil
}

func upper(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
