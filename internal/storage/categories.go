package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Veraticus/tally/internal/model"
)

// SaveCategoryGroup inserts or replaces a category group.
func (s *Store) SaveCategoryGroup(ctx context.Context, group *model.CategoryGroup) error {
	if err := validateRecord(ctx, group, "category group"); err != nil {
		return err
	}

	_, err := s.exec(ctx, upsert("category_groups", "id", "name", "type", "sort_order", "created_at"),
		group.ID, group.Name, string(group.Type), group.SortOrder, s.now().UTC())
	if err != nil {
		return fmt.Errorf("failed to save category group %s: %w", group.ID, err)
	}
	return nil
}

// ListCategoryGroups returns category groups in display order.
func (s *Store) ListCategoryGroups(ctx context.Context) ([]model.CategoryGroup, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.query(ctx, "SELECT id, name, type, sort_order FROM category_groups ORDER BY sort_order, created_at, id")
	if err != nil {
		return nil, fmt.Errorf("failed to query category groups: %w", err)
	}
	return scanAll(rows, func(row rowScanner) (model.CategoryGroup, error) {
		var (
			g   model.CategoryGroup
			typ string
		)
		if err := row.Scan(&g.ID, &g.Name, &typ, &g.SortOrder); err != nil {
			return g, fmt.Errorf("failed to scan category group: %w", err)
		}
		g.Type = model.TransactionType(typ)
		return g, nil
	})
}

// SaveCategory inserts or replaces a category.
func (s *Store) SaveCategory(ctx context.Context, category *model.Category) error {
	if err := validateRecord(ctx, category, "category"); err != nil {
		return err
	}

	_, err := s.exec(ctx, upsert("categories", "id", "group_id", "name", "type", "sort_order", "created_at"),
		category.ID,
		nullable(category.GroupID),
		category.Name,
		string(category.Type),
		category.SortOrder,
		s.now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to save category %s: %w", category.ID, err)
	}
	return nil
}

// ListCategories returns categories in display order.
func (s *Store) ListCategories(ctx context.Context) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.query(ctx, `
		SELECT id, group_id, name, type, sort_order
		FROM categories
		ORDER BY sort_order, created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	return scanAll(rows, func(row rowScanner) (model.Category, error) {
		var (
			c     model.Category
			group sql.NullString
			typ   string
		)
		if err := row.Scan(&c.ID, &group, &c.Name, &typ, &c.SortOrder); err != nil {
			return c, fmt.Errorf("failed to scan category: %w", err)
		}
		c.GroupID = group.String
		c.Type = model.TransactionType(typ)
		return c, nil
	})
}
