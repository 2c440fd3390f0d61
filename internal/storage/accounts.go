package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Veraticus/tally/internal/model"
)

// SaveAccountGroup inserts or replaces an account group.
func (s *Store) SaveAccountGroup(ctx context.Context, group *model.AccountGroup) error {
	if err := validateRecord(ctx, group, "account group"); err != nil {
		return err
	}

	_, err := s.exec(ctx, upsert("account_groups", "id", "name", "sort_order", "created_at"),
		group.ID, group.Name, group.SortOrder, s.now().UTC())
	if err != nil {
		return fmt.Errorf("failed to save account group %s: %w", group.ID, err)
	}
	return nil
}

// ListAccountGroups returns groups in display order.
func (s *Store) ListAccountGroups(ctx context.Context) ([]model.AccountGroup, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.query(ctx, "SELECT id, name, sort_order FROM account_groups ORDER BY sort_order, created_at, id")
	if err != nil {
		return nil, fmt.Errorf("failed to query account groups: %w", err)
	}
	return scanAll(rows, func(row rowScanner) (model.AccountGroup, error) {
		var g model.AccountGroup
		if err := row.Scan(&g.ID, &g.Name, &g.SortOrder); err != nil {
			return g, fmt.Errorf("failed to scan account group: %w", err)
		}
		return g, nil
	})
}

// SaveAccount inserts or replaces an account.
func (s *Store) SaveAccount(ctx context.Context, account *model.Account) error {
	if err := validateRecord(ctx, account, "account"); err != nil {
		return err
	}

	_, err := s.exec(ctx,
		upsert("accounts", "id", "group_id", "name", "currency", "opening_balance", "sort_order", "created_at"),
		account.ID,
		nullable(account.GroupID),
		account.Name,
		account.Currency,
		account.OpeningBalance.String(),
		account.SortOrder,
		s.now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to save account %s: %w", account.ID, err)
	}
	return nil
}

// ListAccounts returns accounts in display order.
func (s *Store) ListAccounts(ctx context.Context) ([]model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.query(ctx, `
		SELECT id, group_id, name, currency, opening_balance, sort_order
		FROM accounts
		ORDER BY sort_order, created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	return scanAll(rows, func(row rowScanner) (model.Account, error) {
		var (
			a     model.Account
			group sql.NullString
		)
		if err := row.Scan(&a.ID, &group, &a.Name, &a.Currency, &a.OpeningBalance, &a.SortOrder); err != nil {
			return a, fmt.Errorf("failed to scan account: %w", err)
		}
		a.GroupID = group.String
		return a, nil
	})
}
