package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Veraticus/tally/internal/model"
)

var transactionColumns = []string{
	"id", "date", "type", "status", "amount", "account_id", "to_account_id",
	"category_id", "project_id", "counterparty_id", "description", "external_id", "created_at",
}

const selectTransactions = `
	SELECT id, date, type, status, amount, account_id, to_account_id,
	       category_id, project_id, counterparty_id, description, external_id, created_at
	FROM transactions`

func (s *Store) transactionArgs(txn *model.Transaction) []any {
	return []any{
		txn.ID,
		txn.Date,
		string(txn.Type),
		string(txn.Status),
		txn.Amount.String(),
		txn.AccountID,
		nullable(txn.ToAccountID),
		nullable(txn.CategoryID),
		nullable(txn.ProjectID),
		nullable(txn.CounterpartyID),
		nullable(txn.Description),
		nullable(txn.ExternalID),
		s.createdAt(&txn.CreatedAt),
	}
}

// SaveTransaction inserts or replaces a single transaction.
func (s *Store) SaveTransaction(ctx context.Context, txn *model.Transaction) error {
	if err := validateRecord(ctx, txn, "transaction"); err != nil {
		return err
	}

	if _, err := s.exec(ctx, upsert("transactions", transactionColumns...), s.transactionArgs(txn)...); err != nil {
		return fmt.Errorf("failed to save transaction %s: %w", txn.ID, err)
	}
	return nil
}

// SaveTransactions saves multiple transactions in one database transaction.
// Either all of them are stored or none are.
func (s *Store) SaveTransactions(ctx context.Context, txns []model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if len(txns) == 0 {
		return nil
	}
	for i := range txns {
		if err := txns[i].Validate(); err != nil {
			return fmt.Errorf("transaction %d: %w", i, err)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, s.rebind(upsert("transactions", transactionColumns...)))
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i := range txns {
		if _, err := stmt.ExecContext(ctx, s.transactionArgs(&txns[i])...); err != nil {
			return fmt.Errorf("failed to insert transaction %s: %w", txns[i].ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transactions: %w", err)
	}

	slog.Debug("Saved transactions", "count", len(txns))
	return nil
}

// ListTransactions returns every transaction, newest first.
func (s *Store) ListTransactions(ctx context.Context) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.query(ctx, selectTransactions+" ORDER BY date DESC, created_at DESC, id")
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	return scanAll(rows, scanTransaction)
}

// GetTransaction retrieves a transaction by id.
func (s *Store) GetTransaction(ctx context.Context, id string) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	txn, err := scanTransaction(s.queryRow(ctx, selectTransactions+" WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: transaction %s", ErrRecordNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

// SetTransactionStatus moves a transaction through its approval workflow.
func (s *Store) SetTransactionStatus(ctx context.Context, id string, status model.TransactionStatus) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}
	if !status.Valid() {
		return fmt.Errorf("%w: unknown status %q", model.ErrInvalidTransaction, status)
	}

	res, err := s.exec(ctx, "UPDATE transactions SET status = ? WHERE id = ?", string(status), id)
	if err != nil {
		return fmt.Errorf("failed to update transaction status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: transaction %s", ErrRecordNotFound, id)
	}
	return nil
}

// HasExternalID reports whether an import already stored this bank id for
// the account.
func (s *Store) HasExternalID(ctx context.Context, accountID, externalID string) (bool, error) {
	if err := validateContext(ctx); err != nil {
		return false, err
	}
	if err := validateString(externalID, "externalID"); err != nil {
		return false, err
	}

	var count int
	err := s.queryRow(ctx,
		"SELECT COUNT(*) FROM transactions WHERE account_id = ? AND external_id = ?",
		accountID, externalID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check external id: %w", err)
	}
	return count > 0, nil
}

func scanTransaction(row rowScanner) (model.Transaction, error) {
	var (
		txn                                   model.Transaction
		typ, status                           string
		toAccount, category, project, counter sql.NullString
		description, externalID               sql.NullString
	)
	err := row.Scan(
		&txn.ID,
		&txn.Date,
		&typ,
		&status,
		&txn.Amount,
		&txn.AccountID,
		&toAccount,
		&category,
		&project,
		&counter,
		&description,
		&externalID,
		&txn.CreatedAt,
	)
	if err != nil {
		return txn, fmt.Errorf("failed to scan transaction: %w", err)
	}
	txn.Type = model.TransactionType(typ)
	txn.Status = model.TransactionStatus(status)
	txn.ToAccountID = toAccount.String
	txn.CategoryID = category.String
	txn.ProjectID = project.String
	txn.CounterpartyID = counter.String
	txn.Description = description.String
	txn.ExternalID = externalID.String
	return txn, nil
}

var plannedColumns = []string{
	"id", "date", "type", "amount", "account_id", "to_account_id",
	"category_id", "project_id", "description", "is_recurring", "created_at",
}

// SavePlannedPayment inserts or replaces a planned payment.
func (s *Store) SavePlannedPayment(ctx context.Context, payment *model.PlannedPayment) error {
	if err := validateRecord(ctx, payment, "planned payment"); err != nil {
		return err
	}

	_, err := s.exec(ctx, upsert("planned_payments", plannedColumns...),
		payment.ID,
		payment.Date,
		string(payment.Type),
		payment.Amount.String(),
		payment.AccountID,
		nullable(payment.ToAccountID),
		nullable(payment.CategoryID),
		nullable(payment.ProjectID),
		nullable(payment.Description),
		payment.IsRecurring,
		s.createdAt(&payment.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to save planned payment %s: %w", payment.ID, err)
	}
	return nil
}

// ListPlannedPayments returns planned payments, soonest first.
func (s *Store) ListPlannedPayments(ctx context.Context) ([]model.PlannedPayment, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.query(ctx, `
		SELECT id, date, type, amount, account_id, to_account_id,
		       category_id, project_id, description, is_recurring, created_at
		FROM planned_payments
		ORDER BY date, created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query planned payments: %w", err)
	}

	return scanAll(rows, func(row rowScanner) (model.PlannedPayment, error) {
		var (
			p                            model.PlannedPayment
			typ                          string
			toAccount, category, project sql.NullString
			description                  sql.NullString
		)
		err := row.Scan(&p.ID, &p.Date, &typ, &p.Amount, &p.AccountID, &toAccount,
			&category, &project, &description, &p.IsRecurring, &p.CreatedAt)
		if err != nil {
			return p, fmt.Errorf("failed to scan planned payment: %w", err)
		}
		p.Type = model.TransactionType(typ)
		p.ToAccountID = toAccount.String
		p.CategoryID = category.String
		p.ProjectID = project.String
		p.Description = description.String
		return p, nil
	})
}
