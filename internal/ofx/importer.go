package ofx

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Veraticus/tally/internal/common"
	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/service"
)

// ImportResult counts what an import did.
type ImportResult struct {
	Imported   int
	Duplicates int
}

// Importer stores parsed statements, skipping lines whose bank id is
// already in the ledger.
type Importer struct {
	store    service.LedgerStore
	logger   *slog.Logger
	progress func(done, total int)
}

// NewImporter creates an importer writing to store. progress, when non-nil,
// is called after each transaction is examined.
func NewImporter(store service.LedgerStore, logger *slog.Logger, progress func(done, total int)) *Importer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{store: store, logger: logger, progress: progress}
}

// Import writes the statement's transactions into ledger account accountID
// in one batch.
func (im *Importer) Import(ctx context.Context, stmt Statement, accountID string) (ImportResult, error) {
	var result ImportResult
	if accountID == "" {
		return result, fmt.Errorf("%w: no ledger account for %s", common.ErrUnknownAccount, stmt.AccountID)
	}
	if len(stmt.Transactions) == 0 {
		return result, common.ErrNoTransactions
	}

	seen := make(map[string]bool, len(stmt.Transactions))
	fresh := make([]model.Transaction, 0, len(stmt.Transactions))
	for i, tx := range stmt.Transactions {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		tx.AccountID = accountID

		dup := seen[tx.ExternalID]
		if !dup {
			exists, err := im.store.HasExternalID(ctx, accountID, tx.ExternalID)
			if err != nil {
				return result, fmt.Errorf("failed to check for duplicates: %w", err)
			}
			dup = exists
		}
		seen[tx.ExternalID] = true

		if dup {
			result.Duplicates++
		} else {
			fresh = append(fresh, tx)
		}
		if im.progress != nil {
			im.progress(i+1, len(stmt.Transactions))
		}
	}

	if err := im.store.SaveTransactions(ctx, fresh); err != nil {
		return result, fmt.Errorf("failed to save transactions: %w", err)
	}
	result.Imported = len(fresh)

	im.logger.Info("Imported statement",
		"bank_account", stmt.AccountID,
		"account", accountID,
		"imported", result.Imported,
		"duplicates", result.Duplicates)

	return result, nil
}
