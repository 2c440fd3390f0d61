package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Veraticus/tally/internal/cli"
	"github.com/Veraticus/tally/internal/common"
	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/ofx"
	"github.com/Veraticus/tally/internal/storage"
	"github.com/spf13/cobra"
)

func (a *app) importOFXCmd() *cobra.Command {
	var (
		account string
		status  string
		dryRun  bool
	)

	cmd := &cobra.Command{
		Use:   "import-ofx [files...]",
		Short: "Import transactions from OFX/QFX files",
		Long: `Import bank and card transactions from OFX or QFX (Quicken) files.

Each statement in a file is written to one ledger account. The account is
taken from --account, then from the ofx.accounts map in the config file
(bank account number to ledger account id), then from a ledger account whose
id equals the bank account number. Otherwise you are asked to pick one.

Lines already imported into the same account are skipped.

Examples:
  # Import single file
  tally import-ofx ~/Downloads/chase_jan_2024.qfx

  # Import every statement into one account
  tally import-ofx --account bank ~/Downloads/chase_*.qfx`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := model.ParseTransactionStatus(status)
			if err != nil {
				return err
			}

			files, err := expandFiles(args)
			if err != nil {
				return err
			}

			interrupts := cli.NewInterruptHandler(cmd.ErrOrStderr())
			ctx := interrupts.HandleInterrupts(cmd.Context(), "Import", "Statements already imported are kept; run the command again to finish.")

			store, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			imp := &ofxImport{
				app:      a,
				cmd:      cmd,
				store:    store,
				parser:   ofx.NewParser(ofx.WithStatus(st)),
				prompter: cli.NewPrompter(cmd.InOrStdin(), cmd.OutOrStdout()),
				account:  account,
				dryRun:   dryRun,
			}
			return imp.run(ctx, files)
		},
	}

	cmd.Flags().StringVarP(&account, "account", "a", "", "ledger account for every statement")
	cmd.Flags().StringVar(&status, "status", string(model.StatusApproved), "status given to imported lines")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "d", false, "Preview import without saving")
	return cmd
}

// expandFiles resolves globs, keeping plain paths that exist.
func expandFiles(patterns []string) ([]string, error) {
	var files []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) > 0 {
			files = append(files, matches...)
			continue
		}
		if _, err := os.Stat(pattern); err == nil {
			files = append(files, pattern)
		} else {
			slog.Warn("No files found matching pattern", "pattern", pattern)
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no files found to import")
	}
	return files, nil
}

type ofxImport struct {
	app      *app
	cmd      *cobra.Command
	store    *storage.Store
	parser   *ofx.Parser
	prompter *cli.Prompter
	mapped   map[string]string
	accounts []model.Account
	account  string
	dryRun   bool
}

func (imp *ofxImport) run(ctx context.Context, files []string) error {
	out := imp.cmd.OutOrStdout()

	var total ofx.ImportResult
	for _, path := range files {
		statements, err := imp.parse(ctx, path)
		if err != nil {
			slog.Error("Failed to parse OFX file", "file", path, "error", err)
			continue
		}

		for _, stmt := range statements {
			if len(stmt.Transactions) == 0 {
				slog.Warn("No transactions found in statement", "file", filepath.Base(path), "bank_account", stmt.AccountID)
				continue
			}

			accountID, err := imp.ledgerAccount(ctx, stmt)
			if err != nil {
				return err
			}

			if imp.dryRun {
				fmt.Fprintln(out, cli.FormatInfo(fmt.Sprintf("%s: %d transactions for %s", filepath.Base(path), len(stmt.Transactions), accountID)))
				if err := cli.RenderTransactions(out, stmt.Transactions, func(_ model.Collection, id string) string { return id }); err != nil {
					return err
				}
				continue
			}

			bar := cli.NewProgressBar(imp.cmd.ErrOrStderr(), len(stmt.Transactions), filepath.Base(path))
			result, err := ofx.NewImporter(imp.store, slog.Default(), cli.ProgressFunc(bar)).Import(ctx, stmt, accountID)
			if err != nil {
				return fmt.Errorf("failed to import %s: %w", path, err)
			}
			total.Imported += result.Imported
			total.Duplicates += result.Duplicates
		}
	}

	if !imp.dryRun {
		fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Imported %d transactions, skipped %d duplicates", total.Imported, total.Duplicates)))
	}
	return nil
}

func (imp *ofxImport) parse(ctx context.Context, path string) ([]ofx.Statement, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return imp.parser.ParseFile(ctx, f)
}

// ledgerAccount decides which ledger account a statement belongs to and
// remembers the answer for later statements of the same bank account.
func (imp *ofxImport) ledgerAccount(ctx context.Context, stmt ofx.Statement) (string, error) {
	if imp.account != "" {
		return imp.account, nil
	}
	if imp.mapped == nil {
		imp.mapped = imp.app.v.GetStringMapString("ofx.accounts")
		if imp.mapped == nil {
			imp.mapped = make(map[string]string)
		}
	}
	if id, ok := imp.mapped[strings.ToLower(stmt.AccountID)]; ok {
		return id, nil
	}

	if imp.accounts == nil {
		accounts, err := imp.store.ListAccounts(ctx)
		if err != nil {
			return "", fmt.Errorf("failed to list accounts: %w", err)
		}
		imp.accounts = accounts
	}
	choices := make([]cli.Choice, 0, len(imp.accounts))
	for _, acc := range imp.accounts {
		if acc.ID == stmt.AccountID {
			return acc.ID, nil
		}
		choices = append(choices, cli.Choice{Key: acc.ID, Label: acc.Name})
	}
	if len(choices) == 0 {
		return "", fmt.Errorf("%w: add a ledger account first with 'tally accounts add'", common.ErrUnknownAccount)
	}

	id, err := imp.prompter.Choose(ctx, fmt.Sprintf("Which ledger account holds bank account %s?", stmt.AccountID), choices)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return "", err
		}
		return "", fmt.Errorf("no ledger account chosen for %s: %w", stmt.AccountID, err)
	}
	imp.mapped[strings.ToLower(stmt.AccountID)] = id
	return id, nil
}
