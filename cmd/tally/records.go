package main

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/Veraticus/tally/internal/cli"
	"github.com/Veraticus/tally/internal/finance"
	"github.com/Veraticus/tally/internal/model"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func parseAmount(flag, raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("--%s: %q is not a number", flag, raw)
	}
	return d, nil
}

func parseDateFlag(flag, raw string) (model.Date, error) {
	if raw == "" {
		return model.Today(), nil
	}
	d, err := model.ParseDate(raw)
	if err != nil {
		return 0, fmt.Errorf("--%s: %w", flag, err)
	}
	return d, nil
}

func newID(id string) string {
	if id != "" {
		return id
	}
	return uuid.NewString()
}

func (a *app) accountsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "List accounts with their current balances",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withLedger(cmd, func(_ context.Context, s *session) error {
				return cli.RenderAccounts(cmd.OutOrStdout(), finance.CalculatedAccounts(s.snap.Accounts, s.snap.Transactions))
			})
		},
	}
	cmd.AddCommand(a.addAccountCmd())
	return cmd
}

func (a *app) addAccountCmd() *cobra.Command {
	var account model.Account
	var opening string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount("opening", opening)
			if err != nil {
				return err
			}
			account.ID = newID(account.ID)
			account.Name = args[0]
			account.Currency = strings.ToUpper(account.Currency)
			account.OpeningBalance = amount

			ctx := cmd.Context()
			store, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.SaveAccount(ctx, &account); err != nil {
				return fmt.Errorf("failed to save account: %w", err)
			}
			printSuccess(cmd, fmt.Sprintf("Added account %q (%s)", account.Name, account.ID))
			return nil
		},
	}

	cmd.Flags().StringVar(&account.ID, "id", "", "account id (default: generated)")
	cmd.Flags().StringVar(&account.GroupID, "group", "", "account group id")
	cmd.Flags().StringVar(&account.Currency, "currency", "USD", "ISO currency code")
	cmd.Flags().StringVar(&opening, "opening", "0", "opening balance")
	cmd.Flags().IntVar(&account.SortOrder, "sort", 0, "display position")
	return cmd
}

func (a *app) transactionsCmd() *cobra.Command {
	var (
		from, to string
		status   string
		account  string
		project  string
	)

	cmd := &cobra.Command{
		Use:     "transactions",
		Aliases: []string{"txns"},
		Short:   "List transactions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var window *model.DateRange
			if from != "" || to != "" {
				p := period{from: from, to: to}
				w, err := p.window(model.Today())
				if err != nil {
					return err
				}
				window = &w
			}
			var st model.TransactionStatus
			if status != "" {
				parsed, err := model.ParseTransactionStatus(status)
				if err != nil {
					return err
				}
				st = parsed
			}

			return a.withLedger(cmd, func(_ context.Context, s *session) error {
				txns := make([]model.Transaction, 0, len(s.snap.Transactions))
				for _, t := range s.snap.Transactions {
					if window != nil && !window.Contains(t.Date) {
						continue
					}
					if st != "" && t.Status != st {
						continue
					}
					if account != "" && t.AccountID != account && t.ToAccountID != account {
						continue
					}
					txns = append(txns, t)
				}
				txns = finance.Filter{ProjectID: project}.Apply(txns)
				return cli.RenderTransactions(cmd.OutOrStdout(), txns, nameLookup(s.snap))
			})
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "first day to list")
	cmd.Flags().StringVar(&to, "to", "", "last day to list")
	cmd.Flags().StringVar(&status, "status", "", "only DRAFT, PENDING or APPROVED")
	cmd.Flags().StringVar(&account, "account", "", "only transactions touching this account")
	cmd.Flags().StringVar(&project, "project", "", "only transactions of this project (\"all\" for every project)")

	cmd.AddCommand(a.addTransactionCmd())
	cmd.AddCommand(a.setStatusCmd("approve", model.StatusApproved))
	cmd.AddCommand(a.setStatusCmd("pend", model.StatusPending))
	return cmd
}

func (a *app) addTransactionCmd() *cobra.Command {
	var (
		txn                       model.Transaction
		typ, status, amount, date string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a transaction",
		Example: `  tally transactions add --type income --amount 2500 --account bank --category sales
  tally transactions add --type transfer --amount 300 --account bank --to-account cash`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			if txn.Type, err = model.ParseTransactionType(typ); err != nil {
				return err
			}
			if txn.Status, err = model.ParseTransactionStatus(status); err != nil {
				return err
			}
			if txn.Amount, err = parseAmount("amount", amount); err != nil {
				return err
			}
			if txn.Date, err = parseDateFlag("date", date); err != nil {
				return err
			}
			txn.ID = newID(txn.ID)

			ctx := cmd.Context()
			store, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.SaveTransaction(ctx, &txn); err != nil {
				return fmt.Errorf("failed to save transaction: %w", err)
			}
			printSuccess(cmd, fmt.Sprintf("Recorded %s %s on %s (%s)", strings.ToLower(string(txn.Type)), cli.FormatMoney(txn.Amount), txn.Date, txn.ID))
			return nil
		},
	}

	cmd.Flags().StringVar(&txn.ID, "id", "", "transaction id (default: generated)")
	cmd.Flags().StringVar(&typ, "type", "expense", "income, expense or transfer")
	cmd.Flags().StringVar(&status, "status", string(model.StatusApproved), "DRAFT, PENDING or APPROVED")
	cmd.Flags().StringVar(&amount, "amount", "", "amount, always positive")
	cmd.Flags().StringVar(&date, "date", "", "date (default: today)")
	cmd.Flags().StringVar(&txn.AccountID, "account", "", "source account id")
	cmd.Flags().StringVar(&txn.ToAccountID, "to-account", "", "destination account id for transfers")
	cmd.Flags().StringVar(&txn.CategoryID, "category", "", "category id")
	cmd.Flags().StringVar(&txn.ProjectID, "project", "", "project id")
	cmd.Flags().StringVar(&txn.CounterpartyID, "counterparty", "", "counterparty id")
	cmd.Flags().StringVar(&txn.Description, "description", "", "free text")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("account")
	return cmd
}

func (a *app) setStatusCmd(use string, status model.TransactionStatus) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>...",
		Short: fmt.Sprintf("Mark transactions %s", status),
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			for _, id := range args {
				if err := store.SetTransactionStatus(ctx, id, status); err != nil {
					return fmt.Errorf("failed to update %s: %w", id, err)
				}
			}
			printSuccess(cmd, fmt.Sprintf("Marked %d transaction(s) %s", len(args), status))
			return nil
		},
	}
}

func (a *app) plannedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "planned",
		Short: "List planned payments",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withLedger(cmd, func(_ context.Context, s *session) error {
				name := nameLookup(s.snap)
				rows := make([][]string, 0, len(s.snap.PlannedPayments))
				for _, p := range s.snap.PlannedPayments {
					amount := p.Amount
					if p.Type == model.Expense {
						amount = amount.Neg()
					}
					rows = append(rows, []string{
						p.Date.String(),
						string(p.Type),
						name(model.CollectionAccounts, p.AccountID),
						p.Description,
						cli.StyleMoney(amount),
						cli.SubtleStyle.Render(p.ID),
					})
				}
				_, err := fmt.Fprintln(cmd.OutOrStdout(), cli.FormatTitle(fmt.Sprintf("Planned payments (%d)", len(rows)))+"\n"+
					cli.Table([]string{"Date", "Type", "Account", "Description", "Amount", "ID"}, rows, 4))
				return err
			})
		},
	}
	cmd.AddCommand(a.addPlannedCmd())
	return cmd
}

func (a *app) addPlannedCmd() *cobra.Command {
	var (
		payment           model.PlannedPayment
		typ, amount, date string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Schedule a planned payment",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			if payment.Type, err = model.ParseTransactionType(typ); err != nil {
				return err
			}
			if payment.Amount, err = parseAmount("amount", amount); err != nil {
				return err
			}
			if payment.Date, err = parseDateFlag("date", date); err != nil {
				return err
			}
			payment.ID = newID(payment.ID)

			ctx := cmd.Context()
			store, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.SavePlannedPayment(ctx, &payment); err != nil {
				return fmt.Errorf("failed to save planned payment: %w", err)
			}
			printSuccess(cmd, fmt.Sprintf("Planned %s %s on %s (%s)", strings.ToLower(string(payment.Type)), cli.FormatMoney(payment.Amount), payment.Date, payment.ID))
			return nil
		},
	}

	cmd.Flags().StringVar(&payment.ID, "id", "", "planned payment id (default: generated)")
	cmd.Flags().StringVar(&typ, "type", "expense", "income or expense")
	cmd.Flags().StringVar(&amount, "amount", "", "amount, always positive")
	cmd.Flags().StringVar(&date, "date", "", "due date (default: today)")
	cmd.Flags().StringVar(&payment.AccountID, "account", "", "account id")
	cmd.Flags().StringVar(&payment.CategoryID, "category", "", "category id")
	cmd.Flags().StringVar(&payment.ProjectID, "project", "", "project id")
	cmd.Flags().StringVar(&payment.Description, "description", "", "free text")
	cmd.Flags().BoolVar(&payment.IsRecurring, "recurring", false, "mark as recurring")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("account")
	return cmd
}

func (a *app) categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "List income and expense categories",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withLedger(cmd, func(_ context.Context, s *session) error {
				groups := make(map[string]string, len(s.snap.CategoryGroups))
				for _, g := range s.snap.CategoryGroups {
					groups[g.ID] = g.Name
				}
				rows := make([][]string, 0, len(s.snap.Categories))
				for _, c := range s.snap.Categories {
					rows = append(rows, []string{c.ID, c.Name, string(c.Type), groups[c.GroupID]})
				}
				_, err := fmt.Fprintln(cmd.OutOrStdout(), cli.Table([]string{"ID", "Name", "Type", "Group"}, rows))
				return err
			})
		},
	}
	cmd.AddCommand(a.addCategoryCmd())
	return cmd
}

func (a *app) addCategoryCmd() *cobra.Command {
	var category model.Category
	var typ string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := model.ParseTransactionType(typ)
			if err != nil {
				return err
			}
			category.ID = newID(category.ID)
			category.Name = args[0]
			category.Type = t

			ctx := cmd.Context()
			store, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.SaveCategory(ctx, &category); err != nil {
				return fmt.Errorf("failed to save category: %w", err)
			}
			printSuccess(cmd, fmt.Sprintf("Added %s category %q (%s)", strings.ToLower(string(t)), category.Name, category.ID))
			return nil
		},
	}

	cmd.Flags().StringVar(&category.ID, "id", "", "category id (default: generated)")
	cmd.Flags().StringVar(&typ, "type", "expense", "income or expense")
	cmd.Flags().StringVar(&category.GroupID, "group", "", "category group id")
	return cmd
}

func (a *app) projectsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "projects",
		Short: "List projects with plan and actuals",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withLedger(cmd, func(_ context.Context, s *session) error {
				return cli.RenderProjects(cmd.OutOrStdout(), finance.ProjectFinancials(s.snap.Projects, s.snap.Transactions))
			})
		},
	}
	cmd.AddCommand(a.addProjectCmd())
	return cmd
}

func (a *app) addProjectCmd() *cobra.Command {
	var project model.Project
	var status, income, expense string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if project.PlannedIncome, err = parseAmount("planned-income", income); err != nil {
				return err
			}
			if project.PlannedExpense, err = parseAmount("planned-expense", expense); err != nil {
				return err
			}
			project.ID = newID(project.ID)
			project.Name = args[0]
			project.Status = model.ProjectStatus(strings.ToUpper(status))

			ctx := cmd.Context()
			store, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.SaveProject(ctx, &project); err != nil {
				return fmt.Errorf("failed to save project: %w", err)
			}
			printSuccess(cmd, fmt.Sprintf("Added project %q (%s)", project.Name, project.ID))
			return nil
		},
	}

	cmd.Flags().StringVar(&project.ID, "id", "", "project id (default: generated)")
	cmd.Flags().StringVar(&status, "status", string(model.ProjectActive), "ACTIVE, COMPLETED or ARCHIVED")
	cmd.Flags().StringVar(&income, "planned-income", "0", "budgeted income")
	cmd.Flags().StringVar(&expense, "planned-expense", "0", "budgeted expense")
	return cmd
}

func (a *app) counterpartiesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "counterparties",
		Short: "List clients, vendors and contractors with what is owed",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withLedger(cmd, func(_ context.Context, s *session) error {
				return cli.RenderCounterparties(cmd.OutOrStdout(), finance.CounterpartyBalances(s.snap.Counterparties, s.snap.Transactions))
			})
		},
	}
	cmd.AddCommand(a.addCounterpartyCmd())
	return cmd
}

func (a *app) addCounterpartyCmd() *cobra.Command {
	var cp model.Counterparty
	var typ string
	var inactive bool

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a counterparty",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cp.ID = newID(cp.ID)
			cp.Name = args[0]
			cp.Type = model.CounterpartyType(strings.ToUpper(typ))
			cp.Status = model.CounterpartyActive
			if inactive {
				cp.Status = model.CounterpartyInactive
			}

			ctx := cmd.Context()
			store, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.SaveCounterparty(ctx, &cp); err != nil {
				return fmt.Errorf("failed to save counterparty: %w", err)
			}
			printSuccess(cmd, fmt.Sprintf("Added %s %q (%s)", strings.ToLower(string(cp.Type)), cp.Name, cp.ID))
			return nil
		},
	}

	cmd.Flags().StringVar(&cp.ID, "id", "", "counterparty id (default: generated)")
	cmd.Flags().StringVar(&typ, "type", string(model.CounterpartyClient), "CLIENT, VENDOR or CONTRACTOR")
	cmd.Flags().StringVar(&cp.Email, "email", "", "contact email")
	cmd.Flags().StringVar(&cp.Phone, "phone", "", "contact phone")
	cmd.Flags().BoolVar(&inactive, "inactive", false, "add as INACTIVE")
	return cmd
}

func (a *app) deleteCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <collection> <id>",
		Short: "Delete one record",
		Long: `Delete one record from a collection. Nothing cascades: transactions that
reference a deleted account or category keep the dangling id.

Collections: ` + strings.Join(collectionNames(), ", "),
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			collection, err := model.ParseCollection(args[0])
			if err != nil {
				return err
			}
			id := args[1]
			ctx := cmd.Context()

			if !yes {
				prompter := cli.NewPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
				ok, err := prompter.Confirm(ctx, fmt.Sprintf("Delete %s %s?", collection, id), false)
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("Nothing deleted"))
					return nil
				}
			}

			store, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.Delete(ctx, collection, id); err != nil {
				return fmt.Errorf("failed to delete %s %s: %w", collection, id, err)
			}
			printSuccess(cmd, fmt.Sprintf("Deleted %s %s", collection, id))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func collectionNames() []string {
	names := make([]string, 0, len(model.Collections))
	for _, c := range model.Collections {
		names = append(names, string(c))
	}
	slices.Sort(names)
	return names
}
