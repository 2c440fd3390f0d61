package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/service"
	"golang.org/x/sync/errgroup"
)

// Loader fetches every collection concurrently.
type Loader struct {
	reader service.LedgerReader
	logger *slog.Logger
	strict bool
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithStrict makes Fetch fail on the first collection error instead of
// degrading that collection.
func WithStrict(strict bool) LoaderOption {
	return func(l *Loader) { l.strict = strict }
}

// WithLogger sets the logger used for degraded fetches.
func WithLogger(logger *slog.Logger) LoaderOption {
	return func(l *Loader) { l.logger = logger }
}

// NewLoader creates a loader reading from reader.
func NewLoader(reader service.LedgerReader, opts ...LoaderOption) *Loader {
	l := &Loader{reader: reader, logger: slog.Default()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Fetch reads all collections. In the default mode a failing collection is
// logged, recorded in Snapshot.Failed and left empty. In strict mode the
// first error is returned and the remaining fetches are cancelled. The
// returned snapshot has no version yet.
func (l *Loader) Fetch(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{}
	g, gctx := errgroup.WithContext(ctx)
	var mu sync.Mutex

	fail := func(c model.Collection, err error) error {
		if l.strict {
			return fmt.Errorf("failed to fetch %s: %w", c, err)
		}
		l.logger.Warn("Collection fetch failed, keeping previous contents",
			"collection", c,
			"error", err)
		mu.Lock()
		snap.Failed = append(snap.Failed, c)
		mu.Unlock()
		return nil
	}

	fetch(gctx, g, model.CollectionAccountGroups, l.reader.ListAccountGroups, &snap.AccountGroups, fail)
	fetch(gctx, g, model.CollectionAccounts, l.reader.ListAccounts, &snap.Accounts, fail)
	fetch(gctx, g, model.CollectionTransactions, l.reader.ListTransactions, &snap.Transactions, fail)
	fetch(gctx, g, model.CollectionPlannedPayments, l.reader.ListPlannedPayments, &snap.PlannedPayments, fail)
	fetch(gctx, g, model.CollectionCategoryGroups, l.reader.ListCategoryGroups, &snap.CategoryGroups, fail)
	fetch(gctx, g, model.CollectionCategories, l.reader.ListCategories, &snap.Categories, fail)
	fetch(gctx, g, model.CollectionProjects, l.reader.ListProjects, &snap.Projects, fail)
	fetch(gctx, g, model.CollectionCounterparties, l.reader.ListCounterparties, &snap.Counterparties, fail)

	if err := g.Wait(); err != nil {
		return nil, err
	}
	snap.Failed = inLoadOrder(snap.Failed)
	snap.LoadedAt = time.Now()
	return snap, nil
}

func inLoadOrder(failed []model.Collection) []model.Collection {
	if len(failed) < 2 {
		return failed
	}
	out := make([]model.Collection, 0, len(failed))
	for _, c := range model.Collections {
		if slices.Contains(failed, c) {
			out = append(out, c)
		}
	}
	return out
}

func fetch[T any](
	ctx context.Context,
	g *errgroup.Group,
	c model.Collection,
	list func(context.Context) ([]T, error),
	dst *[]T,
	fail func(model.Collection, error) error,
) {
	g.Go(func() error {
		rows, err := list(ctx)
		if err != nil {
			return fail(c, err)
		}
		*dst = rows
		return nil
	})
}
