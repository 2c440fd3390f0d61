package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/Veraticus/tally/internal/finance"
	"github.com/Veraticus/tally/internal/ledger"
	tea "github.com/charmbracelet/bubbletea"
)

// Run shows the dashboard until the user quits or ctx is cancelled.
func Run(ctx context.Context, source *ledger.Source, engine *finance.Engine, opts ...Option) error {
	if source == nil || engine == nil {
		return errors.New("dashboard needs a ledger source and an engine")
	}

	p := tea.NewProgram(New(ctx, source, engine, opts...),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("dashboard failed: %w", err)
	}
	return nil
}
