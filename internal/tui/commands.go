package tui

import (
	"context"
	"time"

	"github.com/Veraticus/tally/internal/ledger"
	tea "github.com/charmbracelet/bubbletea"
)

const refreshTimeout = 30 * time.Second

// refresh reloads the ledger in the background.
func refresh(ctx context.Context, source *ledger.Source) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, refreshTimeout)
		defer cancel()

		snap, err := source.Refresh(ctx)
		return snapshotLoadedMsg{snap: snap, err: err}
	}
}
