// Package tui is the interactive terminal dashboard.
package tui

import (
	"context"
	"slices"

	"github.com/Veraticus/tally/internal/finance"
	"github.com/Veraticus/tally/internal/ledger"
	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/tui/themes"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// Model holds the dashboard state. Every derived figure comes from the
// engine; the model only tracks what is selected.
type Model struct {
	ctx       context.Context
	lastError error
	source    *ledger.Source
	engine    *finance.Engine
	snap      *ledger.Snapshot
	dash      *finance.Dashboard
	today     func() model.Date
	theme     themes.Theme
	filter    finance.Filter
	keymap    KeyMap
	spinner   spinner.Model
	help      help.Model
	window    model.DateRange
	tab       Tab
	width     int
	height    int
	loading   bool
	quitting  bool
}

// New creates the dashboard model. It loads the ledger on Init.
func New(ctx context.Context, source *ledger.Source, engine *finance.Engine, opts ...Option) Model {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	window := cfg.Range
	if window == (model.DateRange{}) {
		window = model.QuarterOf(cfg.Today())
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		ctx:     ctx,
		source:  source,
		engine:  engine,
		snap:    source.Current(),
		today:   cfg.Today,
		theme:   cfg.Theme,
		keymap:  DefaultKeyMap(),
		spinner: sp,
		help:    help.New(),
		window:  window,
		width:   cfg.Width,
		height:  cfg.Height,
		loading: true,
	}
}

// Init starts the first load.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, refresh(m.ctx, m.source))
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case snapshotLoadedMsg:
		m.loading = false
		m.lastError = msg.err
		if msg.err == nil {
			m.snap = msg.snap
			m.recompute()
		}
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keymap.Help):
		m.help.ShowAll = !m.help.ShowAll

	case key.Matches(msg, m.keymap.Refresh):
		if m.loading {
			return m, nil
		}
		m.loading = true
		return m, tea.Batch(m.spinner.Tick, refresh(m.ctx, m.source))

	case key.Matches(msg, m.keymap.PrevPeriod):
		m.window = shiftPeriod(m.window, -1)
		m.recompute()

	case key.Matches(msg, m.keymap.NextPeriod):
		m.window = shiftPeriod(m.window, 1)
		m.recompute()

	case key.Matches(msg, m.keymap.NextAccount):
		ids := make([]string, 0, len(m.snap.Accounts))
		for _, a := range m.snap.Accounts {
			ids = append(ids, a.ID)
		}
		m.filter.AccountID = cycle(ids, m.filter.AccountID)
		m.recompute()

	case key.Matches(msg, m.keymap.NextProject):
		ids := make([]string, 0, len(m.snap.Projects))
		for _, p := range m.snap.Projects {
			ids = append(ids, p.ID)
		}
		m.filter.ProjectID = cycle(ids, m.filter.ProjectID)
		m.recompute()

	case key.Matches(msg, m.keymap.ClearFilter):
		m.filter = finance.Filter{}
		m.recompute()

	case key.Matches(msg, m.keymap.NextTab):
		m.tab = (m.tab + 1) % tabCount

	case key.Matches(msg, m.keymap.PrevTab):
		m.tab = (m.tab + tabCount - 1) % tabCount
	}
	return m, nil
}

func (m *Model) recompute() {
	m.dash = m.engine.Dashboard(m.snap, finance.DashboardRequest{
		Range:  m.window,
		Filter: m.filter,
		Today:  m.today(),
	})
}

// shiftPeriod moves a calendar quarter to the adjacent quarter and any other
// window by its own length.
func shiftPeriod(w model.DateRange, dir int) model.DateRange {
	if model.QuarterOf(w.From) == w {
		if dir < 0 {
			return model.QuarterOf(w.From.AddDays(-1))
		}
		return model.QuarterOf(w.To.AddDays(1))
	}
	return w.Shift(dir * (w.Days() + 1))
}

// cycle returns the id after current, wrapping through "" (all).
func cycle(ids []string, current string) string {
	if len(ids) == 0 {
		return ""
	}
	i := slices.Index(ids, current)
	if i == len(ids)-1 {
		return ""
	}
	return ids[i+1]
}
