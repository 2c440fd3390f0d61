package tui

import (
	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/tui/themes"
)

// Config holds TUI configuration.
type Config struct {
	Theme  themes.Theme
	Today  func() model.Date
	Range  model.DateRange
	Width  int
	Height int
}

// Option is a functional option for configuring the TUI.
type Option func(*Config)

func defaultConfig() Config {
	return Config{
		Theme:  themes.Default,
		Today:  model.Today,
		Width:  100,
		Height: 30,
	}
}

// WithTheme sets the visual theme.
func WithTheme(theme themes.Theme) Option {
	return func(c *Config) {
		c.Theme = theme
	}
}

// WithSize sets the initial terminal size.
func WithSize(width, height int) Option {
	return func(c *Config) {
		c.Width = width
		c.Height = height
	}
}

// WithClock replaces the source of today's date.
func WithClock(today func() model.Date) Option {
	return func(c *Config) {
		c.Today = today
	}
}

// WithRange sets the initial period. The zero range means the current
// quarter.
func WithRange(r model.DateRange) Option {
	return func(c *Config) {
		c.Range = r
	}
}
