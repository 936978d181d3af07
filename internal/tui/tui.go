// Package tui is the interactive two-list view. It renders the catalog and
// turns key presses into pick-up, drop and session-end calls on the engine.
package tui

import (
	"log/slog"

	"cachemaker/internal/dragdrop"
	"cachemaker/internal/importer"
	"cachemaker/internal/journal"

	tea "github.com/charmbracelet/bubbletea"
)

type Options struct {
	Engine  *dragdrop.Engine
	Journal *journal.Journal
	Logger  *slog.Logger

	// Glyphs is "unicode" or "ascii".
	Glyphs string
	// Skipped is the number of seed records left out at startup.
	Skipped int
	// Clipboard overrides the system clipboard as the paste source.
	Clipboard importer.Provider
}

func Run(opts Options) error {
	applyColorProfilePreference()
	setGlyphPreference(opts.Glyphs)
	m := newAppModel(opts)
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
