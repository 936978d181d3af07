package tui

import (
	"fmt"
	"io"
	"strings"

	"cachemaker/internal/model"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

type geocacheItem struct {
	cache   model.Geocache
	carried bool
}

func displayName(g model.Geocache) string {
	if strings.TrimSpace(g.Name) == "" {
		return "(unnamed)"
	}
	return g.Name
}

func (i geocacheItem) FilterValue() string { return i.cache.Name }
func (i geocacheItem) Title() string       { return displayName(i.cache) }
func (i geocacheItem) Description() string { return i.cache.Summary }

// rowDelegate renders one cache per line, truncated to the pane width.
type rowDelegate struct {
	normal   lipgloss.Style
	selected lipgloss.Style
	carried  lipgloss.Style
}

func newRowDelegate() rowDelegate {
	return rowDelegate{
		normal: lipgloss.NewStyle(),
		selected: lipgloss.NewStyle().
			Foreground(colorSelectedFg).
			Background(colorSelectedBg).
			Bold(true),
		carried: lipgloss.NewStyle().Foreground(colorCarriedFg),
	}
}

func (d rowDelegate) Height() int                             { return 1 }
func (d rowDelegate) Spacing() int                            { return 0 }
func (d rowDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d rowDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	contentW := m.Width()
	if contentW < 4 {
		return
	}
	it, ok := item.(geocacheItem)
	if !ok {
		return
	}

	marker := "  "
	if it.carried {
		marker = glyphCarried() + " "
	}
	line := marker + it.Title()
	lineW := xansi.StringWidth(line)
	if lineW < contentW {
		line += strings.Repeat(" ", contentW-lineW)
	} else if lineW > contentW {
		line = xansi.Truncate(line, contentW, "…")
	}

	style := d.normal
	if it.carried {
		style = d.carried
	}
	if index == m.Index() {
		style = d.selected
	}
	fmt.Fprint(w, style.Render(line))
}

func newPane(title string) list.Model {
	l := list.New([]list.Item{}, newRowDelegate(), 0, 0)
	l.Title = title
	// The app draws its own titles and footer; keep list chrome minimal.
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetShowPagination(false)
	l.SetFilteringEnabled(false)
	// q and esc belong to the app, not the list.
	l.KeyMap.Quit.SetEnabled(false)
	l.KeyMap.ForceQuit.SetEnabled(false)
	l.KeyMap.ShowFullHelp.SetEnabled(false)
	l.KeyMap.CloseFullHelp.SetEnabled(false)

	cursorUpKeys := append([]string{}, l.KeyMap.CursorUp.Keys()...)
	l.KeyMap.CursorUp.SetKeys(append(cursorUpKeys, "ctrl+k")...)
	cursorDownKeys := append([]string{}, l.KeyMap.CursorDown.Keys()...)
	l.KeyMap.CursorDown.SetKeys(append(cursorDownKeys, "ctrl+j")...)
	return l
}

func itemsFor(caches []model.Geocache, carriedIndex int) []list.Item {
	out := make([]list.Item, 0, len(caches))
	for i, g := range caches {
		out = append(out, geocacheItem{cache: g, carried: i == carriedIndex})
	}
	return out
}
