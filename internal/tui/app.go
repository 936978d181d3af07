package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"cachemaker/internal/catalog"
	"cachemaker/internal/docs"
	"cachemaker/internal/dragdrop"
	"cachemaker/internal/importer"
	"cachemaker/internal/journal"
	"cachemaker/internal/model"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// similarNameDistance is the edit distance under which an imported name is
// flagged as a possible duplicate.
const similarNameDistance = 2

type mode int

const (
	modeNormal mode = iota
	modeImportLine
	modeHelp
)

// importResolvedMsg carries an async import back to the event loop.
type importResolvedMsg struct {
	resolved dragdrop.ResolvedImport
	err      error
}

// sessionEndedMsg arrives after a drop, the way a platform delivers
// drag-session-end after the drop callback.
type sessionEndedMsg struct {
	sessionID string
}

type journalEntryMsg struct {
	entry journal.Entry
	ok    bool
}

type activityLog interface {
	Last(ctx context.Context) (journal.Entry, bool, error)
}

type appModel struct {
	eng       *dragdrop.Engine
	journal   activityLog
	logger    *slog.Logger
	clipboard importer.Provider
	keys      keyMap

	width  int
	height int

	panes [2]list.Model
	ids   [2]catalog.ID
	focus int

	session dragdrop.Session
	mode    mode
	input   textinput.Model

	// pendingImports counts pastes dropped but not yet applied; a drag may
	// not start while any are outstanding.
	pendingImports int

	status    string
	statusErr bool
	hint      string
	lastEntry string
}

func newAppModel(opts Options) appModel {
	m := appModel{
		eng:       opts.Engine,
		logger:    opts.Logger,
		clipboard: opts.Clipboard,
		keys:      defaultKeyMap(),
		ids:       [2]catalog.ID{catalog.InProgress, catalog.Completed},
		width:     100,
		height:    30,
	}
	if m.logger == nil {
		m.logger = slog.New(slog.DiscardHandler)
	}
	if opts.Journal != nil {
		m.journal = opts.Journal
	}
	if m.clipboard == nil {
		m.clipboard = clipboardProvider{}
	}
	for i, id := range m.ids {
		m.panes[i] = newPane(id.Title())
	}

	m.input = textinput.New()
	m.input.Placeholder = "Name of the new cache"
	m.input.CharLimit = 200
	m.input.Width = 40

	if opts.Skipped > 0 {
		m.status = fmt.Sprintf("%d seed record(s) skipped", opts.Skipped)
	}
	m.refresh()
	m.resize()
	return m
}

func (m appModel) Init() tea.Cmd { return nil }

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case importResolvedMsg:
		return m.applyImport(msg)

	case sessionEndedMsg:
		return m.endSession(msg)

	case journalEntryMsg:
		if msg.ok {
			m.lastEntry = msg.entry.Describe()
		}
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case modeImportLine:
			return m.updateImportLine(msg)
		case modeHelp:
			if key.Matches(msg, m.keys.Quit) && msg.String() == "ctrl+c" {
				return m, tea.Quit
			}
			m.mode = modeNormal
			return m, nil
		}
		return m.updateNormal(msg)
	}
	return m, nil
}

func (m appModel) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		if m.session.Active() {
			m.session = m.eng.Abandon(m.session)
		}
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.mode = modeHelp
		return m, nil

	case key.Matches(msg, m.keys.SwitchPane):
		m.focus = 1 - m.focus
		return m, nil

	case key.Matches(msg, m.keys.PickUp):
		return m.pickUp()

	case key.Matches(msg, m.keys.DropAtRow):
		return m.dropInternal(m.selectedRow())

	case key.Matches(msg, m.keys.DropAtEnd):
		return m.dropInternal(nil)

	case key.Matches(msg, m.keys.Cancel):
		if m.session.Active() {
			name := displayName(m.session.Item())
			m.session = m.eng.Abandon(m.session)
			m.refresh()
			m.setStatus("cancelled "+name, false)
		}
		return m, nil

	case key.Matches(msg, m.keys.Paste):
		return m.dropExternal(dragdrop.ExternalSource{Provider: m.clipboard})

	case key.Matches(msg, m.keys.Import):
		m.mode = modeImportLine
		m.input.SetValue("")
		return m, m.input.Focus()
	}

	var cmd tea.Cmd
	m.panes[m.focus], cmd = m.panes[m.focus].Update(msg)
	return m, cmd
}

func (m appModel) updateImportLine(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = modeNormal
		m.input.Blur()
		return m, nil
	case tea.KeyEnter:
		text := m.input.Value()
		m.mode = modeNormal
		m.input.Blur()
		return m.dropExternal(dragdrop.ExternalText{Text: text})
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m appModel) pickUp() (tea.Model, tea.Cmd) {
	if m.session.Active() {
		m.setStatus("already carrying "+displayName(m.session.Item())+"; drop it or press esc", true)
		return m, nil
	}
	if m.pendingImports > 0 {
		m.setStatus("paste still in progress; try again when it lands", true)
		return m, nil
	}
	idx := m.panes[m.focus].Index()
	if len(m.panes[m.focus].Items()) == 0 {
		m.setStatus("nothing to pick up", true)
		return m, nil
	}
	s, err := m.eng.PickUp(m.ids[m.focus], idx)
	if err != nil {
		m.setStatus(err.Error(), true)
		return m, nil
	}
	m.session = s
	m.refresh()
	m.setStatus("picked up "+displayName(s.Item()), false)
	return m, nil
}

func (m appModel) dropInternal(row *int) (tea.Model, tea.Cmd) {
	if !m.session.Dragging() {
		m.setStatus("nothing picked up", true)
		return m, nil
	}
	dest := m.ids[m.focus]
	s, res, err := m.eng.Drop(m.session, dragdrop.InternalDrop(m.session, dest, row))
	if err != nil {
		m.setStatus(err.Error(), true)
		return m, nil
	}
	if res.Kind == dragdrop.KindRejected {
		m.setStatus("drop rejected", true)
		return m, nil
	}
	m.session = s
	m.refresh()
	m.selectRow(m.focus, res.Index)
	m.setStatus(fmt.Sprintf("%s %s %s %s", res.Kind, displayName(res.Item), glyphArrow(), dest.Title()), false)

	id := s.ID()
	ended := func() tea.Msg { return sessionEndedMsg{sessionID: id} }
	return m, tea.Batch(ended, m.lastEntryCmd())
}

func (m appModel) dropExternal(p dragdrop.Payload) (tea.Model, tea.Cmd) {
	dest := m.ids[m.focus]
	hint := ""
	if t, ok := p.(dragdrop.ExternalText); ok {
		hint = m.similarHint(t.Text)
	}
	_, res, err := m.eng.Drop(m.session, dragdrop.ExternalDrop(dest, m.selectedRow(), p))
	if err != nil {
		m.setStatus(err.Error(), true)
		return m, nil
	}
	switch {
	case res.Kind == dragdrop.KindRejected:
		m.setStatus("can't import while carrying "+displayName(m.session.Item()), true)
		return m, nil
	case res.Pending != nil:
		m.pendingImports++
		m.setStatus("pasting…", false)
		return m, resolveImportCmd(*res.Pending)
	}
	m.hint = hint
	m.refresh()
	m.selectRow(m.focus, res.Index)
	m.setStatus("imported "+displayName(res.Item), false)
	return m, m.lastEntryCmd()
}

func resolveImportCmd(p dragdrop.PendingImport) tea.Cmd {
	return func() tea.Msg {
		r, err := p.Resolve(context.Background())
		return importResolvedMsg{resolved: r, err: err}
	}
}

func (m appModel) applyImport(msg importResolvedMsg) (tea.Model, tea.Cmd) {
	if m.pendingImports > 0 {
		m.pendingImports--
	}
	if msg.err != nil {
		if errors.Is(msg.err, importer.ErrInvalidPayload) {
			m.logger.Warn("paste ignored", "err", msg.err)
		}
		m.setStatus("paste ignored: "+msg.err.Error(), true)
		return m, nil
	}
	hint := m.similarHint(msg.resolved.Item.Name)
	res, err := m.eng.ApplyImport(msg.resolved)
	if err != nil {
		m.setStatus(err.Error(), true)
		return m, nil
	}
	m.hint = hint
	m.refresh()
	for i, id := range m.ids {
		if id == res.Destination {
			m.selectRow(i, res.Index)
		}
	}
	m.setStatus("imported "+displayName(res.Item), false)
	return m, m.lastEntryCmd()
}

func (m appModel) endSession(msg sessionEndedMsg) (tea.Model, tea.Cmd) {
	if m.session.ID() != msg.sessionID {
		return m, nil
	}
	s, err := m.eng.End(m.session)
	m.session = s
	m.refresh()
	if err != nil {
		m.setStatus(err.Error(), true)
		return m, nil
	}
	return m, m.lastEntryCmd()
}

func (m appModel) lastEntryCmd() tea.Cmd {
	if m.journal == nil {
		return nil
	}
	j := m.journal
	return func() tea.Msg {
		e, ok, err := j.Last(context.Background())
		if err != nil {
			return nil
		}
		return journalEntryMsg{entry: e, ok: ok}
	}
}

func (m appModel) similarHint(name string) string {
	if other, ok := m.eng.Catalog().SimilarName(name, similarNameDistance); ok {
		return fmt.Sprintf("similar to existing %q", other)
	}
	return ""
}

func (m *appModel) setStatus(s string, isErr bool) {
	m.status = s
	m.statusErr = isErr
}

// selectedRow is the drop row in the focused pane; nil when the pane is empty.
func (m appModel) selectedRow() *int {
	if len(m.panes[m.focus].Items()) == 0 {
		return nil
	}
	return dragdrop.Row(m.panes[m.focus].Index())
}

func (m *appModel) selectRow(pane, row int) {
	if row >= 0 && row < len(m.panes[pane].Items()) {
		m.panes[pane].Select(row)
	}
}

// refresh rebuilds both panes from the catalog, keeping each selection.
func (m *appModel) refresh() {
	snap := m.eng.Catalog().Snapshot()
	for i, id := range m.ids {
		carried := -1
		if m.session.Active() && m.session.Source() == id {
			carried = m.session.SourceIndex()
		}
		sel := m.panes[i].Index()
		m.panes[i].SetItems(itemsFor(snap[id], carried))
		if n := len(snap[id]); n > 0 {
			if sel >= n {
				sel = n - 1
			}
			m.panes[i].Select(sel)
		}
	}
}

func (m *appModel) resize() {
	paneW, _, bodyH := m.layout()
	for i := range m.panes {
		m.panes[i].SetSize(paneW-2, bodyH-3)
	}
}

// layout splits the width into two list panes and a detail pane.
func (m appModel) layout() (paneW, detailW, bodyH int) {
	w := m.width
	if w < 60 {
		w = 60
	}
	paneW = w * 3 / 10
	detailW = w - 2*paneW
	bodyH = m.height - 4
	if bodyH < 8 {
		bodyH = 8
	}
	return paneW, detailW, bodyH
}

func (m appModel) selected() *model.Geocache {
	it, ok := m.panes[m.focus].SelectedItem().(geocacheItem)
	if !ok {
		return nil
	}
	g := it.cache
	return &g
}

func (m appModel) View() string {
	paneW, detailW, bodyH := m.layout()

	header := lipgloss.NewStyle().Bold(true).Render("cachemaker") + "  " +
		styleMuted().Render(fmt.Sprintf("%d caches %s %s", m.eng.Catalog().Total(), glyphSeparator(), m.proposal()))

	var cols []string
	for i, id := range m.ids {
		focused := i == m.focus
		title := stylePaneTitle(focused).Render(fmt.Sprintf("%s (%d)", id.Title(), len(m.panes[i].Items())))
		body := m.panes[i].View()
		if len(m.panes[i].Items()) == 0 {
			body = styleMuted().Render("  empty")
		}
		cols = append(cols, stylePane(focused).Width(paneW-2).Height(bodyH-2).Render(title+"\n"+body))
	}

	var right string
	if m.mode == modeHelp {
		body, _ := docs.Get("keys")
		right = lipgloss.NewStyle().Width(detailW).Height(bodyH).Render(renderMarkdown(body, detailW-2))
	} else {
		right = renderDetail(m.selected(), detailW, bodyH)
	}
	body := lipgloss.JoinHorizontal(lipgloss.Top, append(cols, right)...)

	return strings.Join([]string{header, body, m.footer()}, "\n")
}

// proposal is the operation a drop would perform right now.
func (m appModel) proposal() string {
	switch dragdrop.Propose(m.session, 1) {
	case dragdrop.OpMove:
		return "carrying " + displayName(m.session.Item()) + " (move)"
	case dragdrop.OpCancel:
		return "drop cancelled"
	default:
		return "idle (paste copies)"
	}
}

func (m appModel) footer() string {
	if m.mode == modeImportLine {
		return "import: " + m.input.View()
	}
	var parts []string
	if m.status != "" {
		if m.statusErr {
			parts = append(parts, styleError().Render(m.status))
		} else {
			parts = append(parts, m.status)
		}
	}
	if m.hint != "" {
		parts = append(parts, styleMuted().Render(m.hint))
	}
	if m.lastEntry != "" {
		parts = append(parts, styleMuted().Render("last: "+m.lastEntry))
	}
	if len(parts) == 0 {
		var hs []string
		for _, b := range m.keys.footer() {
			hs = append(hs, b.Help().Key+": "+b.Help().Desc)
		}
		return styleMuted().Render(strings.Join(hs, "  "))
	}
	return strings.Join(parts, "  "+glyphSeparator()+"  ")
}
