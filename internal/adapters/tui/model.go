// Package tui is the terminal render sink. It shows the events list, the
// leaderboard tabs of the selected event and the detail of a selected row,
// and drives the service from key presses.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	service "github.com/okian/bassboard/internal/app"
	"github.com/okian/bassboard/internal/domain/format"
	"github.com/okian/bassboard/internal/domain/model"
	"github.com/okian/bassboard/internal/domain/viewstate"
)

// Controller is the part of the service the TUI drives.
type Controller interface {
	LoadEvents(ctx context.Context) error
	SelectEvent(ctx context.Context, eventID string) error
	SelectTab(ctx context.Context, tab model.Tab) error
	SelectRow(ctx context.Context, index int) bool
	Back(ctx context.Context)
	Tabs() []model.Tab
}

type (
	eventsMsg struct{ events []model.Event }
	viewMsg   struct{ snap viewstate.Snapshot }
	statusMsg struct{ status service.Status }
	errMsg    struct{ err error }
)

const (
	chromeHeight   = 8
	minTableHeight = 3
)

var eventColumns = []table.Column{
	{Title: "Date", Width: 13},
	{Title: "Event", Width: 30},
	{Title: "Trail", Width: 16},
	{Title: "Season", Width: 8},
	{Title: "Winner", Width: 20},
	{Title: "Anglers", Width: 8},
}

var boardColumns = []table.Column{
	{Title: "#", Width: 4},
	{Title: "Angler", Width: 24},
	{Title: "State", Width: 6},
	{Title: "Total", Width: 8},
	{Title: "Big Bass", Width: 9},
	{Title: "Limit %", Width: 8},
	{Title: "AOY", Width: 6},
	{Title: "Fish", Width: 34},
}

// Model is the bubbletea model.
type Model struct {
	ctx  context.Context
	ctrl Controller
	tabs []model.Tab
	keys keyMap
	help help.Model

	events []model.Event
	snap   viewstate.Snapshot
	status service.Status

	eventsTable table.Model
	boardTable  table.Model
	showDetail  bool

	width  int
	height int
}

// New creates the model. ctx bounds every service call it makes.
func New(ctx context.Context, ctrl Controller) Model {
	return Model{
		ctx:         ctx,
		ctrl:        ctrl,
		tabs:        ctrl.Tabs(),
		keys:        keys,
		help:        help.New(),
		snap:        viewstate.Snapshot{View: viewstate.ViewEvents, SelectedIndex: viewstate.NoSelection},
		eventsTable: newTable(eventColumns),
		boardTable:  newTable(boardColumns),
	}
}

func newTable(cols []table.Column) table.Model {
	width := 0
	for _, c := range cols {
		width += c.Width + 2
	}
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(colorMuted).
		BorderBottom(true).
		Bold(true)
	styles.Selected = styles.Selected.Foreground(colorActive).Bold(true)
	return table.New(
		table.WithColumns(cols),
		table.WithFocused(true),
		table.WithHeight(15),
		table.WithWidth(width),
		table.WithStyles(styles),
	)
}

// Init loads the events list.
func (m Model) Init() tea.Cmd {
	return m.loadEvents()
}

func (m Model) loadEvents() tea.Cmd {
	ctrl, ctx := m.ctrl, m.ctx
	return func() tea.Msg {
		if err := ctrl.LoadEvents(ctx); err != nil {
			return errMsg{err: err}
		}
		return nil
	}
}

func (m Model) selectEvent(id string) tea.Cmd {
	ctrl, ctx := m.ctrl, m.ctx
	return func() tea.Msg {
		if err := ctrl.SelectEvent(ctx, id); err != nil {
			return errMsg{err: err}
		}
		return nil
	}
}

func (m Model) selectTab(tab model.Tab) tea.Cmd {
	ctrl, ctx := m.ctrl, m.ctx
	return func() tea.Msg {
		if err := ctrl.SelectTab(ctx, tab); err != nil {
			return errMsg{err: err}
		}
		return nil
	}
}

func (m Model) selectRow(index int) tea.Cmd {
	ctrl, ctx := m.ctrl, m.ctx
	return func() tea.Msg {
		ctrl.SelectRow(ctx, index)
		return nil
	}
}

func (m Model) back() tea.Cmd {
	ctrl, ctx := m.ctrl, m.ctx
	return func() tea.Msg {
		ctrl.Back(ctx)
		return nil
	}
}

// Update handles all messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventsMsg:
		m.events = msg.events
		m.eventsTable.SetRows(eventRows(msg.events))
		if n := len(msg.events); n > 0 && m.eventsTable.Cursor() >= n {
			m.eventsTable.SetCursor(0)
		}
		return m, nil

	case viewMsg:
		m.applySnapshot(msg.snap)
		return m, nil

	case statusMsg:
		m.status = msg.status
		return m, nil

	case errMsg:
		// the service reports its own failures through the status line
		if !m.status.Error {
			m.status = service.Status{Message: msg.err.Error(), Error: true}
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		h := max(msg.Height-chromeHeight, minTableHeight)
		m.eventsTable.SetHeight(h)
		m.boardTable.SetHeight(h)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	if m.snap.View == viewstate.ViewEvents {
		switch {
		case key.Matches(msg, m.keys.Reload):
			return m, m.loadEvents()
		case key.Matches(msg, m.keys.Enter):
			i := m.eventsTable.Cursor()
			if i < 0 || i >= len(m.events) {
				return m, nil
			}
			return m, m.selectEvent(m.events[i].ID)
		}
		var cmd tea.Cmd
		m.eventsTable, cmd = m.eventsTable.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Back):
		if m.showDetail {
			m.showDetail = false
			return m, nil
		}
		return m, m.back()
	case key.Matches(msg, m.keys.Reload):
		return m, m.selectEvent(m.snap.EventID)
	case key.Matches(msg, m.keys.NextTab):
		return m, m.cycleTab(1)
	case key.Matches(msg, m.keys.PrevTab):
		return m, m.cycleTab(-1)
	case key.Matches(msg, m.keys.Enter):
		if len(m.snap.Rows) == 0 {
			return m, nil
		}
		m.showDetail = true
		return m, m.selectRow(m.boardTable.Cursor())
	}
	if i, ok := m.keys.tabIndex(msg); ok {
		if i < len(m.tabs) {
			return m, m.selectTab(m.tabs[i])
		}
		return m, nil
	}

	before := m.boardTable.Cursor()
	var cmd tea.Cmd
	m.boardTable, cmd = m.boardTable.Update(msg)
	if m.showDetail && m.boardTable.Cursor() != before {
		cmd = tea.Batch(cmd, m.selectRow(m.boardTable.Cursor()))
	}
	return m, cmd
}

func (m Model) cycleTab(step int) tea.Cmd {
	if len(m.tabs) == 0 {
		return nil
	}
	cur := 0
	for i, t := range m.tabs {
		if t == m.snap.Tab {
			cur = i
			break
		}
	}
	next := (cur + step + len(m.tabs)) % len(m.tabs)
	return m.selectTab(m.tabs[next])
}

func (m *Model) applySnapshot(s viewstate.Snapshot) {
	tabChanged := s.Tab != m.snap.Tab || s.EventID != m.snap.EventID
	m.snap = s
	if s.View == viewstate.ViewEvents || s.Selected == nil {
		m.showDetail = false
	}
	m.boardTable.SetRows(boardRows(s.Rows))
	switch {
	case len(s.Rows) == 0:
	case s.SelectedIndex != viewstate.NoSelection:
		m.boardTable.SetCursor(s.SelectedIndex)
	case tabChanged || m.boardTable.Cursor() >= len(s.Rows):
		m.boardTable.SetCursor(0)
	}
}

// View renders the UI.
func (m Model) View() string {
	sections := []string{TitleStyle.Render("Bassboard")}

	switch m.snap.View {
	case viewstate.ViewDetail:
		sections = append(sections, m.renderEventHeader(), m.renderTabBar())
		sections = append(sections, m.renderBoard())
		if m.showDetail && m.snap.Selected != nil {
			sections = append(sections, renderRowDetail(*m.snap.Selected))
		}
	default:
		if len(m.events) == 0 {
			sections = append(sections, SubtitleStyle.Render("No events loaded."))
		} else {
			sections = append(sections, SubtitleStyle.Render(fmt.Sprintf("Events (%d)", len(m.events))), m.eventsTable.View())
		}
	}

	if m.status.Error {
		sections = append(sections, ErrorStyle.Render(m.status.Message))
	} else if m.status.Message != "" {
		sections = append(sections, StatusBarStyle.Render(m.status.Message))
	}
	sections = append(sections, m.help.View(m.keys))
	return strings.Join(sections, "\n")
}

func (m Model) renderEventHeader() string {
	e := model.Event{ID: m.snap.EventID}
	for _, ev := range m.events {
		if ev.ID == m.snap.EventID {
			e = ev
			break
		}
	}
	parts := []string{format.Date(e.Date)}
	if e.Trail != "" {
		parts = append(parts, e.Trail)
	}
	if e.Winner != "" {
		parts = append(parts, "Winner: "+e.Winner)
	}
	return TitleStyle.Render(e.DisplayName()) + SubtitleStyle.Render(strings.Join(parts, " · "))
}

func (m Model) renderTabBar() string {
	parts := make([]string, 0, len(m.snap.Tabs))
	for i, ts := range m.snap.Tabs {
		label := fmt.Sprintf("%d %s", i+1, ts.Label)
		switch {
		case ts.Pending:
			label += PendingMarkStyle.Render(" …")
		case ts.Loaded:
			label += LoadedMarkStyle.Render(fmt.Sprintf(" (%d)", ts.Rows))
		}
		if ts.Tab == m.snap.Tab {
			parts = append(parts, ActiveTabStyle.Render(label))
		} else {
			parts = append(parts, InactiveTabStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Bottom, parts...)
}

func (m Model) renderBoard() string {
	for _, ts := range m.snap.Tabs {
		if ts.Tab != m.snap.Tab {
			continue
		}
		switch {
		case ts.Pending && ts.Rows == 0:
			return SubtitleStyle.Render("Loading…")
		case !ts.Loaded && !ts.Pending:
			return SubtitleStyle.Render("Not loaded.")
		case ts.Rows == 0:
			return SubtitleStyle.Render("No anglers.")
		}
	}
	return m.boardTable.View()
}

func renderRowDetail(r model.AnglerRow) string {
	lines := [][2]string{
		{"Rank", format.Integer(r.Rank)},
		{"Angler", format.Text(r.Angler)},
		{"State", format.Text(r.State)},
		{"Day", format.Text(r.Day)},
		{"Total Length", format.Length(r.TotalLength)},
		{"Big Bass", format.Length(r.BigBass)},
		{"Limit %", format.Length(r.LimitPercent)},
		{"AOY Points", format.Length(r.AOYPoints)},
		{"Fish", format.Fish(r.Fish)},
		{"Profile", format.Text(r.URL)},
	}
	var b strings.Builder
	for i, l := range lines {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(DetailLabelStyle.Render(l[0]))
		b.WriteString(l[1])
	}
	return DetailStyle.Render(b.String())
}

func eventRows(events []model.Event) []table.Row {
	rows := make([]table.Row, len(events))
	for i, e := range events {
		rows[i] = eventRow(e)
	}
	return rows
}

func eventRow(e model.Event) table.Row {
	return table.Row{
		format.Date(e.Date),
		e.DisplayName(),
		format.Text(e.Trail),
		format.Text(e.Season),
		format.Text(e.Winner),
		format.Integer(e.Anglers),
	}
}

func boardRows(rows []model.AnglerRow) []table.Row {
	out := make([]table.Row, len(rows))
	for i, r := range rows {
		out[i] = boardRow(r)
	}
	return out
}

func boardRow(r model.AnglerRow) table.Row {
	return table.Row{
		format.Integer(r.Rank),
		format.Text(r.Angler),
		format.Text(r.State),
		format.Length(r.TotalLength),
		format.Length(r.BigBass),
		format.Length(r.LimitPercent),
		format.Length(r.AOYPoints),
		format.Fish(r.Fish),
	}
}
