// Package viewstate tracks the selected event, tab and row together with the
// rows loaded for each tab of the selected event.
//
// Every load is issued against a Ticket. A ticket is only honoured while the
// generation it was cut from is still current; selecting another event or
// going back bumps the generation, so late responses for an earlier selection
// are discarded instead of merged.
package viewstate

import (
	"slices"
	"sync"

	"github.com/okian/bassboard/internal/domain/model"
)

// View names the screen the dashboard is showing.
type View string

// Views.
const (
	ViewEvents View = "events"
	ViewDetail View = "detail"
)

// NoSelection is the selected index when no row is selected.
const NoSelection = -1

// Ticket identifies one in-flight tab load.
type Ticket struct {
	EventID    string    `json:"event_id"`
	Tab        model.Tab `json:"tab"`
	Generation uint64    `json:"generation"`
}

type tabState struct {
	rows    []model.AnglerRow
	loaded  bool
	pending bool
}

// ViewState is safe for concurrent use.
type ViewState struct {
	mu sync.RWMutex

	tabs       []model.Tab
	generation uint64
	view       View
	eventID    string
	tab        model.Tab
	selected   int
	state      map[model.Tab]*tabState
}

// Option configures a ViewState.
type Option func(*ViewState)

// WithTabs sets the enabled tabs in display order.
func WithTabs(tabs ...model.Tab) Option {
	return func(v *ViewState) {
		if len(tabs) > 0 {
			v.tabs = slices.Clone(tabs)
		}
	}
}

// WithDefaultTab sets the tab shown before the user picks one.
func WithDefaultTab(tab model.Tab) Option {
	return func(v *ViewState) {
		if tab != "" {
			v.tab = tab
		}
	}
}

// New returns an empty ViewState on the events view.
func New(opts ...Option) *ViewState {
	v := &ViewState{
		tabs:     slices.Clone(model.AllTabs),
		view:     ViewEvents,
		selected: NoSelection,
	}
	for _, opt := range opts {
		opt(v)
	}
	if v.tab == "" || !slices.Contains(v.tabs, v.tab) {
		v.tab = v.tabs[0]
	}
	v.state = freshTabs(v.tabs)
	return v
}

func freshTabs(tabs []model.Tab) map[model.Tab]*tabState {
	m := make(map[model.Tab]*tabState, len(tabs))
	for _, t := range tabs {
		m[t] = &tabState{}
	}
	return m
}

// Tabs returns the enabled tabs in display order.
func (v *ViewState) Tabs() []model.Tab {
	return slices.Clone(v.tabs)
}

// HasTab reports whether tab is enabled.
func (v *ViewState) HasTab(tab model.Tab) bool {
	return slices.Contains(v.tabs, tab)
}

// SelectEvent switches to the detail view of id. All tab rows are cleared and
// marked not loaded, the row selection is cleared and the generation moves on.
// The returned ticket loads the current tab and is already marked pending.
func (v *ViewState) SelectEvent(id string) Ticket {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.generation++
	v.eventID = id
	v.view = ViewDetail
	v.selected = NoSelection
	v.state = freshTabs(v.tabs)
	return v.claimLocked(v.tab)
}

// SelectTab makes tab current. It reports whether the caller must load it:
// false when the tab is unknown, no event is selected, or its rows are
// already loaded or pending for the current event.
func (v *ViewState) SelectTab(tab model.Tab) (Ticket, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !slices.Contains(v.tabs, tab) {
		return Ticket{}, false
	}
	if tab != v.tab {
		v.tab = tab
		v.selected = NoSelection
	}
	return v.requestLocked(tab)
}

// Request claims a load for tab if it is neither loaded nor pending. Used to
// fan out the non-current tabs after an event is selected.
func (v *ViewState) Request(tab model.Tab) (Ticket, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !slices.Contains(v.tabs, tab) {
		return Ticket{}, false
	}
	return v.requestLocked(tab)
}

func (v *ViewState) requestLocked(tab model.Tab) (Ticket, bool) {
	if v.eventID == "" {
		return Ticket{}, false
	}
	st := v.state[tab]
	if st.loaded || st.pending {
		return Ticket{}, false
	}
	return v.claimLocked(tab), true
}

func (v *ViewState) claimLocked(tab model.Tab) Ticket {
	v.state[tab].pending = true
	return Ticket{EventID: v.eventID, Tab: tab, Generation: v.generation}
}

// Current reports whether t still matches the selection it was cut for.
func (v *ViewState) Current(t Ticket) bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.currentLocked(t)
}

func (v *ViewState) currentLocked(t Ticket) bool {
	return t.Generation == v.generation && t.EventID == v.eventID && v.eventID != ""
}

// Apply stores b as the rows of t.Tab. It returns ErrStaleResponse, and leaves
// the state untouched, when t is no longer current. A current ticket answered
// with a board of another event returns ErrEventMismatch and releases the
// pending mark so the tab can be requested again.
func (v *ViewState) Apply(t Ticket, b model.Board) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.currentLocked(t) {
		return ErrStaleResponse
	}
	if b.EventID != "" && b.EventID != t.EventID {
		if st, ok := v.state[t.Tab]; ok {
			st.pending = false
		}
		return ErrEventMismatch
	}
	st, ok := v.state[t.Tab]
	if !ok {
		return ErrStaleResponse
	}
	st.rows = slices.Clone(b.Rows)
	st.loaded = true
	st.pending = false

	if t.Tab == v.tab && v.selected >= len(st.rows) {
		v.selected = NoSelection
	}
	return nil
}

// Fail releases the pending mark of t so the tab can be requested again.
// Stale tickets are ignored.
func (v *ViewState) Fail(t Ticket) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.currentLocked(t) {
		return
	}
	if st, ok := v.state[t.Tab]; ok {
		st.pending = false
	}
}

// Pending reports whether a load for tab is in flight.
func (v *ViewState) Pending(tab model.Tab) bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	st, ok := v.state[tab]
	return ok && st.pending
}

// Loaded reports whether tab has rows for the current event.
func (v *ViewState) Loaded(tab model.Tab) bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	st, ok := v.state[tab]
	return ok && st.loaded
}

// SelectRow selects index i of the current rows. Out of range indexes are
// ignored and reported as false.
func (v *ViewState) SelectRow(i int) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	if i < 0 || i >= len(v.state[v.tab].rows) {
		return false
	}
	v.selected = i
	return true
}

// ClearRow drops the row selection.
func (v *ViewState) ClearRow() {
	v.mu.Lock()
	v.selected = NoSelection
	v.mu.Unlock()
}

// Back returns to the events view and forgets the selected event. Loads still
// in flight become stale.
func (v *ViewState) Back() {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.generation++
	v.eventID = ""
	v.view = ViewEvents
	v.selected = NoSelection
	v.state = freshTabs(v.tabs)
}

// EventID returns the selected event, or "" on the events view.
func (v *ViewState) EventID() string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.eventID
}

// Tab returns the current tab.
func (v *ViewState) Tab() model.Tab {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.tab
}

// CurrentRows returns the rows of the current tab, or an empty slice when they
// are not loaded.
func (v *ViewState) CurrentRows() []model.AnglerRow {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.rowsLocked()
}

func (v *ViewState) rowsLocked() []model.AnglerRow {
	st := v.state[v.tab]
	if st == nil || len(st.rows) == 0 {
		return []model.AnglerRow{}
	}
	return slices.Clone(st.rows)
}

// SelectedIndex returns the selected row index or NoSelection.
func (v *ViewState) SelectedIndex() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.selected
}

// SelectedRow returns the selected row.
func (v *ViewState) SelectedRow() (model.AnglerRow, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	if v.selected == NoSelection {
		return model.AnglerRow{}, false
	}
	return v.state[v.tab].rows[v.selected], true
}
