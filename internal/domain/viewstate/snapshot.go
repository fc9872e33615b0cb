package viewstate

import "github.com/okian/bassboard/internal/domain/model"

// TabStatus summarises one tab of the selected event.
type TabStatus struct {
	Tab     model.Tab `json:"tab"`
	Label   string    `json:"label"`
	Loaded  bool      `json:"loaded"`
	Pending bool      `json:"pending"`
	Rows    int       `json:"rows"`
}

// Snapshot is a consistent copy of the view taken under one lock.
type Snapshot struct {
	View          View              `json:"view"`
	EventID       string            `json:"event_id,omitempty"`
	Tab           model.Tab         `json:"tab"`
	Generation    uint64            `json:"generation"`
	Tabs          []TabStatus       `json:"tabs"`
	Rows          []model.AnglerRow `json:"rows"`
	SelectedIndex int               `json:"selected_index"`
	Selected      *model.AnglerRow  `json:"selected,omitempty"`
}

// Snapshot copies the whole view.
func (v *ViewState) Snapshot() Snapshot {
	v.mu.RLock()
	defer v.mu.RUnlock()

	s := Snapshot{
		View:          v.view,
		EventID:       v.eventID,
		Tab:           v.tab,
		Generation:    v.generation,
		Tabs:          make([]TabStatus, 0, len(v.tabs)),
		Rows:          v.rowsLocked(),
		SelectedIndex: v.selected,
	}
	for _, t := range v.tabs {
		st := v.state[t]
		s.Tabs = append(s.Tabs, TabStatus{
			Tab:     t,
			Label:   t.Label(),
			Loaded:  st.loaded,
			Pending: st.pending,
			Rows:    len(st.rows),
		})
	}
	if v.selected != NoSelection {
		row := s.Rows[v.selected]
		s.Selected = &row
	}
	return s
}
