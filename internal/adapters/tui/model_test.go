package tui

import (
	"context"
	"errors"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	. "github.com/smartystreets/goconvey/convey"

	service "github.com/okian/bassboard/internal/app"
	"github.com/okian/bassboard/internal/domain/model"
	"github.com/okian/bassboard/internal/domain/viewstate"
)

type fakeController struct {
	mu        sync.Mutex
	loads     int
	loadErr   error
	events    []string
	tabs      []model.Tab
	rows      []int
	backs     int
	available []model.Tab
}

func (f *fakeController) LoadEvents(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads++
	return f.loadErr
}

func (f *fakeController) SelectEvent(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, id)
	return nil
}

func (f *fakeController) SelectTab(_ context.Context, tab model.Tab) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tabs = append(f.tabs, tab)
	return nil
}

func (f *fakeController) SelectRow(_ context.Context, i int) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows = append(f.rows, i)
	return true
}

func (f *fakeController) Back(context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.backs++
}

func (f *fakeController) Tabs() []model.Tab { return f.available }

func press(m Model, k tea.KeyMsg) (Model, tea.Cmd) {
	next, cmd := m.Update(k)
	return next.(Model), cmd
}

func send(m Model, msg tea.Msg) Model {
	next, _ := m.Update(msg)
	return next.(Model)
}

// run executes cmd and any batch it expands to.
func run(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, run(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

var (
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEsc}
	keyTab   = tea.KeyMsg{Type: tea.KeyTab}
	keyDown  = tea.KeyMsg{Type: tea.KeyDown}
)

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func testEvents() []model.Event {
	return []model.Event{
		{ID: "E2", Name: "Spring Open", Date: model.On(2024, 4, 20), Trail: "North"},
		{ID: "E1", Name: "Winter Classic", Date: model.BadDate("2024-13-40")},
	}
}

func detailSnapshot(tab model.Tab) viewstate.Snapshot {
	return viewstate.Snapshot{
		View:    viewstate.ViewDetail,
		EventID: "E2",
		Tab:     tab,
		Tabs: []viewstate.TabStatus{
			{Tab: model.TabTotal, Label: "Total", Loaded: true, Rows: 2},
			{Tab: model.TabDay1, Label: "Day 1", Pending: true},
		},
		Rows: []model.AnglerRow{
			{Rank: model.Num(1), Angler: "Ann", TotalLength: model.Num(45.5), Fish: []float64{15.25, 14}},
			{Rank: model.Num(2), Angler: "Bo", TotalLength: model.BadNumber("n/a")},
		},
		SelectedIndex: viewstate.NoSelection,
	}
}

func TestModelEvents(t *testing.T) {
	Convey("Given a fresh model", t, func() {
		ctrl := &fakeController{available: model.AllTabs}
		m := New(context.Background(), ctrl)

		Convey("Then Init loads the events", func() {
			run(m.Init())
			So(ctrl.loads, ShouldEqual, 1)
			So(m.View(), ShouldContainSubstring, "No events loaded.")
		})

		Convey("When the events arrive", func() {
			m = send(m, eventsMsg{events: testEvents()})

			Convey("Then they are listed with formatted dates", func() {
				v := m.View()
				So(v, ShouldContainSubstring, "Events (2)")
				So(v, ShouldContainSubstring, "Spring Open")
				So(v, ShouldContainSubstring, "Apr 20, 2024")
				So(v, ShouldContainSubstring, "2024-13-40")
			})

			Convey("Then enter opens the event under the cursor", func() {
				_, cmd := press(m, keyEnter)
				run(cmd)
				So(ctrl.events, ShouldResemble, []string{"E2"})
			})

			Convey("Then moving down and pressing enter opens the next event", func() {
				m, _ = press(m, keyDown)
				_, cmd := press(m, keyEnter)
				run(cmd)
				So(ctrl.events, ShouldResemble, []string{"E1"})
			})

			Convey("Then r reloads the list", func() {
				_, cmd := press(m, runes("r"))
				run(cmd)
				So(ctrl.loads, ShouldEqual, 1)
			})
		})

		Convey("When loading fails", func() {
			ctrl.loadErr = errors.New("HTTP 503")
			msgs := run(m.Init())
			for _, msg := range msgs {
				m = send(m, msg)
			}

			Convey("Then the error is shown", func() {
				So(m.View(), ShouldContainSubstring, "HTTP 503")
			})
		})

		Convey("When the service already reported the failure", func() {
			m = send(m, statusMsg{status: service.Status{Message: "Error loading events: HTTP 503", Error: true}})
			m = send(m, errMsg{err: errors.New("HTTP 503")})

			Convey("Then its message is kept", func() {
				So(m.View(), ShouldContainSubstring, "Error loading events: HTTP 503")
			})
		})

		Convey("Then q quits", func() {
			_, cmd := press(m, runes("q"))
			So(cmd, ShouldNotBeNil)
			_, ok := cmd().(tea.QuitMsg)
			So(ok, ShouldBeTrue)
		})
	})
}

func TestModelDetail(t *testing.T) {
	Convey("Given a model showing an event", t, func() {
		ctrl := &fakeController{available: model.AllTabs}
		m := New(context.Background(), ctrl)
		m = send(m, eventsMsg{events: testEvents()})
		m = send(m, viewMsg{snap: detailSnapshot(model.TabTotal)})

		Convey("Then the header, tabs and rows are rendered", func() {
			v := m.View()
			So(v, ShouldContainSubstring, "Spring Open")
			So(v, ShouldContainSubstring, "North")
			So(v, ShouldContainSubstring, "1 Total")
			So(v, ShouldContainSubstring, "2 Day 1")
			So(v, ShouldContainSubstring, "Ann")
			So(v, ShouldContainSubstring, "45.50")
			So(v, ShouldContainSubstring, "15.25 14.00")
		})

		Convey("Then a number key selects that tab", func() {
			_, cmd := press(m, runes("2"))
			run(cmd)
			So(ctrl.tabs, ShouldResemble, []model.Tab{model.TabDay1})
		})

		Convey("Then tab cycles to the next tab", func() {
			_, cmd := press(m, keyTab)
			run(cmd)
			So(ctrl.tabs, ShouldResemble, []model.Tab{model.TabDay1})
		})

		Convey("Then a pending tab shows a loading line", func() {
			m = send(m, viewMsg{snap: func() viewstate.Snapshot {
				s := detailSnapshot(model.TabDay1)
				s.Rows = nil
				return s
			}()})
			So(m.View(), ShouldContainSubstring, "Loading…")
		})

		Convey("When enter is pressed on a row", func() {
			m, cmd := press(m, keyEnter)
			run(cmd)

			Convey("Then the row is selected", func() {
				So(ctrl.rows, ShouldResemble, []int{0})
			})

			Convey("And the snapshot carries it, the detail pane is shown", func() {
				s := detailSnapshot(model.TabTotal)
				s.SelectedIndex = 0
				s.Selected = &s.Rows[0]
				m = send(m, viewMsg{snap: s})
				v := m.View()
				So(v, ShouldContainSubstring, "AOY Points")
				So(v, ShouldContainSubstring, "Total Length")

				Convey("And moving down selects the next row", func() {
					_, cmd := press(m, keyDown)
					run(cmd)
					So(ctrl.rows, ShouldResemble, []int{0, 1})
				})

				Convey("And esc closes the pane before going back", func() {
					m, cmd := press(m, keyEsc)
					So(cmd, ShouldBeNil)
					So(m.View(), ShouldNotContainSubstring, "AOY Points")

					_, cmd = press(m, keyEsc)
					run(cmd)
					So(ctrl.backs, ShouldEqual, 1)
				})
			})
		})

		Convey("Then r reloads the event", func() {
			_, cmd := press(m, runes("r"))
			run(cmd)
			So(ctrl.events, ShouldResemble, []string{"E2"})
		})
	})
}

func TestRows(t *testing.T) {
	Convey("Given a row with absent and unparseable values", t, func() {
		row := boardRow(model.AnglerRow{Angler: "Cy", BigBass: model.BadNumber("big"), Rank: model.Num(3)})

		Convey("Then both render as the placeholder", func() {
			So(row[0], ShouldEqual, "3")
			So(row[1], ShouldEqual, "Cy")
			So(row[3], ShouldEqual, "–")
			So(row[4], ShouldEqual, "–")
			So(row[7], ShouldEqual, "–")
		})
	})

	Convey("Given an event without a name", t, func() {
		row := eventRow(model.Event{ID: "E9"})

		Convey("Then the id is shown", func() {
			So(row[1], ShouldEqual, "E9")
			So(row[0], ShouldEqual, "–")
		})
	})
}

func TestSink(t *testing.T) {
	Convey("Given a sink", t, func() {
		var got []tea.Msg
		s := &Sink{send: func(msg tea.Msg) { got = append(got, msg) }}

		s.Events(testEvents())
		s.View(detailSnapshot(model.TabTotal))
		s.Status(service.Status{Message: "Loaded 2 events."})

		Convey("Then every call becomes a message", func() {
			So(len(got), ShouldEqual, 3)
			So(got[0], ShouldHaveSameTypeAs, eventsMsg{})
			So(got[1], ShouldHaveSameTypeAs, viewMsg{})
			So(got[2].(statusMsg).status.Message, ShouldEqual, "Loaded 2 events.")
		})
	})
}
