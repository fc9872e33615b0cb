package viewstate

import (
	"errors"
	"sync"
	"testing"

	"github.com/okian/bassboard/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func rows(names ...string) []model.AnglerRow {
	out := make([]model.AnglerRow, len(names))
	for i, n := range names {
		out[i] = model.AnglerRow{Rank: model.Num(float64(i + 1)), Angler: n}
	}
	return out
}

func TestSelectEvent(t *testing.T) {
	Convey("Given a fresh view state", t, func() {
		v := New()

		Convey("Then it starts on the events view with nothing loaded", func() {
			So(v.Snapshot().View, ShouldEqual, ViewEvents)
			So(v.EventID(), ShouldEqual, "")
			So(v.Tab(), ShouldEqual, model.TabTotal)
			So(v.CurrentRows(), ShouldBeEmpty)
			So(v.SelectedIndex(), ShouldEqual, NoSelection)
		})

		Convey("When an event is selected", func() {
			tk := v.SelectEvent("E1")

			Convey("Then the current tab is claimed", func() {
				So(tk.EventID, ShouldEqual, "E1")
				So(tk.Tab, ShouldEqual, model.TabTotal)
				So(v.Pending(model.TabTotal), ShouldBeTrue)
				So(v.Snapshot().View, ShouldEqual, ViewDetail)
			})

			Convey("And its rows arrive", func() {
				So(v.Apply(tk, model.Board{EventID: "E1", Tab: model.TabTotal, Rows: rows("a", "b")}), ShouldBeNil)

				Convey("Then they are current", func() {
					So(len(v.CurrentRows()), ShouldEqual, 2)
					So(v.Loaded(model.TabTotal), ShouldBeTrue)
					So(v.Pending(model.TabTotal), ShouldBeFalse)
				})

				Convey("And another event is selected", func() {
					v.SelectRow(1)
					v.SelectEvent("E2")

					Convey("Then every tab is cleared and the selection is empty", func() {
						So(v.CurrentRows(), ShouldBeEmpty)
						So(v.Loaded(model.TabTotal), ShouldBeFalse)
						So(v.SelectedIndex(), ShouldEqual, NoSelection)
						So(v.EventID(), ShouldEqual, "E2")
					})
				})
			})
		})
	})
}

func TestStaleResponses(t *testing.T) {
	Convey("Given a load pending for E1", t, func() {
		v := New()
		old := v.SelectEvent("E1")

		Convey("When E2 is selected before the E1 load resolves", func() {
			fresh := v.SelectEvent("E2")
			So(v.Apply(fresh, model.Board{EventID: "E2", Rows: rows("x")}), ShouldBeNil)

			err := v.Apply(old, model.Board{EventID: "E1", Rows: rows("a", "b", "c")})

			Convey("Then the E1 rows are discarded", func() {
				So(errors.Is(err, ErrStaleResponse), ShouldBeTrue)
				So(v.EventID(), ShouldEqual, "E2")
				So(len(v.CurrentRows()), ShouldEqual, 1)
				So(v.CurrentRows()[0].Angler, ShouldEqual, "x")
			})
		})

		Convey("When the same event is selected again", func() {
			again := v.SelectEvent("E1")

			Convey("Then the earlier ticket is still stale", func() {
				So(errors.Is(v.Apply(old, model.Board{EventID: "E1"}), ErrStaleResponse), ShouldBeTrue)
				So(v.Pending(model.TabTotal), ShouldBeTrue)
				So(v.Apply(again, model.Board{EventID: "E1"}), ShouldBeNil)
			})
		})

		Convey("When the response names another event", func() {
			err := v.Apply(old, model.Board{EventID: "E9", Rows: rows("z")})

			Convey("Then it is discarded and the tab is released", func() {
				So(errors.Is(err, ErrStaleResponse), ShouldBeTrue)
				So(errors.Is(err, ErrEventMismatch), ShouldBeTrue)
				So(v.Loaded(model.TabTotal), ShouldBeFalse)
				So(v.Pending(model.TabTotal), ShouldBeFalse)

				retry, need := v.SelectTab(model.TabTotal)
				So(need, ShouldBeTrue)
				So(retry.EventID, ShouldEqual, "E1")
			})
		})

		Convey("When the user goes back before it resolves", func() {
			v.Back()

			Convey("Then the load is stale and the events view shows", func() {
				So(errors.Is(v.Apply(old, model.Board{}), ErrStaleResponse), ShouldBeTrue)
				So(v.Snapshot().View, ShouldEqual, ViewEvents)
				So(v.EventID(), ShouldEqual, "")
			})
		})

		Convey("When the load fails", func() {
			v.Fail(old)

			Convey("Then the tab can be requested again", func() {
				So(v.Pending(model.TabTotal), ShouldBeFalse)
				_, need := v.SelectTab(model.TabTotal)
				So(need, ShouldBeTrue)
			})
		})
	})
}

func TestSelectTab(t *testing.T) {
	Convey("Given an event with the total tab loaded", t, func() {
		v := New()
		tk := v.SelectEvent("E1")
		So(v.Apply(tk, model.Board{EventID: "E1", Rows: rows("a", "b", "c")}), ShouldBeNil)
		v.SelectRow(2)

		Convey("When switching to an unloaded tab", func() {
			day1, need := v.SelectTab(model.TabDay1)

			Convey("Then a load is needed and the event is unchanged", func() {
				So(need, ShouldBeTrue)
				So(day1.Tab, ShouldEqual, model.TabDay1)
				So(day1.EventID, ShouldEqual, "E1")
				So(v.EventID(), ShouldEqual, "E1")
				So(v.SelectedIndex(), ShouldEqual, NoSelection)
				So(v.CurrentRows(), ShouldBeEmpty)
			})

			Convey("Then selecting it again while pending needs no second load", func() {
				_, again := v.SelectTab(model.TabDay1)
				So(again, ShouldBeFalse)
			})
		})

		Convey("When switching back to a loaded tab", func() {
			v.SelectTab(model.TabDay1)
			_, need := v.SelectTab(model.TabTotal)

			Convey("Then no load is needed", func() {
				So(need, ShouldBeFalse)
				So(len(v.CurrentRows()), ShouldEqual, 3)
			})
		})

		Convey("When selecting an unknown tab", func() {
			_, need := v.SelectTab("day3")

			Convey("Then nothing changes", func() {
				So(need, ShouldBeFalse)
				So(v.Tab(), ShouldEqual, model.TabTotal)
				So(v.SelectedIndex(), ShouldEqual, 2)
			})
		})
	})

	Convey("Given no event selected", t, func() {
		v := New(WithTabs(model.TabDay1, model.TabDay2), WithDefaultTab(model.TabDay2))

		Convey("Then the default tab applies and selecting a tab never loads", func() {
			So(v.Tab(), ShouldEqual, model.TabDay2)
			_, need := v.SelectTab(model.TabDay1)
			So(need, ShouldBeFalse)
			So(v.Tab(), ShouldEqual, model.TabDay1)
			So(v.HasTab(model.TabSeason), ShouldBeFalse)
		})
	})
}

func TestSelectRow(t *testing.T) {
	Convey("Given a tab with three rows", t, func() {
		v := New()
		tk := v.SelectEvent("E1")
		So(v.Apply(tk, model.Board{EventID: "E1", Rows: rows("a", "b", "c")}), ShouldBeNil)
		So(v.SelectRow(1), ShouldBeTrue)

		Convey("When selecting index 5", func() {
			ok := v.SelectRow(5)

			Convey("Then it is a no-op", func() {
				So(ok, ShouldBeFalse)
				So(v.SelectedIndex(), ShouldEqual, 1)
				row, found := v.SelectedRow()
				So(found, ShouldBeTrue)
				So(row.Angler, ShouldEqual, "b")
			})
		})

		Convey("When selecting a negative index", func() {
			So(v.SelectRow(-1), ShouldBeFalse)
			So(v.SelectedIndex(), ShouldEqual, 1)
		})

		Convey("When a reload shrinks the rows below the selection", func() {
			So(v.SelectRow(2), ShouldBeTrue)
			v.Fail(tk)
			st := v.state[model.TabTotal]
			st.loaded = false
			next, need := v.Request(model.TabTotal)
			So(need, ShouldBeTrue)
			So(v.Apply(next, model.Board{EventID: "E1", Rows: rows("a")}), ShouldBeNil)

			Convey("Then the selection is cleared", func() {
				So(v.SelectedIndex(), ShouldEqual, NoSelection)
				_, found := v.SelectedRow()
				So(found, ShouldBeFalse)
			})
		})
	})
}

func TestSnapshot(t *testing.T) {
	Convey("Given a partially loaded event", t, func() {
		v := New()
		tk := v.SelectEvent("E1")
		_, _ = v.Request(model.TabDay1)
		So(v.Apply(tk, model.Board{EventID: "E1", Rows: rows("a", "b")}), ShouldBeNil)
		v.SelectRow(0)

		s := v.Snapshot()

		Convey("Then the snapshot is consistent", func() {
			So(s.EventID, ShouldEqual, "E1")
			So(len(s.Rows), ShouldEqual, 2)
			So(s.Selected, ShouldNotBeNil)
			So(s.Selected.Angler, ShouldEqual, "a")
			So(s.Tabs[0], ShouldResemble, TabStatus{Tab: model.TabTotal, Label: "Total", Loaded: true, Rows: 2})
			So(s.Tabs[1].Pending, ShouldBeTrue)
		})

		Convey("Then mutating the snapshot does not touch the state", func() {
			s.Rows[0].Angler = "changed"
			So(v.CurrentRows()[0].Angler, ShouldEqual, "a")
		})
	})
}

func TestConcurrentAccess(t *testing.T) {
	Convey("Given concurrent selections and applies", t, func() {
		v := New()
		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(2)
			go func() {
				defer wg.Done()
				tk := v.SelectEvent("E1")
				_ = v.Apply(tk, model.Board{EventID: "E1", Rows: rows("a")})
			}()
			go func() {
				defer wg.Done()
				_ = v.Snapshot()
				v.SelectRow(0)
			}()
		}
		wg.Wait()

		Convey("Then the selection invariant holds", func() {
			idx := v.SelectedIndex()
			So(idx == NoSelection || idx < len(v.CurrentRows()), ShouldBeTrue)
		})
	})
}
