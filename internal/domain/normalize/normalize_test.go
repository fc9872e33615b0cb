package normalize

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/okian/bassboard/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func decode(s string) map[string]any {
	var m map[string]any
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		panic(err)
	}
	return m
}

func TestRow(t *testing.T) {
	Convey("Given a raw row with no known keys", t, func() {
		r := Row(map[string]any{"unrelated": 1, "total_length": 30})

		Convey("Then every field is absent", func() {
			So(r.Rank.Present(), ShouldBeFalse)
			So(r.Angler, ShouldEqual, "")
			So(r.TotalLength.Present(), ShouldBeFalse)
			So(r.BigBass.Present(), ShouldBeFalse)
			So(r.LimitPercent.Present(), ShouldBeFalse)
			So(r.AOYPoints.Present(), ShouldBeFalse)
			So(r.Fish, ShouldBeEmpty)
		})
	})

	Convey("Given a nil row", t, func() {
		Convey("Then it normalizes without panicking", func() {
			So(func() { Row(nil) }, ShouldNotPanic)
		})
	})

	Convey("Given competing aliases for the same field", t, func() {
		raw := decode(`{
			"total": 99, "total_length_in": 31.5, "total_in": 1,
			"rk": 9, "Rank": 2,
			"limit_pct": 10, "Limit%": 100, "limit_percent": 50,
			"Angler": "B", "angler": "A"
		}`)
		r := Row(raw)

		Convey("Then the earlier alias wins", func() {
			So(r.TotalLength, ShouldResemble, model.Num(31.5))
			So(r.Rank, ShouldResemble, model.Num(2))
			So(r.LimitPercent, ShouldResemble, model.Num(100))
			So(r.Angler, ShouldEqual, "A")
		})
	})

	Convey("Given an earlier alias holding null or blank", t, func() {
		raw := decode(`{"total_length_in": null, "total": "  ", "total_in": "28.75", "rank": ""}`)
		r := Row(raw)

		Convey("Then the next present alias is used", func() {
			So(r.TotalLength, ShouldResemble, model.Num(28.75))
			So(r.Rank.Present(), ShouldBeFalse)
		})
	})

	Convey("Given non-numeric values in numeric fields", t, func() {
		raw := decode(`{"rank": "DQ", "big_bass_in": "n/a", "aoy_points": true, "total_length_in": "12abc"}`)
		r := Row(raw)

		Convey("Then the values are kept as unparseable", func() {
			So(r.Rank, ShouldResemble, model.BadNumber("DQ"))
			So(r.BigBass, ShouldResemble, model.BadNumber("n/a"))
			So(r.AOYPoints, ShouldResemble, model.BadNumber("true"))
			So(r.TotalLength, ShouldResemble, model.BadNumber("12abc"))
			So(UnparseableFields(r), ShouldResemble, []string{KeyRank, KeyTotalLength, KeyBigBass, KeyAOYPoints})
		})
	})

	Convey("Given a fractional rank", t, func() {
		r := Row(map[string]any{"rank": "1.50"})

		Convey("Then rank is unparseable with its text", func() {
			So(r.Rank, ShouldResemble, model.BadNumber("1.50"))
		})
	})

	Convey("Given the capitalised spellings", t, func() {
		raw := decode(`{"Rank": 1, "Angler": "Ann", "State": "TX", "Total_Length_in": 40.25,
			"Big_Bass_in": 19, "AOY Points": 200, "Fish_1_in": 18.5}`)
		r := Row(raw)

		Convey("Then they resolve to canonical fields", func() {
			So(r.Angler, ShouldEqual, "Ann")
			So(r.State, ShouldEqual, "TX")
			So(r.TotalLength, ShouldResemble, model.Num(40.25))
			So(r.BigBass, ShouldResemble, model.Num(19))
			So(r.AOYPoints, ShouldResemble, model.Num(200))
			So(r.Fish, ShouldResemble, []float64{18.5})
		})
	})
}

func TestFish(t *testing.T) {
	Convey("Given sparse fish slots", t, func() {
		raw := decode(`{"fish_2_in": 14.5, "fish_5_in": 16.0}`)

		Convey("Then the list is dense and in slot order", func() {
			So(Fish(raw), ShouldResemble, []float64{14.5, 16.0})
		})
	})

	Convey("Given mixed spellings and bad slots", t, func() {
		raw := decode(`{"Fish_1_in": "12.25", "fish3": 11, "fish_4_in": "lost", "fish_10_in": 9, "fish_11_in": 30}`)

		Convey("Then only valid slots 1 to 10 are kept", func() {
			So(Fish(raw), ShouldResemble, []float64{12.25, 11, 9})
		})
	})

	Convey("Given a slot with both spellings", t, func() {
		raw := decode(`{"fish_1_in": 10, "Fish_1_in": 20}`)

		Convey("Then the earlier spelling wins", func() {
			So(Fish(raw), ShouldResemble, []float64{10})
		})
	})
}

func TestIdempotence(t *testing.T) {
	Convey("Given rows normalized from varied input", t, func() {
		inputs := []string{
			`{"Rank": 3, "Angler": " Bo ", "total": "31.5", "Limit%": "80", "fish_2_in": 14.5, "fish_5_in": 16}`,
			`{"rank": "DQ", "angler": "Cy", "big_bass_in": "n/a", "aoy": {"x": 1}}`,
			`{"rank": 1.5, "angler_url": "https://example.test/a", "day": "Day 2"}`,
			`{}`,
		}

		Convey("Then normalizing the canonical output changes nothing", func() {
			for _, in := range inputs {
				first := Row(decode(in))
				So(Row(first.Fields()), ShouldResemble, first)
			}
		})

		Convey("Then the canonical output survives a JSON round trip", func() {
			first := Row(decode(inputs[0]))
			b, err := json.Marshal(first.Fields())
			So(err, ShouldBeNil)
			So(Row(decode(string(b))), ShouldResemble, first)
		})
	})
}

func TestEvent(t *testing.T) {
	Convey("Given a raw event with variant spellings", t, func() {
		raw := decode(`{"event_id": "E1", "event_name": "Spring Open", "event_date": "2024-03-02T05:00:00Z",
			"Trail": "North", "Anglers": 42, "Total_Fish_Caught": "120", "Event_Big_Bass": 21.25,
			"Total_Length_in": 1500.5, "event_winner": "Ann"}`)
		e := Event(raw)

		Convey("Then every field is resolved", func() {
			So(e.ID, ShouldEqual, "E1")
			So(e.Name, ShouldEqual, "Spring Open")
			So(e.Date, ShouldResemble, model.On(2024, time.March, 2))
			So(e.Trail, ShouldEqual, "North")
			So(e.Anglers, ShouldResemble, model.Num(42))
			So(e.TotalFish, ShouldResemble, model.Num(120))
			So(e.BigBass, ShouldResemble, model.Num(21.25))
			So(e.TotalLength, ShouldResemble, model.Num(1500.5))
			So(e.Winner, ShouldEqual, "Ann")
		})

		Convey("Then normalizing the canonical output changes nothing", func() {
			So(Event(e.Fields()), ShouldResemble, e)
		})
	})

	Convey("Given an invalid date", t, func() {
		e := Event(map[string]any{"event_id": "E2", "event_date": "2024-13-40"})

		Convey("Then the original text is kept", func() {
			So(e.Date, ShouldResemble, model.BadDate("2024-13-40"))
			So(Event(e.Fields()), ShouldResemble, e)
		})
	})

	Convey("Given a list with junk entries", t, func() {
		items := []any{
			map[string]any{"event_id": "E1"},
			"not an object",
			map[string]any{"event_name": "no id"},
			map[string]any{"id": 7},
		}

		Convey("Then only objects with ids are kept", func() {
			events := Events(items)
			So(len(events), ShouldEqual, 2)
			So(events[1].ID, ShouldEqual, "7")
		})
	})
}

func TestDateLayouts(t *testing.T) {
	Convey("Given dates in the layouts the sheets produce", t, func() {
		want := model.On(2024, time.June, 9)
		for _, in := range []string{"2024-06-09", "6/9/2024", "06/09/2024", "Jun 9, 2024", "June 9 2024", "2024-06-09T13:00:00.000Z"} {
			So(Date(in), ShouldResemble, want)
		}
		So(Date(nil).State, ShouldEqual, model.Absent)
		So(Date(45000.0), ShouldResemble, model.BadDate("45000"))
	})
}

func TestNumber(t *testing.T) {
	Convey("Given loosely typed numbers", t, func() {
		So(Number(json.Number("4.5")), ShouldResemble, model.Num(4.5))
		So(Number(7), ShouldResemble, model.Num(7))
		So(Number(" 12 "), ShouldResemble, model.Num(12))
		So(Number("NaN"), ShouldResemble, model.BadNumber("NaN"))
		So(Number("1,200"), ShouldResemble, model.BadNumber("1,200"))
		So(Number("").State, ShouldEqual, model.Absent)
	})
}
