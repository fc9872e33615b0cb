package testapi

import (
	"fmt"
	"strconv"
)

// fieldNames spells each column in one variant.
type fieldNames struct {
	rank, angler, state, url, day, total, bigBass, limit, aoy string
	fish                                                      func(slot int) string

	eventID, eventName, eventDate, trail, season, winner, anglers, totalFish, eventBigBass, eventTotal string
	dateLayout                                                                                         string
}

var spellings = map[Variant]fieldNames{
	VariantCanonical: {
		rank: "rank", angler: "angler", state: "angler_state", url: "angler_url", day: "day",
		total: "total_length_in", bigBass: "big_bass_in", limit: "limit_percent", aoy: "aoy_points",
		fish: func(n int) string { return fmt.Sprintf("fish_%d_in", n) },

		eventID: "event_id", eventName: "event_name", eventDate: "event_date", trail: "trail",
		season: "season", winner: "event_winner", anglers: "anglers", totalFish: "total_fish",
		eventBigBass: "big_bass_in", eventTotal: "total_length_in",
		dateLayout: "2006-01-02",
	},
	VariantSheet: {
		rank: "Rank", angler: "Angler", state: "State", url: "profile_url", day: "Day",
		total: "Total_Length_in", bigBass: "Big_Bass_in", limit: "Limit%", aoy: "AOY Points",
		fish: func(n int) string { return fmt.Sprintf("Fish_%d_in", n) },

		eventID: "Event_ID", eventName: "Event_Name", eventDate: "Event_Date", trail: "Trail",
		season: "Season", winner: "Event_Winner", anglers: "Anglers", totalFish: "Total_Fish_Caught",
		eventBigBass: "Event_Big_Bass", eventTotal: "Total_Length_in",
		dateLayout: "1/2/2006",
	},
	VariantLegacy: {
		rank: "rk", angler: "name", state: "state", url: "url", day: "day",
		total: "total", bigBass: "big", limit: "limit_pct", aoy: "aoy",
		fish: func(n int) string { return fmt.Sprintf("fish%d", n) },

		eventID: "id", eventName: "name", eventDate: "date", trail: "trail",
		season: "season", winner: "winner", anglers: "anglers", totalFish: "total_fish_caught",
		eventBigBass: "big_bass", eventTotal: "total_length_in",
		dateLayout: "Jan 2, 2006",
	},
}

// DQLimit is the limit value the sheet variant reports for the last angler.
const DQLimit = "DQ"

// board describes which standings a tab endpoint returns.
type board struct {
	day    int // 0 for both days
	season bool
}

var boards = map[string]board{
	"leaderboard": {day: 0},
	"total":       {day: 0},
	"anglerWide":  {day: 0},
	"day1":        {day: 1},
	"day2":        {day: 2},
	"season":      {day: 0, season: true},
}

// value renders a number as the variant sends it. Sheets export text.
func (v Variant) value(f float64) any {
	if v == VariantSheet {
		return strconv.FormatFloat(f, 'f', 2, 64)
	}
	return f
}

func (v Variant) integer(n int) any {
	if v == VariantSheet {
		return strconv.Itoa(n)
	}
	return n
}

func (v Variant) eventFields(e Event) map[string]any {
	n := spellings[v]
	var fish int
	var big, total float64
	for _, a := range e.Anglers {
		fish += len(a.Day1) + len(a.Day2)
		big = max(big, a.BigBass(0))
		total += a.Total(0)
	}
	return map[string]any{
		n.eventID:      e.ID,
		n.eventName:    e.Name,
		n.eventDate:    e.Date.Format(n.dateLayout),
		n.trail:        e.Trail,
		n.season:       e.Season,
		n.winner:       e.Winner(),
		n.anglers:      v.integer(len(e.Anglers)),
		n.totalFish:    v.integer(fish),
		n.eventBigBass: v.value(big),
		n.eventTotal:   v.value(round2(total)),
	}
}

func (v Variant) rows(e Event, b board) []any {
	n := spellings[v]
	standings := e.Standings(b.day)
	out := make([]any, len(standings))
	for i, a := range standings {
		row := map[string]any{
			n.rank:    v.integer(i + 1),
			n.angler:  a.Name,
			n.state:   a.State,
			n.url:     a.URL,
			n.total:   v.value(a.Total(b.day)),
			n.bigBass: v.value(a.BigBass(b.day)),
			n.limit:   v.value(a.LimitPercent(b.day)),
		}
		if b.day != 0 {
			row[n.day] = fmt.Sprintf("Day %d", b.day)
		}
		if b.season {
			row[n.aoy] = v.integer(max(0, 200-i))
		}
		if v == VariantSheet && i == len(standings)-1 {
			row[n.limit] = DQLimit
		}
		// Both-day boards put day 2 in slots 6-10, leaving gaps.
		if b.day == 0 {
			putFish(row, v, a.Day1, 1)
			putFish(row, v, a.Day2, maxFishPerDay+1)
		} else {
			putFish(row, v, a.Day(b.day), 1)
		}
		out[i] = row
	}
	return out
}

func putFish(row map[string]any, v Variant, fish []float64, first int) {
	n := spellings[v]
	for i, f := range fish {
		row[n.fish(first+i)] = v.value(f)
	}
}

// eventsPayload wraps the events list in the variant's envelope. Events are
// sent oldest first.
func (v Variant) eventsPayload(d *Dataset) map[string]any {
	list := make([]any, 0, len(d.Events))
	for i := len(d.Events) - 1; i >= 0; i-- {
		list = append(list, v.eventFields(d.Events[i]))
	}
	if v == VariantLegacy {
		return map[string]any{"success": true, "events": list}
	}
	return map[string]any{"success": true, "data": map[string]any{"events": list}}
}

func (v Variant) boardPayload(e Event, b board) map[string]any {
	rows := v.rows(e, b)
	switch v {
	case VariantLegacy:
		return map[string]any{"success": true, "items": rows}
	case VariantSheet:
		return map[string]any{"success": true, "data": rows}
	default:
		return map[string]any{"success": true, "data": map[string]any{"event_id": e.ID, "rows": rows}}
	}
}

func failure(msg string) map[string]any {
	return map[string]any{"success": false, "message": msg}
}
