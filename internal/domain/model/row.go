package model

import (
	"fmt"
	"strings"
)

// MaxFishSlots is the number of per-fish length columns a row may carry.
const MaxFishSlots = 10

// Tab identifies one leaderboard view over an event.
type Tab string

// Known tabs.
const (
	TabTotal  Tab = "total"
	TabDay1   Tab = "day1"
	TabDay2   Tab = "day2"
	TabSeason Tab = "season"
)

// AllTabs lists the known tabs in display order.
var AllTabs = []Tab{TabTotal, TabDay1, TabDay2, TabSeason}

// ParseTab validates a tab key, ignoring case and surrounding space.
func ParseTab(s string) (Tab, error) {
	t := Tab(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range AllTabs {
		if t == known {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTab, s)
}

// Label is the human-readable tab title.
func (t Tab) Label() string {
	switch t {
	case TabTotal:
		return "Total"
	case TabDay1:
		return "Day 1"
	case TabDay2:
		return "Day 2"
	case TabSeason:
		return "Season"
	default:
		return string(t)
	}
}

// AnglerRow is the canonical form of one angler's result line.
// Rows are built once by the normalizer and never mutated afterwards.
type AnglerRow struct {
	Rank         Number    `json:"rank"`
	Angler       string    `json:"angler"`
	State        string    `json:"angler_state,omitempty"`
	URL          string    `json:"angler_url,omitempty"`
	Day          string    `json:"day,omitempty"`
	TotalLength  Number    `json:"total_length_in"`
	BigBass      Number    `json:"big_bass_in"`
	LimitPercent Number    `json:"limit_percent"`
	AOYPoints    Number    `json:"aoy_points"`
	Fish         []float64 `json:"fish"`
}

// Fields renders the row with canonical keys only. Feeding the result back
// through the normalizer yields the same row.
func (r AnglerRow) Fields() map[string]any {
	out := make(map[string]any)
	putAny(out, "rank", r.Rank.Canonical())
	putString(out, "angler", r.Angler)
	putString(out, "angler_state", r.State)
	putString(out, "angler_url", r.URL)
	putString(out, "day", r.Day)
	putAny(out, "total_length_in", r.TotalLength.Canonical())
	putAny(out, "big_bass_in", r.BigBass.Canonical())
	putAny(out, "limit_percent", r.LimitPercent.Canonical())
	putAny(out, "aoy_points", r.AOYPoints.Canonical())
	if len(r.Fish) > 0 {
		fish := make([]any, len(r.Fish))
		for i, f := range r.Fish {
			fish[i] = f
		}
		out["fish"] = fish
	}
	return out
}

// Board is one tab's rows for one event, as returned by the data source.
type Board struct {
	EventID string      `json:"event_id"`
	Tab     Tab         `json:"tab"`
	Rows    []AnglerRow `json:"rows"`
	// WholeEnvelope is set when the envelope had no data field and the
	// whole payload was read as data.
	WholeEnvelope bool `json:"whole_envelope,omitempty"`
}
