// Package normalize converts loosely-typed leaderboard API records into
// canonical model values.
//
// Every canonical field has an ordered list of raw key spellings. The first
// key holding a present value wins; a value is present when it is non-null
// and not an empty (or whitespace-only) string. Functions here are pure.
package normalize

import (
	"fmt"

	"github.com/okian/bassboard/internal/domain/model"
)

// Canonical row keys.
const (
	KeyRank         = "rank"
	KeyAngler       = "angler"
	KeyAnglerState  = "angler_state"
	KeyAnglerURL    = "angler_url"
	KeyDay          = "day"
	KeyTotalLength  = "total_length_in"
	KeyBigBass      = "big_bass_in"
	KeyLimitPercent = "limit_percent"
	KeyAOYPoints    = "aoy_points"
	KeyFish         = "fish"
)

// Canonical event keys.
const (
	KeyEventID     = "event_id"
	KeyEventName   = "event_name"
	KeyEventDate   = "event_date"
	KeyTrail       = "trail"
	KeySeason      = "season"
	KeyEventWinner = "event_winner"
	KeyAnglers     = "anglers"
	KeyTotalFish   = "total_fish"
)

// Aliases is an alias table: canonical key to raw spellings in priority order.
// The canonical key is always first so normalized output reads back unchanged.
type Aliases map[string][]string

// Lookup returns the first present value for key and the raw key it came from.
func (a Aliases) Lookup(raw map[string]any, key string) (any, string, bool) {
	for _, k := range a[key] {
		if v, ok := raw[k]; ok && present(v) {
			return v, k, true
		}
	}
	return nil, "", false
}

// RowAliases lists raw spellings for every scalar AnglerRow field.
var RowAliases = Aliases{
	KeyRank:         {"rank", "Rank", "rk"},
	KeyAngler:       {"angler", "Angler", "angler_name", "name"},
	KeyAnglerState:  {"angler_state", "state", "State"},
	KeyAnglerURL:    {"angler_url", "url", "profile_url"},
	KeyDay:          {"day", "Day"},
	KeyTotalLength:  {"total_length_in", "total", "total_in", "Total_Length_in"},
	KeyBigBass:      {"big_bass_in", "Big_Bass_in", "big_bass", "big"},
	KeyLimitPercent: {"Limit%", "limit_percent", "limit_pct"},
	KeyAOYPoints:    {"AOY Points", "aoy_points", "aoy"},
}

// EventAliases lists raw spellings for every Event field.
var EventAliases = Aliases{
	KeyEventID:     {"event_id", "Event_ID", "eventId", "id"},
	KeyEventName:   {"event_name", "Event_Name", "eventName", "name"},
	KeyEventDate:   {"event_date", "Event_Date", "eventDate", "date"},
	KeyTrail:       {"trail", "Trail"},
	KeySeason:      {"season", "Season"},
	KeyEventWinner: {"event_winner", "Event_Winner", "winner"},
	KeyAnglers:     {"anglers", "Anglers"},
	KeyTotalFish:   {"total_fish", "Total_Fish_Caught", "total_fish_caught"},
	KeyBigBass:     {"big_bass_in", "Big_Bass_in", "Event_Big_Bass", "big_bass"},
	KeyTotalLength: {"total_length_in", "Total_Length_in"},
}

// FishSlotKeys returns the raw spellings of fish slot n (1-based).
func FishSlotKeys(n int) []string {
	return []string{
		fmt.Sprintf("fish_%d_in", n),
		fmt.Sprintf("Fish_%d_in", n),
		fmt.Sprintf("fish%d", n),
	}
}

var fishSlots = func() [][]string {
	slots := make([][]string, model.MaxFishSlots)
	for i := range slots {
		slots[i] = FishSlotKeys(i + 1)
	}
	return slots
}()
