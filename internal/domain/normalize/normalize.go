package normalize

import (
	"github.com/okian/bassboard/internal/domain/model"
)

// Row builds the canonical AnglerRow from a raw record. Missing fields stay
// absent; it never fails.
func Row(raw map[string]any) model.AnglerRow {
	return model.AnglerRow{
		Rank:         Integer(lookup(RowAliases, raw, KeyRank)),
		Angler:       Text(lookup(RowAliases, raw, KeyAngler)),
		State:        Text(lookup(RowAliases, raw, KeyAnglerState)),
		URL:          Text(lookup(RowAliases, raw, KeyAnglerURL)),
		Day:          Text(lookup(RowAliases, raw, KeyDay)),
		TotalLength:  Number(lookup(RowAliases, raw, KeyTotalLength)),
		BigBass:      Number(lookup(RowAliases, raw, KeyBigBass)),
		LimitPercent: Number(lookup(RowAliases, raw, KeyLimitPercent)),
		AOYPoints:    Number(lookup(RowAliases, raw, KeyAOYPoints)),
		Fish:         Fish(raw),
	}
}

// Rows normalizes every record that is an object; other elements are skipped.
func Rows(items []any) []model.AnglerRow {
	rows := make([]model.AnglerRow, 0, len(items))
	for _, item := range items {
		if m, ok := item.(map[string]any); ok {
			rows = append(rows, Row(m))
		}
	}
	return rows
}

// Fish returns the valid fish lengths in slot order with gaps removed.
// A canonical "fish" list takes priority over the numbered slots.
func Fish(raw map[string]any) []float64 {
	if list, ok := raw[KeyFish].([]any); ok {
		out := make([]float64, 0, len(list))
		for _, v := range list {
			if f, ok := Number(v).Float(); ok {
				out = append(out, f)
			}
		}
		return out
	}
	out := make([]float64, 0, len(fishSlots))
	for _, keys := range fishSlots {
		for _, k := range keys {
			v, ok := raw[k]
			if !ok || !present(v) {
				continue
			}
			if f, ok := Number(v).Float(); ok {
				out = append(out, f)
			}
			break
		}
	}
	return out
}

// Event builds the canonical Event from a raw record.
func Event(raw map[string]any) model.Event {
	return model.Event{
		ID:          Text(lookup(EventAliases, raw, KeyEventID)),
		Name:        Text(lookup(EventAliases, raw, KeyEventName)),
		Date:        Date(lookup(EventAliases, raw, KeyEventDate)),
		Trail:       Text(lookup(EventAliases, raw, KeyTrail)),
		Season:      Text(lookup(EventAliases, raw, KeySeason)),
		Winner:      Text(lookup(EventAliases, raw, KeyEventWinner)),
		Anglers:     Number(lookup(EventAliases, raw, KeyAnglers)),
		TotalFish:   Number(lookup(EventAliases, raw, KeyTotalFish)),
		BigBass:     Number(lookup(EventAliases, raw, KeyBigBass)),
		TotalLength: Number(lookup(EventAliases, raw, KeyTotalLength)),
	}
}

// Events normalizes every record that is an object and has an id.
func Events(items []any) []model.Event {
	events := make([]model.Event, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if e := Event(m); e.ID != "" {
			events = append(events, e)
		}
	}
	return events
}

// UnparseableFields names the numeric fields of r that were present but not
// numbers.
func UnparseableFields(r model.AnglerRow) []string {
	var out []string
	for _, f := range []struct {
		key string
		n   model.Number
	}{
		{KeyRank, r.Rank},
		{KeyTotalLength, r.TotalLength},
		{KeyBigBass, r.BigBass},
		{KeyLimitPercent, r.LimitPercent},
		{KeyAOYPoints, r.AOYPoints},
	} {
		if f.n.State == model.Unparseable {
			out = append(out, f.key)
		}
	}
	return out
}

func lookup(a Aliases, raw map[string]any, key string) any {
	v, _, _ := a.Lookup(raw, key)
	return v
}
