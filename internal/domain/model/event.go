package model

// Event is one tournament as listed by the events endpoint.
type Event struct {
	ID     string `json:"event_id"`
	Name   string `json:"event_name,omitempty"`
	Date   Date   `json:"event_date"`
	Trail  string `json:"trail,omitempty"`
	Season string `json:"season,omitempty"`

	// Summary columns shown on the events table and the detail header.
	Winner      string `json:"event_winner,omitempty"`
	Anglers     Number `json:"anglers"`
	TotalFish   Number `json:"total_fish"`
	BigBass     Number `json:"big_bass_in"`
	TotalLength Number `json:"total_length_in"`
}

// DisplayName falls back to the id when the event has no name.
func (e Event) DisplayName() string {
	if e.Name != "" {
		return e.Name
	}
	return e.ID
}

// Fields renders the event with canonical keys only. Feeding the result back
// through the normalizer yields the same Event.
func (e Event) Fields() map[string]any {
	out := make(map[string]any)
	putString(out, "event_id", e.ID)
	putString(out, "event_name", e.Name)
	putAny(out, "event_date", e.Date.Canonical())
	putString(out, "trail", e.Trail)
	putString(out, "season", e.Season)
	putString(out, "event_winner", e.Winner)
	putAny(out, "anglers", e.Anglers.Canonical())
	putAny(out, "total_fish", e.TotalFish.Canonical())
	putAny(out, "big_bass_in", e.BigBass.Canonical())
	putAny(out, "total_length_in", e.TotalLength.Canonical())
	return out
}

func putString(m map[string]any, k, v string) {
	if v != "" {
		m[k] = v
	}
}

func putAny(m map[string]any, k string, v any) {
	if v != nil {
		m[k] = v
	}
}
