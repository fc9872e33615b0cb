package testapi

import (
	"fmt"
	"time"
)

// Variant names a key-spelling and envelope dialect of the spreadsheet API.
type Variant string

// Known variants.
const (
	// VariantCanonical uses snake_case keys, an "endpoint" parameter and
	// rows under data.rows.
	VariantCanonical Variant = "canonical"
	// VariantSheet uses spreadsheet column headers ("Angler", "Fish_1_in",
	// "AOY Points"), numbers as strings and rows under data.leaderboard.
	VariantSheet Variant = "sheet"
	// VariantLegacy uses short keys ("rk", "fish1"), an "action" parameter
	// and omits the data field, so clients see the whole payload.
	VariantLegacy Variant = "legacy"
)

// Variants lists every known variant.
var Variants = []Variant{VariantCanonical, VariantSheet, VariantLegacy}

// ParseVariant validates s.
func ParseVariant(s string) (Variant, error) {
	for _, v := range Variants {
		if string(v) == s {
			return v, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownVariant, s)
}

// ActionParam is the query parameter the variant's clients send.
func (v Variant) ActionParam() string {
	if v == VariantLegacy {
		return "action"
	}
	return "endpoint"
}

// Default generator configuration constants.
const (
	DefaultEvents  = 8
	DefaultAnglers = 25
	maxFishPerDay  = 5
)

// Config holds configuration for the synthetic API.
type Config struct {
	Events  int           // Number of events to generate
	Anglers int           // Anglers per event
	Latency time.Duration // Delay added to every response
	Variant Variant       // Key spelling dialect
	Seed    uint64        // PRNG seed; 0 picks one from the clock
}

func (c Config) withDefaults() Config {
	if c.Events <= 0 {
		c.Events = DefaultEvents
	}
	if c.Anglers <= 0 {
		c.Anglers = DefaultAnglers
	}
	if c.Variant == "" {
		c.Variant = VariantCanonical
	}
	if c.Seed == 0 {
		c.Seed = uint64(time.Now().UnixNano())
	}
	return c
}
