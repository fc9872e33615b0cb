// Package model contains domain models passed between layers.
package model

import (
	"encoding/json"
	"math"
	"time"
)

// State records whether a loosely-typed source value was present and parsed.
type State uint8

// Value states. The zero value is Absent.
const (
	Absent State = iota
	Valid
	Unparseable
)

func (s State) String() string {
	switch s {
	case Valid:
		return "valid"
	case Unparseable:
		return "unparseable"
	default:
		return "absent"
	}
}

// Number is a numeric field that keeps "missing" apart from "present but
// not a number". Raw holds the source text when State is Unparseable.
type Number struct {
	Value float64
	Raw   string
	State State
}

// Num returns a valid Number.
func Num(v float64) Number { return Number{Value: v, State: Valid} }

// BadNumber returns an unparseable Number that remembers its source text.
func BadNumber(raw string) Number { return Number{Raw: raw, State: Unparseable} }

// Present reports whether the source carried any value at all.
func (n Number) Present() bool { return n.State != Absent }

// Valid reports whether the value parsed as a number.
func (n Number) Valid() bool { return n.State == Valid }

// Float returns the value and whether it is valid.
func (n Number) Float() (float64, bool) { return n.Value, n.State == Valid }

// Int returns the value as an int when it is valid and integral.
func (n Number) Int() (int, bool) {
	if n.State != Valid || n.Value != math.Trunc(n.Value) {
		return 0, false
	}
	return int(n.Value), true
}

// Canonical returns the value in the shape the normalizer reads back:
// float64 when valid, the raw string when unparseable, nil when absent.
func (n Number) Canonical() any {
	switch n.State {
	case Valid:
		return n.Value
	case Unparseable:
		return n.Raw
	default:
		return nil
	}
}

// MarshalJSON encodes a valid Number as a JSON number, an unparseable one as
// its raw string and an absent one as null.
func (n Number) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.Canonical())
}

// Date is a calendar date that keeps its source text when it cannot be parsed.
type Date struct {
	Time  time.Time
	Raw   string
	State State
}

// DateLayout is the canonical wire layout for valid dates.
const DateLayout = "2006-01-02"

// On returns a valid Date at midnight UTC.
func On(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC), State: Valid}
}

// BadDate returns an unparseable Date that remembers its source text.
func BadDate(raw string) Date { return Date{Raw: raw, State: Unparseable} }

// Valid reports whether the date parsed.
func (d Date) Valid() bool { return d.State == Valid }

// Canonical returns "YYYY-MM-DD" when valid, the raw string when unparseable
// and nil when absent.
func (d Date) Canonical() any {
	switch d.State {
	case Valid:
		return d.Time.Format(DateLayout)
	case Unparseable:
		return d.Raw
	default:
		return nil
	}
}

// MarshalJSON encodes the canonical form.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Canonical())
}

// Before orders dates for newest-first sorting: valid dates compare by time,
// and any valid date sorts ahead of an invalid or absent one.
func (d Date) Before(o Date) bool {
	switch {
	case d.Valid() && o.Valid():
		return d.Time.Before(o.Time)
	case o.Valid():
		return true
	default:
		return false
	}
}
