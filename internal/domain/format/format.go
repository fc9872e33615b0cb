// Package format renders canonical values for display.
package format

import (
	"strconv"
	"strings"

	"github.com/okian/bassboard/internal/domain/model"
)

// Placeholder is shown for absent and unparseable values.
const Placeholder = "–"

// DateLayout is the display layout for valid dates.
const DateLayout = "Jan 2, 2006"

// DefaultDecimals is the precision used for lengths and percentages.
const DefaultDecimals = 2

// Number renders n with a fixed number of decimals.
func Number(n model.Number, decimals int) string {
	f, ok := n.Float()
	if !ok {
		return Placeholder
	}
	if decimals < 0 {
		decimals = 0
	}
	return strconv.FormatFloat(f, 'f', decimals, 64)
}

// Length renders a length in inches with DefaultDecimals.
func Length(n model.Number) string { return Number(n, DefaultDecimals) }

// Integer renders whole numbers without decimals.
func Integer(n model.Number) string { return Number(n, 0) }

// Fish renders the fish list as space-separated lengths.
func Fish(fish []float64) string {
	if len(fish) == 0 {
		return Placeholder
	}
	parts := make([]string, len(fish))
	for i, f := range fish {
		parts[i] = strconv.FormatFloat(f, 'f', DefaultDecimals, 64)
	}
	return strings.Join(parts, " ")
}

// Date renders a valid date as "Jan 2, 2006" and an unparseable date as its
// original text.
func Date(d model.Date) string {
	switch d.State {
	case model.Valid:
		return d.Time.Format(DateLayout)
	case model.Unparseable:
		return d.Raw
	default:
		return Placeholder
	}
}

// Text returns s or the placeholder when blank.
func Text(s string) string {
	if strings.TrimSpace(s) == "" {
		return Placeholder
	}
	return s
}
