package normalize

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/okian/bassboard/internal/domain/model"
)

// dateLayouts are tried in order. Only the calendar date is kept.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05.000Z",
	"2006-01-02 15:04:05",
	"1/2/2006",
	"01/02/2006",
	"Jan 2, 2006",
	"Jan 2 2006",
	"January 2, 2006",
	"January 2 2006",
}

func present(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(x) != ""
	default:
		return true
	}
}

// Number parses v strictly. Numeric JSON values and strings that parse in
// full as a finite float are valid; anything else present is unparseable and
// keeps its text.
func Number(v any) model.Number {
	if !present(v) {
		return model.Number{}
	}
	switch x := v.(type) {
	case float64:
		return finite(x, v)
	case float32:
		return finite(float64(x), v)
	case int:
		return model.Num(float64(x))
	case int64:
		return model.Num(float64(x))
	case int32:
		return model.Num(float64(x))
	case json.Number:
		return Number(string(x))
	case string:
		s := strings.TrimSpace(x)
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return model.BadNumber(s)
		}
		return model.Num(f)
	default:
		return model.BadNumber(rawText(v))
	}
}

func finite(f float64, v any) model.Number {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return model.BadNumber(rawText(v))
	}
	return model.Num(f)
}

// Integer is Number restricted to integral values; a fractional value is
// unparseable.
func Integer(v any) model.Number {
	n := Number(v)
	if _, ok := n.Int(); n.Valid() && !ok {
		return model.BadNumber(Text(v))
	}
	return n
}

// Date parses v as a calendar date. Unparseable input keeps its text.
func Date(v any) model.Date {
	if !present(v) {
		return model.Date{}
	}
	s, ok := v.(string)
	if !ok {
		return model.BadDate(rawText(v))
	}
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		y, m, d := t.Date()
		return model.On(y, m, d)
	}
	return model.BadDate(s)
}

// Text renders a present scalar as a trimmed string.
func Text(v any) string {
	if !present(v) {
		return ""
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return rawText(v)
}

func rawText(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case fmt.Stringer:
		return x.String()
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}
