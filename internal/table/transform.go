package table

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"time"
)

var dateLayouts = []string{
	"2006-01-02", time.RFC3339, "2006/01/02", "01/02/2006", "1/2/2006",
	"2-Jan-06", "2-Jan-2006", "Jan 2, 2006",
	"2006-01-02 15:04", "2006-01-02 15:04:05", "1/2/2006 15:04", "1/2/2006 15:04:05",
}

// ParseDate parses s against the supported date layouts.
func ParseDate(s string) (time.Time, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return time.Time{}, &ParseError{Kind: KindDate, Input: s, Err: errors.New("empty input")}
	}
	for _, l := range dateLayouts {
		if t, err := time.Parse(l, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, &ParseError{Kind: KindDate, Input: s}
}

// ParseNumber parses s as a float. NaN and infinities are rejected.
func ParseNumber(s string) (float64, error) {
	raw := strings.TrimSpace(strings.ReplaceAll(s, "\u00A0", " "))
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, &ParseError{Kind: KindNumber, Input: s, Err: err}
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, &ParseError{Kind: KindNumber, Input: s, Err: errors.New("not a number")}
	}
	return f, nil
}

// Coerce applies a transform to one raw field. It never fails: malformed
// numbers become Empty and malformed dates become InvalidDate. The second
// result reports whether a sentinel was substituted for a non-empty input.
func Coerce(kind TransformKind, raw string) (Value, bool) {
	switch kind {
	case TransformNumber:
		f, err := ParseNumber(raw)
		if err != nil {
			return Empty(), strings.TrimSpace(raw) != ""
		}
		return Number(f), false
	case TransformDate:
		t, err := ParseDate(raw)
		if err != nil {
			return InvalidDate(), strings.TrimSpace(raw) != ""
		}
		return Date(t), false
	default:
		return String(raw), false
	}
}

// TransformStats counts the cells that were coerced to a sentinel.
type TransformStats struct {
	Rows    int
	Coerced map[string]int // by column name
	Missing []string       // descriptor columns absent from the source header
}

// CoercedTotal sums Coerced over all columns.
func (s TransformStats) CoercedTotal() int {
	n := 0
	for _, c := range s.Coerced {
		n += c
	}
	return n
}

// Transform converts raw rows into typed records, one per input row, holding
// exactly the descriptor fields.
func Transform(raw []RawRecord, cols []Column) ([]Record, TransformStats) {
	stats := TransformStats{Rows: len(raw), Coerced: map[string]int{}}
	if len(raw) > 0 {
		for _, c := range cols {
			if _, ok := raw[0][c.Name]; !ok {
				stats.Missing = append(stats.Missing, c.Name)
			}
		}
	}
	out := make([]Record, len(raw))
	for i, row := range raw {
		fields := make(map[string]Value, len(cols))
		for _, c := range cols {
			v, coerced := Coerce(c.Transform, row[c.Name])
			if coerced {
				stats.Coerced[c.Name]++
			}
			fields[c.Name] = v
		}
		out[i] = Record{Index: i, Fields: fields}
	}
	return out, stats
}
