package table

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Kind identifies the dynamic type held by a Value.
type Kind uint8

const (
	// KindEmpty is the missing-value sentinel (e.g. a non-numeric toNumber input).
	KindEmpty Kind = iota
	KindNumber
	KindDate
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindDate:
		return "date"
	case KindString:
		return "string"
	default:
		return "empty"
	}
}

// dateLayout is the canonical textual form of a date value.
const dateLayout = "2006-01-02"

// Value is a typed cell value. A KindDate value with a zero Time is the
// invalid-date sentinel.
type Value struct {
	Kind Kind
	Str  string
	Num  float64
	Time time.Time
}

// Empty returns the missing-value sentinel.
func Empty() Value { return Value{} }

// String returns a string value.
func String(s string) Value { return Value{Kind: KindString, Str: s} }

// Number returns a numeric value.
func Number(f float64) Value { return Value{Kind: KindNumber, Num: f} }

// Date returns a date value. Passing the zero time yields the invalid-date sentinel.
func Date(t time.Time) Value { return Value{Kind: KindDate, Time: t} }

// InvalidDate returns the invalid-date sentinel.
func InvalidDate() Value { return Value{Kind: KindDate} }

// IsEmpty reports whether v carries no usable value.
func (v Value) IsEmpty() bool {
	return v.Kind == KindEmpty || (v.Kind == KindDate && v.Time.IsZero())
}

// Text is the canonical string form used for searching and hashing.
// Empty values and invalid dates render as "".
func (v Value) Text() string {
	switch v.Kind {
	case KindString:
		return v.Str
	case KindNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case KindDate:
		if v.Time.IsZero() {
			return ""
		}
		return v.Time.Format(dateLayout)
	default:
		return ""
	}
}

// Equal reports value equality. Dates compare by instant.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindString:
		return v.Str == o.Str
	case KindNumber:
		return v.Num == o.Num
	case KindDate:
		return v.Time.Equal(o.Time)
	default:
		return true
	}
}

// MarshalJSON encodes numbers as JSON numbers, strings and valid dates as
// strings, and empties and invalid dates as null.
func (v Value) MarshalJSON() ([]byte, error) {
	switch {
	case v.IsEmpty():
		return []byte("null"), nil
	case v.Kind == KindNumber:
		return json.Marshal(v.Num)
	default:
		return json.Marshal(v.Text())
	}
}

// Compare orders two values: empties (and invalid dates) first, then by kind,
// then lexicographically, numerically or chronologically.
func Compare(a, b Value) int {
	ae, be := a.IsEmpty(), b.IsEmpty()
	switch {
	case ae && be:
		return 0
	case ae:
		return -1
	case be:
		return 1
	}
	if a.Kind != b.Kind {
		if a.Kind < b.Kind {
			return -1
		}
		return 1
	}
	switch a.Kind {
	case KindNumber:
		switch {
		case a.Num < b.Num:
			return -1
		case a.Num > b.Num:
			return 1
		}
		return 0
	case KindDate:
		return a.Time.Compare(b.Time)
	default:
		return strings.Compare(a.Str, b.Str)
	}
}

// Record is one row of the dataset after type coercion. Index is the row's
// position in the loaded source and serves as its only identity.
type Record struct {
	Index  int              `json:"index"`
	Fields map[string]Value `json:"fields"`
}

// Get returns the value of the named field, or the empty sentinel.
func (r Record) Get(name string) Value {
	return r.Fields[name]
}

// RawRecord is a source row before coercion, keyed by header name.
type RawRecord map[string]string
