package table

import "slices"

// Direction is a sort order.
type Direction string

const (
	Unsorted   Direction = ""
	Ascending  Direction = "ascending"
	Descending Direction = "descending"
)

// Opposite returns the other direction; Unsorted becomes Ascending.
func (d Direction) Opposite() Direction {
	if d == Ascending {
		return Descending
	}
	return Ascending
}

// Short is a compact label used by renderers.
func (d Direction) Short() string {
	switch d {
	case Ascending:
		return "asc"
	case Descending:
		return "desc"
	}
	return ""
}

// ParseDirection accepts asc/ascending, desc/descending and none.
func ParseDirection(s string) (Direction, bool) {
	switch s {
	case "asc", "ascending":
		return Ascending, true
	case "desc", "descending":
		return Descending, true
	case "", "none":
		return Unsorted, true
	}
	return Unsorted, false
}

// SortState is the currently sorted-by column and direction.
type SortState struct {
	Column    string    `json:"column,omitempty"`
	Direction Direction `json:"direction,omitempty"`
}

// Active reports whether a sort is in effect.
func (s SortState) Active() bool { return s.Column != "" && s.Direction != Unsorted }

// Click returns the state after a header click on column: the same column
// toggles direction, any other column starts ascending.
func (s SortState) Click(column string) SortState {
	if s.Active() && s.Column == column {
		return SortState{Column: column, Direction: s.Direction.Opposite()}
	}
	return SortState{Column: column, Direction: Ascending}
}

// Sort returns a re-ordered copy of records by column in direction. Ties keep
// original insertion order (Record.Index) in both directions.
func Sort(records []Record, column string, dir Direction) []Record {
	out := slices.Clone(records)
	if dir == Unsorted {
		slices.SortFunc(out, byIndex)
		return out
	}
	slices.SortFunc(out, func(a, b Record) int {
		c := Compare(a.Get(column), b.Get(column))
		if dir == Descending {
			c = -c
		}
		if c != 0 {
			return c
		}
		return byIndex(a, b)
	})
	return out
}

func byIndex(a, b Record) int { return a.Index - b.Index }
