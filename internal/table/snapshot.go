package table

import "fmt"

// Snapshot is the plain data handed to a renderer: nothing in it refers to
// any output technology.
type Snapshot struct {
	Columns []Header    `json:"columns"`
	Rows    []Row       `json:"rows"`
	Window  PageWindow  `json:"window"`
	Sort    SortState   `json:"sort"`
	Filter  FilterStats `json:"filter"`
	Page    PageStats   `json:"page"`
}

// Header describes one column header.
type Header struct {
	Name    string    `json:"name"`
	Label   string    `json:"label"`
	Class   string    `json:"class,omitempty"`
	Numeric bool      `json:"numeric,omitempty"`
	Sorted  Direction `json:"sorted,omitempty"`
}

// Row is one displayed record.
type Row struct {
	Index int    `json:"index"`
	Cells []Cell `json:"cells"`
}

// Cell is one formatted value with its optional mini bar.
type Cell struct {
	Column  string `json:"column"`
	Display string `json:"display"`
	Value   Value  `json:"value"`
	Bar     *Bar   `json:"bar,omitempty"`
}

// Bar is the width of a mini bar relative to the column maximum.
type Bar struct {
	Percent float64 `json:"percent"`
	Tooltip string  `json:"tooltip"`
}

// PageStats describes the visible slice in 1-based terms.
type PageStats struct {
	Number     int  `json:"number"`
	TotalPages int  `json:"total_pages"`
	First      int  `json:"first"`
	Last       int  `json:"last"`
	Total      int  `json:"total"`
	All        bool `json:"all,omitempty"`
}

// BarFor computes a cell's mini bar. Only numeric columns with a positive
// maximum get one; missing values count as zero.
func BarFor(c Column, v Value) *Bar {
	if !c.HasMax || c.Max <= 0 {
		return nil
	}
	n := 0.0
	if v.Kind == KindNumber {
		n = v.Num
	} else if v.Kind != KindEmpty {
		return nil
	}
	pct := n / c.Max * 100
	return &Bar{Percent: pct, Tooltip: fmt.Sprintf("%.2f%%", pct)}
}

// Snapshot formats the current page. The view's query overrides fc.Query.
func (v View) Snapshot(fc FormatContext) Snapshot {
	fc.Query = v.Filter.Query
	p := v.Current()

	s := Snapshot{
		Columns: make([]Header, len(v.Columns)),
		Rows:    make([]Row, 0, len(p.Visible)),
		Window:  p.Window,
		Sort:    v.Sort,
		Filter:  v.Filter,
		Page: PageStats{
			Number:     p.Number + 1,
			TotalPages: p.TotalPages,
			First:      min(p.First+1, p.Last),
			Last:       p.Last,
			Total:      p.Total,
			All:        p.Number == AllPages,
		},
	}
	if s.Page.All {
		s.Page.Number = 0
	}
	for i, c := range v.Columns {
		h := Header{Name: c.Name, Label: c.DisplayLabel(), Class: c.Class, Numeric: c.Numeric()}
		if v.Sort.Active() && v.Sort.Column == c.Name {
			h.Sorted = v.Sort.Direction
		}
		s.Columns[i] = h
	}
	for _, r := range p.Visible {
		row := Row{Index: r.Index, Cells: make([]Cell, len(v.Columns))}
		for i, c := range v.Columns {
			val := r.Get(c.Name)
			row.Cells[i] = Cell{
				Column:  c.Name,
				Display: FormatCell(c, r, fc),
				Value:   val,
				Bar:     BarFor(c, val),
			}
		}
		s.Rows = append(s.Rows, row)
	}
	return s
}

// SortLabel names the sorted-by column for status lines, or "" when unsorted.
func (s Snapshot) SortLabel() string {
	if !s.Sort.Active() {
		return ""
	}
	for _, h := range s.Columns {
		if h.Name == s.Sort.Column {
			return h.Label
		}
	}
	return s.Sort.Column
}
