// Package render turns table snapshots into text: Markdown, a bordered
// terminal table, or JSON for other front-ends.
package render

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/KaramelBytes/tabula/internal/table"
)

// FilterLine summarizes the active search, or "" when there is none.
func FilterLine(s table.Snapshot) string {
	if !s.Filter.Active() {
		return ""
	}
	noun := "results"
	if s.Filter.Matched == 1 {
		noun = "result"
	}
	return fmt.Sprintf("%d %s for %q (of %d)", s.Filter.Matched, noun, s.Filter.Query, s.Filter.Total)
}

// SortLine names the sort column, or "" when unsorted.
func SortLine(s table.Snapshot) string {
	label := s.SortLabel()
	if label == "" {
		return ""
	}
	return fmt.Sprintf("sorted by %s (%s)", label, s.Sort.Direction.Short())
}

// PageLine describes the visible slice.
func PageLine(s table.Snapshot) string {
	if s.Page.All {
		return fmt.Sprintf("all %d rows", s.Page.Total)
	}
	if s.Page.Total == 0 {
		return "no rows"
	}
	return fmt.Sprintf("page %d of %d, rows %d-%d of %d", s.Page.Number, s.Page.TotalPages, s.Page.First, s.Page.Last, s.Page.Total)
}

// StatusLines returns the non-empty status lines in display order.
func StatusLines(s table.Snapshot) []string {
	var out []string
	for _, l := range []string{FilterLine(s), SortLine(s), PageLine(s)} {
		if l != "" {
			out = append(out, l)
		}
	}
	return out
}

// Pager renders a page window as text, e.g. "« 1 … 8 9 [10] 11 12 … 40 … 99 »".
// Disabled sentinels are wrapped in parentheses.
func Pager(w table.PageWindow) string {
	parts := make([]string, 0, len(w))
	for _, l := range w {
		label := l.Label()
		switch {
		case l.Active:
			label = "[" + label + "]"
		case l.Disabled:
			label = "(" + label + ")"
		}
		if l.GapBefore {
			parts = append(parts, "…")
		}
		parts = append(parts, label)
	}
	return strings.Join(parts, " ")
}

// JSON encodes the snapshot with indentation.
func JSON(s table.Snapshot) ([]byte, error) {
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	return b, nil
}

// Markdown renders the snapshot as a Markdown table followed by status lines.
func Markdown(s table.Snapshot) string {
	var b strings.Builder
	b.WriteString("| ")
	for i, h := range s.Columns {
		if i > 0 {
			b.WriteString(" | ")
		}
		b.WriteString(safeVal(headerLabel(h)))
	}
	b.WriteString(" |\n| ")
	for i, h := range s.Columns {
		if i > 0 {
			b.WriteString(" | ")
		}
		if h.Numeric {
			b.WriteString("---:")
		} else {
			b.WriteString("---")
		}
	}
	b.WriteString(" |\n")
	for _, row := range s.Rows {
		b.WriteString("| ")
		for i, c := range row.Cells {
			if i > 0 {
				b.WriteString(" | ")
			}
			b.WriteString(safeVal(c.Display))
		}
		b.WriteString(" |\n")
	}
	if lines := StatusLines(s); len(lines) > 0 {
		b.WriteString("\n")
		for _, l := range lines {
			b.WriteString("- ")
			b.WriteString(l)
			b.WriteString("\n")
		}
	}
	if len(s.Window) > 0 {
		b.WriteString("\n")
		b.WriteString(Pager(s.Window))
		b.WriteString("\n")
	}
	return b.String()
}

func headerLabel(h table.Header) string {
	switch h.Sorted {
	case table.Ascending:
		return h.Label + " ▲"
	case table.Descending:
		return h.Label + " ▼"
	}
	return h.Label
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
