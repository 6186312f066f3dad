package table

import (
	"strings"

	"golang.org/x/text/cases"
)

// FilterStats is the side-channel statistic reported next to a filtered set.
type FilterStats struct {
	Query   string `json:"query"`
	Matched int    `json:"matched"`
	Total   int    `json:"total"`
}

// Active reports whether a non-empty query is in effect.
func (s FilterStats) Active() bool { return s.Query != "" }

// Filter keeps the records where any field's text contains query, compared
// with Unicode case folding. The query is trimmed first; an empty query
// matches everything. Input order is preserved.
func Filter(all []Record, query string) ([]Record, FilterStats) {
	q := strings.TrimSpace(query)
	stats := FilterStats{Query: q, Total: len(all)}
	if q == "" {
		out := make([]Record, len(all))
		copy(out, all)
		stats.Matched = len(out)
		return out, stats
	}
	fold := cases.Fold()
	needle := fold.String(q)
	out := make([]Record, 0, len(all))
	for _, r := range all {
		if recordContains(r, needle, fold) {
			out = append(out, r)
		}
	}
	stats.Matched = len(out)
	return out, stats
}

func recordContains(r Record, needle string, fold cases.Caser) bool {
	for _, v := range r.Fields {
		if strings.Contains(fold.String(v.Text()), needle) {
			return true
		}
	}
	return false
}
