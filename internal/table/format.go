package table

import (
	"html"
	"math"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// FormatContext carries the state formatting steps may depend on.
type FormatContext struct {
	// Query is the active search query, highlighted by asSearchable.
	Query string
	// HTML switches abbreviations to <abbr> elements and escapes cell text.
	HTML bool
	// Mark wraps one highlighted match. Nil means <mark>…</mark>.
	Mark func(string) string
}

func (fc FormatContext) mark(s string) string {
	if fc.Mark != nil {
		return fc.Mark(s)
	}
	return "<mark>" + s + "</mark>"
}

// displayDateLayout is the month/day/year form shown in cells.
const displayDateLayout = "01/02/2006"

var tagPattern = regexp.MustCompile(`<[^>]+>`)

var currencyNames = map[string]string{
	"CAD": "Canadian Dollar",
	"EUR": "Euro",
	"USD": "United States Dollar",
}

var stateNames = map[string]string{
	"AL": "Alabama", "AK": "Alaska", "AZ": "Arizona", "AR": "Arkansas",
	"CA": "California", "CO": "Colorado", "CT": "Connecticut", "DC": "District of Columbia",
	"DE": "Delaware", "FL": "Florida", "GA": "Georgia", "HI": "Hawaii",
	"ID": "Idaho", "IL": "Illinois", "IN": "Indiana", "IA": "Iowa",
	"KS": "Kansas", "KY": "Kentucky", "LA": "Louisiana", "ME": "Maine",
	"MD": "Maryland", "MA": "Massachusetts", "MI": "Michigan", "MN": "Minnesota",
	"MS": "Mississippi", "MO": "Missouri", "MT": "Montana", "NE": "Nebraska",
	"NV": "Nevada", "NH": "New Hampshire", "NJ": "New Jersey", "NM": "New Mexico",
	"NY": "New York", "NC": "North Carolina", "ND": "North Dakota", "OH": "Ohio",
	"OK": "Oklahoma", "OR": "Oregon", "PA": "Pennsylvania", "RI": "Rhode Island",
	"SC": "South Carolina", "SD": "South Dakota", "TN": "Tennessee", "TX": "Texas",
	"UT": "Utah", "VT": "Vermont", "VA": "Virginia", "WA": "Washington",
	"WV": "West Virginia", "WI": "Wisconsin", "WY": "Wyoming",
}

// StateName returns the full name for a two-letter US state code.
func StateName(code string) (string, bool) {
	n, ok := stateNames[strings.ToUpper(strings.TrimSpace(code))]
	return n, ok
}

// CurrencyName returns the full name for an ISO currency code.
func CurrencyName(code string) (string, bool) {
	n, ok := currencyNames[strings.ToUpper(strings.TrimSpace(code))]
	return n, ok
}

// FormatCell runs the column's format operations over the value of one cell.
// Each step sees the current display string, the typed value and the row.
func FormatCell(c Column, r Record, fc FormatContext) string {
	v := r.Get(c.Name)
	out := v.Text()
	if fc.HTML {
		out = html.EscapeString(out)
	}
	for _, op := range c.Formats {
		out = applyFormat(op, out, v, r, fc)
	}
	return out
}

func applyFormat(op FormatOp, cur string, v Value, r Record, fc FormatContext) string {
	switch op.Op {
	case FormatDate:
		if v.Kind != KindDate {
			return cur
		}
		if v.Time.IsZero() {
			return ""
		}
		return v.Time.Format(displayDateLayout)
	case FormatNumber:
		if v.Kind == KindEmpty {
			return ""
		}
		if v.Kind != KindNumber {
			return cur
		}
		return strconv.FormatFloat(v.Num, 'f', max(op.Decimals, 0), 64)
	case FormatCurrency:
		if v.Kind == KindEmpty {
			return ""
		}
		if v.Kind != KindNumber {
			return cur
		}
		sym := op.Symbol
		if op.SymbolField != "" {
			sym = r.Get(op.SymbolField).Text()
		}
		if fc.HTML {
			sym = html.EscapeString(sym)
		}
		units := op.Units
		if units == 0 {
			units = 1
		}
		return strings.TrimSpace(sym + " " + groupNumber(v.Num/units))
	case FormatCurrencyName:
		return abbreviate(cur, v, currencyNames, fc)
	case FormatStateAbbreviation:
		return abbreviate(cur, v, stateNames, fc)
	case FormatSearchable:
		return Highlight(cur, fc)
	}
	return cur
}

func abbreviate(cur string, v Value, names map[string]string, fc FormatContext) string {
	if !fc.HTML {
		return cur
	}
	title, ok := names[strings.ToUpper(strings.TrimSpace(v.Text()))]
	if !ok {
		return cur
	}
	return `<abbr title="` + html.EscapeString(title) + `">` + cur + `</abbr>`
}

// groupNumber renders n with thousands separators, e.g. 1500000 -> "1,500,000".
func groupNumber(n float64) string {
	p := message.NewPrinter(language.English)
	if n == math.Trunc(n) && math.Abs(n) < 1<<53 {
		return p.Sprintf("%v", int64(n))
	}
	return p.Sprintf("%.2f", n)
}

// Highlight wraps every case-insensitive occurrence of the context query in
// s. In HTML mode s is escaped text: markup is left untouched and matching
// runs on the unescaped text between tags, so a match never splits an entity.
func Highlight(s string, fc FormatContext) string {
	q := strings.TrimSpace(fc.Query)
	if q == "" || s == "" {
		return s
	}
	re, err := regexp.Compile(`(?i)` + regexp.QuoteMeta(q))
	if err != nil {
		return s
	}
	if !fc.HTML {
		return re.ReplaceAllStringFunc(s, fc.mark)
	}
	var b strings.Builder
	last := 0
	for _, loc := range tagPattern.FindAllStringIndex(s, -1) {
		b.WriteString(highlightEscaped(s[last:loc[0]], re, fc))
		b.WriteString(s[loc[0]:loc[1]])
		last = loc[1]
	}
	b.WriteString(highlightEscaped(s[last:], re, fc))
	return b.String()
}

// highlightEscaped marks matches in one run of escaped HTML text and
// re-escapes every piece on output.
func highlightEscaped(seg string, re *regexp.Regexp, fc FormatContext) string {
	if seg == "" {
		return seg
	}
	text := html.UnescapeString(seg)
	var b strings.Builder
	last := 0
	for _, loc := range re.FindAllStringIndex(text, -1) {
		b.WriteString(html.EscapeString(text[last:loc[0]]))
		b.WriteString(fc.mark(html.EscapeString(text[loc[0]:loc[1]])))
		last = loc[1]
	}
	b.WriteString(html.EscapeString(text[last:]))
	return b.String()
}
