package table

import (
	"fmt"
	"html"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fundingColumns() []Column {
	return []Column{
		{Name: "company", Label: "Company", Transform: TransformNoop, Formats: []FormatOp{{Op: FormatSearchable}}},
		{Name: "state", Label: "State", Transform: TransformNoop, Formats: []FormatOp{{Op: FormatSearchable}, {Op: FormatStateAbbreviation}}, Processors: []ProcessorKind{ProcessorDistinct}},
		{Name: "numEmps", Label: "Employees", Transform: TransformNumber, Formats: []FormatOp{{Op: FormatNumber}, {Op: FormatSearchable}}, Processors: []ProcessorKind{ProcessorMax}},
		{Name: "fundedDate", Label: "Funded When", Transform: TransformDate, Formats: []FormatOp{{Op: FormatDate}, {Op: FormatSearchable}}},
		{Name: "raisedAmt", Label: "Amount Raised", Transform: TransformNumber, Formats: []FormatOp{{Op: FormatCurrency, Units: 1, SymbolField: "raisedCurrency"}}, Processors: []ProcessorKind{ProcessorMax}},
		{Name: "raisedCurrency", Label: "Currency", Transform: TransformNoop, Formats: []FormatOp{{Op: FormatCurrencyName}}},
	}
}

func fundingRaw() []RawRecord {
	return []RawRecord{
		{"company": "Acme", "state": "AZ", "numEmps": "17", "fundedDate": "2007-05-01", "raisedAmt": "1500000", "raisedCurrency": "USD"},
		{"company": "Zeta", "state": "CA", "numEmps": "3", "fundedDate": "1-Jan-08", "raisedAmt": "250000", "raisedCurrency": "USD"},
		{"company": "beta labs", "state": "NY", "numEmps": "n/a", "fundedDate": "someday", "raisedAmt": "", "raisedCurrency": "EUR"},
		{"company": "Omega", "state": "AZ", "numEmps": "9", "fundedDate": "03/15/2006", "raisedAmt": "3000000", "raisedCurrency": "CAD"},
	}
}

func fundingDataset(t *testing.T) *Dataset {
	t.Helper()
	ds, err := Build("funding.csv", fundingRaw(), fundingColumns())
	require.NoError(t, err)
	return ds
}

// numbered returns n single-column records whose value equals their index.
func numbered(n int) []Record {
	out := make([]Record, n)
	for i := range out {
		out[i] = Record{Index: i, Fields: map[string]Value{"n": Number(float64(i))}}
	}
	return out
}

func indexes(rs []Record) []int {
	out := make([]int, len(rs))
	for i, r := range rs {
		out[i] = r.Index
	}
	return out
}

func TestTransform_CoercesWithSentinels(t *testing.T) {
	ds := fundingDataset(t)
	require.Len(t, ds.Records, 4)

	r := ds.Records[2]
	assert.Equal(t, KindEmpty, r.Get("numEmps").Kind)
	assert.Equal(t, KindDate, r.Get("fundedDate").Kind)
	assert.True(t, r.Get("fundedDate").IsEmpty(), "invalid date should be the zero-time sentinel")
	assert.Equal(t, "beta labs", r.Get("company").Str)

	assert.Equal(t, 17.0, ds.Records[0].Get("numEmps").Num)
	assert.Equal(t, "2008-01-01", ds.Records[1].Get("fundedDate").Text())
	assert.Equal(t, "2006-03-15", ds.Records[3].Get("fundedDate").Text())

	assert.Equal(t, 1, ds.Stats.Coerced["numEmps"])
	assert.Equal(t, 1, ds.Stats.Coerced["fundedDate"])
	assert.Zero(t, ds.Stats.Coerced["raisedAmt"], "blank input is missing, not coerced")
	assert.Equal(t, 2, ds.Stats.CoercedTotal())
	for i, rec := range ds.Records {
		assert.Equal(t, i, rec.Index)
		assert.Len(t, rec.Fields, len(fundingColumns()))
	}
}

func TestTransform_ReportsMissingColumns(t *testing.T) {
	cols := []Column{{Name: "a"}, {Name: "b", Transform: TransformNumber}}
	recs, stats := Transform([]RawRecord{{"a": "x"}}, cols)
	require.Len(t, recs, 1)
	assert.Equal(t, []string{"b"}, stats.Missing)
	assert.Equal(t, KindEmpty, recs[0].Get("b").Kind)
}

func TestCoerce_RejectsNumericPrefix(t *testing.T) {
	for _, raw := range []string{"12 staff", "1,500", "$100", "3e"} {
		v, coerced := Coerce(TransformNumber, raw)
		assert.Equal(t, KindEmpty, v.Kind, "input %q", raw)
		assert.True(t, coerced, "input %q", raw)
	}
	v, coerced := Coerce(TransformNumber, "  12\u00A0")
	assert.Equal(t, 12.0, v.Num)
	assert.False(t, coerced)
}

func TestParseErrors(t *testing.T) {
	_, err := ParseNumber("abc")
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, KindNumber, pe.Kind)

	_, err = ParseNumber("NaN")
	assert.Error(t, err)

	_, err = ParseDate("not a date")
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, KindDate, pe.Kind)

	f, err := ParseNumber(" 12.5 ")
	require.NoError(t, err)
	assert.Equal(t, 12.5, f)
}

func TestProcessors(t *testing.T) {
	vals := []Value{Number(3), Number(17), Number(9), Number(17)}
	m, ok := MaxOf(vals)
	require.True(t, ok)
	assert.Equal(t, 17.0, m)

	_, ok = MaxOf([]Value{Empty(), String("x")})
	assert.False(t, ok)

	d := DistinctOf([]Value{String("a"), String("b"), String("a"), String("c"), String("b")})
	assert.Equal(t, []Value{String("a"), String("b"), String("c")}, d)

	ds := fundingDataset(t)
	emps, _ := ds.Column("numEmps")
	assert.True(t, emps.HasMax)
	assert.Equal(t, 17.0, emps.Max)
	state, _ := ds.Column("state")
	assert.Equal(t, []Value{String("AZ"), String("CA"), String("NY")}, state.Distinct)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		cols []Column
		want string
	}{
		{"empty", nil, "at least one column"},
		{"blank name", []Column{{Name: " "}}, "must not be empty"},
		{"duplicate", []Column{{Name: "a"}, {Name: "a"}}, "duplicate"},
		{"transform", []Column{{Name: "a", Transform: "toBool"}}, "unknown transform"},
		{"processor", []Column{{Name: "a", Processors: []ProcessorKind{"sum"}}}, "unknown processor"},
		{"format", []Column{{Name: "a", Formats: []FormatOp{{Op: "asEmoji"}}}}, "unknown format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.cols)
			var ce *ConfigurationError
			require.ErrorAs(t, err, &ce)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
	assert.NoError(t, Validate(fundingColumns()))
}

func TestFilter(t *testing.T) {
	ds := fundingDataset(t)

	all, stats := Filter(ds.Records, "   ")
	assert.Equal(t, indexes(ds.Records), indexes(all))
	assert.Equal(t, 4, stats.Matched)
	assert.False(t, stats.Active())

	got, stats := Filter(ds.Records, "az")
	assert.Equal(t, []int{0, 3}, indexes(got))
	assert.Equal(t, FilterStats{Query: "az", Matched: 2, Total: 4}, stats)

	got, _ = Filter(ds.Records, "arizona")
	assert.Empty(t, got, "search is literal, not semantic")

	got, _ = Filter(ds.Records, "BETA")
	assert.Equal(t, []int{2}, indexes(got))

	got, _ = Filter(ds.Records, "2008-01")
	assert.Equal(t, []int{1}, indexes(got), "dates are searched in canonical form")
}

func TestFilter_SubsetPreservesOrder(t *testing.T) {
	recs := numbered(40)
	for _, q := range []string{"1", "2", "3", "39", "x", ""} {
		got, _ := Filter(recs, q)
		last := -1
		for _, r := range got {
			assert.Greater(t, r.Index, last, "query %q", q)
			last = r.Index
		}
	}
}

func TestSort(t *testing.T) {
	ds := fundingDataset(t)

	asc := Sort(ds.Records, "numEmps", Ascending)
	assert.Equal(t, []int{2, 1, 3, 0}, indexes(asc), "missing values sort first")
	desc := Sort(ds.Records, "numEmps", Descending)
	assert.Equal(t, []int{0, 3, 1, 2}, indexes(desc))

	byDate := Sort(ds.Records, "fundedDate", Ascending)
	assert.Equal(t, []int{2, 3, 0, 1}, indexes(byDate))

	byName := Sort(ds.Records, "company", Ascending)
	assert.Equal(t, []int{0, 3, 1, 2}, indexes(byName), "lexicographic compare is case-sensitive")

	assert.ElementsMatch(t, indexes(ds.Records), indexes(asc))
	assert.Equal(t, []int{0, 1, 2, 3}, indexes(ds.Records), "input must not be mutated")
}

func TestSort_TiesKeepInsertionOrder(t *testing.T) {
	recs := []Record{
		{Index: 0, Fields: map[string]Value{"s": String("AZ")}},
		{Index: 1, Fields: map[string]Value{"s": String("CA")}},
		{Index: 2, Fields: map[string]Value{"s": String("AZ")}},
		{Index: 3, Fields: map[string]Value{"s": String("CA")}},
	}
	assert.Equal(t, []int{0, 2, 1, 3}, indexes(Sort(recs, "s", Ascending)))
	assert.Equal(t, []int{1, 3, 0, 2}, indexes(Sort(recs, "s", Descending)))
	// Pre-shuffled input still breaks ties by index.
	shuffled := []Record{recs[2], recs[3], recs[0], recs[1]}
	assert.Equal(t, []int{0, 2, 1, 3}, indexes(Sort(shuffled, "s", Ascending)))
}

func TestSortState_Click(t *testing.T) {
	var s SortState
	s = s.Click("a")
	assert.Equal(t, SortState{"a", Ascending}, s)
	s = s.Click("a")
	assert.Equal(t, SortState{"a", Descending}, s)
	s = s.Click("a")
	assert.Equal(t, SortState{"a", Ascending}, s)
	s = s.Click("a").Click("b")
	assert.Equal(t, SortState{"b", Ascending}, s, "a different column resets to ascending")
}

func TestPaginate(t *testing.T) {
	recs := numbered(25)

	p, err := Paginate(recs, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, indexes(recs[0:10]), indexes(p.Visible))
	assert.Equal(t, 3, p.TotalPages)

	p, err = Paginate(recs, 2, 10)
	require.NoError(t, err)
	assert.Equal(t, indexes(recs[20:25]), indexes(p.Visible))
	assert.Equal(t, 20, p.First)
	assert.Equal(t, 25, p.Last)

	_, err = Paginate(recs, 3, 10)
	assert.ErrorIs(t, err, ErrPageOutOfRange)
	_, err = Paginate(recs, -2, 10)
	assert.ErrorIs(t, err, ErrPageOutOfRange)

	p, err = Paginate(recs, AllPages, 10)
	require.NoError(t, err)
	assert.Len(t, p.Visible, 25)
	assert.Empty(t, p.Window)

	p, err = Paginate(nil, 0, 10)
	require.NoError(t, err)
	assert.Empty(t, p.Visible)

	_, err = Paginate(recs, 0, 0)
	var ce *ConfigurationError
	assert.ErrorAs(t, err, &ce)

	for page := 0; page < 3; page++ {
		p, err := Paginate(recs, page, 10)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(p.Visible), 10)
	}
}

func TestNewWindow(t *testing.T) {
	tests := []struct {
		page, total int
		pages       []int
		gaps        []int
		prevOff     bool
		nextOff     bool
	}{
		{page: 0, total: 3, pages: []int{0, 1, 2}, prevOff: true},
		{page: 2, total: 3, pages: []int{0, 1, 2}, nextOff: true},
		{page: 0, total: 1, pages: []int{0}, prevOff: true, nextOff: true},
		{page: 0, total: 0, pages: nil, prevOff: true, nextOff: true},
		{page: 10, total: 100, pages: []int{0, 8, 9, 10, 11, 12, 40, 99}, gaps: []int{8, 40, 99}},
		{page: 50, total: 100, pages: []int{0, 20, 48, 49, 50, 51, 52, 80, 99}, gaps: []int{20, 48, 80, 99}},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d_of_%d", tt.page, tt.total), func(t *testing.T) {
			w := NewWindow(tt.page, tt.total)
			require.GreaterOrEqual(t, len(w), 2)
			assert.Equal(t, LinkPrev, w[0].Kind)
			assert.Equal(t, LinkNext, w[len(w)-1].Kind)
			assert.Equal(t, tt.prevOff, w[0].Disabled)
			assert.Equal(t, tt.nextOff, w[len(w)-1].Disabled)
			assert.Equal(t, tt.pages, w.Pages())

			var gaps []int
			for _, l := range w {
				if l.GapBefore {
					gaps = append(gaps, l.Page)
				}
				if l.Kind == LinkPage {
					assert.Equal(t, l.Page == tt.page, l.Active)
				}
			}
			assert.Equal(t, tt.gaps, gaps)
		})
	}
	assert.Equal(t, "«", NewWindow(0, 2)[0].Label())
	assert.Equal(t, "1", NewWindow(0, 2)[1].Label())
}

func TestPageSizeFor(t *testing.T) {
	assert.Equal(t, 9, PageSizeFor(400, []float64{40, 40, 40}))
	// Weighted average of 30,30,60 is 40.
	assert.Equal(t, 9, PageSizeFor(400, []float64{30, 30, 60}))
	assert.Equal(t, 1, PageSizeFor(10, []float64{40}))
	assert.Equal(t, 1, PageSizeFor(400, nil))
}

func TestFormatCell(t *testing.T) {
	ds := fundingDataset(t)
	col := func(name string) Column {
		c, ok := ds.Column(name)
		require.True(t, ok)
		return c
	}
	html := FormatContext{HTML: true}
	plain := FormatContext{}

	assert.Equal(t, "USD 1,500,000", FormatCell(col("raisedAmt"), ds.Records[0], plain))
	assert.Equal(t, "", FormatCell(col("raisedAmt"), ds.Records[2], plain))
	assert.Equal(t, "05/01/2007", FormatCell(col("fundedDate"), ds.Records[0], plain))
	assert.Equal(t, "", FormatCell(col("fundedDate"), ds.Records[2], plain))
	assert.Equal(t, "17", FormatCell(col("numEmps"), ds.Records[0], plain))
	assert.Equal(t, "", FormatCell(col("numEmps"), ds.Records[2], plain))

	assert.Equal(t, `<abbr title="Arizona">AZ</abbr>`, FormatCell(col("state"), ds.Records[0], html))
	assert.Equal(t, "AZ", FormatCell(col("state"), ds.Records[0], plain))
	assert.Equal(t, `<abbr title="Euro">EUR</abbr>`, FormatCell(col("raisedCurrency"), ds.Records[2], html))

	hl := FormatContext{HTML: true, Query: "az"}
	assert.Equal(t, `<abbr title="Arizona"><mark>AZ</mark></abbr>`, FormatCell(col("state"), ds.Records[0], hl))

	upper := FormatContext{Query: "ta", Mark: strings.ToUpper}
	assert.Equal(t, "beTA labs", FormatCell(col("company"), ds.Records[2], upper))
}

func TestHighlight_SkipsMarkupInHTML(t *testing.T) {
	fc := FormatContext{HTML: true, Query: "title"}
	assert.Equal(t, `<abbr title="x">a <mark>Title</mark></abbr>`, Highlight(`<abbr title="x">a Title</abbr>`, fc))
	assert.Equal(t, "plain", Highlight("plain", FormatContext{}))
}

func TestHighlight_KeepsEntitiesWhole(t *testing.T) {
	escaped := html.EscapeString("AT&T <labs>")
	for _, q := range []string{"amp", "lt", "gt;"} {
		assert.Equal(t, escaped, Highlight(escaped, FormatContext{HTML: true, Query: q}), "query %q", q)
	}
	assert.Equal(t, "AT<mark>&amp;</mark>T", Highlight("AT&amp;T", FormatContext{HTML: true, Query: "&"}))
	assert.Equal(t, "<mark>AT&amp;T</mark> inc", Highlight("AT&amp;T inc", FormatContext{HTML: true, Query: "at&t"}))
	assert.Equal(t, "AT&<mark>amp</mark>;T", Highlight("AT&amp;T", FormatContext{Query: "amp"}), "plain text is matched as is")
}

func TestBarFor(t *testing.T) {
	c := Column{Name: "n", HasMax: true, Max: 200}
	b := BarFor(c, Number(50))
	require.NotNil(t, b)
	assert.Equal(t, 25.0, b.Percent)
	assert.Equal(t, "25.00%", b.Tooltip)
	assert.Equal(t, 0.0, BarFor(c, Empty()).Percent)
	assert.Nil(t, BarFor(Column{Name: "n"}, Number(1)))
}
