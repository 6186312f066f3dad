// Package analysis summarizes a typed dataset column by column.
package analysis

import (
	"fmt"
	"math"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/KaramelBytes/tabula/internal/table"
)

// Options controls the summary.
type Options struct {
	// SampleRows is how many leading rows to include; 0 means 5.
	SampleRows int
	// TopValues caps the categorical top list; 0 means 8.
	TopValues int
	// GroupBy computes per-group numeric summaries keyed by these columns.
	GroupBy []string
	// Correlations computes Pearson correlations among numeric columns.
	Correlations bool
	// Outliers counts values whose robust z-score exceeds OutlierThreshold (default 3.5).
	Outliers         bool
	OutlierThreshold float64
}

// DefaultOptions returns the options used by the describe command.
func DefaultOptions() Options {
	return Options{SampleRows: 5, TopValues: 8}
}

// Report is a Markdown-friendly summary of a dataset.
type Report struct {
	Name     string
	Rows     int
	Cols     []ColumnSummary
	Samples  [][]string
	Warnings []string
	Groups   []GroupResult
	Corr     *CorrMatrix
}

// ColumnSummary captures the kind and statistics of one column.
type ColumnSummary struct {
	Name    string
	Label   string
	Kind    string // numeric|datetime|categorical|text|empty
	NonNull int
	Missing int
	Coerced int
	Unique  int
	// Numeric stats
	Min  float64
	Max  float64
	Mean float64
	Std  float64
	// Outliers (robust z via MAD)
	OutliersCount    int
	OutliersMaxAbsZ  float64
	OutlierThreshold float64
	// Date range
	First time.Time
	Last  time.Time
	// Categorical top values
	TopValues []CategoryCount
}

type CategoryCount struct {
	Value string
	Count int
}

// GroupResult aggregates numeric columns for one group key.
type GroupResult struct {
	Key     string
	Size    int
	Metrics map[string]NumSummary
}

type NumSummary struct {
	Count          int
	Min, Max, Mean float64
}

// CorrMatrix is a symmetric Pearson correlation matrix.
type CorrMatrix struct {
	Columns []string
	Values  [][]float64
}

// welford accumulates count, mean, variance and range in one pass.
type welford struct {
	n        int
	mean, m2 float64
	min, max float64
}

func (w *welford) add(x float64) {
	if w.n == 0 || x < w.min {
		w.min = x
	}
	if w.n == 0 || x > w.max {
		w.max = x
	}
	w.n++
	delta := x - w.mean
	w.mean += delta / float64(w.n)
	w.m2 += delta * (x - w.mean)
}

func (w welford) std() float64 {
	if w.n < 2 {
		return 0
	}
	return math.Sqrt(w.m2 / float64(w.n-1))
}

// Summarize walks every record once per column.
func Summarize(ds *table.Dataset, opt Options) *Report {
	if opt.SampleRows <= 0 {
		opt.SampleRows = 5
	}
	if opt.TopValues <= 0 {
		opt.TopValues = 8
	}
	rep := &Report{Name: ds.Source, Rows: len(ds.Records)}
	for _, m := range ds.Stats.Missing {
		rep.Warnings = append(rep.Warnings, fmt.Sprintf("column %q is not in the source header", m))
	}
	if n := ds.Stats.CoercedTotal(); n > 0 {
		rep.Warnings = append(rep.Warnings, fmt.Sprintf("%d cells could not be parsed and were left empty", n))
	}

	numeric := map[string][]float64{}
	for _, c := range ds.Columns {
		s, nums := summarizeColumn(c, ds.Records, opt)
		s.Coerced = ds.Stats.Coerced[c.Name]
		rep.Cols = append(rep.Cols, s)
		if s.Kind == "numeric" {
			numeric[c.Name] = nums
		}
	}

	for i, r := range ds.Records {
		if i == opt.SampleRows {
			break
		}
		row := make([]string, len(ds.Columns))
		for j, c := range ds.Columns {
			row[j] = r.Get(c.Name).Text()
		}
		rep.Samples = append(rep.Samples, row)
	}

	if len(opt.GroupBy) > 0 {
		groups, err := groupBy(ds, opt.GroupBy, numeric)
		if err != nil {
			rep.Warnings = append(rep.Warnings, err.Error())
		}
		rep.Groups = groups
	}
	if opt.Correlations {
		rep.Corr = correlations(ds, numeric)
	}
	return rep
}

func summarizeColumn(c table.Column, records []table.Record, opt Options) (ColumnSummary, []float64) {
	s := ColumnSummary{Name: c.Name, Label: c.DisplayLabel()}
	var (
		w      welford
		nums   []float64
		dates  []time.Time
		counts = map[string]int{}
	)
	for _, r := range records {
		v := r.Get(c.Name)
		if v.IsEmpty() || strings.TrimSpace(v.Text()) == "" {
			s.Missing++
			continue
		}
		s.NonNull++
		switch v.Kind {
		case table.KindNumber:
			w.add(v.Num)
			nums = append(nums, v.Num)
		case table.KindDate:
			dates = append(dates, v.Time)
		default:
			counts[v.Text()]++
		}
	}

	switch {
	case s.NonNull == 0:
		s.Kind = "empty"
	case c.Transform == table.TransformNumber:
		s.Kind = "numeric"
		s.Min, s.Max, s.Mean, s.Std = w.min, w.max, w.mean, w.std()
		s.Unique = len(table.DistinctOf(numbersAsValues(nums)))
		if opt.Outliers && len(nums) >= 8 {
			s.OutlierThreshold = opt.OutlierThreshold
			if s.OutlierThreshold <= 0 {
				s.OutlierThreshold = 3.5
			}
			s.OutliersCount, s.OutliersMaxAbsZ = robustOutliers(nums, s.OutlierThreshold)
		}
	case c.Transform == table.TransformDate && len(dates) > 0:
		s.Kind = "datetime"
		s.First, s.Last = slices.MinFunc(dates, time.Time.Compare), slices.MaxFunc(dates, time.Time.Compare)
		s.Unique = len(table.DistinctOf(datesAsValues(dates)))
	default:
		s.Unique = len(counts)
		s.TopValues = topValues(counts, opt.TopValues)
		// A column whose values mostly repeat reads as categorical.
		if s.Unique*2 <= s.NonNull {
			s.Kind = "categorical"
		} else {
			s.Kind = "text"
		}
	}
	return s, nums
}

func numbersAsValues(nums []float64) []table.Value {
	out := make([]table.Value, len(nums))
	for i, n := range nums {
		out[i] = table.Number(n)
	}
	return out
}

func datesAsValues(ts []time.Time) []table.Value {
	out := make([]table.Value, len(ts))
	for i, t := range ts {
		out[i] = table.Date(t)
	}
	return out
}

func topValues(counts map[string]int, limit int) []CategoryCount {
	tops := make([]CategoryCount, 0, len(counts))
	for k, v := range counts {
		tops = append(tops, CategoryCount{Value: k, Count: v})
	}
	sort.Slice(tops, func(i, j int) bool {
		if tops[i].Count == tops[j].Count {
			return tops[i].Value < tops[j].Value
		}
		return tops[i].Count > tops[j].Count
	})
	if len(tops) > limit {
		tops = tops[:limit]
	}
	return tops
}

func groupBy(ds *table.Dataset, keys []string, numeric map[string][]float64) ([]GroupResult, error) {
	for _, k := range keys {
		if _, ok := ds.Column(k); !ok {
			return nil, fmt.Errorf("group by: %w: %q", table.ErrUnknownColumn, k)
		}
	}
	type acc struct {
		size    int
		metrics map[string]*welford
	}
	groups := map[string]*acc{}
	for _, r := range ds.Records {
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = fmt.Sprintf("%s=%s", k, safeVal(r.Get(k).Text()))
		}
		key := strings.Join(parts, " | ")
		g := groups[key]
		if g == nil {
			g = &acc{metrics: map[string]*welford{}}
			groups[key] = g
		}
		g.size++
		for name := range numeric {
			v := r.Get(name)
			if v.Kind != table.KindNumber {
				continue
			}
			w := g.metrics[name]
			if w == nil {
				w = &welford{}
				g.metrics[name] = w
			}
			w.add(v.Num)
		}
	}

	out := make([]GroupResult, 0, len(groups))
	for k, g := range groups {
		gr := GroupResult{Key: k, Size: g.size, Metrics: map[string]NumSummary{}}
		for name, w := range g.metrics {
			gr.Metrics[name] = NumSummary{Count: w.n, Min: w.min, Max: w.max, Mean: w.mean}
		}
		out = append(out, gr)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Size == out[j].Size {
			return out[i].Key < out[j].Key
		}
		return out[i].Size > out[j].Size
	})
	if len(out) > 20 {
		out = out[:20]
	}
	return out, nil
}

// correlations uses pairwise-complete rows for each pair of numeric columns.
func correlations(ds *table.Dataset, numeric map[string][]float64) *CorrMatrix {
	var names []string
	for _, c := range ds.Columns {
		if _, ok := numeric[c.Name]; ok {
			names = append(names, c.Name)
		}
	}
	if len(names) < 2 {
		return nil
	}
	n := len(names)
	mat := make([][]float64, n)
	for i := range mat {
		mat[i] = make([]float64, n)
		mat[i][i] = 1
	}
	for a := 0; a < n; a++ {
		for b := a + 1; b < n; b++ {
			r := pearson(ds.Records, names[a], names[b])
			mat[a][b], mat[b][a] = r, r
		}
	}
	return &CorrMatrix{Columns: names, Values: mat}
}

func pearson(records []table.Record, x, y string) float64 {
	var n, sx, sy, sxx, syy, sxy float64
	for _, r := range records {
		vx, vy := r.Get(x), r.Get(y)
		if vx.Kind != table.KindNumber || vy.Kind != table.KindNumber {
			continue
		}
		n++
		sx += vx.Num
		sy += vy.Num
		sxx += vx.Num * vx.Num
		syy += vy.Num * vy.Num
		sxy += vx.Num * vy.Num
	}
	if n < 2 {
		return 0
	}
	denom := math.Sqrt((n*sxx - sx*sx) * (n*syy - sy*sy))
	if denom == 0 || math.IsNaN(denom) {
		return 0
	}
	return math.Max(-1, math.Min(1, (n*sxy-sx*sy)/denom))
}

func robustOutliers(vals []float64, thr float64) (count int, maxAbsZ float64) {
	median, mad := medianMAD(vals)
	if mad == 0 {
		return 0, 0
	}
	for _, v := range vals {
		az := math.Abs(0.6745 * (v - median) / mad)
		if az > thr {
			count++
		}
		maxAbsZ = math.Max(maxAbsZ, az)
	}
	return count, maxAbsZ
}

// medianMAD computes the median and the median absolute deviation.
func medianMAD(vals []float64) (median, mad float64) {
	if len(vals) == 0 {
		return 0, 0
	}
	cp := slices.Clone(vals)
	slices.Sort(cp)
	median = quantile(cp, 0.5)
	dev := make([]float64, len(cp))
	for i, v := range cp {
		dev[i] = math.Abs(v - median)
	}
	slices.Sort(dev)
	return median, quantile(dev, 0.5)
}

func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}
