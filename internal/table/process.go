package table

// Process folds each column's processor list over the full column of values
// and returns updated descriptors. Row data is not touched.
func Process(cols []Column, records []Record) []Column {
	out := make([]Column, len(cols))
	for i, c := range cols {
		values := make([]Value, len(records))
		for j, r := range records {
			values[j] = r.Get(c.Name)
		}
		for _, p := range c.Processors {
			c = applyProcessor(p, c, values)
		}
		out[i] = c
	}
	return out
}

func applyProcessor(p ProcessorKind, c Column, values []Value) Column {
	switch p {
	case ProcessorMax:
		c.Max, c.HasMax = MaxOf(values)
	case ProcessorDistinct:
		c.Distinct = DistinctOf(values)
	}
	return c
}

// MaxOf returns the largest number among values. Non-numeric values are skipped.
func MaxOf(values []Value) (float64, bool) {
	var (
		m  float64
		ok bool
	)
	for _, v := range values {
		if v.Kind != KindNumber {
			continue
		}
		if !ok || v.Num > m {
			m, ok = v.Num, true
		}
	}
	return m, ok
}

// DistinctOf deduplicates values keeping first-occurrence order.
func DistinctOf(values []Value) []Value {
	type key struct {
		kind Kind
		text string
	}
	seen := make(map[key]bool, len(values))
	out := make([]Value, 0)
	for _, v := range values {
		k := key{v.Kind, v.Text()}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, v)
	}
	return out
}
