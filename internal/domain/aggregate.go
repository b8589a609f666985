package domain

// GroupMean is the arithmetic mean of a value over one group.
type GroupMean struct {
	Key   string  `json:"key"`
	Mean  float64 `json:"mean"`
	Count int     `json:"count"`
}

// MeanBy groups rows by key and averages value within each group. Groups
// appear in the order they are first encountered. A group only exists if at
// least one row belongs to it, so no mean is ever computed over zero rows.
func MeanBy(rows []DerivedRow, key func(DerivedRow) string, value func(DerivedRow) float64) []GroupMean {
	index := make(map[string]int)
	sums := make([]float64, 0)
	out := make([]GroupMean, 0)

	for _, r := range rows {
		k := key(r)
		i, ok := index[k]
		if !ok {
			i = len(out)
			index[k] = i
			out = append(out, GroupMean{Key: k})
			sums = append(sums, 0)
		}
		sums[i] += value(r)
		out[i].Count++
	}

	for i := range out {
		out[i].Mean = sums[i] / float64(out[i].Count)
	}
	return out
}

// ByCategory is a MeanBy key selecting the row category.
func ByCategory(r DerivedRow) string { return r.Category }

// MeasureOf returns a MeanBy value selecting a measure column.
func MeasureOf(name string) func(DerivedRow) float64 {
	return func(r DerivedRow) float64 { return r.Measure(name) }
}
