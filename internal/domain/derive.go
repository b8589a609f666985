package domain

import (
	"slices"
)

// Derive sorts the table by date and computes the derived fields of every
// row: NewCases and NewDeaths from the cumulative Confirmed and Deaths
// counters (when the schema has them) and Year from the date. The input
// table is not modified.
func Derive(t Table) []DerivedRow {
	rows := slices.Clone(t.Rows)
	slices.SortStableFunc(rows, func(a, b Row) int {
		return a.Date.Compare(b.Date)
	})

	out := make([]DerivedRow, len(rows))
	for i, r := range rows {
		out[i] = DerivedRow{Row: r, Year: r.Date.Year()}
	}

	if slices.Contains(t.Schema.MeasureColumns, ColConfirmed) {
		for i, v := range FirstDifference(rows, ColConfirmed) {
			out[i].NewCases = v
		}
	}
	if slices.Contains(t.Schema.MeasureColumns, ColDeaths) {
		for i, v := range FirstDifference(rows, ColDeaths) {
			out[i].NewDeaths = v
		}
	}
	return out
}

// FirstDifference returns, for each row, the measure minus the previous
// value of the same category. rows must already be in date order. The first
// row of each category gets 0 regardless of its cumulative value.
func FirstDifference(rows []Row, measure string) []float64 {
	out := make([]float64, len(rows))
	last := make(map[string]float64)
	for i, r := range rows {
		v := r.Measure(measure)
		if prev, ok := last[r.Category]; ok {
			out[i] = v - prev
		}
		last[r.Category] = v
	}
	return out
}
