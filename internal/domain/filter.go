package domain

import (
	"time"
)

// AllCategories selects every category. It matches the "Todos" entry of the
// dashboard's state selector.
const AllCategories = "Todos"

// FilterSpec is the user selection applied to the derived rows. Start and
// End are inclusive calendar dates. A zero Year matches every year.
type FilterSpec struct {
	Category string
	Start    time.Time
	End      time.Time
	Year     int
}

// SelectsAll reports whether the spec selects every category.
func (f FilterSpec) SelectsAll() bool {
	return f.Category == "" || f.Category == AllCategories
}

// Matches reports whether r passes the spec.
func (f FilterSpec) Matches(r DerivedRow) bool {
	if !f.SelectsAll() && r.Category != f.Category {
		return false
	}
	if f.Year != 0 && r.Year != f.Year {
		return false
	}
	d := truncateDay(r.Date)
	return !d.Before(truncateDay(f.Start)) && !d.After(truncateDay(f.End))
}

// Filter returns the rows matching spec in input order. An
// inverted date range yields an empty result, not an error.
func Filter(rows []DerivedRow, spec FilterSpec) []DerivedRow {
	out := make([]DerivedRow, 0)
	for _, r := range rows {
		if spec.Matches(r) {
			out = append(out, r)
		}
	}
	return out
}

// DateRange returns the earliest and latest dates in rows. ok is false when
// rows is empty.
func DateRange(rows []DerivedRow) (minDate, maxDate time.Time, ok bool) {
	for i, r := range rows {
		if i == 0 || r.Date.Before(minDate) {
			minDate = r.Date
		}
		if i == 0 || r.Date.After(maxDate) {
			maxDate = r.Date
		}
	}
	return minDate, maxDate, len(rows) > 0
}

// Categories returns the distinct categories in first-encounter order.
func Categories(rows []DerivedRow) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range rows {
		if _, ok := seen[r.Category]; ok {
			continue
		}
		seen[r.Category] = struct{}{}
		out = append(out, r.Category)
	}
	return out
}

// Years returns the distinct years in first-encounter order.
func Years(rows []DerivedRow) []int {
	seen := make(map[int]struct{})
	var out []int
	for _, r := range rows {
		if _, ok := seen[r.Year]; ok {
			continue
		}
		seen[r.Year] = struct{}{}
		out = append(out, r.Year)
	}
	return out
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
