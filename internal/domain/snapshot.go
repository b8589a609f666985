package domain

import (
	"time"
)

// LatestSnapshot selects every row of all whose date equals the latest date
// in filtered. The category filter is deliberately ignored so the map always
// covers the whole country for the selected day. It returns ErrEmptyResult
// when filtered is empty or no row of all falls on that date.
func LatestSnapshot(all, filtered []DerivedRow) (time.Time, []DerivedRow, error) {
	_, latest, ok := DateRange(filtered)
	if !ok {
		return time.Time{}, nil, ErrEmptyResult
	}

	day := truncateDay(latest)
	out := make([]DerivedRow, 0)
	for _, r := range all {
		if truncateDay(r.Date).Equal(day) {
			out = append(out, r)
		}
	}
	if len(out) == 0 {
		return latest, nil, ErrEmptyResult
	}
	return latest, out, nil
}
