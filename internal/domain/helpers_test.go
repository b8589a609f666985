package domain

import (
	"testing"
	"time"
)

const (
	regionX = "RegionX"
	regionY = "RegionY"
)

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(time.DateOnly, s)
	if err != nil {
		t.Fatalf("bad test date %q: %v", s, err)
	}
	return d
}

func covidRow(t *testing.T, category, date string, confirmed, deaths float64) Row {
	t.Helper()
	return Row{
		Category: category,
		Date:     day(t, date),
		Measures: map[string]float64{ColConfirmed: confirmed, ColDeaths: deaths},
	}
}

// scenarioA is two regions with three dates each, loaded interleaved and
// out of date order.
func scenarioA(t *testing.T) Table {
	t.Helper()
	return Table{
		Schema: CovidSchema(),
		Source: "scenario-a",
		Rows: []Row{
			covidRow(t, regionY, "2020-03-03", 8, 1),
			covidRow(t, regionX, "2020-03-01", 10, 0),
			covidRow(t, regionY, "2020-03-01", 5, 0),
			covidRow(t, regionX, "2020-03-03", 20, 2),
			covidRow(t, regionX, "2020-03-02", 15, 1),
			covidRow(t, regionY, "2020-03-02", 5, 0),
		},
	}
}

func byCategory(rows []DerivedRow, category string) []DerivedRow {
	var out []DerivedRow
	for _, r := range rows {
		if r.Category == category {
			out = append(out, r)
		}
	}
	return out
}
