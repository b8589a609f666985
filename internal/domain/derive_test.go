package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCases(rows []DerivedRow) []float64 {
	out := make([]float64, len(rows))
	for i, r := range rows {
		out[i] = r.NewCases
	}
	return out
}

func TestDerive_ScenarioA(t *testing.T) {
	derived := Derive(scenarioA(t))
	require.Len(t, derived, 6)

	assert.Equal(t, []float64{0, 5, 5}, newCases(byCategory(derived, regionX)))
	assert.Equal(t, []float64{0, 0, 3}, newCases(byCategory(derived, regionY)))
}

func TestDerive_SortsByDateStable(t *testing.T) {
	derived := Derive(scenarioA(t))

	for i := 1; i < len(derived); i++ {
		assert.False(t, derived[i].Date.Before(derived[i-1].Date), "row %d out of date order", i)
	}
	// Same-day rows keep their load order: RegionX was loaded before RegionY on 03-01.
	assert.Equal(t, regionX, derived[0].Category)
	assert.Equal(t, regionY, derived[1].Category)
}

func TestDerive_DoesNotMutateTable(t *testing.T) {
	table := scenarioA(t)
	first := table.Rows[0]

	Derive(table)

	assert.Equal(t, first, table.Rows[0])
}

func TestDerive_NewDeathsAndYear(t *testing.T) {
	derived := Derive(scenarioA(t))
	x := byCategory(derived, regionX)

	assert.Equal(t, 0.0, x[0].NewDeaths)
	assert.Equal(t, 1.0, x[1].NewDeaths)
	assert.Equal(t, 1.0, x[2].NewDeaths)
	for _, r := range derived {
		assert.Equal(t, 2020, r.Year)
	}
}

func TestDerive_FirstObservationIsZeroEvenWhenLarge(t *testing.T) {
	table := Table{
		Schema: CovidSchema(),
		Rows:   []Row{covidRow(t, regionX, "2020-05-01", 5000, 300)},
	}

	derived := Derive(table)

	require.Len(t, derived, 1)
	assert.Equal(t, 0.0, derived[0].NewCases)
	assert.Equal(t, 0.0, derived[0].NewDeaths)
}

func TestDerive_TemperatureOnlyYear(t *testing.T) {
	table := Table{
		Schema: TemperatureSchema(),
		Rows: []Row{
			{Category: "Recife", Date: day(t, "2019-12-31"), Measures: map[string]float64{ColAvgTemperature: 80.1}},
			{Category: "Recife", Date: day(t, "2020-01-01"), Measures: map[string]float64{ColAvgTemperature: 81.3}},
		},
	}

	derived := Derive(table)

	require.Len(t, derived, 2)
	assert.Equal(t, 2019, derived[0].Year)
	assert.Equal(t, 2020, derived[1].Year)
	assert.Zero(t, derived[1].NewCases)
}

func TestFirstDifference(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		expected []float64
	}{
		{"single", []float64{7}, []float64{0}},
		{"increasing", []float64{1, 4, 9}, []float64{0, 3, 5}},
		{"flat", []float64{3, 3, 3}, []float64{0, 0, 0}},
		{"correction goes negative", []float64{10, 8}, []float64{0, -2}},
		{"empty", nil, []float64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := make([]Row, len(tt.values))
			for i, v := range tt.values {
				rows[i] = Row{Category: regionX, Measures: map[string]float64{ColConfirmed: v}}
			}
			assert.Equal(t, tt.expected, FirstDifference(rows, ColConfirmed))
		})
	}
}

func TestFirstDifference_GroupsIndependent(t *testing.T) {
	rows := []Row{
		{Category: regionX, Measures: map[string]float64{ColConfirmed: 10}},
		{Category: regionY, Measures: map[string]float64{ColConfirmed: 100}},
		{Category: regionX, Measures: map[string]float64{ColConfirmed: 12}},
		{Category: regionY, Measures: map[string]float64{ColConfirmed: 130}},
	}

	assert.Equal(t, []float64{0, 0, 2, 30}, FirstDifference(rows, ColConfirmed))
}
