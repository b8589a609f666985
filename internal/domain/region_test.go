package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func allStateRows(t *testing.T) []DerivedRow {
	t.Helper()
	rows := make([]DerivedRow, 0, BrazilStates.Len())
	for _, name := range BrazilStates.Names() {
		rows = append(rows, DerivedRow{Row: covidRow(t, name, "2020-06-01", 1, 0)})
	}
	return rows
}

func TestBrazilStates_TwentySevenUniqueCodes(t *testing.T) {
	assert.Equal(t, 27, BrazilStates.Len())

	codes := make(map[string]struct{})
	for _, name := range BrazilStates.Names() {
		code, ok := BrazilStates.Code(name)
		require.True(t, ok)
		assert.Len(t, code, 2)
		codes[code] = struct{}{}
	}
	assert.Len(t, codes, 27)
}

func TestMapRegions_FullSet(t *testing.T) {
	rows := allStateRows(t)

	mapped, err := MapRegions(rows, BrazilStates, CovidSchema(), ColProvinceState)
	require.NoError(t, err)
	require.Len(t, mapped, len(rows))

	for _, r := range mapped {
		assert.NotEmpty(t, r.RegionCode, "state %s", r.Category)
	}
	assert.Empty(t, rows[0].RegionCode, "input must not be modified")
}

func TestMapRegions_KnownCodes(t *testing.T) {
	rows := []DerivedRow{
		{Row: covidRow(t, "Sao Paulo", "2020-06-01", 1, 0)},
		{Row: covidRow(t, "Distrito Federal", "2020-06-01", 1, 0)},
	}

	mapped, err := MapRegions(rows, BrazilStates, CovidSchema(), ColProvinceState)
	require.NoError(t, err)
	assert.Equal(t, "SP", mapped[0].RegionCode)
	assert.Equal(t, "DF", mapped[1].RegionCode)
}

func TestMapRegions_SingleAlteredNameFails(t *testing.T) {
	tests := []struct {
		name    string
		altered string
	}{
		{"accented", "São Paulo"},
		{"lowercase", "sao paulo"},
		{"trailing space", "Bahia "},
		{"unknown", "Atlantis"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := allStateRows(t)
			rows[3].Category = tt.altered

			mapped, err := MapRegions(rows, BrazilStates, CovidSchema(), ColProvinceState)
			require.Error(t, err)
			assert.Nil(t, mapped)

			var mapErr *MappingError
			require.True(t, errors.As(err, &mapErr))
			assert.Equal(t, []string{tt.altered}, mapErr.Unmapped)
			assert.Equal(t, ColProvinceState, mapErr.Column)
		})
	}
}

func TestMapRegions_ReportsDistinctUnmapped(t *testing.T) {
	rows := []DerivedRow{
		{Row: covidRow(t, "Atlantis", "2020-06-01", 1, 0)},
		{Row: covidRow(t, "Atlantis", "2020-06-02", 1, 0)},
		{Row: covidRow(t, "Bahia", "2020-06-01", 1, 0)},
		{Row: covidRow(t, "Lemuria", "2020-06-01", 1, 0)},
	}

	_, err := MapRegions(rows, BrazilStates, CovidSchema(), ColProvinceState)

	var mapErr *MappingError
	require.ErrorAs(t, err, &mapErr)
	assert.Equal(t, []string{"Atlantis", "Lemuria"}, mapErr.Unmapped)
	assert.Contains(t, err.Error(), "2 unmapped")
}

func TestMapRegions_LabelColumn(t *testing.T) {
	schema := CovidSchema()
	schema.LabelColumns = []string{"UF"}
	row := covidRow(t, "SP-capital", "2020-06-01", 1, 0)
	row.Labels = map[string]string{"UF": "Sao Paulo"}

	mapped, err := MapRegions([]DerivedRow{{Row: row}}, BrazilStates, schema, "UF")
	require.NoError(t, err)
	assert.Equal(t, "SP", mapped[0].RegionCode)
}
