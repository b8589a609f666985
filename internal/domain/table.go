package domain

import (
	"time"
)

// Column names of the COVID-19 Brazil dataset.
const (
	ColObservationDate = "ObservationDate"
	ColProvinceState   = "Province/State"
	ColConfirmed       = "Confirmed"
	ColDeaths          = "Deaths"
	ColRecovered       = "Recovered"
)

// Column names of the daily city temperature dataset.
const (
	ColDate           = "Date"
	ColCity           = "City"
	ColAvgTemperature = "AvgTemperature"
)

// Schema is the column contract of a dataset, validated once at load time.
type Schema struct {
	Name           string
	DateColumn     string
	DateLayout     string
	CategoryColumn string
	MeasureColumns []string
	// LabelColumns are extra text columns kept on each row, e.g. a separate
	// state-name column used by the region mapper.
	LabelColumns []string
}

// CovidSchema describes covid_19_data_brazil.csv.
func CovidSchema() Schema {
	return Schema{
		Name:           "covid",
		DateColumn:     ColObservationDate,
		DateLayout:     "1/2/2006",
		CategoryColumn: ColProvinceState,
		MeasureColumns: []string{ColConfirmed, ColDeaths, ColRecovered},
	}
}

// TemperatureSchema describes the daily city temperature dataset.
func TemperatureSchema() Schema {
	return Schema{
		Name:           "temperature",
		DateColumn:     ColDate,
		DateLayout:     time.DateOnly,
		CategoryColumn: ColCity,
		MeasureColumns: []string{ColAvgTemperature},
	}
}

// Columns returns every column the schema requires, in declaration order.
func (s Schema) Columns() []string {
	cols := make([]string, 0, 2+len(s.MeasureColumns)+len(s.LabelColumns))
	cols = append(cols, s.DateColumn, s.CategoryColumn)
	cols = append(cols, s.MeasureColumns...)
	cols = append(cols, s.LabelColumns...)
	return cols
}

// Validate checks a header row against the schema and returns a
// *SchemaError naming every missing column.
func (s Schema) Validate(source string, header []string) error {
	present := make(map[string]struct{}, len(header))
	for _, h := range header {
		present[h] = struct{}{}
	}
	var missing []string
	for _, col := range s.Columns() {
		if _, ok := present[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return &SchemaError{Source: source, Missing: missing, Expected: s.Columns()}
	}
	return nil
}

// Row is one observation as loaded from the source.
type Row struct {
	Category string             `json:"category"`
	Date     time.Time          `json:"date"`
	Measures map[string]float64 `json:"measures"`
	Labels   map[string]string  `json:"labels,omitempty"`
}

// Measure returns the named measure, or 0 when the row does not carry it.
func (r Row) Measure(name string) float64 {
	return r.Measures[name]
}

// Label returns a text value of the row. The category column resolves to
// the category itself.
func (r Row) Label(column string, schema Schema) string {
	if column == schema.CategoryColumn {
		return r.Category
	}
	return r.Labels[column]
}

// Table is the loaded dataset in source order.
type Table struct {
	Schema Schema
	Source string
	Rows   []Row
}

// DerivedRow is a Row plus the fields computed by Derive and MapRegions.
type DerivedRow struct {
	Row
	NewCases   float64 `json:"new_cases"`
	NewDeaths  float64 `json:"new_deaths"`
	Year       int     `json:"year"`
	RegionCode string  `json:"region_code,omitempty"`
}
