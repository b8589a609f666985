package domain

import (
	"time"
)

// ChartKind tells the renderer how to draw a series.
type ChartKind string

const (
	KindLine       ChartKind = "line"
	KindBar        ChartKind = "bar"
	KindChoropleth ChartKind = "choropleth"
)

// NoDataMessage is shown instead of an empty chart so an empty selection is
// not mistaken for zero values.
const NoDataMessage = "Não há dados disponíveis para os filtros selecionados."

// Point is one plotted value. X is a YYYY-MM-DD date for time series and a
// category name for bar-by-category charts.
type Point struct {
	X        string  `json:"x"`
	Y        float64 `json:"y"`
	Category string  `json:"category,omitempty"`
}

// Chart is a prepared series ready for a renderer.
type Chart struct {
	ID      string    `json:"id"`
	Title   string    `json:"title"`
	Kind    ChartKind `json:"kind"`
	XLabel  string    `json:"x_label"`
	YLabel  string    `json:"y_label"`
	Points  []Point   `json:"points"`
	Empty   bool      `json:"empty"`
	Warning string    `json:"warning,omitempty"`
}

// ChartDef describes how to project derived rows onto one chart.
type ChartDef struct {
	ID     string
	Title  string
	Kind   ChartKind
	XLabel string
	YLabel string
	Value  func(DerivedRow) float64
}

// CovidCharts lists the time-series charts of the COVID dashboard.
func CovidCharts() []ChartDef {
	return []ChartDef{
		{ID: "confirmed", Title: "Casos Acumulados", Kind: KindLine, XLabel: "Data", YLabel: "Casos Acumulados", Value: MeasureOf(ColConfirmed)},
		{ID: "deaths", Title: "Óbitos Acumulados", Kind: KindLine, XLabel: "Data", YLabel: "Óbitos Acumulados", Value: MeasureOf(ColDeaths)},
		{ID: "new_cases", Title: "Novos Casos por Dia", Kind: KindBar, XLabel: "Data", YLabel: "Novos Casos", Value: func(r DerivedRow) float64 { return r.NewCases }},
		{ID: "new_deaths", Title: "Novos Óbitos por Dia", Kind: KindBar, XLabel: "Data", YLabel: "Novos Óbitos", Value: func(r DerivedRow) float64 { return r.NewDeaths }},
		{ID: "recovered", Title: "Recuperações Acumuladas", Kind: KindLine, XLabel: "Data", YLabel: "Recuperações Acumuladas", Value: MeasureOf(ColRecovered)},
	}
}

// TemperatureDailyChart is the daily average temperature line.
func TemperatureDailyChart() ChartDef {
	return ChartDef{ID: "avg_temperature", Title: "Temperatura Média Diária", Kind: KindLine, XLabel: "Data", YLabel: "Temperatura Média", Value: MeasureOf(ColAvgTemperature)}
}

// TemperatureByCityChart is the mean temperature per city bar chart.
func TemperatureByCityChart() ChartDef {
	return ChartDef{ID: "avg_temperature_by_city", Title: "Temperatura Média por Cidade", Kind: KindBar, XLabel: "Cidade", YLabel: "Temperatura Média", Value: MeasureOf(ColAvgTemperature)}
}

// Series projects rows onto a date-indexed chart, one point per row.
func (d ChartDef) Series(rows []DerivedRow) Chart {
	c := d.chart()
	for _, r := range rows {
		c.Points = append(c.Points, Point{X: r.Date.Format(time.DateOnly), Y: d.Value(r), Category: r.Category})
	}
	return c.markEmpty()
}

// MeanByCategory projects rows onto a bar chart with one bar per category
// holding the mean of the chart value.
func (d ChartDef) MeanByCategory(rows []DerivedRow) Chart {
	c := d.chart()
	for _, g := range MeanBy(rows, ByCategory, d.Value) {
		c.Points = append(c.Points, Point{X: g.Key, Y: g.Mean})
	}
	return c.markEmpty()
}

func (d ChartDef) chart() Chart {
	return Chart{ID: d.ID, Title: d.Title, Kind: d.Kind, XLabel: d.XLabel, YLabel: d.YLabel, Points: make([]Point, 0)}
}

func (c Chart) markEmpty() Chart {
	if len(c.Points) == 0 {
		c.Empty = true
		c.Warning = NoDataMessage
	}
	return c
}

// ChoroplethEntry is one colored region of the map.
type ChoroplethEntry struct {
	Code  string  `json:"code"`
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// Choropleth is the latest-date map of confirmed cases by state.
type Choropleth struct {
	Title   string            `json:"title"`
	Date    string            `json:"date,omitempty"`
	Metric  string            `json:"metric"`
	Entries []ChoroplethEntry `json:"entries"`
	Empty   bool              `json:"empty"`
	Warning string            `json:"warning,omitempty"`
}

// ChoroplethTitle is the heading of the confirmed-cases map.
const ChoroplethTitle = "Casos Confirmados por Estado no Brasil"

// BuildChoropleth selects the latest snapshot of the filtered view from all
// mapped rows and colors each state by its Confirmed count. An empty
// snapshot produces a map flagged Empty rather than an error.
func BuildChoropleth(mapped, filtered []DerivedRow) Choropleth {
	c := Choropleth{Title: ChoroplethTitle, Metric: ColConfirmed, Entries: make([]ChoroplethEntry, 0)}
	date, rows, err := LatestSnapshot(mapped, filtered)
	if !date.IsZero() {
		c.Date = date.Format(time.DateOnly)
	}
	if err != nil {
		c.Empty = true
		c.Warning = "Não há dados disponíveis para a data selecionada."
		return c
	}
	for _, r := range rows {
		c.Entries = append(c.Entries, ChoroplethEntry{Code: r.RegionCode, Name: r.Category, Value: r.Measure(ColConfirmed)})
	}
	return c
}
