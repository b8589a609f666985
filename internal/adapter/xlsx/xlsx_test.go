package xlsx

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/couchcryptid/covid-dashboard-service/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func derived() []domain.DerivedRow {
	table := domain.Table{
		Schema: domain.CovidSchema(),
		Rows: []domain.Row{
			{Category: "Sao Paulo", Date: time.Date(2020, 3, 1, 0, 0, 0, 0, time.UTC), Measures: map[string]float64{domain.ColConfirmed: 10, domain.ColDeaths: 0, domain.ColRecovered: 0}},
			{Category: "Sao Paulo", Date: time.Date(2020, 3, 2, 0, 0, 0, 0, time.UTC), Measures: map[string]float64{domain.ColConfirmed: 15, domain.ColDeaths: 1, domain.ColRecovered: 2}},
		},
	}
	return domain.Derive(table)
}

func TestExportFile_ReadBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "view.xlsx")
	rows := derived()

	require.NoError(t, ExportFile(path, domain.CovidSchema(), rows, nil))

	table, err := NewLoader(path, RowsSheet, domain.CovidSchema(), discardLogger()).Extract(context.Background())
	require.NoError(t, err)

	require.Len(t, table.Rows, 2)
	assert.Equal(t, "Sao Paulo", table.Rows[1].Category)
	assert.Equal(t, rows[1].Date, table.Rows[1].Date)
	assert.Equal(t, 15.0, table.Rows[1].Measure(domain.ColConfirmed))
	assert.Equal(t, 2.0, table.Rows[1].Measure(domain.ColRecovered))
}

func TestExport_DerivedColumnsAndChoropleth(t *testing.T) {
	rows := derived()
	c := domain.BuildChoropleth(rows, rows)
	c.Entries[0].Code = "SP"

	var buf bytes.Buffer
	require.NoError(t, Export(&buf, domain.CovidSchema(), rows, &c))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{RowsSheet, ChoroplethSheet}, f.GetSheetList())

	data, err := f.GetRows(RowsSheet)
	require.NoError(t, err)
	assert.Equal(t, []string{
		domain.ColObservationDate, domain.ColProvinceState,
		domain.ColConfirmed, domain.ColDeaths, domain.ColRecovered,
		ColNewCases, ColNewDeaths, ColYear,
	}, data[0])
	assert.Equal(t, []string{"3/2/2020", "Sao Paulo", "15", "1", "2", "5", "1", "2020"}, data[2])

	snap, err := f.GetRows(ChoroplethSheet)
	require.NoError(t, err)
	assert.Equal(t, domain.ChoroplethTitle, snap[0][0])
	assert.Equal(t, "2020-03-02", snap[1][0])
	assert.Equal(t, []string{"SP", "Sao Paulo", "15"}, snap[4])
}

func TestExport_EmptyChoroplethWarns(t *testing.T) {
	c := domain.BuildChoropleth(nil, nil)

	var buf bytes.Buffer
	require.NoError(t, Export(&buf, domain.CovidSchema(), nil, &c))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	warning, err := f.GetCellValue(ChoroplethSheet, "A4")
	require.NoError(t, err)
	assert.Equal(t, c.Warning, warning)
}

func TestLoader_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := NewLoader(filepath.Join(t.TempDir(), "none.xlsx"), "", domain.CovidSchema(), discardLogger()).Extract(context.Background())
		var loadErr *domain.LoadError
		require.ErrorAs(t, err, &loadErr)
	})

	t.Run("wrong schema", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "temps.xlsx")
		require.NoError(t, ExportFile(path, domain.CovidSchema(), derived(), nil))

		_, err := NewLoader(path, "", domain.TemperatureSchema(), discardLogger()).Extract(context.Background())
		var schemaErr *domain.SchemaError
		require.ErrorAs(t, err, &schemaErr)
	})
}

func TestIsWorkbook(t *testing.T) {
	assert.True(t, IsWorkbook("data/Covid.XLSX"))
	assert.False(t, IsWorkbook("covid_19_data_brazil.csv"))
}

func TestRowColumns_MeasureValuesAreNumbers(t *testing.T) {
	row := derived()[1]

	values := make(map[string]any)
	for _, c := range rowColumns(domain.CovidSchema()) {
		values[c.header] = c.value(row)
	}

	assert.Equal(t, 15.0, values[domain.ColConfirmed])
	assert.Equal(t, 1.0, values[domain.ColDeaths])
	assert.Equal(t, 2.0, values[domain.ColRecovered])
	assert.Equal(t, 5.0, values[ColNewCases])
	assert.Equal(t, 2020, values[ColYear])
}
