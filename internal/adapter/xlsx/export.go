package xlsx

import (
	"fmt"
	"io"
	"slices"

	"github.com/xuri/excelize/v2"

	"github.com/couchcryptid/covid-dashboard-service/internal/domain"
)

// Sheet names written by Export.
const (
	RowsSheet       = "Dados"
	ChoroplethSheet = "Mapa"
)

// Derived column headers appended after the schema columns.
const (
	ColNewCases  = "New Cases"
	ColNewDeaths = "New Deaths"
	ColYear      = "Year"
)

type column struct {
	header string
	width  float64
	value  func(domain.DerivedRow) any
}

// Export writes the filtered rows and, when c is non-nil, the choropleth
// snapshot as a two-sheet workbook. The rows sheet keeps the schema's
// header so the Loader can read it back.
func Export(w io.Writer, schema domain.Schema, rows []domain.DerivedRow, c *domain.Choropleth) error {
	f, err := build(schema, rows, c)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// ExportFile is Export to a file on disk.
func ExportFile(path string, schema domain.Schema, rows []domain.DerivedRow, c *domain.Choropleth) error {
	f, err := build(schema, rows, c)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook %s: %w", path, err)
	}
	return nil
}

func build(schema domain.Schema, rows []domain.DerivedRow, c *domain.Choropleth) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), RowsSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if err := writeRows(f, schema, rows); err != nil {
		f.Close()
		return nil, err
	}
	if c != nil {
		if err := writeChoropleth(f, *c); err != nil {
			f.Close()
			return nil, err
		}
	}
	return f, nil
}

func rowColumns(schema domain.Schema) []column {
	cols := []column{
		{header: schema.DateColumn, width: 14, value: func(r domain.DerivedRow) any { return r.Date.Format(schema.DateLayout) }},
		{header: schema.CategoryColumn, width: 22, value: func(r domain.DerivedRow) any { return r.Category }},
	}
	for _, m := range schema.MeasureColumns {
		cols = append(cols, column{header: m, width: 14, value: func(r domain.DerivedRow) any { return r.Measure(m) }})
	}
	for _, l := range schema.LabelColumns {
		cols = append(cols, column{header: l, width: 10, value: func(r domain.DerivedRow) any { return r.Labels[l] }})
	}
	if slices.Contains(schema.MeasureColumns, domain.ColConfirmed) {
		cols = append(cols, column{header: ColNewCases, width: 12, value: func(r domain.DerivedRow) any { return r.NewCases }})
	}
	if slices.Contains(schema.MeasureColumns, domain.ColDeaths) {
		cols = append(cols, column{header: ColNewDeaths, width: 12, value: func(r domain.DerivedRow) any { return r.NewDeaths }})
	}
	return append(cols, column{header: ColYear, width: 8, value: func(r domain.DerivedRow) any { return r.Year }})
}

func writeRows(f *excelize.File, schema domain.Schema, rows []domain.DerivedRow) error {
	cols := rowColumns(schema)
	for j, col := range cols {
		if err := setCell(f, RowsSheet, j+1, 1, col.header); err != nil {
			return err
		}
		name, err := excelize.ColumnNumberToName(j + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(RowsSheet, name, name, col.width); err != nil {
			return err
		}
	}
	for i, r := range rows {
		for j, col := range cols {
			if err := setCell(f, RowsSheet, j+1, i+2, col.value(r)); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeChoropleth(f *excelize.File, c domain.Choropleth) error {
	if _, err := f.NewSheet(ChoroplethSheet); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	if err := setCell(f, ChoroplethSheet, 1, 1, c.Title); err != nil {
		return err
	}
	if err := setCell(f, ChoroplethSheet, 1, 2, c.Date); err != nil {
		return err
	}
	if c.Empty {
		return setCell(f, ChoroplethSheet, 1, 4, c.Warning)
	}

	for j, h := range []string{"UF", "Estado", c.Metric} {
		if err := setCell(f, ChoroplethSheet, j+1, 4, h); err != nil {
			return err
		}
	}
	for i, e := range c.Entries {
		for j, v := range []any{e.Code, e.Name, e.Value} {
			if err := setCell(f, ChoroplethSheet, j+1, i+5, v); err != nil {
				return err
			}
		}
	}
	return nil
}

func setCell(f *excelize.File, sheet string, col, row int, value any) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	if err := f.SetCellValue(sheet, cell, value); err != nil {
		return fmt.Errorf("set %s!%s: %w", sheet, cell, err)
	}
	return nil
}
