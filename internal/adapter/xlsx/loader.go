// Package xlsx reads dashboard datasets from Excel workbooks and exports
// filtered views back to them.
package xlsx

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/couchcryptid/covid-dashboard-service/internal/domain"
)

// Loader reads one worksheet and decodes it against a schema. It
// implements pipeline.Extractor.
type Loader struct {
	path   string
	sheet  string
	schema domain.Schema
	logger *slog.Logger
}

// NewLoader creates a Loader for the workbook at path. An empty sheet
// selects the first worksheet.
func NewLoader(path, sheet string, schema domain.Schema, logger *slog.Logger) *Loader {
	return &Loader{path: path, sheet: sheet, schema: schema, logger: logger}
}

func (l *Loader) Extract(ctx context.Context) (domain.Table, error) {
	f, err := excelize.OpenFile(l.path)
	if err != nil {
		return domain.Table{}, &domain.LoadError{Source: l.path, Err: err}
	}
	defer f.Close()

	sheet := l.sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return domain.Table{}, &domain.LoadError{Source: l.path, Err: fmt.Errorf("sheet %q: %w", sheet, err)}
	}
	if len(rows) == 0 {
		return domain.Table{}, &domain.LoadError{Source: l.path, Err: fmt.Errorf("sheet %q is empty", sheet)}
	}

	b, err := domain.NewTableBuilder(l.schema, l.path, rows[0])
	if err != nil {
		return domain.Table{}, err
	}
	for i, record := range rows[1:] {
		if err := ctx.Err(); err != nil {
			return domain.Table{}, &domain.LoadError{Source: l.path, Err: err}
		}
		if blank(record) {
			continue
		}
		if err := b.Add(i+2, record); err != nil {
			return domain.Table{}, err
		}
	}

	table := b.Table()
	l.logger.Debug("workbook dataset decoded", "path", l.path, "sheet", sheet, "rows", len(table.Rows))
	return table, nil
}

func blank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// IsWorkbook reports whether path names an Excel workbook by extension.
func IsWorkbook(path string) bool {
	lower := strings.ToLower(path)
	return strings.HasSuffix(lower, ".xlsx") || strings.HasSuffix(lower, ".xlsm")
}
