package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TableBuilder decodes raw string records into typed rows for one schema.
// Loaders feed it the header once and then every record in file order.
type TableBuilder struct {
	schema Schema
	source string
	index  map[string]int
	rows   []Row
}

// NewTableBuilder validates header against schema and returns a builder
// positioned to accept records. Header cells are trimmed and a leading
// UTF-8 byte order mark is dropped.
func NewTableBuilder(schema Schema, source string, header []string) (*TableBuilder, error) {
	clean := make([]string, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		clean[i] = strings.TrimSpace(h)
	}
	if err := schema.Validate(source, clean); err != nil {
		return nil, err
	}

	index := make(map[string]int, len(clean))
	for i, h := range clean {
		if _, dup := index[h]; !dup {
			index[h] = i
		}
	}
	return &TableBuilder{schema: schema, source: source, index: index}, nil
}

// Add decodes one record. line is the 1-based source line used in errors.
// Empty measure cells decode as zero.
func (b *TableBuilder) Add(line int, record []string) error {
	row := Row{Measures: make(map[string]float64, len(b.schema.MeasureColumns))}

	raw, err := b.cell(line, record, b.schema.DateColumn)
	if err != nil {
		return err
	}
	date, err := time.Parse(b.schema.DateLayout, raw)
	if err != nil {
		return &LoadError{Source: b.source, Line: line, Column: b.schema.DateColumn, Err: fmt.Errorf("parse date %q: %w", raw, err)}
	}
	row.Date = date

	if row.Category, err = b.cell(line, record, b.schema.CategoryColumn); err != nil {
		return err
	}

	for _, col := range b.schema.MeasureColumns {
		raw, err := b.cell(line, record, col)
		if err != nil {
			return err
		}
		if raw == "" {
			row.Measures[col] = 0
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return &LoadError{Source: b.source, Line: line, Column: col, Err: fmt.Errorf("parse number %q: %w", raw, err)}
		}
		row.Measures[col] = v
	}

	if len(b.schema.LabelColumns) > 0 {
		row.Labels = make(map[string]string, len(b.schema.LabelColumns))
		for _, col := range b.schema.LabelColumns {
			if row.Labels[col], err = b.cell(line, record, col); err != nil {
				return err
			}
		}
	}

	b.rows = append(b.rows, row)
	return nil
}

// Table returns the decoded table.
func (b *TableBuilder) Table() Table {
	return Table{Schema: b.schema, Source: b.source, Rows: b.rows}
}

func (b *TableBuilder) cell(line int, record []string, column string) (string, error) {
	i := b.index[column]
	if i >= len(record) {
		return "", &LoadError{Source: b.source, Line: line, Column: column, Err: fmt.Errorf("record has %d fields", len(record))}
	}
	return strings.TrimSpace(record[i]), nil
}
