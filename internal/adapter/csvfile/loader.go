// Package csvfile loads dashboard datasets from delimited text files.
package csvfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/couchcryptid/covid-dashboard-service/internal/domain"
)

// Loader reads one dataset file and decodes it against a schema. It
// implements pipeline.Extractor.
type Loader struct {
	path      string
	schema    domain.Schema
	delimiter rune
	logger    *slog.Logger
}

// NewLoader creates a Loader for the file at path. A zero delimiter means ','.
func NewLoader(path string, schema domain.Schema, delimiter rune, logger *slog.Logger) *Loader {
	if delimiter == 0 {
		delimiter = ','
	}
	return &Loader{path: path, schema: schema, delimiter: delimiter, logger: logger}
}

// Extract opens the file and decodes every record. Any failure is returned
// as a *domain.LoadError or *domain.SchemaError.
func (l *Loader) Extract(ctx context.Context) (domain.Table, error) {
	f, err := os.Open(l.path)
	if err != nil {
		return domain.Table{}, &domain.LoadError{Source: l.path, Err: err}
	}
	defer f.Close()

	table, err := Read(ctx, f, l.schema, l.path, l.delimiter)
	if err != nil {
		return domain.Table{}, err
	}
	l.logger.Debug("csv dataset decoded", "path", l.path, "rows", len(table.Rows))
	return table, nil
}

// Read decodes delimited records from r. source names the input in errors.
func Read(ctx context.Context, r io.Reader, schema domain.Schema, source string, delimiter rune) (domain.Table, error) {
	cr := csv.NewReader(r)
	cr.Comma = delimiter
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return domain.Table{}, &domain.LoadError{Source: source, Err: errors.New("file is empty")}
	}
	if err != nil {
		return domain.Table{}, wrapCSVError(source, err)
	}

	b, err := domain.NewTableBuilder(schema, source, header)
	if err != nil {
		return domain.Table{}, err
	}

	for n := 0; ; n++ {
		if n%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return domain.Table{}, &domain.LoadError{Source: source, Err: err}
			}
		}

		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return domain.Table{}, wrapCSVError(source, err)
		}

		line, _ := cr.FieldPos(0)
		if err := b.Add(line, record); err != nil {
			return domain.Table{}, err
		}
	}
	return b.Table(), nil
}

func wrapCSVError(source string, err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return &domain.LoadError{Source: source, Line: pe.Line, Column: fmt.Sprintf("#%d", pe.Column), Err: pe.Err}
	}
	return &domain.LoadError{Source: source, Err: err}
}
