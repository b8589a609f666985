package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyResult reports that a filtered view or snapshot has no rows. It is
// never fatal: callers render a "no data" state for the affected chart.
var ErrEmptyResult = errors.New("no data for the selected filters")

// LoadError reports a missing or malformed source. Line and Column are set
// when a single value failed to parse.
type LoadError struct {
	Source string
	Line   int
	Column string
	Err    error
}

func (e *LoadError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("load %s: line %d, column %q: %v", e.Source, e.Line, e.Column, e.Err)
	}
	return fmt.Sprintf("load %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// SchemaError reports columns required by a Schema that the source lacks.
type SchemaError struct {
	Source   string
	Missing  []string
	Expected []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema %s: missing columns [%s], expected [%s]",
		e.Source, strings.Join(e.Missing, ", "), strings.Join(e.Expected, ", "))
}

// MappingError lists every distinct region name without an entry in the
// region table.
type MappingError struct {
	Column   string
	Unmapped []string
}

func (e *MappingError) Error() string {
	return fmt.Sprintf("region mapping: %d unmapped value(s) in column %q: %s",
		len(e.Unmapped), e.Column, strings.Join(e.Unmapped, ", "))
}

// IsFatal reports whether err must abort the whole rendering pass. Mapping
// errors are not fatal here because only the choropleth depends on them.
func IsFatal(err error) bool {
	var loadErr *LoadError
	var schemaErr *SchemaError
	return errors.As(err, &loadErr) || errors.As(err, &schemaErr)
}
