package domain

import (
	"context"
	"encoding/json"
	"errors"
)

// ErrBoundaryNotFound is returned when no boundary feature carries the
// requested region code.
var ErrBoundaryNotFound = errors.New("boundary not found")

// Boundaries is a GeoJSON FeatureCollection of region outlines, optionally
// narrowed to one region code.
type Boundaries struct {
	Code     string
	Features int
	GeoJSON  json.RawMessage
}

// BoundaryProvider fetches region outlines for the choropleth. An empty
// code selects every region.
type BoundaryProvider interface {
	Boundaries(ctx context.Context, code string) (Boundaries, error)
}
