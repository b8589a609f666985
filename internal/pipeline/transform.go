package pipeline

import (
	"time"

	"github.com/couchcryptid/covid-dashboard-service/internal/domain"
)

// Snapshot is the derived, immutable form of a loaded dataset. Every query
// reads from it without copying.
type Snapshot struct {
	Schema     domain.Schema
	Source     string
	Rows       []domain.DerivedRow
	Mapped     []domain.DerivedRow
	MapErr     error
	Categories []string
	Years      []int
	MinDate    time.Time
	MaxDate    time.Time
	LoadedAt   time.Time
}

// transform runs the derive and map stages over a freshly extracted table.
func (p *Pipeline) transform(table domain.Table) *Snapshot {
	rows := domain.Derive(table)
	minDate, maxDate, _ := domain.DateRange(rows)

	snap := &Snapshot{
		Schema:     table.Schema,
		Source:     table.Source,
		Rows:       rows,
		Categories: domain.Categories(rows),
		Years:      domain.Years(rows),
		MinDate:    minDate,
		MaxDate:    maxDate,
		LoadedAt:   domain.Now(),
	}

	if p.regions != nil {
		snap.Mapped, snap.MapErr = domain.MapRegions(rows, p.regions, table.Schema, p.regionColumn)
	}
	return snap
}

// Resolve fills unset date bounds with the dataset's own range, the same
// defaults the date inputs start from.
func (s *Snapshot) Resolve(spec domain.FilterSpec) domain.FilterSpec {
	if spec.Start.IsZero() {
		spec.Start = s.MinDate
	}
	if spec.End.IsZero() {
		spec.End = s.MaxDate
	}
	return spec
}
