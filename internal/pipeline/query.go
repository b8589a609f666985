package pipeline

import (
	"errors"
	"time"

	"github.com/couchcryptid/covid-dashboard-service/internal/domain"
)

// ErrNoRegions is returned for choropleth queries on a dataset without a
// region mapping stage.
var ErrNoRegions = errors.New("dataset has no region mapping")

// ChartSet renders the dashboard charts for a filtered row set.
type ChartSet func(rows []domain.DerivedRow) []domain.Chart

// CovidChartSet renders the five time-series charts of the COVID view.
func CovidChartSet(rows []domain.DerivedRow) []domain.Chart {
	defs := domain.CovidCharts()
	charts := make([]domain.Chart, 0, len(defs))
	for _, def := range defs {
		charts = append(charts, def.Series(rows))
	}
	return charts
}

// TemperatureChartSet renders the daily series and the per-city mean.
func TemperatureChartSet(rows []domain.DerivedRow) []domain.Chart {
	return []domain.Chart{
		domain.TemperatureDailyChart().Series(rows),
		domain.TemperatureByCityChart().MeanByCategory(rows),
	}
}

// Filters lists the selector options for a dataset.
type Filters struct {
	Dataset    string   `json:"dataset"`
	Categories []string `json:"categories"`
	Start      string   `json:"start"`
	End        string   `json:"end"`
	Years      []int    `json:"years"`
}

// Result is the outcome of one filter query.
type Result struct {
	Dataset  string         `json:"dataset"`
	Category string         `json:"category"`
	Start    string         `json:"start"`
	End      string         `json:"end"`
	Year     int            `json:"year,omitempty"`
	Rows     int            `json:"rows"`
	Charts   []domain.Chart `json:"charts"`

	GeneratedAt time.Time `json:"generated_at"`
}

// Filters returns the category options, with the all-categories entry
// first, and the dataset date range.
func (p *Pipeline) Filters() (Filters, error) {
	s, err := p.Snapshot()
	if err != nil {
		return Filters{}, err
	}
	categories := make([]string, 0, len(s.Categories)+1)
	categories = append(categories, domain.AllCategories)
	categories = append(categories, s.Categories...)

	f := Filters{
		Dataset:    p.dataset,
		Categories: categories,
		Start:      formatDate(s.MinDate),
		End:        formatDate(s.MaxDate),
		Years:      s.Years,
	}
	return f, nil
}

// Filtered returns the rows selected by spec. Unset date bounds default to
// the dataset range.
func (p *Pipeline) Filtered(spec domain.FilterSpec) ([]domain.DerivedRow, error) {
	s, err := p.Snapshot()
	if err != nil {
		return nil, err
	}
	return domain.Filter(s.Rows, s.Resolve(spec)), nil
}

// Query filters the snapshot and renders the chart set.
func (p *Pipeline) Query(spec domain.FilterSpec) (Result, error) {
	start := time.Now()
	defer p.observeQuery("charts", start)

	s, err := p.Snapshot()
	if err != nil {
		return Result{}, err
	}
	spec = s.Resolve(spec)
	rows := domain.Filter(s.Rows, spec)

	category := spec.Category
	if spec.SelectsAll() {
		category = domain.AllCategories
	}
	res := Result{
		Dataset:  p.dataset,
		Category: category,
		Start:    formatDate(spec.Start),
		End:      formatDate(spec.End),
		Year:     spec.Year,
		Rows:     len(rows),
		Charts:   p.charts(rows),

		GeneratedAt: domain.Now(),
	}
	for _, c := range res.Charts {
		if c.Empty {
			p.metrics.EmptyResults.WithLabelValues(p.dataset, c.ID).Inc()
		}
	}
	return res, nil
}

// Choropleth builds the latest-date map for the filtered date range. The
// category selection does not narrow the map. Returns the snapshot's
// mapping error when region mapping failed at load.
func (p *Pipeline) Choropleth(spec domain.FilterSpec) (domain.Choropleth, error) {
	start := time.Now()
	defer p.observeQuery("choropleth", start)

	s, err := p.Snapshot()
	if err != nil {
		return domain.Choropleth{}, err
	}
	if p.regions == nil {
		return domain.Choropleth{}, ErrNoRegions
	}
	if s.MapErr != nil {
		return domain.Choropleth{}, s.MapErr
	}

	filtered := domain.Filter(s.Rows, s.Resolve(spec))
	c := domain.BuildChoropleth(s.Mapped, filtered)
	if c.Empty {
		p.metrics.EmptyResults.WithLabelValues(p.dataset, "choropleth").Inc()
	}
	return c, nil
}

func (p *Pipeline) observeQuery(view string, start time.Time) {
	p.metrics.Queries.WithLabelValues(p.dataset, view).Inc()
	p.metrics.QueryDuration.WithLabelValues(p.dataset, view).Observe(time.Since(start).Seconds())
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.DateOnly)
}
