package http

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	plotadapter "github.com/couchcryptid/covid-dashboard-service/internal/adapter/plot"
	"github.com/couchcryptid/covid-dashboard-service/internal/adapter/xlsx"
	"github.com/couchcryptid/covid-dashboard-service/internal/domain"
	"github.com/couchcryptid/covid-dashboard-service/internal/pipeline"
)

// Dataset is the query surface of one loaded dataset.
type Dataset interface {
	Filters() (pipeline.Filters, error)
	Query(spec domain.FilterSpec) (pipeline.Result, error)
	Choropleth(spec domain.FilterSpec) (domain.Choropleth, error)
	Filtered(spec domain.FilterSpec) ([]domain.DerivedRow, error)
	Snapshot() (*pipeline.Snapshot, error)
}

// API serves the dashboard views. Temperature and Boundaries are optional.
type API struct {
	Covid       Dataset
	Temperature Dataset
	Boundaries  domain.BoundaryProvider
	Renderer    *plotadapter.Renderer
	Logger      *slog.Logger
}

// Routes mounts the dataset routes on r.
func (a *API) Routes(r chi.Router) {
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Route("/covid", func(r chi.Router) {
		a.datasetRoutes(r, a.Covid, "state")
		r.Get("/choropleth", a.handleChoropleth)
		r.Get("/boundaries", a.handleBoundaries)
	})
	if a.Temperature != nil {
		r.Route("/temperature", func(r chi.Router) {
			a.datasetRoutes(r, a.Temperature, "city")
		})
	}
}

func (a *API) datasetRoutes(r chi.Router, d Dataset, categoryParam string) {
	r.Get("/filters", a.handleFilters(d))
	r.Get("/charts", a.handleCharts(d, categoryParam))
	r.Get("/charts/{chart}.png", a.handleChartPNG(d, categoryParam))
	r.Get("/export.xlsx", a.handleExport(d, categoryParam))
}

type errorResponse struct {
	Error string `json:"error"`
}

type choroplethResponse struct {
	Status string `json:"status"`
	domain.Choropleth
}

func (a *API) handleFilters(d Dataset) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, err := d.Filters()
		if err != nil {
			a.writeError(w, r, err)
			return
		}
		render.JSON(w, r, f)
	}
}

func (a *API) handleCharts(d Dataset, categoryParam string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		spec, err := parseFilter(r, categoryParam)
		if err != nil {
			a.writeError(w, r, err)
			return
		}
		res, err := d.Query(spec)
		if err != nil {
			a.writeError(w, r, err)
			return
		}
		render.JSON(w, r, res)
	}
}

func (a *API) handleChartPNG(d Dataset, categoryParam string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		spec, err := parseFilter(r, categoryParam)
		if err != nil {
			a.writeError(w, r, err)
			return
		}
		res, err := d.Query(spec)
		if err != nil {
			a.writeError(w, r, err)
			return
		}

		id := chi.URLParam(r, "chart")
		for _, c := range res.Charts {
			if c.ID != id {
				continue
			}
			if c.Empty {
				a.writeError(w, r, domain.ErrEmptyResult)
				return
			}
			a.writeChartPNG(w, r, c)
			return
		}
		a.writeError(w, r, errNotFound(fmt.Sprintf("unknown chart %q", id)))
	}
}

func (a *API) handleExport(d Dataset, categoryParam string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		spec, err := parseFilter(r, categoryParam)
		if err != nil {
			a.writeError(w, r, err)
			return
		}
		snap, err := d.Snapshot()
		if err != nil {
			a.writeError(w, r, err)
			return
		}
		rows, err := d.Filtered(spec)
		if err != nil {
			a.writeError(w, r, err)
			return
		}

		var choropleth *domain.Choropleth
		if c, err := d.Choropleth(spec); err == nil {
			choropleth = &c
		}

		var buf bytes.Buffer
		if err := xlsx.Export(&buf, snap.Schema, rows, choropleth); err != nil {
			a.writeError(w, r, fmt.Errorf("export %s workbook: %w", snap.Schema.Name, err))
			return
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", snap.Schema.Name+".xlsx"))
		_, _ = buf.WriteTo(w)
	}
}

// writeChartPNG renders c fully before touching the response, so a render
// failure still produces a JSON error.
func (a *API) writeChartPNG(w http.ResponseWriter, r *http.Request, c domain.Chart) {
	var buf bytes.Buffer
	if err := a.Renderer.Render(&buf, c); err != nil {
		a.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = buf.WriteTo(w)
}

func (a *API) handleChoropleth(w http.ResponseWriter, r *http.Request) {
	spec, err := parseFilter(r, "state")
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	c, err := a.Covid.Choropleth(spec)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	status := "ok"
	if c.Empty {
		status = "no_data"
	}
	render.JSON(w, r, choroplethResponse{Status: status, Choropleth: c})
}

func (a *API) handleBoundaries(w http.ResponseWriter, r *http.Request) {
	if a.Boundaries == nil {
		a.writeError(w, r, errNotFound("boundaries disabled"))
		return
	}
	b, err := a.Boundaries.Boundaries(r.Context(), r.URL.Query().Get("state"))
	if err != nil {
		if !errors.Is(err, domain.ErrBoundaryNotFound) {
			a.Logger.Warn("boundary fetch failed", "error", err)
			err = &statusError{status: http.StatusBadGateway, msg: "boundary source unavailable"}
		}
		a.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	_, _ = w.Write(b.GeoJSON)
}

// parseFilter reads the category, start, end and year query parameters.
// Dates are YYYY-MM-DD; missing values leave the field unset.
func parseFilter(r *http.Request, categoryParam string) (domain.FilterSpec, error) {
	q := r.URL.Query()
	spec := domain.FilterSpec{Category: strings.TrimSpace(q.Get(categoryParam))}

	var err error
	if spec.Start, err = parseDate(q.Get("start"), "start"); err != nil {
		return spec, err
	}
	if spec.End, err = parseDate(q.Get("end"), "end"); err != nil {
		return spec, err
	}
	if y := q.Get("year"); y != "" {
		if spec.Year, err = strconv.Atoi(y); err != nil || spec.Year <= 0 {
			return spec, badRequest(fmt.Sprintf("invalid year %q", y))
		}
	}
	return spec, nil
}

func parseDate(s, name string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, badRequest(fmt.Sprintf("invalid %s date %q: want YYYY-MM-DD", name, s))
	}
	return t, nil
}

type statusError struct {
	status int
	msg    string
}

func (e *statusError) Error() string { return e.msg }

func badRequest(msg string) error  { return &statusError{status: http.StatusBadRequest, msg: msg} }
func errNotFound(msg string) error { return &statusError{status: http.StatusNotFound, msg: msg} }

func (a *API) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	msg := err.Error()

	var se *statusError
	var mappingErr *domain.MappingError
	switch {
	case errors.As(err, &se):
		status = se.status
	case errors.Is(err, pipeline.ErrNotReady):
		status = http.StatusServiceUnavailable
	case errors.As(err, &mappingErr):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, pipeline.ErrNoRegions), errors.Is(err, domain.ErrBoundaryNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrEmptyResult):
		status = http.StatusNotFound
		msg = domain.NoDataMessage
	default:
		a.Logger.Error("request failed", "path", r.URL.Path, "error", err)
		msg = http.StatusText(status)
	}

	render.Status(r, status)
	render.JSON(w, r, errorResponse{Error: msg})
}
