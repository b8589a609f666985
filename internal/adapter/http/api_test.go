package http

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	plotadapter "github.com/couchcryptid/covid-dashboard-service/internal/adapter/plot"
	"github.com/couchcryptid/covid-dashboard-service/internal/domain"
)

func testChart(kind domain.ChartKind) domain.Chart {
	return domain.Chart{
		ID:   "confirmed",
		Kind: kind,
		Points: []domain.Point{
			{X: "2020-03-01", Y: 10, Category: "Sao Paulo"},
			{X: "2020-03-02", Y: 15, Category: "Sao Paulo"},
		},
	}
}

func TestWriteChartPNG_RenderFailureIsJSONError(t *testing.T) {
	a := &API{Renderer: plotadapter.NewRenderer(), Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	req := httptest.NewRequest(http.MethodGet, "/api/covid/charts/confirmed.png", nil)
	rec := httptest.NewRecorder()

	a.writeChartPNG(rec, req, testChart(domain.KindChoropleth))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotEqual(t, "image/png", rec.Header().Get("Content-Type"))
	var body errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, http.StatusText(http.StatusInternalServerError), body.Error)
}

func TestWriteChartPNG_OK(t *testing.T) {
	a := &API{Renderer: plotadapter.NewRenderer(), Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	req := httptest.NewRequest(http.MethodGet, "/api/covid/charts/confirmed.png", nil)
	rec := httptest.NewRecorder()

	a.writeChartPNG(rec, req, testChart(domain.KindLine))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, []byte("\x89PNG\r\n\x1a\n"), rec.Body.Bytes()[:8])
}
