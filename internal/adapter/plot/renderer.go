// Package plot renders dashboard charts to PNG images.
package plot

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	gplot "gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/couchcryptid/covid-dashboard-service/internal/domain"
)

const maxTickLabels = 12

// Renderer draws line and bar charts at a fixed size.
type Renderer struct {
	Width  vg.Length
	Height vg.Length
}

// NewRenderer returns a Renderer sized for a wide dashboard panel.
func NewRenderer() *Renderer {
	return &Renderer{Width: 10 * vg.Inch, Height: 5 * vg.Inch}
}

// Render writes c as PNG to w. An empty chart yields domain.ErrEmptyResult
// and writes nothing.
func (r *Renderer) Render(w io.Writer, c domain.Chart) error {
	if c.Empty || len(c.Points) == 0 {
		return fmt.Errorf("render %s: %w", c.ID, domain.ErrEmptyResult)
	}

	p := gplot.New()
	p.Title.Text = c.Title
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.X.Label.Text = c.XLabel
	p.Y.Label.Text = c.YLabel
	p.Add(plotter.NewGrid())

	var err error
	switch c.Kind {
	case domain.KindLine:
		err = addLines(p, c.Points)
	case domain.KindBar:
		err = addBars(p, c.Points)
	default:
		err = fmt.Errorf("unsupported chart kind %q", c.Kind)
	}
	if err != nil {
		return fmt.Errorf("render %s: %w", c.ID, err)
	}

	wt, err := p.WriterTo(r.Width, r.Height, "png")
	if err != nil {
		return fmt.Errorf("render %s: %w", c.ID, err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("write %s: %w", c.ID, err)
	}
	return nil
}

// RenderFile writes c to dir/<chart id>.png and returns the path.
func (r *Renderer) RenderFile(dir string, c domain.Chart) (string, error) {
	path := filepath.Join(dir, c.ID+".png")
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := r.Render(f, c); err != nil {
		f.Close()
		os.Remove(path)
		return "", err
	}
	return path, f.Close()
}

// addLines draws one line per category against a date axis.
func addLines(p *gplot.Plot, points []domain.Point) error {
	series := make(map[string]plotter.XYs)
	var order []string
	for _, pt := range points {
		d, err := time.Parse(time.DateOnly, pt.X)
		if err != nil {
			return fmt.Errorf("line chart x value: %w", err)
		}
		if _, ok := series[pt.Category]; !ok {
			order = append(order, pt.Category)
		}
		series[pt.Category] = append(series[pt.Category], plotter.XY{X: float64(d.Unix()), Y: pt.Y})
	}

	for i, cat := range order {
		line, err := plotter.NewLine(series[cat])
		if err != nil {
			return err
		}
		line.Color = plotutil.Color(i)
		line.Width = vg.Points(1.5)
		p.Add(line)
		if len(order) > 1 {
			p.Legend.Add(cat, line)
		}
	}
	p.Legend.Top = true
	p.Legend.Left = true
	p.X.Tick.Marker = gplot.TimeTicks{Format: time.DateOnly}
	return nil
}

// addBars draws one bar per distinct x label, stacking categories by sum.
func addBars(p *gplot.Plot, points []domain.Point) error {
	index := make(map[string]int)
	var labels []string
	var values plotter.Values
	for _, pt := range points {
		i, ok := index[pt.X]
		if !ok {
			i = len(labels)
			index[pt.X] = i
			labels = append(labels, pt.X)
			values = append(values, 0)
		}
		values[i] += pt.Y
	}

	bars, err := plotter.NewBarChart(values, barWidth(len(values)))
	if err != nil {
		return err
	}
	bars.Color = plotutil.Color(0)
	bars.LineStyle.Width = vg.Length(0)
	p.Add(bars)
	p.NominalX(thin(labels, maxTickLabels)...)
	return nil
}

func barWidth(n int) vg.Length {
	w := 600.0 / float64(n)
	switch {
	case w < 1:
		w = 1
	case w > 24:
		w = 24
	}
	return vg.Points(w)
}

// thin blanks labels so at most limit of them are shown.
func thin(labels []string, limit int) []string {
	if len(labels) <= limit {
		return labels
	}
	step := (len(labels) + limit - 1) / limit
	out := make([]string, len(labels))
	for i := 0; i < len(labels); i += step {
		out[i] = labels[i]
	}
	return out
}
