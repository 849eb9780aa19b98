// Package charts renders the dashboard line charts as PNG.
package charts

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"sensor-dashboard/models"
	"sensor-dashboard/services"
)

// ErrNoData is returned when the snapshot holds no value for the field.
var ErrNoData = errors.New("charts: no data to plot")

const (
	DefaultWidth  = 640
	DefaultHeight = 320
)

type Options struct {
	Width     int
	Height    int
	Unit      string
	ShowTrend bool
}

func lineStyle(col drawing.Color, dashed bool) chart.Style {
	st := chart.Style{
		StrokeColor: col,
		StrokeWidth: 2,
		DotColor:    col,
		DotWidth:    3,
	}
	if dashed {
		st.StrokeDashArray = []float64{5, 4}
		st.DotWidth = 0
	}
	return st
}

// RenderLine draws field across the snapshot, oldest on the left. When
// ShowTrend is set and a line can be fitted it is overlaid; with too few
// points the raw series is drawn alone.
func RenderLine(w io.Writer, field string, snapshot []models.Reading, opts Options) error {
	xs, ys, ticks := points(field, snapshot)
	if len(ys) == 0 {
		return ErrNoData
	}
	if opts.Width <= 0 {
		opts.Width = DefaultWidth
	}
	if opts.Height <= 0 {
		opts.Height = DefaultHeight
	}

	// a single point still needs a non-zero x span
	maxX := xs[len(xs)-1]
	if len(xs) == 1 {
		maxX = 1
		ticks = append(ticks, chart.Tick{Value: 1, Label: ""})
	}

	series := []chart.Series{
		chart.ContinuousSeries{
			Name:    field,
			XValues: xs,
			YValues: ys,
			Style:   lineStyle(chart.ColorBlue, false),
		},
	}

	lo, hi := bounds(ys)
	if opts.ShowTrend {
		if line, err := services.FitTrendField(field, snapshot); err == nil {
			fitted := line.Points(len(ys))
			series = append(series, chart.ContinuousSeries{
				Name:    "trend",
				XValues: xs,
				YValues: fitted,
				Style:   lineStyle(chart.ColorRed, true),
			})
			flo, fhi := bounds(fitted)
			lo, hi = math.Min(lo, flo), math.Max(hi, fhi)
		}
	}
	lo, hi = pad(lo, hi)

	name := field
	if opts.Unit != "" {
		name = fmt.Sprintf("%s (%s)", field, opts.Unit)
	}

	ch := chart.Chart{
		Title:      cases.Title(language.English).String(field),
		Width:      opts.Width,
		Height:     opts.Height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 12}},
		XAxis: chart.XAxis{
			Name:  "Time",
			Range: &chart.ContinuousRange{Min: 0, Max: maxX},
			Ticks: ticks,
		},
		YAxis: chart.YAxis{
			Name:  name,
			Range: &chart.ContinuousRange{Min: lo, Max: hi},
		},
		Series: series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}

	if err := ch.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("charts: render %s: %w", field, err)
	}
	return nil
}

// points returns index positions, values and time-of-day tick labels for the
// readings that carry field.
func points(field string, snapshot []models.Reading) ([]float64, []float64, []chart.Tick) {
	var (
		xs    []float64
		ys    []float64
		ticks []chart.Tick
	)
	for _, r := range snapshot {
		v, ok := r.Value(field)
		if !ok {
			continue
		}
		x := float64(len(ys))
		xs = append(xs, x)
		ys = append(ys, v)
		ticks = append(ticks, chart.Tick{Value: x, Label: clock(r.Timestamp)})
	}
	return xs, ys, ticks
}

func clock(ts string) string {
	if i := strings.LastIndexByte(ts, ' '); i >= 0 {
		return ts[i+1:]
	}
	return ts
}

func bounds(vs []float64) (float64, float64) {
	lo, hi := vs[0], vs[0]
	for _, v := range vs[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}

func pad(lo, hi float64) (float64, float64) {
	span := hi - lo
	if span == 0 {
		return lo - 1, hi + 1
	}
	return lo - span*0.1, hi + span*0.1
}
