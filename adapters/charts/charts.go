// Package charts renders the analysis and results views as SVG. Pie, bar and
// line charts go through go-chart; the histogram through gonum/plot.
package charts

import (
	"bytes"
	"fmt"
	"image/color"
	"io"
	"math"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"modelbench/domain/view"
)

const (
	DefaultWidth  = 720
	DefaultHeight = 420
)

// palette cycles through the colors used for series and slices
var palette = []string{"1f77b4", "ff7f0e", "2ca02c", "d62728", "9467bd", "8c564b", "e377c2", "7f7f7f", "bcbd22", "17becf"}

func seriesColor(i int) drawing.Color {
	return drawing.ColorFromHex(palette[i%len(palette)])
}

// Renderer draws charts at a fixed size
type Renderer struct {
	Width  int
	Height int
}

// NewRenderer returns a renderer with the default size
func NewRenderer() Renderer {
	return Renderer{Width: DefaultWidth, Height: DefaultHeight}
}

func (r Renderer) size() (int, int) {
	w, h := r.Width, r.Height
	if w <= 0 {
		w = DefaultWidth
	}
	if h <= 0 {
		h = DefaultHeight
	}
	return w, h
}

// Distribution draws the target chart of an analysis
func (r Renderer) Distribution(w io.Writer, d view.Distribution) error {
	switch d.Kind {
	case view.PieDistribution:
		if d.Pie == nil {
			return fmt.Errorf("pie distribution without data")
		}
		return r.Pie(w, d.Title, *d.Pie)
	case view.HistogramDistribution:
		if d.Histogram == nil {
			return fmt.Errorf("histogram distribution without data")
		}
		return r.Histogram(w, d.Title, d.Target, *d.Histogram)
	default:
		return fmt.Errorf("unknown distribution kind %q", d.Kind)
	}
}

// Pie draws one slice per class
func (r Renderer) Pie(w io.Writer, title string, pie view.PieChart) error {
	if pie.Total() == 0 {
		return fmt.Errorf("pie chart has no values")
	}
	width, height := r.size()
	values := make([]chart.Value, len(pie.Labels))
	for i, label := range pie.Labels {
		values[i] = chart.Value{
			Label: fmt.Sprintf("%s (%d)", label, pie.Counts[i]),
			Value: float64(pie.Counts[i]),
			Style: chart.Style{FillColor: seriesColor(i), StrokeColor: drawing.ColorWhite},
		}
	}
	pc := chart.PieChart{
		Title:  title,
		Width:  width,
		Height: height,
		Values: values,
	}
	return pc.Render(chart.SVG, w)
}

// Comparison draws the best score of each model as a bar
func (r Renderer) Comparison(w io.Writer, bars view.BarChart) error {
	if len(bars.Labels) == 0 {
		return fmt.Errorf("bar chart has no bars")
	}
	width, height := r.size()
	values := make([]chart.Value, len(bars.Labels))
	hi := 0.0
	for i, label := range bars.Labels {
		values[i] = chart.Value{
			Label: label,
			Value: bars.Values[i],
			Style: chart.Style{FillColor: seriesColor(0), StrokeColor: seriesColor(0)},
		}
		hi = math.Max(hi, bars.Values[i])
	}
	lo := 0.0
	for _, v := range bars.Values {
		lo = math.Min(lo, v)
	}
	if hi == lo {
		hi = lo + 1
	}

	barWidth := (width - 120) / (2 * len(values))
	if barWidth < 8 {
		barWidth = 8
	}
	bc := chart.BarChart{
		Title:    bars.Title,
		Width:    width,
		Height:   height,
		BarWidth: barWidth,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Bottom: 60},
		},
		XAxis: chart.Style{TextRotationDegrees: -bars.LabelRotation},
		YAxis: chart.YAxis{
			Name:  "Score",
			Range: &chart.ContinuousRange{Min: lo, Max: hi * 1.05},
		},
		Bars: values,
	}
	return bc.Render(chart.SVG, w)
}

// History draws one line per model over trial number. Missing trials are
// left out of the polyline.
func (r Renderer) History(w io.Writer, lc view.LineChart) error {
	width, height := r.size()
	var series []chart.Series
	lo, hi := math.Inf(1), math.Inf(-1)
	maxTrial := 1

	for i, s := range lc.Series {
		points := s.Points()
		if len(points) == 0 {
			continue
		}
		xs := make([]float64, len(points))
		ys := make([]float64, len(points))
		for j, p := range points {
			xs[j] = float64(p.Trial)
			ys[j] = p.Score
			lo = math.Min(lo, p.Score)
			hi = math.Max(hi, p.Score)
			if p.Trial > maxTrial {
				maxTrial = p.Trial
			}
		}
		col := seriesColor(i)
		series = append(series, chart.ContinuousSeries{
			Name:    s.Name,
			XValues: xs,
			YValues: ys,
			Style: chart.Style{
				StrokeColor: col,
				StrokeWidth: 2,
				DotColor:    col,
				DotWidth:    3,
			},
		})
	}
	if len(series) == 0 {
		return fmt.Errorf("line chart has no points")
	}
	if hi == lo {
		lo, hi = lo-0.5, hi+0.5
	}
	pad := (hi - lo) * 0.05

	ch := chart.Chart{
		Title:  lc.Title,
		Width:  width,
		Height: height,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 16, Right: 12, Bottom: 16},
		},
		XAxis: chart.XAxis{
			Name:           lc.XTitle,
			Range:          &chart.ContinuousRange{Min: 1, Max: math.Max(2, float64(maxTrial))},
			ValueFormatter: chart.IntValueFormatter,
		},
		YAxis: chart.YAxis{
			Name:  lc.YTitle,
			Range: &chart.ContinuousRange{Min: lo - pad, Max: hi + pad},
		},
		Series: series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	return ch.Render(chart.SVG, w)
}

// Histogram draws the precomputed bins of a numeric target
func (r Renderer) Histogram(w io.Writer, title, target string, h view.Histogram) error {
	if len(h.Bins) == 0 {
		return fmt.Errorf("histogram has no bins")
	}
	width, height := r.size()

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = target
	p.Y.Label.Text = "Count"

	bins := make([]plotter.HistogramBin, len(h.Bins))
	for i, b := range h.Bins {
		bins[i] = plotter.HistogramBin{Min: b.Min, Max: b.Max, Weight: float64(b.Count)}
	}
	hist := &plotter.Histogram{
		Bins:      bins,
		Width:     h.Bins[0].Max - h.Bins[0].Min,
		FillColor: color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff},
		LineStyle: plotter.DefaultLineStyle,
	}
	p.Add(hist)

	wt, err := p.WriterTo(pixels(width), pixels(height), "svg")
	if err != nil {
		return fmt.Errorf("failed to render histogram: %w", err)
	}
	_, err = wt.WriteTo(w)
	return err
}

// pixels converts a pixel count to plot units at 96 dpi
func pixels(n int) vg.Length {
	return vg.Length(n) * vg.Inch / 96
}

// SVG runs draw into a buffer and returns the markup
func SVG(draw func(io.Writer) error) (string, error) {
	var buf bytes.Buffer
	if err := draw(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
