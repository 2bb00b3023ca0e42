// Package results turns training results into the comparison bar chart and the
// optimization history line chart.
package results

import (
	"fmt"

	domain "modelbench/domain/training"
	"modelbench/domain/view"
	"modelbench/internal"
	"modelbench/ports"
)

const (
	ComparisonTitle = "Model Performance Comparison"
	HistoryTitle    = "Model Optimization Progress"
	// NoHistoryText replaces the line chart when no model reported trials
	NoHistoryText = "No optimization history data available"
	// LabelRotation tilts the model names under the bars
	LabelRotation = -45.0
)

// Build computes the results view. Models without history are listed in Skipped.
func Build(results domain.Results) view.Results {
	out := view.Results{
		Comparison: view.BarChart{
			Title:         ComparisonTitle,
			Labels:        make([]string, len(results)),
			Values:        make([]float64, len(results)),
			LabelRotation: LabelRotation,
		},
	}

	var series []view.LineSeries
	for i, m := range results {
		out.Comparison.Labels[i] = m.Name
		out.Comparison.Values[i] = m.BestScore

		if !m.HasHistory() {
			out.Skipped = append(out.Skipped, m.Name)
			continue
		}
		series = append(series, historySeries(m))
	}

	if len(series) == 0 {
		out.Placeholder = NoHistoryText
		return out
	}
	out.History = &view.LineChart{
		Title:  HistoryTitle,
		XTitle: "Trial Number",
		YTitle: "Score",
		Series: series,
	}
	return out
}

func historySeries(m domain.ModelResult) view.LineSeries {
	values := m.History.Values
	s := view.LineSeries{
		Name:  m.Name,
		X:     make([]int, len(values)),
		Y:     make([]float64, len(values)),
		Hover: make([]string, len(values)),
	}
	for i, v := range values {
		s.X[i] = i + 1
		s.Y[i] = v
		s.Hover[i] = HoverText(m.Name, i+1, v)
	}
	return s
}

// HoverText annotates one trial marker
func HoverText(model string, trial int, score float64) string {
	return fmt.Sprintf("%s\nTrial: %d\nScore: %.4f", model, trial, score)
}

// Renderer applies results views to a surface
type Renderer struct {
	surface ports.ResultsSurface
	logger  *internal.Logger
}

// NewRenderer creates a renderer. A nil surface makes Render log and no-op.
func NewRenderer(surface ports.ResultsSurface, logger *internal.Logger) *Renderer {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Renderer{surface: surface, logger: logger.With("results")}
}

// Render draws both charts and reveals the download section. It reports
// whether anything was drawn.
func (r *Renderer) Render(results domain.Results) (view.Results, bool) {
	if len(results) == 0 {
		r.logger.Error("no results to display")
		return view.Results{}, false
	}
	if r.surface == nil {
		r.logger.Error("results surface missing, skipping render")
		return view.Results{}, false
	}

	out := Build(results)
	for _, name := range out.Skipped {
		r.logger.Warn("no optimization history for %s", name)
	}

	r.surface.ShowComparison(out.Comparison)
	if out.History != nil {
		r.surface.ShowHistory(*out.History)
	} else {
		r.logger.Error("no valid optimization history data to plot")
		r.surface.ShowHistoryPlaceholder(out.Placeholder)
	}
	r.surface.RevealDownloads()
	return out, true
}
