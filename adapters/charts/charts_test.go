package charts

import (
	"bytes"
	"io"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"modelbench/domain/view"
)

func TestRenderer_SVGOutput(t *testing.T) {
	r := NewRenderer()

	tests := []struct {
		name  string
		draw  func(io.Writer) error
		title string
	}{
		{
			name: "pie",
			draw: func(w io.Writer) error {
				return r.Distribution(w, view.Distribution{
					Kind:  view.PieDistribution,
					Title: "Class Distribution",
					Pie:   &view.PieChart{Labels: []string{"Class 0", "Class 1"}, Counts: []int{2, 3}},
				})
			},
			title: "Class Distribution",
		},
		{
			name: "histogram",
			draw: func(w io.Writer) error {
				return r.Distribution(w, view.Distribution{
					Kind:   view.HistogramDistribution,
					Title:  "Target Value Distribution",
					Target: "price",
					Histogram: &view.Histogram{Bins: []view.Bin{
						{Min: 0, Max: 1, Count: 2},
						{Min: 1, Max: 2, Count: 5},
					}},
				})
			},
			title: "Target Value Distribution",
		},
		{
			name: "comparison",
			draw: func(w io.Writer) error {
				return r.Comparison(w, view.BarChart{
					Title:         "Model Performance Comparison",
					Labels:        []string{"RF", "SVM"},
					Values:        []float64{0.95, 0.91},
					LabelRotation: -45,
				})
			},
			title: "Model Performance Comparison",
		},
		{
			name: "history with gap",
			draw: func(w io.Writer) error {
				return r.History(w, view.LineChart{
					Title:  "Model Optimization Progress",
					XTitle: "Trial Number",
					YTitle: "Score",
					Series: []view.LineSeries{{
						Name:  "RF",
						X:     []int{1, 2, 3},
						Y:     []float64{0.9, math.NaN(), 0.95},
						Hover: []string{"a", "b", "c"},
					}},
				})
			},
			title: "Model Optimization Progress",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svg, err := SVG(tt.draw)
			require.NoError(t, err)
			assert.Contains(t, svg, "<svg")
			assert.Contains(t, svg, tt.title)
		})
	}
}

func TestRenderer_EmptyInputs(t *testing.T) {
	r := Renderer{}
	var buf bytes.Buffer

	assert.Error(t, r.Pie(&buf, "x", view.PieChart{}))
	assert.Error(t, r.Comparison(&buf, view.BarChart{}))
	assert.Error(t, r.History(&buf, view.LineChart{Series: []view.LineSeries{{Name: "RF", X: []int{1}, Y: []float64{math.NaN()}, Hover: []string{""}}}}))
	assert.Error(t, r.Histogram(&buf, "x", "y", view.Histogram{}))
	assert.Error(t, r.Distribution(&buf, view.Distribution{Kind: "scatter"}))
}

func TestRenderer_SingleTrialConstantScore(t *testing.T) {
	svg, err := SVG(func(w io.Writer) error {
		return NewRenderer().History(w, view.LineChart{
			Title:  "Model Optimization Progress",
			Series: []view.LineSeries{{Name: "KNN", X: []int{1}, Y: []float64{0.8}, Hover: []string{""}}},
		})
	})
	require.NoError(t, err)
	assert.Contains(t, svg, "KNN")
}
