package analysis

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"modelbench/domain/dataset"
	"modelbench/domain/view"
)

// NewHistogram bins the numeric target values into equal-width bins spanning
// [min, max]. Non-numeric values are counted in Skipped.
func NewHistogram(cells []dataset.Cell, bins int) view.Histogram {
	if bins <= 0 {
		bins = HistogramBins
	}
	values := make([]float64, 0, len(cells))
	skipped := 0
	for _, c := range cells {
		if !c.Present {
			skipped++
			continue
		}
		f, ok := dataset.AsFloat(c.Value)
		if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
			skipped++
			continue
		}
		values = append(values, f)
	}

	h := view.Histogram{Values: values, Bins: []view.Bin{}, Skipped: skipped}
	if len(values) == 0 {
		return h
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	lo, hi := sorted[0], sorted[len(sorted)-1]
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}
	dividers := floats.Span(make([]float64, bins+1), lo, hi)
	// stat.Histogram bins are half-open, so nudge the top edge to include max
	dividers[bins] = math.Nextafter(hi, math.Inf(1))

	counts := stat.Histogram(nil, dividers, sorted, nil)
	h.Bins = make([]view.Bin, bins)
	for i := range h.Bins {
		h.Bins[i] = view.Bin{Min: dividers[i], Max: dividers[i+1], Count: int(counts[i])}
	}
	h.Summary = summarize(sorted)
	return h
}

func summarize(values []float64) *view.Summary {
	data := stats.Float64Data(values)
	mean, err := stats.Mean(data)
	if err != nil {
		return nil
	}
	median, _ := stats.Median(data)
	stdDev, _ := stats.StandardDeviation(data)
	minV, _ := stats.Min(data)
	maxV, _ := stats.Max(data)
	return &view.Summary{
		Count:  len(values),
		Mean:   mean,
		Median: median,
		StdDev: stdDev,
		Min:    minV,
		Max:    maxV,
	}
}
