// Package view holds display-ready data computed from datasets and training
// results. Surfaces render these without further computation.
package view

import "fmt"

// AnalysisSummary is everything the analysis panels show apart from the chart
type AnalysisSummary struct {
	Rows          int        `json:"rows"`
	Columns       int        `json:"columns"`
	Numerical     string     `json:"numerical"`
	Categorical   string     `json:"categorical"`
	Schema        string     `json:"schema"`
	SampleHeaders []string   `json:"sample_headers"`
	SampleRows    [][]string `json:"sample_rows"`
}

// Shape renders the dataset shape as "(rows, columns)"
func (s AnalysisSummary) Shape() string {
	return fmt.Sprintf("(%d, %d)", s.Rows, s.Columns)
}

// DistributionKind selects the chart drawn for the target column
type DistributionKind string

const (
	PieDistribution       DistributionKind = "pie"
	HistogramDistribution DistributionKind = "histogram"
)

// Distribution is the target chart. Exactly one of Pie and Histogram is set.
type Distribution struct {
	Kind      DistributionKind `json:"kind"`
	Title     string           `json:"title"`
	Target    string           `json:"target"`
	Pie       *PieChart        `json:"pie,omitempty"`
	Histogram *Histogram       `json:"histogram,omitempty"`
}

// PieChart lists class labels and their counts in display order
type PieChart struct {
	Labels []string `json:"labels"`
	Counts []int    `json:"counts"`
}

// Total returns the number of rows counted in the chart
func (p PieChart) Total() int {
	total := 0
	for _, c := range p.Counts {
		total += c
	}
	return total
}

// Bin is one histogram bucket covering [Min, Max)
type Bin struct {
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Count int     `json:"count"`
}

// Histogram holds the binned numeric target values
type Histogram struct {
	Values  []float64 `json:"-"`
	Bins    []Bin     `json:"bins"`
	Skipped int       `json:"skipped"`
	Summary *Summary  `json:"summary,omitempty"`
}

// Summary describes the numeric target values
type Summary struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// Analysis is the full analysis view. Distribution is nil when no target is selected.
type Analysis struct {
	Summary      AnalysisSummary `json:"summary"`
	Distribution *Distribution   `json:"distribution,omitempty"`
}
