// Package analysis computes and renders the dataset panels: shape, feature
// lists, schema, sample rows and the target distribution.
package analysis

import (
	"sort"
	"strings"

	"modelbench/domain/dataset"
	"modelbench/domain/training"
	"modelbench/domain/view"
	"modelbench/internal/session"
)

const (
	// SampleRows is how many leading rows the sample table shows
	SampleRows = 5
	// HistogramBins is the bin count of the regression target histogram
	HistogramBins = 30

	noneText = "None"
)

// Input is everything Build reads. Columns is the server-reported column list.
type Input struct {
	Dataset dataset.Dataset
	Columns []string
	Target  string
	Task    training.TaskType
}

// Builder computes analysis views
type Builder struct {
	Detector dataset.Detector
	Bins     int
}

// NewBuilder returns a builder with the default detector and bin count
func NewBuilder() Builder {
	return Builder{Detector: dataset.NewDetector(), Bins: HistogramBins}
}

// Build computes the analysis with the default builder
func Build(in Input) view.Analysis {
	return NewBuilder().Build(in)
}

// Build is pure: identical inputs give identical views
func (b Builder) Build(in Input) view.Analysis {
	out := view.Analysis{Summary: b.summary(in)}
	if in.Target != "" {
		dist := b.distribution(in)
		out.Distribution = &dist
	}
	return out
}

func (b Builder) summary(in Input) view.AnalysisSummary {
	rows, cols := in.Dataset.Shape()
	features := b.Detector.Detect(in.Dataset, in.Target)

	s := view.AnalysisSummary{
		Rows:          rows,
		Columns:       cols,
		Numerical:     joinOrNone(features.Numerical),
		Categorical:   joinOrNone(features.Categorical),
		Schema:        Schema(in.Dataset, in.Columns),
		SampleHeaders: in.Dataset.Columns(),
	}
	if s.SampleHeaders == nil {
		s.SampleHeaders = []string{}
	}

	head := in.Dataset.Head(SampleRows)
	s.SampleRows = make([][]string, len(head))
	for i, row := range head {
		cells := make([]string, len(s.SampleHeaders))
		for j, col := range s.SampleHeaders {
			v, ok := row.Get(col)
			cells[j] = dataset.FormatValue(v, ok)
		}
		s.SampleRows[i] = cells
	}
	return s
}

// Schema lists each column with the type tag of its first-row value
func Schema(d dataset.Dataset, columns []string) string {
	var sb strings.Builder
	sb.WriteString("DataFrame Info:\n")
	for _, col := range columns {
		var (
			v  dataset.Value
			ok bool
		)
		if len(d) > 0 {
			v, ok = d[0].Get(col)
		}
		sb.WriteString(col)
		sb.WriteString(": ")
		sb.WriteString(string(dataset.TypeOf(v, ok)))
		sb.WriteString("\n")
	}
	return sb.String()
}

func joinOrNone(names []string) string {
	if len(names) == 0 {
		return noneText
	}
	return strings.Join(names, ", ")
}

func (b Builder) distribution(in Input) view.Distribution {
	cells := in.Dataset.Column(in.Target)
	if in.Task.IsClassification() {
		pie := ClassCounts(cells)
		return view.Distribution{
			Kind:   view.PieDistribution,
			Title:  "Class Distribution",
			Target: in.Target,
			Pie:    &pie,
		}
	}
	hist := NewHistogram(cells, b.Bins)
	return view.Distribution{
		Kind:      view.HistogramDistribution,
		Title:     "Target Value Distribution",
		Target:    in.Target,
		Histogram: &hist,
	}
}

type classKey struct {
	present bool
	value   dataset.Value
}

type classGroup struct {
	cell  dataset.Cell
	count int
}

// ClassCounts groups target values by exact equality and orders the groups:
// numeric values ascending first, then the rest by label
func ClassCounts(cells []dataset.Cell) view.PieChart {
	index := make(map[classKey]int)
	var groups []classGroup
	for _, c := range cells {
		key := classKey{present: c.Present, value: groupValue(c.Value)}
		if i, ok := index[key]; ok {
			groups[i].count++
			continue
		}
		index[key] = len(groups)
		groups = append(groups, classGroup{cell: c, count: 1})
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return classLess(groups[i].cell, groups[j].cell)
	})

	pie := view.PieChart{Labels: make([]string, len(groups)), Counts: make([]int, len(groups))}
	for i, g := range groups {
		pie.Labels[i] = "Class " + g.cell.String()
		pie.Counts[i] = g.count
	}
	return pie
}

func groupValue(v dataset.Value) dataset.Value {
	switch v.(type) {
	case nil, float64, string, bool:
		return v
	default:
		return "\x00" + dataset.FormatValue(v, true)
	}
}

func classLess(a, b dataset.Cell) bool {
	af, aNum := numericClass(a)
	bf, bNum := numericClass(b)
	switch {
	case aNum && bNum:
		if af != bf {
			return af < bf
		}
		return a.String() < b.String()
	case aNum != bNum:
		return aNum
	default:
		return a.String() < b.String()
	}
}

func numericClass(c dataset.Cell) (float64, bool) {
	if !c.Present {
		return 0, false
	}
	return dataset.AsFloat(c.Value)
}

// FromSnapshot reads the analysis input out of the application state
func FromSnapshot(s session.Snapshot) Input {
	return Input{Dataset: s.Dataset, Columns: s.Columns, Target: s.Target, Task: s.Task}
}
