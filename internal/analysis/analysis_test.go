package analysis

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"modelbench/domain/dataset"
	"modelbench/domain/training"
	"modelbench/domain/view"
)

func row(fields ...interface{}) dataset.Row {
	fs := make([]dataset.Field, 0, len(fields)/2)
	for i := 0; i+1 < len(fields); i += 2 {
		fs = append(fs, dataset.Field{Key: fields[i].(string), Value: fields[i+1]})
	}
	return dataset.NewRow(fs...)
}

func uploadFixture() Input {
	return Input{
		Dataset: dataset.Dataset{
			row("a", 1.0, "b", "x"),
			row("a", 2.0, "b", "y"),
			row("a", 3.0, "b", "x"),
		},
		Columns: []string{"a", "b"},
	}
}

func TestBuild_UploadScenario(t *testing.T) {
	got := Build(uploadFixture())

	assert.Equal(t, "(3, 2)", got.Summary.Shape())
	assert.Equal(t, "None", got.Summary.Numerical)
	assert.Equal(t, "a, b", got.Summary.Categorical)
	assert.Equal(t, "DataFrame Info:\na: number\nb: string\n", got.Summary.Schema)
	assert.Equal(t, []string{"a", "b"}, got.Summary.SampleHeaders)
	assert.Equal(t, [][]string{{"1", "x"}, {"2", "y"}, {"3", "x"}}, got.Summary.SampleRows)
	assert.Nil(t, got.Distribution, "no target leaves the chart untouched")
}

func TestBuild_Idempotent(t *testing.T) {
	in := uploadFixture()
	in.Target = "a"
	in.Task = training.Regression

	first := Build(in)
	second := Build(in)
	assert.Equal(t, first, second)
}

func TestBuild_SampleTableLimitsAndFormats(t *testing.T) {
	var d dataset.Dataset
	for i := 0; i < 8; i++ {
		d = append(d, row("id", float64(i), "note", nil, "ok", i%2 == 0))
	}
	d = append(d, row("id", 99.0))

	got := Build(Input{Dataset: d, Columns: []string{"id", "note", "ok", "ghost"}})

	require.Len(t, got.Summary.SampleRows, SampleRows)
	assert.Equal(t, []string{"0", "null", "true"}, got.Summary.SampleRows[0])
	assert.Equal(t, "DataFrame Info:\nid: number\nnote: null\nok: boolean\nghost: undefined\n", got.Summary.Schema)
	assert.Equal(t, "(9, 3)", got.Summary.Shape())
}

func TestBuild_EmptyDataset(t *testing.T) {
	got := Build(Input{Dataset: dataset.Dataset{}, Columns: nil, Target: "y", Task: training.Classification})
	assert.Equal(t, "(0, 0)", got.Summary.Shape())
	assert.Equal(t, "None", got.Summary.Numerical)
	assert.Equal(t, "None", got.Summary.Categorical)
	assert.Empty(t, got.Summary.SampleRows)
	require.NotNil(t, got.Distribution)
	assert.Empty(t, got.Distribution.Pie.Labels)
}

func TestBuild_ClassificationScenario(t *testing.T) {
	var d dataset.Dataset
	for _, v := range []float64{0, 0, 1, 1, 1} {
		d = append(d, row("x", v*2, "y", v))
	}
	got := Build(Input{Dataset: d, Columns: []string{"x", "y"}, Target: "y", Task: training.Classification})

	require.NotNil(t, got.Distribution)
	assert.Equal(t, view.PieDistribution, got.Distribution.Kind)
	assert.Equal(t, []string{"Class 0", "Class 1"}, got.Distribution.Pie.Labels)
	assert.Equal(t, []int{2, 3}, got.Distribution.Pie.Counts)
	assert.Equal(t, 5, got.Distribution.Pie.Total())
	assert.Equal(t, "x", got.Summary.Categorical)
}

func TestClassCounts_Ordering(t *testing.T) {
	cells := []dataset.Cell{
		{Value: "b", Present: true},
		{Value: 10.0, Present: true},
		{Value: "2", Present: true},
		{Value: nil, Present: true},
		{Value: "a", Present: true},
		{Value: 10.0, Present: true},
		{Value: -1.5, Present: true},
		{Present: false},
	}
	pie := ClassCounts(cells)
	assert.Equal(t, []string{"Class -1.5", "Class 2", "Class 10", "Class a", "Class b", "Class null", "Class undefined"}, pie.Labels)
	assert.Equal(t, []int{1, 1, 2, 1, 1, 1, 1}, pie.Counts)
}

func TestClassCounts_NumberAndStringStaySeparate(t *testing.T) {
	pie := ClassCounts([]dataset.Cell{{Value: 1.0, Present: true}, {Value: "1", Present: true}})
	assert.Equal(t, []string{"Class 1", "Class 1"}, pie.Labels)
	assert.Equal(t, []int{1, 1}, pie.Counts)
}

func TestBuild_Histogram(t *testing.T) {
	var d dataset.Dataset
	for i := 0; i < 60; i++ {
		d = append(d, row("y", float64(i)))
	}
	d = append(d, row("y", "n/a"), row("y", nil), row("y", "7.5"))

	got := Build(Input{Dataset: d, Columns: []string{"y"}, Target: "y", Task: training.TaskType("")})
	require.NotNil(t, got.Distribution)
	hist := got.Distribution.Histogram
	require.NotNil(t, hist)
	assert.Equal(t, view.HistogramDistribution, got.Distribution.Kind)
	assert.Len(t, hist.Bins, HistogramBins)
	assert.Equal(t, 2, hist.Skipped)

	total := 0
	for _, b := range hist.Bins {
		total += b.Count
	}
	assert.Equal(t, 61, total)
	assert.Equal(t, 0.0, hist.Bins[0].Min)
	require.NotNil(t, hist.Summary)
	assert.Equal(t, 61, hist.Summary.Count)
	assert.Equal(t, 59.0, hist.Summary.Max)
}

func TestNewHistogram_ConstantAndEmpty(t *testing.T) {
	constant := NewHistogram([]dataset.Cell{{Value: 4.0, Present: true}, {Value: 4.0, Present: true}}, 30)
	require.Len(t, constant.Bins, 30)
	assert.Equal(t, 3.5, constant.Bins[0].Min)
	sum := 0
	for _, b := range constant.Bins {
		sum += b.Count
	}
	assert.Equal(t, 2, sum)

	empty := NewHistogram([]dataset.Cell{{Value: "x", Present: true}}, 30)
	assert.Empty(t, empty.Bins)
	assert.Nil(t, empty.Summary)
	assert.Equal(t, 1, empty.Skipped)
}

type recordingSurface struct {
	summaries     []view.AnalysisSummary
	distributions []view.Distribution
}

func (s *recordingSurface) ShowSummary(summary view.AnalysisSummary) {
	s.summaries = append(s.summaries, summary)
}

func (s *recordingSurface) ShowDistribution(dist view.Distribution) {
	s.distributions = append(s.distributions, dist)
}

func TestRenderer_Render(t *testing.T) {
	surface := &recordingSurface{}
	r := NewRenderer(surface, nil)

	in := uploadFixture()
	r.Render(in)
	assert.Len(t, surface.summaries, 1)
	assert.Empty(t, surface.distributions)

	in.Target = "b"
	in.Task = training.Classification
	r.Render(in)
	r.Render(in)
	require.Len(t, surface.summaries, 3)
	require.Len(t, surface.distributions, 2)
	assert.Equal(t, surface.summaries[1], surface.summaries[2])
	assert.Equal(t, []string{"Class x", "Class y"}, surface.distributions[0].Pie.Labels)
}

func TestRenderer_NilSurface(t *testing.T) {
	r := NewRenderer(nil, nil)
	got := r.Render(uploadFixture())
	assert.Equal(t, "(3, 2)", got.Summary.Shape())
}

func ExampleBuild() {
	got := Build(Input{
		Dataset: dataset.Dataset{row("a", 1.0, "b", "x")},
		Columns: []string{"a", "b"},
	})
	fmt.Println(got.Summary.Shape())
	fmt.Print(got.Summary.Schema)
	// Output:
	// (1, 2)
	// DataFrame Info:
	// a: number
	// b: string
}
