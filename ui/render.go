package ui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"modelbench/domain/view"
)

const (
	barWidth      = 32
	maxSampleCols = 6
)

var sparkBlocks = []rune("▁▂▃▄▅▆▇█")

// bar draws a horizontal bar of width cells filled by fraction
func bar(fraction float64, width int, style lipgloss.Style) string {
	if math.IsNaN(fraction) || fraction < 0 {
		fraction = 0
	}
	fraction = math.Min(fraction, 1)
	filled := int(math.Round(fraction * float64(width)))
	return style.Render(strings.Repeat("█", filled)) + strings.Repeat("·", width-filled)
}

func renderSummary(s view.AnalysisSummary, st styles) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", st.label.Render("Shape:"), s.Shape())
	fmt.Fprintf(&b, "%s %s\n", st.label.Render("Numerical:"), s.Numerical)
	fmt.Fprintf(&b, "%s %s\n", st.label.Render("Categorical:"), s.Categorical)

	if len(s.SampleHeaders) == 0 {
		return b.String()
	}
	headers := s.SampleHeaders
	if len(headers) > maxSampleCols {
		headers = append(append([]string(nil), headers[:maxSampleCols]...), "…")
	}
	rows := make([][]string, len(s.SampleRows))
	for i, row := range s.SampleRows {
		if len(row) > maxSampleCols {
			row = append(append([]string(nil), row[:maxSampleCols]...), "…")
		}
		rows[i] = row
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(st.dim).
		Headers(headers...).
		Rows(rows...)
	b.WriteString(t.String())
	return b.String()
}

func renderDistribution(d view.Distribution, st styles) string {
	var b strings.Builder
	b.WriteString(st.panelTitle.Render(d.Title) + "\n")

	switch {
	case d.Pie != nil:
		total := d.Pie.Total()
		width := labelWidth(d.Pie.Labels)
		for i, label := range d.Pie.Labels {
			share := 0.0
			if total > 0 {
				share = float64(d.Pie.Counts[i]) / float64(total)
			}
			fmt.Fprintf(&b, "%-*s %s %d (%.1f%%)\n", width, label, bar(share, barWidth, st.accent), d.Pie.Counts[i], share*100)
		}
	case d.Histogram != nil:
		peak := 0
		for _, bin := range d.Histogram.Bins {
			peak = max(peak, bin.Count)
		}
		for _, bin := range d.Histogram.Bins {
			fraction := 0.0
			if peak > 0 {
				fraction = float64(bin.Count) / float64(peak)
			}
			fmt.Fprintf(&b, "%10.4g – %-10.4g %s %d\n", bin.Min, bin.Max, bar(fraction, barWidth, st.accent), bin.Count)
		}
		if s := d.Histogram.Summary; s != nil {
			fmt.Fprintf(&b, "%s mean %.4g, median %.4g, std %.4g\n", st.dim.Render("n="+fmt.Sprint(s.Count)), s.Mean, s.Median, s.StdDev)
		}
		if d.Histogram.Skipped > 0 {
			b.WriteString(st.dim.Render(fmt.Sprintf("%d non-numeric values skipped", d.Histogram.Skipped)) + "\n")
		}
	}
	return b.String()
}

func renderComparison(c view.BarChart, st styles) string {
	var b strings.Builder
	b.WriteString(st.panelTitle.Render(c.Title) + "\n")

	peak := 0.0
	for _, v := range c.Values {
		peak = math.Max(peak, math.Abs(v))
	}
	width := labelWidth(c.Labels)
	for i, label := range c.Labels {
		fraction := 0.0
		if peak > 0 {
			fraction = math.Abs(c.Values[i]) / peak
		}
		fmt.Fprintf(&b, "%-*s %s %.4f\n", width, label, bar(fraction, barWidth, st.accent), c.Values[i])
	}
	return b.String()
}

// renderHistory draws one sparkline per model, scaled to the chart's overall range
func renderHistory(c view.LineChart, st styles) string {
	var b strings.Builder
	b.WriteString(st.panelTitle.Render(c.Title) + "\n")

	lo, hi := math.Inf(1), math.Inf(-1)
	names := make([]string, len(c.Series))
	for i, s := range c.Series {
		names[i] = s.Name
		for _, p := range s.Points() {
			lo = math.Min(lo, p.Score)
			hi = math.Max(hi, p.Score)
		}
	}
	width := labelWidth(names)
	for _, s := range c.Series {
		fmt.Fprintf(&b, "%-*s %s\n", width, s.Name, sparkline(s.Y, lo, hi, st))
	}
	if !math.IsInf(lo, 1) {
		b.WriteString(st.dim.Render(fmt.Sprintf("%s %.4f to %.4f", c.YTitle, lo, hi)) + "\n")
	}
	return b.String()
}

// sparkline maps each trial to a block; null trials show as a gap
func sparkline(values []float64, lo, hi float64, st styles) string {
	var b strings.Builder
	for _, v := range values {
		if math.IsNaN(v) {
			b.WriteRune(' ')
			continue
		}
		idx := len(sparkBlocks) - 1
		if hi > lo {
			idx = int((v - lo) / (hi - lo) * float64(len(sparkBlocks)-1))
		}
		b.WriteRune(sparkBlocks[idx])
	}
	return st.accent.Render(b.String())
}

func labelWidth(labels []string) int {
	width := 0
	for _, l := range labels {
		width = max(width, lipgloss.Width(l))
	}
	return width
}
