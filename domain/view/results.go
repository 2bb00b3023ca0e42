package view

// BarChart compares one value per label
type BarChart struct {
	Title         string    `json:"title"`
	Labels        []string  `json:"labels"`
	Values        []float64 `json:"values"`
	LabelRotation float64   `json:"label_rotation"`
}

// LineSeries is one model's optimization trace. Y holds NaN for missing
// trials; Points drops them while keeping their trial numbers.
type LineSeries struct {
	Name  string    `json:"name"`
	X     []int     `json:"x"`
	Y     []float64 `json:"-"`
	Hover []string  `json:"hover"`
}

// Point is a drawn marker of a series
type Point struct {
	Trial int
	Score float64
	Hover string
}

// Points returns the markers that have a score
func (s LineSeries) Points() []Point {
	out := make([]Point, 0, len(s.Y))
	for i, y := range s.Y {
		if y != y {
			continue
		}
		out = append(out, Point{Trial: s.X[i], Score: y, Hover: s.Hover[i]})
	}
	return out
}

// LineChart plots scores against trial number
type LineChart struct {
	Title  string       `json:"title"`
	XTitle string       `json:"x_title"`
	YTitle string       `json:"y_title"`
	Series []LineSeries `json:"series"`
}

// Results is the model comparison view. History is nil when Placeholder is set.
type Results struct {
	Comparison  BarChart   `json:"comparison"`
	History     *LineChart `json:"history,omitempty"`
	Placeholder string     `json:"placeholder,omitempty"`
	Skipped     []string   `json:"skipped,omitempty"`
}

// DownloadItem is one model's download action
type DownloadItem struct {
	Name     string  `json:"name"`
	Score    float64 `json:"score"`
	Label    string  `json:"label"`
	Filename string  `json:"filename"`
}
