package report

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"modelbench/adapters/charts"
	"modelbench/domain/view"
	"modelbench/internal"
)

//go:embed templates/*.html
var embeddedFiles embed.FS

const (
	IndexFile   = "index.html"
	SummaryFile = "summary.md"
)

// Data is what the index template renders
type Data struct {
	Title           string
	GeneratedAt     string
	RunID           string
	Status          string
	StatusAt        string
	SummaryHTML     template.HTML
	Analysis        *view.AnalysisSummary
	DistributionSVG template.HTML
	Progress        *Progress
	ComparisonSVG   template.HTML
	HistorySVG      template.HTML
	Placeholder     string
	DownloadsShown  bool
	Downloads       []Download
	Alerts          []string
}

// Writer renders pages to HTML
type Writer struct {
	templates *template.Template
	charts    charts.Renderer
	logger    *internal.Logger
	now       func() time.Time
}

// NewWriter parses the embedded templates
func NewWriter(logger *internal.Logger) (*Writer, error) {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	templates, err := template.New("").ParseFS(embeddedFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return &Writer{
		templates: templates,
		charts:    charts.NewRenderer(),
		logger:    logger.With("report"),
		now:       time.Now,
	}, nil
}

// Data builds the template data, drawing every chart the page holds. A chart
// that fails to draw is logged and left out.
func (w *Writer) Data(page *Page) Data {
	s := page.snapshot()
	d := Data{
		Title:          "modelbench report",
		GeneratedAt:    w.now().Format(time.DateTime),
		Status:         s.status,
		SummaryHTML:    renderMarkdown(s.Markdown()),
		Analysis:       s.summary,
		Progress:       s.progress,
		Placeholder:    s.placeholder,
		DownloadsShown: s.downloadsShown,
		Downloads:      s.downloads,
		Alerts:         s.alerts,
	}
	if !s.statusAt.IsZero() {
		d.StatusAt = s.statusAt.Clock()
	}
	if s.outcome != nil {
		d.RunID = s.outcome.RunID.String()
	}

	if s.distribution != nil {
		d.DistributionSVG = w.svg("distribution", func(out io.Writer) error {
			return w.charts.Distribution(out, *s.distribution)
		})
	}
	if s.comparison != nil {
		d.ComparisonSVG = w.svg("comparison", func(out io.Writer) error {
			return w.charts.Comparison(out, *s.comparison)
		})
	}
	if s.history != nil {
		d.HistorySVG = w.svg("history", func(out io.Writer) error {
			return w.charts.History(out, *s.history)
		})
	}
	return d
}

func (w *Writer) svg(name string, draw func(io.Writer) error) template.HTML {
	markup, err := charts.SVG(draw)
	if err != nil {
		w.logger.Warn("skipping %s chart: %v", name, err)
		return ""
	}
	return template.HTML(stripXMLHeader(markup))
}

// stripXMLHeader drops the prolog so the SVG can be inlined in HTML
func stripXMLHeader(svg string) string {
	if i := strings.Index(svg, "<svg"); i > 0 {
		return svg[i:]
	}
	return svg
}

// Render writes the HTML report for page to out
func (w *Writer) Render(out io.Writer, page *Page) error {
	var buf bytes.Buffer
	if err := w.templates.ExecuteTemplate(&buf, IndexFile, w.Data(page)); err != nil {
		return fmt.Errorf("template error for %s: %w", IndexFile, err)
	}
	_, err := buf.WriteTo(out)
	return err
}

// WriteDir writes index.html and summary.md into dir and returns the index path
func (w *Writer) WriteDir(dir string, page *Page) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create report directory %s: %w", dir, err)
	}

	var buf bytes.Buffer
	if err := w.Render(&buf, page); err != nil {
		return "", err
	}
	index := filepath.Join(dir, IndexFile)
	if err := os.WriteFile(index, buf.Bytes(), 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", index, err)
	}

	if md := page.snapshot().Markdown(); md != "" {
		if err := os.WriteFile(filepath.Join(dir, SummaryFile), []byte(md), 0644); err != nil {
			return "", fmt.Errorf("failed to write %s: %w", SummaryFile, err)
		}
	}
	w.logger.Info("report written to %s", index)
	return index, nil
}
