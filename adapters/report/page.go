// Package report is the non-interactive page: it records what the controller
// shows and writes it out as a static HTML report with inline SVG charts.
package report

import (
	"fmt"
	"io"
	"sync"

	"modelbench/domain/core"
	"modelbench/domain/training"
	"modelbench/domain/view"
	"modelbench/ports"
)

// Progress is the last state of the progress bar
type Progress struct {
	Percent float64
	Status  string
	Failed  bool
}

// Download is a listed model with its saved location, if any
type Download struct {
	view.DownloadItem
	Busy  bool
	Saved string
}

// Page keeps the latest state of every surface. It is safe for concurrent use.
type Page struct {
	mu  sync.Mutex
	out io.Writer

	alerts         []string
	targetOptions  []string
	configEnabled  bool
	summary        *view.AnalysisSummary
	distribution   *view.Distribution
	progress       *Progress
	training       bool
	trainLabel     string
	comparison     *view.BarChart
	history        *view.LineChart
	placeholder    string
	downloadsShown bool
	downloads      []Download
	status         string
	statusAt       core.Timestamp
	outcome        *training.Outcome
	target         string
	task           training.TaskType
}

var _ ports.Page = (*Page)(nil)

// NewPage creates a page. Alerts and status changes are echoed to out when it is not nil.
func NewPage(out io.Writer) *Page {
	return &Page{out: out}
}

func (p *Page) echo(format string, args ...interface{}) {
	if p.out != nil {
		fmt.Fprintf(p.out, format+"\n", args...)
	}
}

func (p *Page) Alert(message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.alerts = append(p.alerts, message)
	p.echo("%s", message)
}

func (p *Page) SetUploading(bool) {}

func (p *Page) SetTargetOptions(options []string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.targetOptions = append([]string(nil), options...)
}

func (p *Page) EnableConfiguration() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.configEnabled = true
}

func (p *Page) ShowSummary(summary view.AnalysisSummary) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.summary = &summary
}

func (p *Page) ShowDistribution(dist view.Distribution) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.distribution = &dist
}

func (p *Page) ResetProgress() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.progress = &Progress{}
}

func (p *Page) SetProgress(percent float64, status string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.progress = &Progress{Percent: percent, Status: status}
}

func (p *Page) MarkFailed(status string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.progress == nil {
		p.progress = &Progress{}
	}
	p.progress.Status = status
	p.progress.Failed = true
}

func (p *Page) SetTraining(busy bool, label string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.training = busy
	p.trainLabel = label
}

func (p *Page) ShowComparison(chart view.BarChart) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.comparison = &chart
}

func (p *Page) ShowHistory(chart view.LineChart) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.history = &chart
	p.placeholder = ""
}

func (p *Page) ShowHistoryPlaceholder(text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.history = nil
	p.placeholder = text
}

func (p *Page) RevealDownloads() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.downloadsShown = true
}

func (p *Page) SetDownloads(items []view.DownloadItem) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.downloads = make([]Download, len(items))
	for i, it := range items {
		p.downloads[i] = Download{DownloadItem: it}
	}
}

func (p *Page) SetDownloadState(name string, busy bool, label string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := range p.downloads {
		if p.downloads[i].Name == name {
			p.downloads[i].Busy = busy
			p.downloads[i].Label = label
		}
	}
}

func (p *Page) SetStatus(text string, at core.Timestamp) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.status = text
	p.statusAt = at
	p.echo("[%s] %s", at.Clock(), text)
}

// SetOutcome records the full training response for the summary
func (p *Page) SetOutcome(outcome *training.Outcome) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.outcome = outcome
}

// SetSelection records the target column and task shown in the summary
func (p *Page) SetSelection(target string, task training.TaskType) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.target = target
	p.task = task
}

// MarkSaved links a downloaded artifact from the models table
func (p *Page) MarkSaved(name, path string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := range p.downloads {
		if p.downloads[i].Name == name {
			p.downloads[i].Saved = path
		}
	}
}

// Alerts returns the alerts shown so far
func (p *Page) Alerts() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.alerts...)
}

// TargetOptions returns the target selector entries
func (p *Page) TargetOptions() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.targetOptions...)
}

// state is a consistent copy of the page used for rendering
type state struct {
	alerts         []string
	summary        *view.AnalysisSummary
	distribution   *view.Distribution
	progress       *Progress
	comparison     *view.BarChart
	history        *view.LineChart
	placeholder    string
	downloadsShown bool
	downloads      []Download
	status         string
	statusAt       core.Timestamp
	outcome        *training.Outcome
	target         string
	task           training.TaskType
}

func (p *Page) snapshot() state {
	p.mu.Lock()
	defer p.mu.Unlock()
	return state{
		alerts:         append([]string(nil), p.alerts...),
		summary:        p.summary,
		distribution:   p.distribution,
		progress:       p.progress,
		comparison:     p.comparison,
		history:        p.history,
		placeholder:    p.placeholder,
		downloadsShown: p.downloadsShown,
		downloads:      append([]Download(nil), p.downloads...),
		status:         p.status,
		statusAt:       p.statusAt,
		outcome:        p.outcome,
		target:         p.target,
		task:           p.task,
	}
}
