package ui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"modelbench/domain/core"
	"modelbench/domain/view"
)

// Messages carrying surface updates into the event loop
type (
	alertMsg         struct{ text string }
	uploadingMsg     struct{ busy bool }
	targetOptionsMsg struct{ options []string }
	configEnabledMsg struct{}
	summaryMsg       struct{ summary view.AnalysisSummary }
	distributionMsg  struct{ dist view.Distribution }
	progressResetMsg struct{}
	progressMsg      struct {
		percent float64
		status  string
	}
	progressFailedMsg struct{ status string }
	trainingMsg       struct {
		busy  bool
		label string
	}
	comparisonMsg      struct{ chart view.BarChart }
	historyMsg         struct{ chart view.LineChart }
	placeholderMsg     struct{ text string }
	revealDownloadsMsg struct{}
	downloadsMsg       struct{ items []view.DownloadItem }
	downloadStateMsg   struct {
		name  string
		busy  bool
		label string
	}
	statusMsg struct {
		text string
		at   core.Timestamp
	}
)

// Sender is the part of tea.Program the page needs
type Sender interface {
	Send(msg tea.Msg)
}

// Page forwards every surface call to the running program. Calls made before
// Attach are dropped.
type Page struct {
	mu     sync.RWMutex
	sender Sender
}

// NewPage creates a detached page
func NewPage() *Page {
	return &Page{}
}

// Attach starts forwarding to sender
func (p *Page) Attach(sender Sender) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sender = sender
}

func (p *Page) send(msg tea.Msg) {
	p.mu.RLock()
	sender := p.sender
	p.mu.RUnlock()
	if sender != nil {
		sender.Send(msg)
	}
}

func (p *Page) Alert(message string) { p.send(alertMsg{text: message}) }

func (p *Page) SetUploading(busy bool) { p.send(uploadingMsg{busy: busy}) }

func (p *Page) SetTargetOptions(options []string) {
	p.send(targetOptionsMsg{options: append([]string(nil), options...)})
}

func (p *Page) EnableConfiguration() { p.send(configEnabledMsg{}) }

func (p *Page) ShowSummary(summary view.AnalysisSummary) { p.send(summaryMsg{summary: summary}) }

func (p *Page) ShowDistribution(dist view.Distribution) { p.send(distributionMsg{dist: dist}) }

func (p *Page) ResetProgress() { p.send(progressResetMsg{}) }

func (p *Page) SetProgress(percent float64, status string) {
	p.send(progressMsg{percent: percent, status: status})
}

func (p *Page) MarkFailed(status string) { p.send(progressFailedMsg{status: status}) }

func (p *Page) SetTraining(busy bool, label string) { p.send(trainingMsg{busy: busy, label: label}) }

func (p *Page) ShowComparison(chart view.BarChart) { p.send(comparisonMsg{chart: chart}) }

func (p *Page) ShowHistory(chart view.LineChart) { p.send(historyMsg{chart: chart}) }

func (p *Page) ShowHistoryPlaceholder(text string) { p.send(placeholderMsg{text: text}) }

func (p *Page) RevealDownloads() { p.send(revealDownloadsMsg{}) }

func (p *Page) SetDownloads(items []view.DownloadItem) {
	p.send(downloadsMsg{items: append([]view.DownloadItem(nil), items...)})
}

func (p *Page) SetDownloadState(name string, busy bool, label string) {
	p.send(downloadStateMsg{name: name, busy: busy, label: label})
}

func (p *Page) SetStatus(text string, at core.Timestamp) { p.send(statusMsg{text: text, at: at}) }
