package testkit

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/stretchr/testify/mock"

	"modelbench/domain/core"
	"modelbench/domain/training"
	"modelbench/domain/view"
	"modelbench/ports"
)

// MockServer is a testify mock of the training server contract
type MockServer struct {
	mock.Mock
}

var _ ports.TrainingServer = (*MockServer)(nil)

func (m *MockServer) Upload(ctx context.Context, filename string, content io.Reader) (*ports.UploadResponse, error) {
	args := m.Called(ctx, filename, content)
	resp, _ := args.Get(0).(*ports.UploadResponse)
	return resp, args.Error(1)
}

func (m *MockServer) Train(ctx context.Context, req training.Request) (*training.Outcome, error) {
	args := m.Called(ctx, req)
	out, _ := args.Get(0).(*training.Outcome)
	return out, args.Error(1)
}

func (m *MockServer) DownloadModel(ctx context.Context, modelName string) (io.ReadCloser, error) {
	args := m.Called(ctx, modelName)
	switch body := args.Get(0).(type) {
	case io.ReadCloser:
		return body, args.Error(1)
	case []byte:
		return io.NopCloser(bytes.NewReader(body)), args.Error(1)
	default:
		return nil, args.Error(1)
	}
}

// FixedRNG replays a sequence of draws, repeating the last one
type FixedRNG struct {
	mu     sync.Mutex
	values []float64
	next   int
}

// NewFixedRNG creates an RNG that returns values in order
func NewFixedRNG(values ...float64) *FixedRNG {
	return &FixedRNG{values: values}
}

func (r *FixedRNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.values) == 0 {
		return 0
	}
	if r.next >= len(r.values) {
		return r.values[len(r.values)-1]
	}
	v := r.values[r.next]
	r.next++
	return v
}

// ProgressUpdate is one recorded progress call
type ProgressUpdate struct {
	Percent float64
	Status  string
	Failed  bool
	Reset   bool
}

// ButtonState is one recorded busy/label change
type ButtonState struct {
	Busy  bool
	Label string
}

// Page records every surface call. It is safe for concurrent use.
type Page struct {
	mu sync.Mutex

	Alerts         []string
	Uploading      []bool
	TargetOptions  [][]string
	ConfigEnabled  int
	Summaries      []view.AnalysisSummary
	Distributions  []view.Distribution
	Progress       []ProgressUpdate
	TrainButton    []ButtonState
	Comparisons    []view.BarChart
	Histories      []view.LineChart
	Placeholders   []string
	DownloadsShown int
	Downloads      [][]view.DownloadItem
	DownloadStates map[string][]ButtonState
	Statuses       []string
	StatusTimes    []core.Timestamp
}

var _ ports.Page = (*Page)(nil)

// NewPage creates an empty recorder
func NewPage() *Page {
	return &Page{DownloadStates: make(map[string][]ButtonState)}
}

func (p *Page) Alert(message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Alerts = append(p.Alerts, message)
}

func (p *Page) SetUploading(busy bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Uploading = append(p.Uploading, busy)
}

func (p *Page) SetTargetOptions(options []string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.TargetOptions = append(p.TargetOptions, options)
}

func (p *Page) EnableConfiguration() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ConfigEnabled++
}

func (p *Page) ShowSummary(summary view.AnalysisSummary) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Summaries = append(p.Summaries, summary)
}

func (p *Page) ShowDistribution(dist view.Distribution) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Distributions = append(p.Distributions, dist)
}

func (p *Page) ResetProgress() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Progress = append(p.Progress, ProgressUpdate{Reset: true})
}

func (p *Page) SetProgress(percent float64, status string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Progress = append(p.Progress, ProgressUpdate{Percent: percent, Status: status})
}

func (p *Page) MarkFailed(status string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	last := 0.0
	if n := len(p.Progress); n > 0 {
		last = p.Progress[n-1].Percent
	}
	p.Progress = append(p.Progress, ProgressUpdate{Percent: last, Status: status, Failed: true})
}

func (p *Page) SetTraining(busy bool, label string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.TrainButton = append(p.TrainButton, ButtonState{Busy: busy, Label: label})
}

func (p *Page) ShowComparison(chart view.BarChart) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Comparisons = append(p.Comparisons, chart)
}

func (p *Page) ShowHistory(chart view.LineChart) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Histories = append(p.Histories, chart)
}

func (p *Page) ShowHistoryPlaceholder(text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Placeholders = append(p.Placeholders, text)
}

func (p *Page) RevealDownloads() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.DownloadsShown++
}

func (p *Page) SetDownloads(items []view.DownloadItem) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Downloads = append(p.Downloads, items)
}

func (p *Page) SetDownloadState(name string, busy bool, label string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.DownloadStates[name] = append(p.DownloadStates[name], ButtonState{Busy: busy, Label: label})
}

func (p *Page) SetStatus(text string, at core.Timestamp) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Statuses = append(p.Statuses, text)
	p.StatusTimes = append(p.StatusTimes, at)
}

// LastProgress returns the most recent progress call
func (p *Page) LastProgress() ProgressUpdate {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.Progress) == 0 {
		return ProgressUpdate{}
	}
	return p.Progress[len(p.Progress)-1]
}

// AlertsSnapshot returns a copy of the recorded alerts
func (p *Page) AlertsSnapshot() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.Alerts...)
}

// MemorySaver keeps saved files in memory
type MemorySaver struct {
	mu    sync.Mutex
	Files map[string][]byte
	Err   error
}

var _ ports.FileSaver = (*MemorySaver)(nil)

// NewMemorySaver creates an empty in-memory saver
func NewMemorySaver() *MemorySaver {
	return &MemorySaver{Files: make(map[string][]byte)}
}

func (s *MemorySaver) Save(filename string, content io.Reader) (string, error) {
	if s.Err != nil {
		return "", s.Err
	}
	data, err := io.ReadAll(content)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Files[filename] = data
	return "mem://" + filename, nil
}

// Get returns a saved file
func (s *MemorySaver) Get(filename string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.Files[filename]
	return data, ok
}
