// Package controller wires the upload, analysis, training, results and
// download components to one page and exposes the operator's actions.
package controller

import (
	"context"
	"fmt"
	"sync"
	"time"

	"modelbench/domain/core"
	domain "modelbench/domain/training"
	"modelbench/domain/view"
	"modelbench/internal"
	"modelbench/internal/analysis"
	"modelbench/internal/config"
	"modelbench/internal/download"
	"modelbench/internal/errors"
	"modelbench/internal/results"
	"modelbench/internal/session"
	"modelbench/internal/training"
	"modelbench/internal/upload"
	"modelbench/ports"
)

const (
	StatusTrained = "Training completed successfully"
	// StatusFailedPrefix precedes the reason on the status line
	StatusFailedPrefix = "Training failed: "
	MsgTrained         = "Training completed successfully!"
	MsgTrainFailed     = "Error during training: "
)

// Options carries the tunables taken from config
type Options struct {
	ProgressInterval time.Duration
	Workers          int
	RNG              ports.RNGPort
	Logger           *internal.Logger
}

// OptionsFromConfig maps application config to controller options
func OptionsFromConfig(cfg *config.Config, logger *internal.Logger) Options {
	return Options{
		ProgressInterval: cfg.Training.ProgressInterval,
		Workers:          cfg.Download.Workers,
		Logger:           logger,
	}
}

// Controller holds every component and the shared application state
type Controller struct {
	State *session.State

	page     ports.Page
	analysis *analysis.Renderer
	upload   *upload.Handler
	trainer  *training.Orchestrator
	results  *results.Renderer
	download *download.Manager
	logger   *internal.Logger

	mu          sync.Mutex
	lastOutcome *domain.Outcome
	items       []view.DownloadItem
}

// New wires a controller to a server, a page and a file saver
func New(server ports.TrainingServer, page ports.Page, saver ports.FileSaver, opts Options) (*Controller, error) {
	if server == nil {
		return nil, fmt.Errorf("training server cannot be nil")
	}
	if page == nil {
		return nil, fmt.Errorf("page cannot be nil")
	}
	logger := opts.Logger
	if logger == nil {
		logger = internal.DefaultLogger
	}
	rng := opts.RNG
	if rng == nil {
		rng = training.DefaultRNG
	}

	state := session.NewState()
	analysisRenderer := analysis.NewRenderer(page, logger)

	c := &Controller{
		State:    state,
		page:     page,
		analysis: analysisRenderer,
		upload:   upload.NewHandler(server, state, page, page, analysisRenderer, logger),
		trainer: training.NewOrchestrator(server, state, training.Surfaces{
			Progress: page,
			Control:  page,
			Notifier: page,
		}, opts.ProgressInterval, rng, logger),
		results: results.NewRenderer(page, logger),
		logger:  logger.With("controller"),
	}
	if saver != nil {
		c.download = download.NewManager(server, saver, page, page, opts.Workers, logger)
	}
	return c, nil
}

// Upload sends a file from disk and loads it as the current dataset
func (c *Controller) Upload(ctx context.Context, path string) error {
	return c.upload.UploadFile(ctx, path)
}

// SelectTarget records the target column and refreshes the analysis
func (c *Controller) SelectTarget(column string) {
	c.State.SelectTarget(column)
	c.refreshAnalysis()
}

// SelectTask records the task type and refreshes the analysis
func (c *Controller) SelectTask(task domain.TaskType) {
	c.State.SelectTask(task)
	c.refreshAnalysis()
}

func (c *Controller) refreshAnalysis() {
	snap := c.State.Snapshot()
	if !snap.HasDataset() {
		return
	}
	c.analysis.Render(analysis.FromSnapshot(snap))
}

// Train submits the current selections. On success the results and downloads
// are rendered; both paths update the status line and alert.
func (c *Controller) Train(ctx context.Context) (*domain.Outcome, error) {
	outcome, err := c.trainer.Submit(ctx)
	if err != nil {
		if errors.IsUserInput(err) {
			return nil, err
		}
		msg := errors.UserMessage(err)
		c.page.SetStatus(StatusFailedPrefix+msg, core.Now())
		c.page.Alert(MsgTrainFailed + msg)
		return nil, err
	}

	c.results.Render(outcome.Results)
	items := download.Items(outcome.Results)
	if c.download != nil {
		c.download.Render(outcome.Results)
	} else {
		c.page.SetDownloads(items)
	}
	c.mu.Lock()
	c.items = items
	c.lastOutcome = outcome
	c.mu.Unlock()

	c.page.SetStatus(StatusTrained, core.Now())
	c.page.Alert(MsgTrained)
	return outcome, nil
}

// LastOutcome returns the most recent successful training outcome
func (c *Controller) LastOutcome() *domain.Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastOutcome
}

// TrainingState exposes the orchestrator state machine
func (c *Controller) TrainingState() domain.State {
	return c.trainer.State()
}

// Download fetches one model. Names outside the last run get a bare item.
func (c *Controller) Download(ctx context.Context, name string) (string, error) {
	if c.download == nil {
		return "", errors.ConfigInvalid("no download directory configured")
	}
	return c.download.Activate(ctx, c.item(name))
}

// DownloadAll fetches every model of the last run
func (c *Controller) DownloadAll(ctx context.Context) ([]string, error) {
	if c.download == nil {
		return nil, errors.ConfigInvalid("no download directory configured")
	}
	items := c.Items()
	if len(items) == 0 {
		return nil, &errors.AppError{Code: errors.CodeUserInput, Message: "no trained models to download", Cause: core.ErrEmptyResults}
	}
	return c.download.DownloadAll(ctx, items)
}

// DownloadNamed fetches the named models, whether or not they came from the last run
func (c *Controller) DownloadNamed(ctx context.Context, names []string) ([]string, error) {
	if c.download == nil {
		return nil, errors.ConfigInvalid("no download directory configured")
	}
	items := make([]view.DownloadItem, 0, len(names))
	for _, name := range names {
		items = append(items, c.item(name))
	}
	return c.download.DownloadAll(ctx, items)
}

// Items returns the download items of the last run
func (c *Controller) Items() []view.DownloadItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]view.DownloadItem(nil), c.items...)
}

func (c *Controller) item(name string) view.DownloadItem {
	for _, it := range c.Items() {
		if it.Name == name {
			return it
		}
	}
	return view.DownloadItem{Name: name, Label: name, Filename: download.Filename(name)}
}
