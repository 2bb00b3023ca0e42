// Package training runs a training submission: presence checks, the simulated
// progress animation and the single blocking request to the server.
package training

import (
	"context"
	"sync"
	"time"

	"modelbench/domain/core"
	domain "modelbench/domain/training"
	"modelbench/internal"
	"modelbench/internal/errors"
	"modelbench/internal/session"
	"modelbench/ports"
)

const (
	MsgNoDataset = "Please upload a dataset first"
	MsgNoTarget  = "Please select a target column"

	LabelTraining = "Training..."
	LabelIdle     = "Start Training"

	StatusCompleted = "Training completed successfully!"
)

// Surfaces groups the displays the orchestrator drives
type Surfaces struct {
	Progress ports.ProgressSurface
	Control  ports.TrainControl
	Notifier ports.Notifier
}

// Orchestrator owns the training state machine
type Orchestrator struct {
	server   ports.TrainingServer
	state    *session.State
	surfaces Surfaces
	progress *SimulatedProgress
	logger   *internal.Logger

	mu      sync.Mutex
	current domain.State
	last    domain.State
}

// NewOrchestrator wires an orchestrator. interval is the progress tick.
func NewOrchestrator(server ports.TrainingServer, state *session.State, surfaces Surfaces, interval time.Duration, rng ports.RNGPort, logger *internal.Logger) *Orchestrator {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Orchestrator{
		server:   server,
		state:    state,
		surfaces: surfaces,
		progress: NewSimulatedProgress(surfaces.Progress, interval, rng),
		logger:   logger.With("training"),
		current:  domain.Idle,
		last:     domain.Idle,
	}
}

// State returns the current state
func (o *Orchestrator) State() domain.State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.current
}

// LastOutcome returns Succeeded or Failed for the latest finished submission, Idle before any
func (o *Orchestrator) LastOutcome() domain.State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.last
}

func (o *Orchestrator) fire(e domain.Event) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	next, err := domain.Transition(o.current, e)
	if err != nil {
		return err
	}
	o.logger.Debug("training state %s -> %s", o.current, next)
	o.current = next
	if next == domain.Succeeded || next == domain.Failed {
		o.last = next
	}
	return nil
}

// Submit validates the selections, sends the training request and drives the
// progress display. Errors are returned for the caller to report; presence
// check failures are alerted here and never leave Idle.
func (o *Orchestrator) Submit(ctx context.Context) (*domain.Outcome, error) {
	snap := o.state.Snapshot()
	if !snap.HasDataset() {
		o.alert(MsgNoDataset)
		return nil, &errors.AppError{Code: errors.CodeUserInput, Message: MsgNoDataset, Cause: core.ErrNoDataset}
	}
	if snap.Target == "" {
		o.alert(MsgNoTarget)
		return nil, &errors.AppError{Code: errors.CodeUserInput, Message: MsgNoTarget, Cause: core.ErrNoTarget}
	}

	if err := o.fire(domain.Submit); err != nil {
		o.logger.Warn("submit ignored: %v", err)
		return nil, errors.WithCode(errors.CodeUserInput, err)
	}
	defer func() {
		if err := o.fire(domain.Settle); err != nil {
			o.logger.Error("settle failed: %v", err)
		}
	}()

	if p := o.surfaces.Progress; p != nil {
		p.ResetProgress()
	}
	if c := o.surfaces.Control; c != nil {
		c.SetTraining(true, LabelTraining)
		defer c.SetTraining(false, LabelIdle)
	}

	req := domain.Request{Data: snap.Dataset, TargetColumn: snap.Target, TaskType: snap.Task}
	runID := core.NewRunID()
	o.logger.Info("run %s: training %d rows, target %q, task %q", runID, snap.Dataset.Len(), req.TargetColumn, req.TaskType)

	stop := o.progress.Start()
	defer stop()
	outcome, err := o.server.Train(ctx, req)
	stop()

	if err != nil {
		if p := o.surfaces.Progress; p != nil {
			p.MarkFailed("Error: " + errors.UserMessage(err))
		}
		_ = o.fire(domain.Fail)
		o.logger.Err(err, "run %s failed", runID)
		return nil, err
	}

	if p := o.surfaces.Progress; p != nil {
		p.SetProgress(100, StatusCompleted)
	}
	_ = o.fire(domain.Succeed)
	outcome.RunID = runID
	if outcome.CompletedAt.IsZero() {
		outcome.CompletedAt = core.Now()
	}
	o.logger.Info("run %s: %d models returned", runID, len(outcome.Results))
	return outcome, nil
}

func (o *Orchestrator) alert(msg string) {
	if o.surfaces.Notifier != nil {
		o.surfaces.Notifier.Alert(msg)
	}
}
