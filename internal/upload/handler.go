// Package upload sends the operator's file to the server and installs the
// parsed dataset as application state.
package upload

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"modelbench/internal"
	"modelbench/internal/analysis"
	"modelbench/internal/errors"
	"modelbench/internal/session"
	"modelbench/ports"
)

const (
	MsgNoFile  = "Please select a file first."
	MsgSuccess = "File uploaded successfully!"
)

// Handler is the only writer of the application dataset
type Handler struct {
	server   ports.TrainingServer
	state    *session.State
	surface  ports.UploadSurface
	notifier ports.Notifier
	analysis *analysis.Renderer
	logger   *internal.Logger
}

// NewHandler wires an upload handler
func NewHandler(server ports.TrainingServer, state *session.State, surface ports.UploadSurface, notifier ports.Notifier, renderer *analysis.Renderer, logger *internal.Logger) *Handler {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Handler{
		server:   server,
		state:    state,
		surface:  surface,
		notifier: notifier,
		analysis: renderer,
		logger:   logger.With("upload"),
	}
}

// UploadFile opens path and uploads it. An empty path is the "no file selected" case.
func (h *Handler) UploadFile(ctx context.Context, path string) error {
	if strings.TrimSpace(path) == "" {
		h.alert(MsgNoFile)
		return errors.UserInput(MsgNoFile)
	}
	f, err := os.Open(path)
	if err != nil {
		return h.fail(errors.Transport("open file", err))
	}
	defer f.Close()
	return h.Upload(ctx, filepath.Base(path), f)
}

// Upload sends content and, on success, replaces the dataset, repopulates the
// target selector, unlocks configuration and renders the analysis. On failure
// the state is left as it was.
func (h *Handler) Upload(ctx context.Context, filename string, content io.Reader) error {
	if content == nil || filename == "" {
		h.alert(MsgNoFile)
		return errors.UserInput(MsgNoFile)
	}

	if h.surface != nil {
		h.surface.SetUploading(true)
		defer h.surface.SetUploading(false)
	}

	h.logger.Info("uploading %s", filename)
	resp, err := h.server.Upload(ctx, filename, content)
	if err != nil {
		return h.fail(err)
	}

	h.state.SetDataset(filename, resp.Data, resp.Columns)
	snap := h.state.Snapshot()
	rows, cols := snap.Dataset.Shape()
	h.logger.Info("loaded %s: %d rows, %d columns", filename, rows, cols)

	if h.surface != nil {
		h.surface.SetTargetOptions(snap.TargetOptions())
		h.surface.EnableConfiguration()
	}
	if h.analysis != nil {
		h.analysis.Render(analysis.FromSnapshot(snap))
	}
	h.alert(MsgSuccess)
	return nil
}

func (h *Handler) fail(err error) error {
	h.logger.Err(err, "upload failed")
	h.alert("Error: " + errors.UserMessage(err))
	return err
}

func (h *Handler) alert(msg string) {
	if h.notifier != nil {
		h.notifier.Alert(msg)
	}
}
