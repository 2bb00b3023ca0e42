// Package download lists one download action per trained model and fetches
// the serialized artifacts from the server.
package download

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	domain "modelbench/domain/training"
	"modelbench/domain/view"
	"modelbench/internal"
	"modelbench/internal/errors"
	"modelbench/ports"
)

const (
	LabelDownloading = "Downloading..."
	// MsgFailedPrefix precedes the server's reason in the download alert
	MsgFailedPrefix = "Error downloading model: "

	DefaultWorkers = 4
)

// Filename is the local name a model artifact is saved under
func Filename(modelName string) string {
	return strings.ToLower(modelName) + "_model.pkl"
}

// Items builds one download item per model, in result order
func Items(results domain.Results) []view.DownloadItem {
	items := make([]view.DownloadItem, 0, len(results))
	for _, m := range results {
		items = append(items, view.DownloadItem{
			Name:     m.Name,
			Score:    m.BestScore,
			Label:    fmt.Sprintf("Score: %.4f", m.BestScore),
			Filename: Filename(m.Name),
		})
	}
	return items
}

// Manager runs download actions against the server
type Manager struct {
	server   ports.TrainingServer
	saver    ports.FileSaver
	surface  ports.DownloadSurface
	notifier ports.Notifier
	workers  int64
	logger   *internal.Logger
}

// NewManager wires a manager. workers bounds DownloadAll; zero or less uses DefaultWorkers.
func NewManager(server ports.TrainingServer, saver ports.FileSaver, surface ports.DownloadSurface, notifier ports.Notifier, workers int, logger *internal.Logger) *Manager {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Manager{
		server:   server,
		saver:    saver,
		surface:  surface,
		notifier: notifier,
		workers:  int64(workers),
		logger:   logger.With("download"),
	}
}

// Render lists the download items for results and returns them
func (m *Manager) Render(results domain.Results) []view.DownloadItem {
	items := Items(results)
	if m.surface != nil {
		m.surface.SetDownloads(items)
	}
	return items
}

// Activate downloads one model and saves it, returning where it was saved.
// The item is disabled for the duration and its label restored on every path.
func (m *Manager) Activate(ctx context.Context, item view.DownloadItem) (string, error) {
	if m.surface != nil {
		m.surface.SetDownloadState(item.Name, true, LabelDownloading)
		defer m.surface.SetDownloadState(item.Name, false, item.Label)
	}

	path, err := m.fetch(ctx, item)
	if err != nil {
		if errors.IsNotFound(err) {
			m.logger.Warn("model %s is not on the server", item.Name)
		} else {
			m.logger.Err(err, "download of %s failed", item.Name)
		}
		if m.notifier != nil {
			m.notifier.Alert(MsgFailedPrefix + errors.UserMessage(err))
		}
		return "", err
	}
	m.logger.Info("saved %s to %s", item.Name, path)
	return path, nil
}

func (m *Manager) fetch(ctx context.Context, item view.DownloadItem) (string, error) {
	body, err := m.server.DownloadModel(ctx, item.Name)
	if err != nil {
		return "", err
	}
	defer body.Close()

	filename := item.Filename
	if filename == "" {
		filename = Filename(item.Name)
	}
	path, err := m.saver.Save(filename, body)
	if err != nil {
		return "", errors.Wrapf(err, "save %s", filename)
	}
	return path, nil
}

// DownloadAll activates every item with at most the configured number of
// downloads in flight. A failed item does not stop the others; each failure
// is alerted by Activate and the first one is returned.
func (m *Manager) DownloadAll(ctx context.Context, items []view.DownloadItem) ([]string, error) {
	paths := make([]string, len(items))
	sem := semaphore.NewWeighted(m.workers)
	var g errgroup.Group

	for i, item := range items {
		if err := sem.Acquire(ctx, 1); err != nil {
			g.Wait()
			return paths, errors.WithCode(errors.CodeTransport, err)
		}
		g.Go(func() error {
			defer sem.Release(1)
			path, err := m.Activate(ctx, item)
			if err != nil {
				return err
			}
			paths[i] = path
			return nil
		})
	}

	err := g.Wait()
	return paths, err
}
