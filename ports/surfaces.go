package ports

import (
	"io"

	"modelbench/domain/core"
	"modelbench/domain/view"
)

// Surfaces are the display side of the controller. Implementations must be
// safe to call from any goroutine.

// Notifier shows a user-facing alert
type Notifier interface {
	Alert(message string)
}

// UploadSurface is the file picker, its button and the configuration form
type UploadSurface interface {
	SetUploading(busy bool)
	SetTargetOptions(options []string)
	EnableConfiguration()
}

// AnalysisSurface shows the dataset panels and the target distribution
type AnalysisSurface interface {
	ShowSummary(summary view.AnalysisSummary)
	ShowDistribution(dist view.Distribution)
}

// ProgressSurface is the training progress bar and its status label
type ProgressSurface interface {
	ResetProgress()
	SetProgress(percent float64, status string)
	MarkFailed(status string)
}

// TrainControl is the train button
type TrainControl interface {
	SetTraining(busy bool, label string)
}

// ResultsSurface shows the comparison and optimization history charts
type ResultsSurface interface {
	ShowComparison(chart view.BarChart)
	ShowHistory(chart view.LineChart)
	ShowHistoryPlaceholder(text string)
	RevealDownloads()
}

// DownloadSurface lists one download action per model
type DownloadSurface interface {
	SetDownloads(items []view.DownloadItem)
	SetDownloadState(name string, busy bool, label string)
}

// StatusSurface is the status line with its last-updated time
type StatusSurface interface {
	SetStatus(text string, at core.Timestamp)
}

// FileSaver persists a downloaded artifact and returns where it went
type FileSaver interface {
	Save(filename string, content io.Reader) (string, error)
}

// Page bundles every surface, as implemented by the terminal UI and the report
type Page interface {
	Notifier
	UploadSurface
	AnalysisSurface
	ProgressSurface
	TrainControl
	ResultsSurface
	DownloadSurface
	StatusSurface
}
