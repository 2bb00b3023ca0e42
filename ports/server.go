package ports

import (
	"context"
	"io"

	"modelbench/domain/dataset"
	"modelbench/domain/training"
)

// UploadResponse is a successful POST /upload body
type UploadResponse struct {
	Data    dataset.Dataset `json:"data"`
	Columns []string        `json:"columns"`
	Message string          `json:"message,omitempty"`
}

// TrainingServer is the HTTP contract of the remote training service
type TrainingServer interface {
	// Upload sends one file as multipart field "file"
	Upload(ctx context.Context, filename string, content io.Reader) (*UploadResponse, error)

	// Train submits the dataset in a single blocking round trip
	Train(ctx context.Context, req training.Request) (*training.Outcome, error)

	// DownloadModel streams the serialized model; the caller closes it
	DownloadModel(ctx context.Context, modelName string) (io.ReadCloser, error)
}
