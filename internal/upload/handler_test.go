package upload

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"modelbench/domain/dataset"
	"modelbench/internal/analysis"
	"modelbench/internal/errors"
	"modelbench/internal/session"
	"modelbench/internal/testkit"
	"modelbench/ports"
)

func fixtureResponse() *ports.UploadResponse {
	row := func(a float64, b string) dataset.Row {
		return dataset.NewRow(dataset.Field{Key: "a", Value: a}, dataset.Field{Key: "b", Value: b})
	}
	return &ports.UploadResponse{
		Data:    dataset.Dataset{row(1, "x"), row(2, "y"), row(3, "x")},
		Columns: []string{"a", "b"},
	}
}

func newHandler(server ports.TrainingServer) (*Handler, *session.State, *testkit.Page) {
	state := session.NewState()
	page := testkit.NewPage()
	return NewHandler(server, state, page, page, analysis.NewRenderer(page, nil), nil), state, page
}

func writeTempFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte("a,b\n1,x\n2,y\n3,x\n"), 0o644))
	return path
}

func TestUpload_Scenario(t *testing.T) {
	server := &testkit.MockServer{}
	server.On("Upload", mock.Anything, "data.csv", mock.Anything).Return(fixtureResponse(), nil)
	h, state, page := newHandler(server)

	err := h.UploadFile(context.Background(), writeTempFile(t))
	require.NoError(t, err)

	assert.Equal(t, [][]string{{"", "a", "b"}}, page.TargetOptions)
	assert.Equal(t, 1, page.ConfigEnabled)
	require.Len(t, page.Summaries, 1)
	assert.Equal(t, "(3, 2)", page.Summaries[0].Shape())
	assert.Equal(t, []bool{true, false}, page.Uploading)
	assert.Equal(t, []string{MsgSuccess}, page.Alerts)
	assert.True(t, state.Snapshot().HasDataset())
	server.AssertExpectations(t)
}

func TestUpload_NoFileSelected(t *testing.T) {
	server := &testkit.MockServer{}
	h, state, page := newHandler(server)

	err := h.UploadFile(context.Background(), "  ")
	require.Error(t, err)
	assert.True(t, errors.IsUserInput(err))
	assert.Equal(t, []string{MsgNoFile}, page.Alerts)
	assert.Empty(t, page.Uploading, "presence check happens before the busy state")
	assert.False(t, state.Snapshot().HasDataset())
	server.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpload_Failures(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantAlert string
	}{
		{name: "server reported", err: errors.ServerReported("No file selected"), wantAlert: "Error: No file selected"},
		{name: "transport", err: errors.Transport("/upload request failed", assert.AnError), wantAlert: "Error: /upload request failed: " + assert.AnError.Error()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := &testkit.MockServer{}
			server.On("Upload", mock.Anything, mock.Anything, mock.Anything).Return(nil, tt.err)
			h, state, page := newHandler(server)

			// a previous upload must survive the failed one
			state.SetDataset("old.csv", fixtureResponse().Data, []string{"a", "b"})

			err := h.UploadFile(context.Background(), writeTempFile(t))
			require.Error(t, err)
			assert.Equal(t, []string{tt.wantAlert}, page.Alerts)
			assert.Equal(t, []bool{true, false}, page.Uploading)
			assert.Equal(t, "old.csv", state.Snapshot().Filename)
			assert.Empty(t, page.TargetOptions)
			assert.Empty(t, page.Summaries)
		})
	}
}

func TestUpload_MissingFile(t *testing.T) {
	h, _, page := newHandler(&testkit.MockServer{})
	err := h.UploadFile(context.Background(), filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
	assert.Equal(t, errors.CodeTransport, errors.GetCode(err))
	require.Len(t, page.Alerts, 1)
	assert.Contains(t, page.Alerts[0], "Error: open file")
}
