package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"modelbench/domain/dataset"
	"modelbench/domain/training"
	"modelbench/internal/errors"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := NewClient(Config{BaseURL: srv.URL + "/", Headers: map[string]string{"User-Agent": "modelbench-test"}}, nil)
	require.NoError(t, err)
	return client
}

func TestNewClient_RejectsBadURL(t *testing.T) {
	_, err := NewClient(Config{BaseURL: " "}, nil)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))

	_, err = NewClient(Config{BaseURL: "not a url"}, nil)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}

func TestUpload(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/upload", r.URL.Path)
		assert.NotEmpty(t, r.Header.Get(RequestIDHeader))
		assert.Equal(t, "modelbench-test", r.Header.Get("User-Agent"))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		content, _ := io.ReadAll(file)
		assert.Equal(t, "data.csv", header.Filename)
		assert.Equal(t, "a,b\n1,x\n", string(content))

		_, _ = io.WriteString(w, `{"message":"File uploaded successfully","columns":["a","b"],"data":[{"a":1,"b":"x"}]}`)
	})

	resp, err := client.Upload(context.Background(), "/tmp/data.csv", strings.NewReader("a,b\n1,x\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, resp.Columns)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, []string{"a", "b"}, resp.Data.Columns())
}

func TestUpload_Errors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantCode string
		wantMsg  string
	}{
		{name: "error field", status: http.StatusBadRequest, body: `{"error":"No file selected"}`, wantCode: errors.CodeServerReported, wantMsg: "No file selected"},
		{name: "error field with 200", status: http.StatusOK, body: `{"error":"bad csv"}`, wantCode: errors.CodeServerReported, wantMsg: "bad csv"},
		{name: "bare 500", status: http.StatusInternalServerError, body: `oops`, wantCode: errors.CodeServerReported, wantMsg: "server returned 500 Internal Server Error"},
		{name: "garbage 200", status: http.StatusOK, body: `<html>`, wantCode: errors.CodeTransport},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})
			_, err := client.Upload(context.Background(), "x.csv", strings.NewReader("a\n1\n"))
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, errors.GetCode(err))
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, errors.UserMessage(err))
			}
		})
	}
}

func TestUpload_TransportFailure(t *testing.T) {
	client, err := NewClient(Config{BaseURL: "http://127.0.0.1:1"}, nil)
	require.NoError(t, err)
	_, err = client.Upload(context.Background(), "x.csv", strings.NewReader("a\n"))
	require.Error(t, err)
	assert.Equal(t, errors.CodeTransport, errors.GetCode(err))
}

func TestTrain(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/train", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		raw, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"data":[{"x":1,"y":0}],"target_column":"y","task_type":"classification"}`, string(raw))

		_, _ = io.WriteString(w, `{"results":{"svm":{"best_score":0.6},"random_forest":{"best_score":0.8,"optimization_history":{"values":[0.5,0.8]}}},"message":"Training completed successfully","target_classes":[0,1]}`)
	})

	req := training.Request{
		Data:         dataset.Dataset{dataset.NewRow(dataset.Field{Key: "x", Value: 1.0}, dataset.Field{Key: "y", Value: 0.0})},
		TargetColumn: "y",
		TaskType:     training.Classification,
	}
	outcome, err := client.Train(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, []string{"svm", "random_forest"}, outcome.Results.Names())
	assert.Equal(t, "y", outcome.Request.TargetColumn)
	assert.False(t, outcome.CompletedAt.IsZero())
}

func TestTrain_ServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "Target column contains only null values."})
	})
	_, err := client.Train(context.Background(), training.Request{TargetColumn: "y"})
	require.Error(t, err)
	assert.Equal(t, "Target column contains only null values.", errors.UserMessage(err))
}

func TestDownloadModel(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.EscapedPath() {
		case "/download_model/RF":
			_, _ = w.Write([]byte{0x80, 0x04})
		case "/download_model/broken":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"error":"Model missing not found"}`)
		}
	})

	body, err := client.DownloadModel(context.Background(), "RF")
	require.NoError(t, err)
	content, _ := io.ReadAll(body)
	require.NoError(t, body.Close())
	assert.Equal(t, []byte{0x80, 0x04}, content)

	tests := []struct {
		name     string
		model    string
		wantCode string
	}{
		{name: "unknown model", model: "missing", wantCode: errors.CodeNotFound},
		{name: "server failure", model: "broken", wantCode: errors.CodeServerReported},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.DownloadModel(context.Background(), tt.model)
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, errors.GetCode(err))
			assert.Equal(t, "Failed to download model", errors.UserMessage(err))
		})
	}
}
