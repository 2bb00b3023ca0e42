package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"modelbench/domain/core"
	"modelbench/domain/training"
	"modelbench/internal"
	"modelbench/internal/errors"
	"modelbench/ports"
)

// RequestIDHeader carries a per-request identifier for server-side log correlation
const RequestIDHeader = "X-Request-ID"

// Client talks to the training server over HTTP
type Client struct {
	baseURL    string
	headers    map[string]string
	httpClient *http.Client
	logger     *internal.Logger
}

var _ ports.TrainingServer = (*Client)(nil)

// NewClient creates a client for the server at config.BaseURL
func NewClient(config Config, logger *internal.Logger) (*Client, error) {
	baseURL := strings.TrimSpace(config.BaseURL)
	if baseURL == "" {
		return nil, errors.ConfigInvalid("missing server URL")
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, errors.WithCode(errors.CodeConfigInvalid, err)
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		headers: config.Headers,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		logger: logger.With("api"),
	}, nil
}

// Upload sends content as multipart field "file"
func (c *Client) Upload(ctx context.Context, filename string, content io.Reader) (*ports.UploadResponse, error) {
	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("file", filepath.Base(filename))
	if err != nil {
		return nil, errors.Transport("build upload form", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, errors.Transport("read upload file", err)
	}
	if err := form.Close(); err != nil {
		return nil, errors.Transport("build upload form", err)
	}

	req, err := c.buildRequest(ctx, http.MethodPost, "/upload", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	var uploaded ports.UploadResponse
	if err := c.doJSON(req, &uploaded); err != nil {
		return nil, err
	}
	return &uploaded, nil
}

// Train submits the dataset and waits for every model to finish
func (c *Client) Train(ctx context.Context, trainReq training.Request) (*training.Outcome, error) {
	raw, err := json.Marshal(trainReq)
	if err != nil {
		return nil, errors.Transport("marshal training request", err)
	}

	req, err := c.buildRequest(ctx, http.MethodPost, "/train", bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	var outcome training.Outcome
	if err := c.doJSON(req, &outcome); err != nil {
		return nil, err
	}
	outcome.Request = trainReq
	outcome.CompletedAt = core.Now()
	return &outcome, nil
}

// DownloadModel fetches the serialized model. Any non-2xx status is a failure.
func (c *Client) DownloadModel(ctx context.Context, modelName string) (io.ReadCloser, error) {
	req, err := c.buildRequest(ctx, http.MethodGet, "/download_model/"+url.PathEscape(modelName), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Transport("download request failed", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if msg := serverError(detail); msg != "" {
			detail = []byte(msg)
		}
		c.logger.Warn("download %s: server returned %d: %s", modelName, resp.StatusCode, strings.TrimSpace(string(detail)))
		failed := errors.ServerReported("Failed to download model")
		if resp.StatusCode == http.StatusNotFound {
			return nil, errors.WithCode(errors.CodeNotFound, failed)
		}
		return nil, failed
	}
	return resp.Body, nil
}

// buildRequest creates a request with the configured headers and a fresh request ID
func (c *Client) buildRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, errors.Transport("build request", err)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	req.Header.Set(RequestIDHeader, core.NewRequestID().String())
	return req, nil
}

// doJSON sends req and decodes a JSON body into out. Bodies carrying an error
// field decode normally; a non-2xx status without one is reported by code.
func (c *Client) doJSON(req *http.Request, out interface{}) error {
	start := time.Now()
	requestID := req.Header.Get(RequestIDHeader)
	c.logger.Debug("%s %s request_id=%s", req.Method, req.URL.Path, requestID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Transport(fmt.Sprintf("%s request failed", req.URL.Path), err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Transport("read response", err)
	}
	c.logger.Debug("%s %s -> %d in %s request_id=%s", req.Method, req.URL.Path, resp.StatusCode, time.Since(start).Round(time.Millisecond), requestID)

	if msg := serverError(raw); msg != "" {
		return errors.ServerReported(msg)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.ServerReported(fmt.Sprintf("server returned %d %s", resp.StatusCode, http.StatusText(resp.StatusCode)))
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return errors.Transport("unreadable response", err)
	}
	return nil
}

// serverError returns the string `error` member every endpoint may answer with
func serverError(body []byte) string {
	if !gjson.ValidBytes(body) {
		return ""
	}
	if msg := gjson.GetBytes(body, "error"); msg.Type == gjson.String {
		return msg.String()
	}
	return ""
}
