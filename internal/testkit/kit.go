package testkit

import (
	"bytes"
	"context"
	"math/rand"
	"net/http/httptest"

	"modelbench/adapters/api"
	"modelbench/domain/dataset"
	"modelbench/internal"
	"modelbench/ports"
)

// TestKit runs a fixture training server on a local port and a client wired to it
type TestKit struct {
	Fixture *FixtureServer
	Server  *httptest.Server
	Client  *api.Client
}

// NewTestKit starts a fixture server with the default configuration
func NewTestKit() (*TestKit, error) {
	return NewTestKitWithConfig(DefaultFixtureConfig())
}

// NewTestKitWithConfig starts a fixture server with config
func NewTestKitWithConfig(config FixtureConfig) (*TestKit, error) {
	logger := internal.DefaultLogger.With("testkit")
	fixture := NewFixtureServer(config, logger)
	server := httptest.NewServer(fixture.Handler())

	client, err := api.NewClient(api.Config{BaseURL: server.URL}, logger)
	if err != nil {
		server.Close()
		return nil, err
	}
	return &TestKit{Fixture: fixture, Server: server, Client: client}, nil
}

// Close stops the fixture server
func (t *TestKit) Close() {
	t.Server.Close()
}

// ServerPort returns the client as the port the controller consumes
func (t *TestKit) ServerPort() ports.TrainingServer {
	return t.Client
}

// UploadDataset writes data as CSV and uploads it through the client
func (t *TestKit) UploadDataset(ctx context.Context, data dataset.Dataset) (*ports.UploadResponse, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, data); err != nil {
		return nil, err
	}
	return t.Client.Upload(ctx, "dataset.csv", &buf)
}

// RNGAdapter hands out deterministic streams keyed by name
type RNGAdapter struct{}

// SeededStream returns a stream that depends only on name and seed
func (r *RNGAdapter) SeededStream(name string, seed int64) ports.RNGPort {
	return r.Stream(name, seed)
}

// Stream mixes the name into the seed so parallel streams differ
func (r *RNGAdapter) Stream(name string, baseSeed int64) *rand.Rand {
	seed := baseSeed
	if name != "" {
		seed = int64(hashString(name)) + seed
	}
	return rand.New(rand.NewSource(seed))
}

// hashString creates a simple hash for deterministic seeding
func hashString(s string) uint32 {
	var hash uint32 = 5381
	for _, c := range s {
		hash = ((hash << 5) + hash) + uint32(c)
	}
	return hash
}
