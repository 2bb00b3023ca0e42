package container

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"modelbench/internal/config"
	"modelbench/internal/testkit"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.FromEnv()
	require.NoError(t, err)
	cfg.Paths.DownloadDir = filepath.Join(t.TempDir(), "models")
	cfg.Logging.File = filepath.Join(t.TempDir(), "modelbench.log")
	return cfg
}

func TestNew_NilConfig(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)
	_, err = NewWithLogger(nil, nil)
	assert.Error(t, err)
}

func TestContainer_Init(t *testing.T) {
	cfg := testConfig(t)
	c, err := New(cfg)
	require.NoError(t, err)
	defer c.Shutdown(context.Background())

	assert.Error(t, c.Init(nil))

	require.NoError(t, c.Init(testkit.NewPage()))
	assert.NotNil(t, c.Client)
	assert.NotNil(t, c.Controller)
	assert.DirExists(t, cfg.Paths.DownloadDir)

	require.NoError(t, c.Shutdown(context.Background()))
	logged, err := os.ReadFile(cfg.Logging.File)
	require.NoError(t, err)
	assert.Contains(t, string(logged), "container initialized against http://localhost:5000")
}
