package di

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"pagepilot/internal/infrastructure/config"
	"pagepilot/internal/infrastructure/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDriver(t *testing.T) {
	cfg := config.Default()
	assert.Equal(t, "rod", NewDriver(cfg, logger.NewNop()).Name())

	cfg.Engine = config.EnginePlaywright
	assert.Equal(t, "playwright", NewDriver(cfg, logger.NewNop()).Name())
}

func TestNewContainer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pagepilot.yaml")
	require.NoError(t, os.WriteFile(path, []byte("engine: rod\nheadless: true\n"), 0644))

	c, err := NewContainer(Options{ConfigPath: path, Engine: config.EnginePlaywright, Out: &bytes.Buffer{}})
	require.NoError(t, err)
	defer c.Close()

	assert.Equal(t, "playwright", c.Driver.Name())
	assert.True(t, c.Config.Headless)
	assert.False(t, c.Browser.IsInitialized())
	assert.Len(t, c.Tools.All(), 8)
	assert.NotNil(t, c.Runner)
	assert.NotNil(t, c.NewServer(""))
}

func TestNewContainer_InvalidEngine(t *testing.T) {
	_, err := NewContainer(Options{Engine: "chromedp"})
	assert.ErrorContains(t, err, "unknown engine")
}
