package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appConfig "github.com/festy23/github_reporting/internal/config"
)

func TestNew(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "console")
	t.Setenv("LOG_OUTPUT", "stderr")

	logger, err := New()
	require.NoError(t, err)
	require.NotNil(t, logger)
	assert.True(t, logger.Desugar().Core().Enabled(-1))
}

func TestNewWithConfig(t *testing.T) {
	tests := []struct {
		name   string
		config appConfig.LoggerConfig
	}{
		{name: "production json", config: appConfig.LoggerConfig{Level: "info", Format: "json", Output: "stdout"}},
		{name: "development console", config: appConfig.LoggerConfig{Level: "debug", Format: "console", Output: "stdout"}},
		{name: "invalid level falls back to info", config: appConfig.LoggerConfig{Level: "bogus", Format: "json", Output: "stderr"}},
		{name: "empty output defaults to stdout", config: appConfig.LoggerConfig{Level: "warn", Format: "json"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := NewWithConfig(tt.config)
			require.NoError(t, err)
			require.NotNil(t, logger)
		})
	}
}

func TestNewWithConfig_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")

	logger, err := NewWithConfig(appConfig.LoggerConfig{Level: "info", Format: "json", Output: path})
	require.NoError(t, err)

	logger.Infow("collection finished", "kind", "issues")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "collection finished")
	assert.Contains(t, string(data), `"service":"github-reporting"`)
}
