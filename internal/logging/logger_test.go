package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, DEBUG, ParseLevel("DEBUG"))
	assert.Equal(t, WARN, ParseLevel("warning"))
	assert.Equal(t, ERROR, ParseLevel(" error "))
	assert.Equal(t, INFO, ParseLevel(""))
	assert.Equal(t, INFO, ParseLevel("verbose"))
}

func TestNewLogger_WritesFileAndSharesLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "chaindash.log")

	logger, err := NewLogger(Config{Level: WARN, OutputFile: path, JSONFormat: true})
	require.NoError(t, err)
	defer logger.Close()

	logger.Slog().Info("dropped")
	logger.Slog().Warn("kept", "component", "test")
	lr := logger.Logrus()
	assert.Equal(t, logrus.WarnLevel, lr.GetLevel())
	lr.Error("from logrus")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "dropped")
	assert.Contains(t, string(data), "kept")
	assert.Contains(t, string(data), "from logrus")
}

func TestRotateIfNeeded(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	require.NoError(t, os.WriteFile(path, make([]byte, 64), 0644))

	logger, err := NewLogger(Config{OutputFile: path, MaxSize: 32})
	require.NoError(t, err)
	defer logger.Close()

	_, err = os.Stat(path + ".1")
	assert.NoError(t, err)
}
