package log

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitTextLevels(t *testing.T) {
	var buf bytes.Buffer
	logger, err := Init(Options{Stderr: &buf})
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("shown", "state", "WORK")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "state=WORK")
}

func TestInitVerboseJSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := Init(Options{Stderr: &buf, Verbose: true, JSONFormat: true})
	require.NoError(t, err)

	logger.Debug("tick", "remaining", 42)

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "tick", record["msg"])
	assert.Equal(t, float64(42), record["remaining"])
}

func TestInitQuiet(t *testing.T) {
	var buf bytes.Buffer
	logger, err := Init(Options{Stderr: &buf, Quiet: true})
	require.NoError(t, err)

	logger.Info("chatty")
	logger.Warn("important")

	assert.NotContains(t, buf.String(), "chatty")
	assert.Contains(t, buf.String(), "important")
}

func TestInitFileReceivesDebug(t *testing.T) {
	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "logs", "tomatray.log")
	_, err := Init(Options{Stderr: &buf, FilePath: path})
	require.NoError(t, err)
	t.Cleanup(Close)

	Component("timer").Debug("only in file")
	Close()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `"component":"timer"`))
	assert.NotContains(t, buf.String(), "only in file")
}
