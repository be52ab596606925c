package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_WritesJSONToStateDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), ".xcresult-annotate")
	require.NoError(t, Init(dir, false))
	t.Cleanup(func() { _ = Close() })

	Info("parsed result bundle", "path", "Test.xcresult", "numWarnings", 2)
	require.NoError(t, Close())

	data, err := os.ReadFile(filepath.Join(dir, LogFileName))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "parsed result bundle", entry["msg"])
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "Test.xcresult", entry["path"])
	assert.EqualValues(t, 2, entry["numWarnings"])
}

func TestInit_Appends(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, Init(dir, false))
	Debug("first")
	require.NoError(t, Init(dir, false))
	Warn("second")
	require.NoError(t, Close())

	data, err := os.ReadFile(filepath.Join(dir, LogFileName))
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(data), "\n"))
}

func TestLogger_WithoutInit(t *testing.T) {
	mu.Lock()
	defaultLogger = nil
	mu.Unlock()

	assert.NotNil(t, Logger())
	assert.NotPanics(t, func() {
		Error("dropped", "error", "nothing")
	})
}

func TestInit_EmptyStateDirDiscards(t *testing.T) {
	require.NoError(t, Init("", false))
	assert.Nil(t, logFile)
	assert.NotPanics(t, func() { Info("discarded") })
}
