package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestInitJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fstate.log")
	require.NoError(t, Init(Config{Level: "info", Format: "json", OutputPath: path}))
	t.Cleanup(func() { globalLogger = nil })

	Info("scanned", zap.Int("entries", 3))
	Debug("hidden")
	require.NoError(t, Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)

	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, "scanned", rec["msg"])
	assert.Equal(t, float64(3), rec["entries"])
}

func TestSetLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fstate.log")
	require.NoError(t, Init(Config{Level: "error", Format: "console", OutputPath: path}))
	t.Cleanup(func() { globalLogger = nil })

	assert.Equal(t, zapcore.ErrorLevel, Level())
	SetLevel("debug")
	assert.Equal(t, zapcore.DebugLevel, Level())
	SetLevel("bogus")
	assert.Equal(t, zapcore.DebugLevel, Level())

	Debug("now visible")
	require.NoError(t, Sync())
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "now visible")
}

func TestOrFallsBackToGlobal(t *testing.T) {
	nop := zap.NewNop()
	assert.Same(t, nop, Or(nop))
	assert.NotNil(t, Or(nil))
}
