package logger

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewRejectsBadLevel(t *testing.T) {
	_, err := New(Config{Level: "loud"})
	assert.Error(t, err)
}

func TestNewWritesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")
	l, err := New(Config{Level: "info", Outputs: []string{"file"}, OutputFile: path, Format: "json"})
	require.NoError(t, err)

	l.LogEpisode("depletion", "BTCUSDT", map[string]interface{}{"side": "BUY"})
	_ = l.Close()

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"event":"depletion"`)
	assert.Contains(t, string(raw), `"symbol":"BTCUSDT"`)
}

func TestLogEpisodeAndError(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	l := Wrap(zap.New(core)).WithFields(map[string]interface{}{"component": "test"})

	l.LogEpisode("recovered", "ETHUSDT", nil)
	l.LogError(errors.New("boom"), map[string]interface{}{"symbol": "ETHUSDT"})

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "episode_event", entries[0].Message)
	assert.Equal(t, "recovered", entries[0].ContextMap()["event"])
	assert.Equal(t, "test", entries[0].ContextMap()["component"])
	assert.Equal(t, "error_event", entries[1].Message)
	assert.Equal(t, "boom", entries[1].ContextMap()["error"])
}

func TestLogEpisodeFlagsSchemaViolation(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	l := Wrap(zap.New(core))

	l.LogEpisode("depletion", "BTCUSDT", map[string]interface{}{"side": "SELL"})
	l.LogEpisode("depletion", "BTCUSDT", map[string]interface{}{"side": "SELL", "price": "10", "book_ts": "x"})

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Contains(t, entries[0].ContextMap()["schema_error"], "price")
	assert.NotContains(t, entries[1].ContextMap(), "schema_error")
}
