// internal/observability/logger_test.go
package observability

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/xkilldash9x/htmlview/internal/config"
)

// initBuffered initializes the global logger writing to a buffer.
func initBuffered(t *testing.T, cfg config.LoggerConfig) *bytes.Buffer {
	t.Helper()
	ResetForTest()
	t.Cleanup(ResetForTest)
	var buf bytes.Buffer
	Initialize(cfg, zapcore.AddSync(&buf))
	return &buf
}

func TestInitialize(t *testing.T) {
	t.Run("Console logger with colors", func(t *testing.T) {
		buf := initBuffered(t, config.LoggerConfig{
			Level:       "debug",
			Format:      "console",
			ServiceName: "htmlview",
			Colors:      config.ColorConfig{Info: "green"},
		})
		ForComponent("loader").Info("Loaded style sheets.")
		Sync()

		output := buf.String()
		assert.Contains(t, output, colorGreen+"INFO"+colorReset)
		assert.Contains(t, output, "htmlview.loader.")
		assert.Contains(t, output, "Loaded style sheets.")
	})

	t.Run("Unknown colors leave the level plain", func(t *testing.T) {
		buf := initBuffered(t, config.LoggerConfig{Level: "info", Format: "console", Colors: config.ColorConfig{Warn: "mauve"}})
		GetLogger().Warn("plain")
		assert.Contains(t, buf.String(), "WARN")
		assert.NotContains(t, buf.String(), colorReset)
	})

	t.Run("JSON logger", func(t *testing.T) {
		buf := initBuffered(t, config.LoggerConfig{Level: "info", Format: "json", ServiceName: "JSONTest"})
		GetLogger().Warn("Dropped rule.", zap.String("selector", "p > *"))
		Sync()

		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "warn", entry["level"])
		assert.Equal(t, "JSONTest", entry["logger"])
		assert.Equal(t, "Dropped rule.", entry["msg"])
		assert.Equal(t, "p > *", entry["selector"])
	})

	t.Run("Level filtering", func(t *testing.T) {
		buf := initBuffered(t, config.LoggerConfig{Level: "warn", Format: "json"})
		GetLogger().Info("hidden")
		GetLogger().Debug("hidden too")
		assert.Empty(t, buf.String())
	})

	t.Run("Invalid level falls back to info", func(t *testing.T) {
		buf := initBuffered(t, config.LoggerConfig{Level: "verbose", Format: "json"})
		GetLogger().Debug("hidden")
		GetLogger().Info("shown")
		assert.NotContains(t, buf.String(), "hidden")
		assert.Contains(t, buf.String(), "shown")
	})

	t.Run("Log file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "htmlview.log")
		initBuffered(t, config.LoggerConfig{Level: "debug", Format: "console", LogFile: path, MaxSize: 1})
		GetLogger().Error("This should go to the file.")
		Sync()

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		line := strings.TrimSpace(string(content))
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry), "the file is always JSON")
		assert.Equal(t, "This should go to the file.", entry["msg"])
	})

	t.Run("Only the first call counts", func(t *testing.T) {
		buf := initBuffered(t, config.LoggerConfig{Level: "info", Format: "json", ServiceName: "First"})
		first := GetLogger()
		Initialize(config.LoggerConfig{Level: "debug", ServiceName: "Second"}, zapcore.AddSync(&bytes.Buffer{}))
		assert.Same(t, first, GetLogger())

		GetLogger().Info("test")
		assert.Contains(t, buf.String(), "First")
		assert.NotContains(t, buf.String(), "Second")
	})
}

func TestGetLogger(t *testing.T) {
	t.Run("No-op before initialization", func(t *testing.T) {
		ResetForTest()
		logger := GetLogger()
		require.NotNil(t, logger)
		assert.False(t, logger.Core().Enabled(zap.ErrorLevel))
		Sync()
	})

	t.Run("Global logger after initialization", func(t *testing.T) {
		initBuffered(t, config.LoggerConfig{Level: "info", ServiceName: "GlobalTest"})
		assert.Same(t, globalLogger.Load(), GetLogger())
	})
}
