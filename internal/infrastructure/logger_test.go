package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nutricli/internal/config"
)

// readLastEntry parses the final JSON record in a log file
func readLastEntry(t *testing.T, path string) map[string]interface{} {
	t.Helper()
	content, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &entry))
	return entry
}

func TestInitializeLogger(t *testing.T) {
	ResetLoggerForTesting()
	defer ResetLoggerForTesting()

	logFile := filepath.Join(t.TempDir(), "clean_csv.log")

	cfg := config.LoggingConfig{
		Level:    "info",
		Format:   "json",
		Output:   "file",
		FilePath: logFile,
	}

	logger, err := InitializeLogger(cfg)
	require.NoError(t, err)
	require.NotNil(t, logger)
	assert.FileExists(t, logFile)

	logger.Info("test message", "key", "value")
	CloseLogFile()

	entry := readLastEntry(t, logFile)
	assert.Equal(t, "test message", entry["msg"])
	assert.Equal(t, "value", entry["key"])
	assert.Equal(t, "INFO", entry["level"])
	assert.Same(t, logger, GetLogger())
}

func TestInitializeLogger_AppendsAcrossRuns(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "eda_analysis.log")
	cfg := config.LoggingConfig{Level: "info", Format: "json", Output: "file", FilePath: logFile}

	for i := 0; i < 2; i++ {
		ResetLoggerForTesting()
		logger, err := InitializeLogger(cfg)
		require.NoError(t, err)
		logger.Info("run")
	}
	ResetLoggerForTesting()

	content, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(content), "\"msg\":\"run\""))
}

func TestInitializeLogger_BadPath(t *testing.T) {
	ResetLoggerForTesting()
	defer ResetLoggerForTesting()

	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	_, err := InitializeLogger(config.LoggingConfig{
		Level:    "info",
		Output:   "file",
		FilePath: filepath.Join(blocker, "nested", "x.log"),
	})
	assert.Error(t, err)
}

func TestCreateLogger_Both(t *testing.T) {
	var console bytes.Buffer
	logFile := filepath.Join(t.TempDir(), "both.log")

	logger, file, err := createLogger(config.LoggingConfig{
		Level:    "info",
		Output:   "both",
		FilePath: logFile,
	}, &console)
	require.NoError(t, err)
	require.NotNil(t, file)

	logger.Info("mirrored")
	require.NoError(t, file.Close())

	assert.Contains(t, console.String(), "mirrored")
	assert.Equal(t, "mirrored", readLastEntry(t, logFile)["msg"])
}

func TestCreateLogger_ConsoleOnly(t *testing.T) {
	var console bytes.Buffer

	logger, file, err := createLogger(config.LoggingConfig{Level: "info", Output: "console"}, &console)
	require.NoError(t, err)
	assert.Nil(t, file)

	logger.Info("console only")
	assert.Contains(t, console.String(), "console only")
}

func TestTraceIDInjection(t *testing.T) {
	ResetLoggerForTesting()
	defer ResetLoggerForTesting()

	logFile := filepath.Join(t.TempDir(), "test.log")

	_, err := InitializeLogger(config.LoggingConfig{
		Level:    "debug",
		Format:   "json",
		Output:   "file",
		FilePath: logFile,
	})
	require.NoError(t, err)

	ctx := WithTraceID(context.Background(), "run-123")
	GetLogger().InfoContext(ctx, "test with trace")
	CloseLogFile()

	entry := readLastEntry(t, logFile)
	assert.Equal(t, "run-123", entry["trace_id"])
}

func TestLogLevels(t *testing.T) {
	tests := []struct {
		level    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseLogLevel(tt.level))
		})
	}
}

func TestLevelFiltering(t *testing.T) {
	var console bytes.Buffer
	logger, _, err := createLogger(config.LoggingConfig{Level: "warn", Output: "console"}, &console)
	require.NoError(t, err)

	logger.Info("dropped")
	logger.Warn("kept")

	assert.NotContains(t, console.String(), "dropped")
	assert.Contains(t, console.String(), "kept")
}

func TestStageLoggingConfig(t *testing.T) {
	dir := t.TempDir()
	paths, err := config.GetPaths(config.PathsConfig{WorkDir: dir, LogsDir: "logs"})
	require.NoError(t, err)

	got := StageLoggingConfig(config.LoggingConfig{}, paths, config.ReportLogFile)
	assert.Equal(t, filepath.Join(dir, "logs", config.ReportLogFile), got.FilePath)

	got = StageLoggingConfig(config.LoggingConfig{FilePath: "custom.log"}, paths, config.ReportLogFile)
	assert.Equal(t, filepath.Join(dir, "custom.log"), got.FilePath)
}

func TestContextHelpers(t *testing.T) {
	ctx := ContextWithTraceID(context.Background())
	traceID := GetTraceID(ctx)
	assert.NotEmpty(t, traceID)

	assert.Equal(t, traceID, GetTraceID(EnsureTraceID(ctx)))
	assert.NotEmpty(t, GetTraceID(EnsureTraceID(context.Background())))

	//nolint:staticcheck
	assert.Equal(t, "", GetTraceID(nil))
}

func TestLoggerHelpers(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	WithComponent(logger, "cleaner").Info("test message")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "cleaner", entry["component"])

	assert.NotNil(t, WithComponent(nil, "eda"))
}
