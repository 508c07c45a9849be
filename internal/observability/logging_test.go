package observability

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"netinv.sh/internal/middleware"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"INFO":    zapcore.InfoLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"bogus":   zapcore.InfoLevel,
		"":        zapcore.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}

func TestNewLogger_JSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "netctl.log")
	logger := NewLogger(LogConfig{
		Level:       "warn",
		Format:      "json",
		OutputPath:  path,
		ServiceName: "netctl",
		Version:     "1.2.3",
	})

	logger.Info("dropped")
	ctx := middleware.WithRequestID(context.Background(), "req-42")
	logger.WithContext(ctx).Warn("kept")
	require.NoError(t, logger.Sync())

	lines := readLines(t, path)
	require.Len(t, lines, 1)
	line := []byte(lines[0])
	assert.Equal(t, "kept", jsoniter.Get(line, "message").ToString())
	assert.Equal(t, "netctl", jsoniter.Get(line, "service").ToString())
	assert.Equal(t, "1.2.3", jsoniter.Get(line, "version").ToString())
	assert.Equal(t, "req-42", jsoniter.Get(line, "request_id").ToString())
}

func TestLogger_Slog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "netctl.log")
	logger := NewLogger(LogConfig{Level: "info", Format: "json", OutputPath: path})

	sl := logger.Slog("json")
	sl.Debug("hidden")
	sl.Info("shown", "skipped", 2)

	lines := readLines(t, path)
	require.Len(t, lines, 1)
	assert.Equal(t, "shown", jsoniter.Get([]byte(lines[0]), "msg").ToString())
	assert.Equal(t, 2, jsoniter.Get([]byte(lines[0]), "skipped").ToInt())
	assert.False(t, sl.Enabled(context.Background(), slog.LevelDebug))
}

func TestLogger_WithContextEmpty(t *testing.T) {
	logger := NewLogger(LogConfig{OutputPath: filepath.Join(t.TempDir(), "x.log")})
	assert.Same(t, logger, logger.WithContext(context.Background()))
}
