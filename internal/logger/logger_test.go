package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONLogging(t *testing.T) {
	var buf bytes.Buffer

	cfg := Config{
		Level:       "info",
		Format:      "json",
		ServiceName: "test-service",
		Version:     "1.0.0",
		Environment: "test",
	}
	InitLoggerWithWriter(cfg, &buf)

	slog.Info("test message", "key", "value")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "test-service", entry["service"])
	assert.Equal(t, "1.0.0", entry["version"])
	assert.Equal(t, "test message", entry["msg"])
	assert.Equal(t, "value", entry["key"])
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer

	cfg := DefaultConfig()
	cfg.Level = "warn"
	InitLoggerWithWriter(cfg, &buf)

	slog.Info("should be dropped")
	assert.Empty(t, buf.String())

	slog.Warn("should appear")
	assert.Contains(t, buf.String(), "should appear")
}

func TestFromContextRequestID(t *testing.T) {
	var buf bytes.Buffer
	InitLoggerWithWriter(Config{Level: "info", Format: "json"}, &buf)

	id := GenerateRequestID()
	ctx := WithRequestID(context.Background(), id)

	got, ok := RequestIDFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, id, got)

	FromContext(ctx).Info("traced")
	assert.Contains(t, buf.String(), id)
}

func TestFromContextWithoutRequestID(t *testing.T) {
	_, ok := RequestIDFromContext(context.Background())
	assert.False(t, ok)
	assert.NotNil(t, FromContext(context.Background()))
}
