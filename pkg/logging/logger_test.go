package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextLoggerCarriesIDs(t *testing.T) {
	var buf bytes.Buffer
	ctx := MakeContextWithLogger(context.Background(), New(&buf, "debug", false))
	ctx = MakeContextWithRequestID(ctx, "req-1")
	ctx = MakeContextWithFSToken(ctx, "fs-1")

	GetLoggerFromContextWithOp(ctx, "pkg.Op").Debug("hello")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "hello", record["msg"])
	assert.Equal(t, "req-1", record["request_id"])
	assert.Equal(t, "fs-1", record["fs_token"])
	assert.Equal(t, "pkg.Op", record["op"])
}

func TestNewRequestID(t *testing.T) {
	ctx := MakeContextWithNewRequestID(context.Background())
	assert.Len(t, GetRequestIDFromCtx(ctx), 36)
	assert.Empty(t, GetRequestIDFromCtx(context.Background()))
	assert.Empty(t, GetFSTokenFromCtx(context.Background()))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("whatever"))
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "warn", false)

	logger.Info("dropped")
	assert.Zero(t, buf.Len())

	logger.Warn("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestPrettyLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "debug", true).With(slog.String("op", "x"))

	logger.Info("pretty", slog.Int("n", 1))
	out := buf.String()
	assert.Contains(t, out, "pretty")
	assert.Contains(t, out, `"op": "x"`)
	assert.Contains(t, out, `"n": 1`)
}
