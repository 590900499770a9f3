package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/fastorder/server/internal/utils/requestctx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	t.Run("writes json to output", func(t *testing.T) {
		buf := &bytes.Buffer{}
		l, err := New(&Config{Level: "debug", Format: "json", Output: buf})
		require.NoError(t, err)

		l.Info("order created", zap.Int64("order_code", 42))
		require.NoError(t, l.Sync())

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "order created", entry["msg"])
		assert.Equal(t, float64(42), entry["order_code"])
		assert.Contains(t, entry, "time")
	})

	t.Run("text format is not json", func(t *testing.T) {
		buf := &bytes.Buffer{}
		l, err := New(&Config{Format: "text", Output: buf})
		require.NoError(t, err)

		l.Info("kitchen queue refreshed")
		assert.Contains(t, buf.String(), "kitchen queue refreshed")
		assert.False(t, json.Valid(bytes.TrimSpace(buf.Bytes())))
	})

	t.Run("respects level", func(t *testing.T) {
		buf := &bytes.Buffer{}
		l, err := New(&Config{Level: "warning", Output: buf})
		require.NoError(t, err)

		l.Info("hidden")
		l.Warn("shown")
		assert.NotContains(t, buf.String(), "hidden")
		assert.Contains(t, buf.String(), "shown")
	})

	t.Run("nil config builds a stdout logger", func(t *testing.T) {
		l, err := New(nil)
		require.NoError(t, err)
		assert.NotNil(t, l)
	})
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"INFO", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"warning", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"", zapcore.InfoLevel},
		{"loud", zapcore.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestWithRequest(t *testing.T) {
	buf := &bytes.Buffer{}
	base, err := New(&Config{Output: buf})
	require.NoError(t, err)

	WithRequest(context.Background(), base).Info("no id")
	ctx := requestctx.WithClientID(requestctx.WithRequestID(context.Background(), "req-1"), "client-1")
	WithRequest(ctx, base).Info("with id")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	var first, second map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &first))
	require.NoError(t, json.Unmarshal(lines[1], &second))
	assert.NotContains(t, first, "request_id")
	assert.Equal(t, "req-1", second["request_id"])
	assert.Equal(t, "client-1", second["client_id"])
}
