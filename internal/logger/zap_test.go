package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewZapLogger(t *testing.T) {
	t.Run("accepts known levels", func(t *testing.T) {
		for _, level := range []string{"debug", "info", "warn", "error"} {
			l, err := NewZapLogger(level, "production")
			require.NoError(t, err, level)
			require.NotNil(t, l)
		}
	})

	t.Run("rejects unknown level", func(t *testing.T) {
		_, err := NewZapLogger("loud", "development")
		assert.Error(t, err)
	})
}

func TestZapLogger_Fields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewFromZap(zap.New(core))

	l.Warn("tip failed", map[string]any{
		"attempt": "a-1",
		"error":   errors.New("boom"),
		"chain":   "0x2105",
	})

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "tip failed", entries[0].Message)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)

	ctx := entries[0].ContextMap()
	assert.Equal(t, "a-1", ctx["attempt"])
	assert.Equal(t, "0x2105", ctx["chain"])
	assert.Equal(t, "boom", ctx["error"])

	var _ Logger = NoopLogger{}
	var _ Logger = l
}
