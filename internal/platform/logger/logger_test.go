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

func TestParseLevel(t *testing.T) {
	assert.Equal(t, Debug, ParseLevel("DEBUG"))
	assert.Equal(t, Warn, ParseLevel(" warning "))
	assert.Equal(t, Error, ParseLevel("error"))
	assert.Equal(t, Info, ParseLevel(""))
	assert.Equal(t, Info, ParseLevel("verbose"))
}

func TestParseFormat(t *testing.T) {
	assert.Equal(t, FormatJSON, ParseFormat("JSON"))
	assert.Equal(t, FormatText, ParseFormat("logfmt"))
}

func TestZapLogger_WithAndFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := FromZap(zap.New(core)).With(map[string]any{"document": "a.txt"})

	l.Info("parsed", map[string]any{"pets": 2, "": "ignored"})
	l.Error("failed", map[string]any{"error": errors.New("boom")})

	entries := logs.All()
	require.Len(t, entries, 2)

	ctx := entries[0].ContextMap()
	assert.Equal(t, "parsed", entries[0].Message)
	assert.Equal(t, "a.txt", ctx["document"])
	assert.EqualValues(t, 2, ctx["pets"])
	assert.NotContains(t, ctx, "")

	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(t, "boom", entries[1].ContextMap()["error"])
}

func TestNewNop(t *testing.T) {
	assert.NotPanics(t, func() {
		NewNop().With(map[string]any{"k": "v"}).Debug("x", nil)
	})
}
