package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func captureGlobal(t *testing.T) *bytes.Buffer {
	t.Helper()

	original := Logger
	t.Cleanup(func() { SetGlobalLogger(original) })

	var buf bytes.Buffer
	SetGlobalLogger(zerolog.New(&buf).Level(zerolog.TraceLevel))
	return &buf
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	return line
}

func TestDiscardsByDefault(t *testing.T) {
	require.Equal(t, zerolog.Disabled, zerolog.Nop().GetLevel())
	require.NotPanics(t, func() { Debug().Msg("dropped") })
}

func TestSetGlobalLogger(t *testing.T) {
	buf := captureGlobal(t)

	Info().Str("pattern", "otto").Msg("compiled")

	line := decodeLine(t, buf)
	require.Equal(t, "info", line["level"])
	require.Equal(t, "otto", line["pattern"])
	require.Equal(t, "compiled", line["message"])
}

func TestCtxFallsBackToGlobal(t *testing.T) {
	buf := captureGlobal(t)

	Ctx(context.Background()).Warn().Msg("fallback")

	line := decodeLine(t, buf)
	require.Equal(t, "warn", line["level"])
	require.Equal(t, "fallback", line["message"])
}

func TestComponent(t *testing.T) {
	buf := captureGlobal(t)

	logger := Component("fulltext")
	logger.Debug().Msg("probing")

	line := decodeLine(t, buf)
	require.Equal(t, "fulltext", line["component"])
	require.Equal(t, "debug", line["level"])
}

func TestStatementOmitsArguments(t *testing.T) {
	buf := captureGlobal(t)

	Statement(Trace(), "sur_name LIKE ?", []any{"secret%"}).Msg("compiled")

	line := decodeLine(t, buf)
	require.Equal(t, "sur_name LIKE ?", line["sql"])
	require.InDelta(t, 1, line["args"], 0)
	require.NotContains(t, buf.String(), "secret")
}
