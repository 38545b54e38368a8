package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Proton-105/dataeng-assistant/pkg/config"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()

	var records []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var rec map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &rec))
		records = append(records, rec)
	}
	return records
}

func TestLogger_MasksSensitiveAttributes(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(config.LoggerConfig{Level: "info", Format: "json"}, false, &buf)

	log.With("token", "abc").Info("lead captured",
		"email", "jane@acme.io",
		"company", "Acme",
	)
	log.Info("nested", slogGroup())

	records := decodeLines(t, &buf)
	require.Len(t, records, 2)

	assert.Equal(t, "***", records[0]["email"])
	assert.Equal(t, "***", records[0]["token"])
	assert.Equal(t, "Acme", records[0]["company"])

	group, ok := records[1]["contact"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "***", group["email"])
	assert.Equal(t, "Jane", group["name"])
}

func TestLogger_CorrelationID(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(config.LoggerConfig{Format: "json"}, false, &buf)

	ctx := WithCorrelationID(context.Background(), "corr-1")
	log.InfoContext(ctx, "turn")

	records := decodeLines(t, &buf)
	require.Len(t, records, 1)
	assert.Equal(t, "corr-1", records[0]["correlation_id"])
}

func TestLogger_SetLevel(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(config.LoggerConfig{Level: "warn", Format: "json"}, false, &buf)

	log.Info("hidden")
	log.SetLevel("debug")
	log.Debug("shown")

	records := decodeLines(t, &buf)
	require.Len(t, records, 1)
	assert.Equal(t, "shown", records[0]["msg"])
	assert.NoError(t, log.Close())
}

func TestWithCorrelationID_Generates(t *testing.T) {
	ctx := WithCorrelationID(context.Background(), "")
	assert.NotEmpty(t, CorrelationIDFromContext(ctx))
	assert.Empty(t, CorrelationIDFromContext(context.Background()))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, "DEBUG", ParseLevel("debug").String())
	assert.Equal(t, "WARN", ParseLevel("warning").String())
	assert.Equal(t, "INFO", ParseLevel("").String())
}

func slogGroup() any {
	return slog.Group("contact", slog.String("name", "Jane"), slog.String("email", "jane@acme.io"))
}
