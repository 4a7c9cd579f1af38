package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerInfo(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, time.UTC)

	l.Info("server_started", map[string]any{"port": "8080"})

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "server_started", entry["msg"])
	assert.Equal(t, "8080", entry["port"])
	assert.NotEmpty(t, entry["ts"])
}

func TestLoggerError(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, time.UTC)

	l.Error("mail_failed", errors.New("smtp down"), map[string]any{"to": "a@b.c", "level": "debug"})

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "error", entry["level"])
	assert.Equal(t, "smtp down", entry["error"])
	assert.Equal(t, "a@b.c", entry["to"])
}

func TestLoggerOneLinePerEntry(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, nil)

	l.Info("a", nil)
	l.Warn("b", nil)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 2)
	assert.Equal(t, time.UTC, l.Location())
}
