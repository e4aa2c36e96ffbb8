package log

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"twinpane/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevels(t *testing.T) {
	tests := []struct {
		name  string
		emit  func(l *Logger)
		level string
		text  string
	}{
		{"info", func(l *Logger) { l.Info("starting copy") }, "level=info", "starting copy"},
		{"infof", func(l *Logger) { l.Infof("copy: %d done", 3) }, "level=info", "copy: 3 done"},
		{"warn", func(l *Logger) { l.Warn("entry failed") }, "level=warning", "entry failed"},
		{"warnf", func(l *Logger) { l.Warnf("cannot watch %s", "/tmp/a") }, "level=warning", "cannot watch /tmp/a"},
		{"error", func(l *Logger) { l.Error("operation stopped") }, "level=error", "operation stopped"},
		{"errorf", func(l *Logger) { l.Errorf("undo of %s failed", "move") }, "level=error", "undo of move failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.emit(NewLogger(WithOutput(&buf)))
			assert.Contains(t, buf.String(), tt.level)
			assert.Contains(t, buf.String(), tt.text)
		})
	}
}

func TestDebugNeedsSwitch(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(WithOutput(&buf))

	SetDebug(false)
	l.Debug("skipped /a/x.txt")
	l.Debugf("skipped %s", "/a/y.txt")
	assert.Empty(t, buf.String())

	SetDebug(true)
	defer SetDebug(false)
	l.Debugf("skipped %s", "/a/y.txt")
	assert.Contains(t, buf.String(), "level=debug")
	assert.Contains(t, buf.String(), "skipped /a/y.txt")
}

func TestMinimumLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(WithOutput(&buf), WithLevel("warn"))

	l.Info("copy: 1 done")
	assert.Empty(t, buf.String())

	l.Warn("entry failed")
	assert.Contains(t, buf.String(), "entry failed")

	// an unknown level leaves the default in place
	buf.Reset()
	NewLogger(WithOutput(&buf), WithLevel("loud")).Info("still logged")
	assert.Contains(t, buf.String(), "still logged")
}

func TestOperationFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(WithOutput(&buf))

	opLog := l.With(F("operation", "7d3c"), F("kind", "move"))
	opLog.With(F("entries", 4)).Info("starting")
	out := buf.String()
	assert.Contains(t, out, "operation=7d3c")
	assert.Contains(t, out, "kind=move")
	assert.Contains(t, out, "entries=4")

	buf.Reset()
	l.Info("idle")
	assert.NotContains(t, buf.String(), "operation=", "parent keeps no child fields")
}

func TestJSONLines(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(WithOutput(&buf), WithJSON())

	l.With(F("kind", "copy"), F("entries", 2)).Info("copy: 2 done")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &line))
	assert.Equal(t, "info", line["level"])
	assert.Equal(t, "copy: 2 done", line["message"])
	assert.Contains(t, line, "timestamp")
	assert.Equal(t, "copy", line["kind"])
	assert.Equal(t, float64(2), line["entries"])
}

func TestErrorFields(t *testing.T) {
	var buf bytes.Buffer
	Configure(WithOutput(&buf))
	defer Configure(WithOutput(io.Discard))

	denied := errors.NewFileError("cannot create directory", "/b/sub", errors.PermissionDenied, nil)
	LogWithError(denied).Warn("entry failed")
	out := buf.String()
	assert.Contains(t, out, "path=/b/sub")
	assert.Contains(t, out, `error_kind="permission denied"`)

	buf.Reset()
	LogError(errors.NewConfigError("invalid sort key", "panels.sort_key", errors.InvalidConfig, nil), "config rejected")
	assert.Contains(t, buf.String(), "param=panels.sort_key")

	buf.Reset()
	LogWithError(nil).Warn("nothing wrong")
	assert.Contains(t, buf.String(), `error="<nil>"`)
}

func TestFileDestination(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "twinpane.log")

	Configure(WithFile(path))
	Infof("undo: %s", "rename back")
	Configure(WithOutput(io.Discard))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "undo: rename back")
}

func TestContextIsOptional(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(WithOutput(&buf))

	l.WithContext(context.Background()).Info("with context")
	l.WithContext(nil).Info("without context") //nolint:staticcheck
	assert.Contains(t, buf.String(), "with context")
	assert.Contains(t, buf.String(), "without context")
}
