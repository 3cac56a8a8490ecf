package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// bufferLogger returns a production logger writing JSON to an in-memory buffer.
func bufferLogger(t *testing.T, opts Options) (*Logger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	opts.Console = zapcore.AddSync(&buf)
	logger, err := New(opts)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return logger, &buf
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]interface{}
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("invalid JSON line %q: %v", line, err)
		}
		out = append(out, m)
	}
	return out
}

func TestNewLoggerWritesFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "logs", "photodna.log")

	logger, err := New(Options{FilePath: logPath, Console: zapcore.AddSync(&bytes.Buffer{})})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	logger.Info("library loaded", zap.String("path", "/opt/sdk"))
	if err := logger.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), `"message":"library loaded"`) {
		t.Errorf("log file missing entry: %s", data)
	}
	if logger.LogFilePath() != logPath {
		t.Errorf("LogFilePath() = %q", logger.LogFilePath())
	}
}

func TestNewLoggerModes(t *testing.T) {
	dev, buf := bufferLogger(t, Options{Development: true})
	dev.Debug("visible in development")
	if !dev.IsDevelopment() || !strings.Contains(buf.String(), "visible in development") {
		t.Error("development logger should log debug entries")
	}

	prod, buf := bufferLogger(t, Options{})
	prod.Debug("hidden")
	prod.Info("shown")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Errorf("production output = %q", buf.String())
	}
}

func TestLevelOverride(t *testing.T) {
	level := zapcore.WarnLevel
	logger, buf := bufferLogger(t, Options{Level: &level})
	logger.Info("dropped")
	logger.Warn("kept")

	lines := decodeLines(t, buf)
	if len(lines) != 1 || lines[0][FieldMessage] != "kept" {
		t.Errorf("lines = %v", lines)
	}
}

func TestHashFieldRedaction(t *testing.T) {
	logger, buf := bufferLogger(t, Options{})
	longHex := strings.Repeat("ab", 924)

	logger.Info("computed",
		zap.String("hash", "0011"),
		zap.String("note", "value "+longHex),
		zap.String("path", "a.png"))
	logger.Infow("border", "borderless_hash", "ffee", "digest", "deadbeef")

	lines := decodeLines(t, buf)
	if len(lines) != 2 {
		t.Fatalf("got %d lines", len(lines))
	}
	if lines[0]["hash"] != RedactedPlaceholder {
		t.Errorf("hash = %v", lines[0]["hash"])
	}
	if lines[0]["note"] != "value "+RedactedPlaceholder {
		t.Errorf("note = %v", lines[0]["note"])
	}
	if lines[0]["path"] != "a.png" {
		t.Errorf("path = %v", lines[0]["path"])
	}
	if lines[1]["borderless_hash"] != RedactedPlaceholder || lines[1]["digest"] != "deadbeef" {
		t.Errorf("sugared line = %v", lines[1])
	}
}

func TestDisableRedaction(t *testing.T) {
	logger, buf := bufferLogger(t, Options{DisableRedaction: true})
	logger.Info("computed", zap.String("hash", "0011"))

	lines := decodeLines(t, buf)
	if lines[0]["hash"] != "0011" {
		t.Errorf("hash = %v, want verbatim", lines[0]["hash"])
	}
}

func TestWithAndNamed(t *testing.T) {
	logger, buf := bufferLogger(t, Options{})
	child := logger.Named("scan").With(zap.String("batch_id", "b1"), zap.String("hash", "00"))
	child.Info("started")

	lines := decodeLines(t, buf)
	if lines[0][FieldSource] != "scan" || lines[0]["batch_id"] != "b1" {
		t.Errorf("line = %v", lines[0])
	}
	if lines[0]["hash"] != RedactedPlaceholder {
		t.Errorf("With() should redact, got %v", lines[0]["hash"])
	}
}

func TestNopLogger(t *testing.T) {
	logger := NewNop()
	logger.Info("nothing")
	logger.Infow("nothing", "hash", "00")
	if err := logger.Close(); err != nil {
		t.Errorf("Close() = %v", err)
	}

	var nilLogger *Logger
	if err := nilLogger.Sync(); err != nil {
		t.Errorf("nil Sync() = %v", err)
	}
}

func TestRedactKeysAndValuesOddAndNonString(t *testing.T) {
	logger := NewNop()
	in := []interface{}{42, "x", "hash"}
	out := logger.redactKeysAndValues(in)
	if len(out) != 3 || out[0] != 42 || out[1] != "x" || out[2] != "hash" {
		t.Errorf("out = %v", out)
	}
}
