package logging

import (
	"bytes"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewMultiCoreWritesBoth(t *testing.T) {
	var console, file bytes.Buffer
	core := NewMultiCore(zapcore.InfoLevel, zapcore.AddSync(&console), zapcore.AddSync(&file), true)
	logger := zap.New(core)

	logger.Debug("filtered")
	logger.Info("hello", zap.Int("n", 1))

	if strings.Contains(console.String(), "filtered") || strings.Contains(file.String(), "filtered") {
		t.Error("debug entry should be filtered at info level")
	}
	if !strings.Contains(console.String(), "hello") {
		t.Errorf("console = %q", console.String())
	}
	if !strings.HasPrefix(strings.TrimSpace(file.String()), "{") {
		t.Errorf("file output should be JSON, got %q", file.String())
	}
	if strings.HasPrefix(strings.TrimSpace(console.String()), "{") {
		t.Error("development console output should not be JSON")
	}
}

func TestNewMultiCoreConsoleOnly(t *testing.T) {
	var console bytes.Buffer
	core := NewMultiCore(zapcore.DebugLevel, zapcore.AddSync(&console), nil, false)
	zap.New(core).Info("only console")

	if !strings.Contains(console.String(), `"message":"only console"`) {
		t.Errorf("console = %q", console.String())
	}
}

func TestEncoderConfigKeys(t *testing.T) {
	for _, cfg := range []zapcore.EncoderConfig{NewEncoderConfig(), NewConsoleEncoderConfig()} {
		if cfg.TimeKey != FieldTimestamp || cfg.LevelKey != FieldLevel || cfg.NameKey != FieldSource ||
			cfg.MessageKey != FieldMessage || cfg.CallerKey != FieldCaller || cfg.StacktraceKey != FieldStacktrace {
			t.Errorf("unexpected keys: %+v", cfg)
		}
	}
}
