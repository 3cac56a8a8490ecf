package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options configures New.
type Options struct {
	// Development selects colored console output and a debug default level.
	Development bool

	// Level overrides the mode's default level when set.
	Level *zapcore.Level

	// FilePath is the rotating log file. Empty disables file output.
	FilePath string

	// File controls rotation of FilePath.
	File FileWriterConfig

	// Console receives console output. Nil means stderr.
	Console zapcore.WriteSyncer

	// DisableRedaction logs hashes and credentials verbatim.
	DisableRedaction bool
}

// Logger wraps zap.Logger and redacts sensitive values before they are encoded.
//
//	logger, err := logging.NewLogger(true, "photodna.log")
//	if err != nil {
//	    return err
//	}
//	defer logger.Sync()
//
//	logger.Info("hash computed", logging.HashFields(m)...)
type Logger struct {
	zap           *zap.Logger
	sugar         *zap.SugaredLogger
	isDevelopment bool
	logFilePath   string
	redact        bool
	file          *FileWriter
}

// NewLogger builds a logger with default rotation. Development mode logs at debug level,
// production at info.
func NewLogger(isDevelopment bool, logFilePath string) (*Logger, error) {
	return New(Options{
		Development: isDevelopment,
		FilePath:    logFilePath,
		File:        DefaultFileWriterConfig(),
	})
}

// New builds a logger from opts. It fails when the log file's directory cannot be created.
func New(opts Options) (*Logger, error) {
	level := zapcore.InfoLevel
	if opts.Development {
		level = zapcore.DebugLevel
	}
	if opts.Level != nil {
		level = *opts.Level
	}

	console := opts.Console
	if console == nil {
		console = zapcore.Lock(os.Stderr)
	}

	var file *FileWriter
	var fileSyncer zapcore.WriteSyncer
	if opts.FilePath != "" {
		if dir := filepath.Dir(opts.FilePath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create log directory: %w", err)
			}
		}
		file = NewFileWriter(opts.FilePath, opts.File)
		fileSyncer = file
	}

	core := NewMultiCore(level, console, fileSyncer, opts.Development)
	z := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1), zap.AddStacktrace(zapcore.ErrorLevel))

	return &Logger{
		zap:           z,
		sugar:         z.Sugar(),
		isDevelopment: opts.Development,
		logFilePath:   opts.FilePath,
		redact:        !opts.DisableRedaction,
		file:          file,
	}, nil
}

// NewNop returns a logger that discards everything.
func NewNop() *Logger {
	z := zap.NewNop()
	return &Logger{zap: z, sugar: z.Sugar(), redact: true}
}

// Sync flushes buffered entries.
func (l *Logger) Sync() error {
	if l == nil || l.zap == nil {
		return nil
	}
	return l.zap.Sync()
}

// Close flushes and closes the log file, if any.
func (l *Logger) Close() error {
	if l == nil {
		return nil
	}
	_ = l.Sync()
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

func (l *Logger) Debug(msg string, fields ...zap.Field) {
	l.zap.Debug(msg, l.redactFields(fields)...)
}

func (l *Logger) Info(msg string, fields ...zap.Field) {
	l.zap.Info(msg, l.redactFields(fields)...)
}

func (l *Logger) Warn(msg string, fields ...zap.Field) {
	l.zap.Warn(msg, l.redactFields(fields)...)
}

func (l *Logger) Error(msg string, fields ...zap.Field) {
	l.zap.Error(msg, l.redactFields(fields)...)
}

// Fatal logs then exits with status 1.
func (l *Logger) Fatal(msg string, fields ...zap.Field) {
	l.zap.Fatal(msg, l.redactFields(fields)...)
}

func (l *Logger) Debugw(msg string, keysAndValues ...interface{}) {
	l.sugar.Debugw(msg, l.redactKeysAndValues(keysAndValues)...)
}

func (l *Logger) Infow(msg string, keysAndValues ...interface{}) {
	l.sugar.Infow(msg, l.redactKeysAndValues(keysAndValues)...)
}

func (l *Logger) Warnw(msg string, keysAndValues ...interface{}) {
	l.sugar.Warnw(msg, l.redactKeysAndValues(keysAndValues)...)
}

func (l *Logger) Errorw(msg string, keysAndValues ...interface{}) {
	l.sugar.Errorw(msg, l.redactKeysAndValues(keysAndValues)...)
}

// Debugf and the other *f methods format without redaction; keep hashes out of templates.
func (l *Logger) Debugf(template string, args ...interface{}) {
	l.sugar.Debugf(template, args...)
}

func (l *Logger) Infof(template string, args ...interface{}) {
	l.sugar.Infof(template, args...)
}

func (l *Logger) Warnf(template string, args ...interface{}) {
	l.sugar.Warnf(template, args...)
}

func (l *Logger) Errorf(template string, args ...interface{}) {
	l.sugar.Errorf(template, args...)
}

// With returns a child logger that adds fields to every entry.
func (l *Logger) With(fields ...zap.Field) *Logger {
	child := *l
	child.zap = l.zap.With(l.redactFields(fields)...)
	child.sugar = child.zap.Sugar()
	return &child
}

// Named returns a child logger with name appended to the source.
func (l *Logger) Named(name string) *Logger {
	child := *l
	child.zap = l.zap.Named(name)
	child.sugar = child.zap.Sugar()
	return &child
}

func (l *Logger) Sugar() *zap.SugaredLogger { return l.sugar }

func (l *Logger) Zap() *zap.Logger { return l.zap }

func (l *Logger) IsDevelopment() bool { return l.isDevelopment }

func (l *Logger) LogFilePath() string { return l.logFilePath }

func (l *Logger) redactFields(fields []zap.Field) []zap.Field {
	if !l.redact || len(fields) == 0 {
		return fields
	}
	out := make([]zap.Field, len(fields))
	for i, f := range fields {
		out[i] = redactField(f)
	}
	return out
}

func redactField(f zap.Field) zap.Field {
	if IsSensitiveField(f.Key) {
		return zap.String(f.Key, RedactedPlaceholder)
	}
	if f.Type == zapcore.StringType {
		if r := RedactSensitiveData(f.String); r != f.String {
			return zap.String(f.Key, r)
		}
	}
	return f
}

func (l *Logger) redactKeysAndValues(kv []interface{}) []interface{} {
	if !l.redact || len(kv) == 0 {
		return kv
	}
	out := make([]interface{}, len(kv))
	copy(out, kv)
	for i := 0; i+1 < len(out); i += 2 {
		key, ok := out[i].(string)
		if !ok {
			continue
		}
		if IsSensitiveField(key) {
			out[i+1] = RedactedPlaceholder
			continue
		}
		switch v := out[i+1].(type) {
		case string:
			out[i+1] = RedactSensitiveData(v)
		case fmt.Stringer:
			if s := v.String(); ContainsSensitiveData(s) {
				out[i+1] = RedactSensitiveData(s)
			}
		}
	}
	return out
}
