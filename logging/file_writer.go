package logging

import (
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Rotation defaults.
const (
	DefaultMaxSizeMB  = 100
	DefaultMaxBackups = 5
	DefaultMaxAgeDays = 30
	DefaultCompress   = true
)

// FileWriterConfig controls log file rotation. Zero sizes and counts take the defaults.
type FileWriterConfig struct {
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
	LocalTime  bool
}

// DefaultFileWriterConfig rotates at 100 MB, keeps 5 compressed backups for 30 days.
func DefaultFileWriterConfig() FileWriterConfig {
	return FileWriterConfig{
		MaxSizeMB:  DefaultMaxSizeMB,
		MaxBackups: DefaultMaxBackups,
		MaxAgeDays: DefaultMaxAgeDays,
		Compress:   DefaultCompress,
	}
}

// FileWriter is a rotating log file.
type FileWriter struct {
	zapcore.WriteSyncer
	lj *lumberjack.Logger
}

// NewFileWriter opens path for appending with the given rotation settings. The file is
// created on first write.
func NewFileWriter(path string, cfg FileWriterConfig) *FileWriter {
	cfg = applyFileWriterDefaults(cfg)
	lj := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
		LocalTime:  cfg.LocalTime,
	}
	return &FileWriter{WriteSyncer: zapcore.AddSync(lj), lj: lj}
}

// Path returns the active log file name.
func (w *FileWriter) Path() string { return w.lj.Filename }

// Rotate closes the current file and starts a new one.
func (w *FileWriter) Rotate() error { return w.lj.Rotate() }

// Close closes the current file.
func (w *FileWriter) Close() error { return w.lj.Close() }

func applyFileWriterDefaults(cfg FileWriterConfig) FileWriterConfig {
	if cfg.MaxSizeMB <= 0 {
		cfg.MaxSizeMB = DefaultMaxSizeMB
	}
	if cfg.MaxBackups <= 0 {
		cfg.MaxBackups = DefaultMaxBackups
	}
	if cfg.MaxAgeDays <= 0 {
		cfg.MaxAgeDays = DefaultMaxAgeDays
	}
	return cfg
}
