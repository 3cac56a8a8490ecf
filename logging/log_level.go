package logging

import (
	"os"
	"strings"

	"go.uber.org/zap/zapcore"
)

// EnvLogLevel names the variable read by ParseLogLevel in the CLI.
const EnvLogLevel = "PHOTODNA_LOG_LEVEL"

// ParseLogLevel reads a level name from the environment variable envVar. Unset or
// unrecognized values give def.
func ParseLogLevel(envVar string, def zapcore.Level) zapcore.Level {
	return ParseLogLevelString(os.Getenv(envVar), def)
}

// ParseLogLevelString accepts debug, info, warn, warning, error and fatal in any case.
func ParseLogLevelString(s string, def zapcore.Level) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	case "fatal":
		return zapcore.FatalLevel
	default:
		return def
	}
}
