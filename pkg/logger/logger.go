/* pkg/logger/logger.go */

package logger

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var log *zap.Logger

// SetLogger replaces the package-level logger.
func SetLogger(l *zap.Logger) {
	log = l
}

// L returns the package-level logger, which may be nil before initialization.
func L() *zap.Logger {
	return log
}

// GetLogger returns the global logger, initializing a console fallback if needed.
func GetLogger() *zap.Logger {
	if log == nil {
		fallback := NewFallbackLogger()
		zap.ReplaceGlobals(fallback)
		SetLogger(fallback)
	}
	return log
}

// ParseLogLevel maps LOG_LEVEL values onto zap levels, defaulting to Info.
func ParseLogLevel(level string) zapcore.Level {
	switch strings.ToUpper(level) {
	case "TRACE", "DEBUG":
		return zapcore.DebugLevel
	case "WARN":
		return zapcore.WarnLevel
	case "ERROR":
		return zapcore.ErrorLevel
	case "FATAL":
		return zapcore.FatalLevel
	case "DPANIC":
		return zapcore.DPanicLevel
	default:
		return zapcore.InfoLevel
	}
}

// Sync flushes any buffered log entries. Should be called before the application exits.
func Sync() error {
	if log == nil {
		return nil
	}
	return log.Sync()
}
