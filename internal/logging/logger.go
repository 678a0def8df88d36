package logging

import (
	"log/slog"
)

var logger *slog.Logger

// SetLogger sets the global logger instance
func SetLogger(l *slog.Logger) {
	logger = l
}

// GetLogger returns the global logger instance, or a logger that discards
// everything when none has been set.
func GetLogger() *slog.Logger {
	if logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return logger
}

func Info(msg string, args ...any) {
	if logger != nil {
		logger.Info(msg, args...)
	}
}

func Warn(msg string, args ...any) {
	if logger != nil {
		logger.Warn(msg, args...)
	}
}

func Error(msg string, args ...any) {
	if logger != nil {
		logger.Error(msg, args...)
	}
}

func Debug(msg string, args ...any) {
	if logger != nil {
		logger.Debug(msg, args...)
	}
}
