// Package log provides a structured logging interface for tabprep pipeline
// operations.
//
// This package defines a minimal, slog-compatible logging interface that allows
// for flexible implementation switching while providing ML-specific structured
// logging capabilities. The interface is designed to integrate seamlessly with
// Go's standard log/slog package.
//
// Key features:
//   - slog-compatible interface
//   - structured attributes for pipeline stages (encoding, design, training)
//   - context-aware logging with field chaining
//   - test-friendly with configurable output destinations
//
// Example usage:
//
//	logger := log.GetLogger().With(
//	    log.ModelNameKey, "GradientBoosting",
//	    log.EncodingKey, "onehot",
//	)
//	logger.Info("Training started",
//	    log.OperationKey, "fit",
//	    log.SamplesKey, 32,
//	    log.FeaturesKey, 12,
//	)
package log

import (
	"context"
)

// Logger defines a structured logging interface compatible with Go's log/slog.
//
// The interface supports method chaining through With, allowing for
// contextual loggers with pre-populated fields. It is implementation-agnostic
// so backends can be swapped without touching call sites.
type Logger interface {
	// Debug logs a debug-level message with optional structured fields.
	//
	// Example:
	//   logger.Debug("Encoding column",
	//       "column", "cyl",
	//       "levels", 3,
	//   )
	Debug(msg string, fields ...any)

	// Info logs an info-level message with optional structured fields.
	//
	// Example:
	//   logger.Info("Cross-validation completed",
	//       log.DurationMsKey, 5432,
	//       log.RMSEKey, 3.21,
	//   )
	Info(msg string, fields ...any)

	// Warn logs a warning-level message with optional structured fields.
	//
	// Example:
	//   logger.Warn("Missing values zero-filled",
	//       log.EncodingKey, "onehot",
	//       "cells", 12,
	//   )
	Warn(msg string, fields ...any)

	// Error logs an error-level message with optional structured fields.
	// If an error value is provided via ErrAttr, stack trace information
	// is extracted and attached by the handler.
	//
	// Example:
	//   logger.Error("Training failed",
	//       log.ErrAttr(err),
	//       log.OperationKey, "fit",
	//   )
	Error(msg string, fields ...any)

	// With returns a new Logger with the given fields pre-populated.
	//
	// Example:
	//   foldLogger := logger.With(log.FoldKey, 3)
	//   foldLogger.Info("Fold training started") // includes cv.fold=3
	With(fields ...any) Logger

	// Enabled reports whether the logger emits log records at the given
	// level. Use it to avoid expensive field construction for records that
	// would be dropped.
	Enabled(ctx context.Context, level Level) bool
}

// Level represents a logging level, compatible with slog.Level.
type Level int

// Standard logging levels, values are compatible with slog.Level.
const (
	LevelDebug Level = -4 // Detailed diagnostic information
	LevelInfo  Level = 0  // General operational information
	LevelWarn  Level = 4  // Warning conditions
	LevelError Level = 8  // Error conditions
)

// String returns the string representation of the log level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// LoggerProvider defines an interface for creating and configuring loggers.
// It allows for dependency injection and testing with different logger
// implementations.
type LoggerProvider interface {
	// GetLogger returns the default logger instance.
	GetLogger() Logger

	// GetLoggerWithName returns a logger with a specific name/component identifier.
	GetLoggerWithName(name string) Logger

	// SetLevel sets the minimum log level for all loggers created by this provider.
	SetLevel(level Level)
}
